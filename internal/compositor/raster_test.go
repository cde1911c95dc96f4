package compositor

import (
	"bytes"
	"image"
	"testing"

	"github.com/ivlev/code2vid/internal/config"
)

func TestRasterizeDrawsRevealedText(t *testing.T) {
	c := testJob()
	r, err := NewRasterizer(320, 180, config.DefaultTheme(), nil, "")
	if err != nil {
		t.Fatal(err)
	}

	rect := image.Rect(0, 0, 320, 180)
	blank := image.NewRGBA(rect)
	r.Rasterize(RenderState{FadeAlpha: 1}, blank)

	withText := image.NewRGBA(rect)
	r.Rasterize(c.StateAt(2.5), withText)

	if bytes.Equal(blank.Pix, withText.Pix) {
		t.Error("Revealed characters should change the rendered frame")
	}
}

func TestRasterizeDeterministic(t *testing.T) {
	c := testJob()
	r, err := NewRasterizer(320, 180, config.DefaultTheme(), nil, "")
	if err != nil {
		t.Fatal(err)
	}

	rect := image.Rect(0, 0, 320, 180)
	state := c.StateAt(1.7)

	first := image.NewRGBA(rect)
	second := image.NewRGBA(rect)
	r.Rasterize(state, first)
	r.Rasterize(state, second)

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("Rasterizing the same state twice must give identical pixels")
	}
}

func TestRasterizeQROverlay(t *testing.T) {
	r, err := NewRasterizer(320, 180, config.DefaultTheme(), nil, "https://example.com/snippet")
	if err != nil {
		t.Fatal(err)
	}

	plain, err := NewRasterizer(320, 180, config.DefaultTheme(), nil, "")
	if err != nil {
		t.Fatal(err)
	}

	rect := image.Rect(0, 0, 320, 180)
	withQR := image.NewRGBA(rect)
	without := image.NewRGBA(rect)
	r.Rasterize(RenderState{FadeAlpha: 1}, withQR)
	plain.Rasterize(RenderState{FadeAlpha: 1}, without)

	if bytes.Equal(withQR.Pix, without.Pix) {
		t.Error("QR overlay should appear in the frame")
	}
}

func TestRasterizeBackdropDimmed(t *testing.T) {
	backdrop := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := range backdrop.Pix {
		backdrop.Pix[i] = 0xff // white square
	}

	r, err := NewRasterizer(320, 180, config.DefaultTheme(), backdrop, "")
	if err != nil {
		t.Fatal(err)
	}

	rect := image.Rect(0, 0, 320, 180)
	frame := image.NewRGBA(rect)
	r.Rasterize(RenderState{FadeAlpha: 1}, frame)

	// Center pixel sits on the backdrop; dimming must keep it below
	// full white.
	_, g, _, _ := frame.At(160, 90).RGBA()
	if g>>8 >= 250 {
		t.Errorf("Backdrop should be dimmed, center green channel = %d", g>>8)
	}
}
