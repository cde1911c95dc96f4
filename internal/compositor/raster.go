package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/code2vid/internal/config"
)

// Rasterizer turns a RenderState into pixels. Font faces keep internal
// drawing buffers and are not safe for concurrent use, so each render
// worker owns its own Rasterizer.
type Rasterizer struct {
	Width  int
	Height int
	Theme  config.Theme

	regular font.Face
	bold    font.Face

	backdrop *image.RGBA // pre-scaled, may be nil
	qr       image.Image // may be nil
}

// NewRasterizer loads the embedded Go fonts at the theme's size and
// prepares the optional backdrop and QR overlays.
func NewRasterizer(width, height int, theme config.Theme, backdrop image.Image, qrLink string) (*Rasterizer, error) {
	r := &Rasterizer{Width: width, Height: height, Theme: theme}

	regularFont, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	boldFont, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}

	opts := opentype.FaceOptions{Size: theme.FontSize, DPI: 72, Hinting: font.HintingFull}
	if r.regular, err = opentype.NewFace(regularFont, &opts); err != nil {
		return nil, fmt.Errorf("regular face: %w", err)
	}
	if r.bold, err = opentype.NewFace(boldFont, &opts); err != nil {
		return nil, fmt.Errorf("bold face: %w", err)
	}

	if backdrop != nil {
		r.backdrop = scaleToFit(backdrop, width, height)
	}

	if qrLink != "" {
		qr, err := qrcode.New(qrLink, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("qr overlay: %w", err)
		}
		r.qr = qr.Image(theme.QRSize)
	}

	return r, nil
}

// Rasterize draws the frame state into dst, which must be Width x Height.
func (r *Rasterizer) Rasterize(state RenderState, dst *image.RGBA) {
	bg := r.Theme.BackgroundColor
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{bg.R, bg.G, bg.B, 255}), image.Point{}, draw.Src)

	if r.backdrop != nil {
		offset := image.Pt((r.Width-r.backdrop.Bounds().Dx())/2, (r.Height-r.backdrop.Bounds().Dy())/2)
		draw.Draw(dst, r.backdrop.Bounds().Add(offset), r.backdrop, image.Point{}, draw.Over)
		// Dim the backdrop so the text stays legible.
		dim := uint8(r.Theme.BackgroundOpacity * 255)
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, dim}), image.Point{}, draw.Over)
	}

	r.drawLines(state, dst)

	if r.qr != nil {
		margin := 20
		b := r.qr.Bounds()
		offset := image.Pt(r.Width-b.Dx()-margin, r.Height-b.Dy()-margin)
		draw.Draw(dst, b.Add(offset), r.qr, b.Min, draw.Over)
	}
}

// drawLines renders the revealed portion of each line, horizontally
// centered, with the active word in the bold face and highlight color.
func (r *Rasterizer) drawLines(state RenderState, dst *image.RGBA) {
	if len(state.Lines) == 0 || state.FadeAlpha <= 0 {
		return
	}

	blockHeight := len(state.Lines) * r.Theme.LineHeight
	y := r.Height - r.Theme.TextMargin - blockHeight + r.Theme.LineHeight

	for _, line := range state.Lines {
		runs := revealedRuns(line)
		if len(runs) > 0 {
			totalWidth := fixed.I(0)
			for _, run := range runs {
				totalWidth += font.MeasureString(r.face(run.bold), run.text)
			}

			x := fixed.I(r.Width)/2 - totalWidth/2
			for _, run := range runs {
				d := font.Drawer{
					Dst:  dst,
					Src:  image.NewUniform(r.runColor(run.bold, state.FadeAlpha)),
					Face: r.face(run.bold),
					Dot:  fixed.Point26_6{X: x, Y: fixed.I(y)},
				}
				d.DrawString(run.text)
				x = d.Dot.X
			}
		}
		y += r.Theme.LineHeight
	}
}

func (r *Rasterizer) face(bold bool) font.Face {
	if bold {
		return r.bold
	}
	return r.regular
}

// runColor returns the premultiplied text color at the given fade alpha.
func (r *Rasterizer) runColor(bold bool, alpha float64) color.RGBA {
	c := r.Theme.TextColor
	if bold {
		c = r.Theme.HighlightColor
	}
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(255 * alpha),
	}
}

type styledRun struct {
	text string
	bold bool
}

// revealedRuns collapses the visible characters of a line into runs of
// uniform styling, so the drawer switches faces only at word boundaries.
func revealedRuns(line LineState) []styledRun {
	var runs []styledRun
	for _, rs := range line.Runes {
		if !rs.Visible {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].bold == rs.Bold {
			runs[n-1].text += string(rs.R)
		} else {
			runs = append(runs, styledRun{text: string(rs.R), bold: rs.Bold})
		}
	}
	return runs
}

// scaleToFit resizes src to fit within maxW x maxH preserving aspect ratio
// using nearest-neighbor sampling, which is adequate for a dimmed backdrop.
func scaleToFit(src image.Image, maxW, maxH int) *image.RGBA {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	scaleX := float64(maxW) / float64(sb.Dx())
	scaleY := float64(maxH) / float64(sb.Dy())
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := sb.Min.Y + int(float64(y)/scale)
		for x := 0; x < w; x++ {
			sx := sb.Min.X + int(float64(x)/scale)
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
