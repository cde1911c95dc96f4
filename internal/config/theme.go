package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme describes the visual styling of rendered frames. All geometry is in
// pixels, all colors are 8-bit RGB. A theme is loaded once per job and never
// changed mid-render.
type Theme struct {
	FontSize          float64 `yaml:"font_size"`
	LineHeight        int     `yaml:"line_height"`
	TextMargin        int     `yaml:"text_margin"`
	BackgroundColor   RGB     `yaml:"background_color"`
	TextColor         RGB     `yaml:"text_color"`
	HighlightColor    RGB     `yaml:"highlight_color"`
	BackgroundOpacity float64 `yaml:"background_opacity"`
	QRSize            int     `yaml:"qr_size"`
}

// RGB is an 8-bit color triple.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// DefaultTheme is the built-in styling: dark slate background, white text,
// gold highlight for the spoken word.
func DefaultTheme() Theme {
	return Theme{
		FontSize:          32,
		LineHeight:        48,
		TextMargin:        60,
		BackgroundColor:   RGB{R: 30, G: 30, B: 30},
		TextColor:         RGB{R: 255, G: 255, B: 255},
		HighlightColor:    RGB{R: 255, G: 215, B: 0},
		BackgroundOpacity: 0.85,
		QRSize:            120,
	}
}

// ReadTheme loads a theme from a YAML file. Zero-valued fields fall back to
// the defaults so partial themes work.
func ReadTheme(path string) (Theme, error) {
	theme := DefaultTheme()

	data, err := os.ReadFile(path)
	if err != nil {
		return theme, err
	}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return theme, fmt.Errorf("theme parse error: %w", err)
	}

	if theme.FontSize <= 0 {
		theme.FontSize = DefaultTheme().FontSize
	}
	if theme.LineHeight <= 0 {
		theme.LineHeight = int(theme.FontSize * 1.5)
	}
	if theme.TextMargin <= 0 {
		theme.TextMargin = DefaultTheme().TextMargin
	}
	if theme.BackgroundOpacity <= 0 || theme.BackgroundOpacity > 1 {
		theme.BackgroundOpacity = DefaultTheme().BackgroundOpacity
	}
	if theme.QRSize <= 0 {
		theme.QRSize = DefaultTheme().QRSize
	}
	return theme, nil
}

// WriteTheme saves a theme as YAML, used by -dump-theme to give users a
// starting point for customization.
func WriteTheme(theme Theme, path string) error {
	data, err := yaml.Marshal(theme)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
