package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Width:        1280,
		Height:       720,
		FPS:          24,
		Workers:      4,
		BatchSize:    32,
		LinesPerPage: 3,
		MaxLineWidth: 60,
		FadeDuration: 0.3,
		FadePolicy:   "sequential",
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Valid config rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, "resolution"},
		{"odd height", func(c *Config) { c.Height = 721 }, "even"},
		{"zero fps", func(c *Config) { c.FPS = 0 }, "fps"},
		{"zero lines", func(c *Config) { c.LinesPerPage = 0 }, "lines per page"},
		{"zero line width", func(c *Config) { c.MaxLineWidth = 0 }, "line width"},
		{"negative fade", func(c *Config) { c.FadeDuration = -1 }, "fade"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad policy", func(c *Config) { c.FadePolicy = "wipe" }, "fade policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error %q should mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestThemeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")

	theme := DefaultTheme()
	theme.FontSize = 48
	theme.HighlightColor = RGB{R: 0, G: 255, B: 128}

	if err := WriteTheme(theme, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadTheme(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.FontSize != 48 {
		t.Errorf("FontSize lost in round trip: %f", loaded.FontSize)
	}
	if loaded.HighlightColor != theme.HighlightColor {
		t.Errorf("HighlightColor lost: %+v", loaded.HighlightColor)
	}
}

func TestReadThemeFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("font_size: 40\nline_height: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	theme, err := ReadTheme(path)
	if err != nil {
		t.Fatal(err)
	}
	if theme.FontSize != 40 {
		t.Errorf("Expected font size 40, got %f", theme.FontSize)
	}
	if theme.LineHeight != 60 {
		t.Errorf("Explicit zero line height should derive from font size, got %d", theme.LineHeight)
	}
	if theme.BackgroundOpacity != DefaultTheme().BackgroundOpacity {
		t.Errorf("Opacity should fall back to default, got %f", theme.BackgroundOpacity)
	}
}
