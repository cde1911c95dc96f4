package config

import "fmt"

type Config struct {
	AudioPath    string
	TextPath     string
	OutputVideo  string
	BackdropPath string
	QRLink       string

	TotalDuration float64
	Width         int
	Height        int
	FPS           int
	Workers       int
	BatchSize     int

	LinesPerPage  int
	MaxLineWidth  int
	FadeDuration  float64
	FadePolicy    string
	AlignURL      string
	AlignTimeout  float64

	VideoEncoder string
	Quality      int
	ShowStats    bool
	BuildVersion string

	Theme Theme
}

// Validate checks the invariants the renderer relies on. It is called once
// in main, before any frame work starts.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("resolution must be even for yuv420p, got %dx%d", c.Width, c.Height)
	}
	if c.FPS < 1 {
		return fmt.Errorf("fps must be at least 1, got %d", c.FPS)
	}
	if c.LinesPerPage < 1 {
		return fmt.Errorf("lines per page must be at least 1, got %d", c.LinesPerPage)
	}
	if c.MaxLineWidth < 1 {
		return fmt.Errorf("max line width must be at least 1, got %d", c.MaxLineWidth)
	}
	if c.FadeDuration < 0 {
		return fmt.Errorf("fade duration must be non-negative, got %f", c.FadeDuration)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	switch c.FadePolicy {
	case "", "sequential", "crossfade":
	default:
		return fmt.Errorf("unknown fade policy %q (want sequential or crossfade)", c.FadePolicy)
	}
	return nil
}
