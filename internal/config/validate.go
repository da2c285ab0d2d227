package config

import (
	"math"
	"strings"
	"time"

	"github.com/ayoisaiah/moodmap/internal/heatmap"
)

const minInterval = 500 * time.Millisecond

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if err := c.validateCapture(); err != nil {
		return err
	}

	if err := c.validateCamera(); err != nil {
		return err
	}

	if err := c.validateHeatmap(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Classifier.Model) == "" {
		return errEmptyModel
	}

	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.Interval < minInterval {
		return errIntervalTooShort.Fmt(minInterval, c.Capture.Interval)
	}

	return nil
}

func (c *Config) validateCamera() error {
	if strings.TrimSpace(c.Camera.Cmd) == "" {
		return errEmptyCameraCmd
	}

	if c.Camera.Quality < 1 || c.Camera.Quality > 100 {
		return errInvalidQuality.Fmt(c.Camera.Quality)
	}

	if c.Camera.MaxWidth <= 0 {
		return errInvalidMaxWidth.Fmt(c.Camera.MaxWidth)
	}

	return nil
}

func (c *Config) validateHeatmap() error {
	i := c.Heatmap.Intensity
	if math.IsNaN(i) || i < heatmap.MinIntensity || i > heatmap.MaxIntensity {
		return errInvalidIntensity.Fmt(heatmap.MinIntensity, heatmap.MaxIntensity, i)
	}

	if c.Heatmap.Dwell <= 0 {
		return errInvalidDuration.Fmt("heatmap dwell")
	}

	if c.Heatmap.Fade <= 0 {
		return errInvalidDuration.Fmt("heatmap fade")
	}

	return nil
}
