package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/moodmap/internal/heatmap"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Interval  string
	Intensity string
	Model     string
	CameraCmd string
	APIKey    string
	BaseURL   string
	NoColor   bool
	Debug     bool
	NoNotify  bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
// It is applied after the config file so flags take precedence.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Interval:  ctx.String("interval"),
			Intensity: ctx.String("intensity"),
			Model:     ctx.String("model"),
			CameraCmd: ctx.String("camera-cmd"),
			APIKey:    ctx.String("api-key"),
			BaseURL:   ctx.String("base-url"),
			NoColor:   ctx.Bool("no-color"),
			Debug:     ctx.Bool("debug"),
			NoNotify:  ctx.Bool("disable-notification"),
		}

		return applyCLIOptions(c, opts)
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) error {
	if opts.Interval != "" {
		d, err := parseDuration(opts.Interval)
		if err != nil {
			return errInvalidCLIDuration.Fmt("interval", err)
		}

		c.Capture.Interval = d
	}

	if opts.Intensity != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(opts.Intensity), 64)
		if err != nil {
			return errInvalidIntensity.Fmt(
				heatmap.MinIntensity,
				heatmap.MaxIntensity,
				opts.Intensity,
			)
		}

		c.Heatmap.Intensity = v
	}

	if opts.Model != "" {
		c.Classifier.Model = opts.Model
	}

	if opts.CameraCmd != "" {
		c.Camera.Cmd = opts.CameraCmd
	}

	if opts.BaseURL != "" {
		c.Classifier.BaseURL = opts.BaseURL
	}

	if opts.APIKey != "" {
		c.CLI.APIKey = opts.APIKey
	}

	if opts.NoNotify {
		c.Notifications.Enabled = false
	}

	c.CLI.NoColor = opts.NoColor
	c.CLI.Debug = opts.Debug

	return nil
}

// parseDuration accepts Go duration strings and bare numbers, which are
// treated as seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	dur, err := time.ParseDuration(s)
	if err == nil {
		return dur, nil
	}

	secs, serr := strconv.ParseFloat(s, 64)
	if serr != nil {
		return 0, err
	}

	return time.Duration(secs * float64(time.Second)), nil
}
