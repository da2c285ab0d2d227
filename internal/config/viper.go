package config

import (
	"errors"
	"os"
	"runtime"

	"github.com/spf13/viper"

	"github.com/ayoisaiah/moodmap/internal/camera"
	"github.com/ayoisaiah/moodmap/internal/capture"
	"github.com/ayoisaiah/moodmap/internal/classifier"
	"github.com/ayoisaiah/moodmap/internal/heatmap"
)

// viperKeys defines the mapping between config keys and their Viper counterparts.
const (
	keyCaptureInterval      = "capture.interval"
	keyCameraCmd            = "camera.cmd"
	keyCameraWarmup         = "camera.warmup"
	keyCameraQuality        = "camera.quality"
	keyCameraMaxWidth       = "camera.max_width"
	keyClassifierModel      = "classifier.model"
	keyClassifierBaseURL    = "classifier.base_url"
	keyClassifierTimeout    = "classifier.timeout"
	keyHeatmapIntensity     = "heatmap.intensity"
	keyHeatmapDwell         = "heatmap.dwell"
	keyHeatmapFade          = "heatmap.fade"
	keyNotificationsEnabled = "notifications.enabled"
	keyDarkTheme            = "display.dark_theme"
)

// WithViperConfig returns an Option that loads configuration from Viper.
// A config file with the default settings is written if none exists.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v, c)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper configures Viper with defaults. Values already present in c,
// such as answers from the first-run prompt, take precedence.
func setupViper(v *viper.Viper, c *Config) {
	v.SetDefault(keyCaptureInterval, capture.DefaultInterval.String())
	v.SetDefault(keyCameraCmd, camera.DefaultCommand(runtime.GOOS))
	v.SetDefault(keyCameraWarmup, camera.DefaultWarmup.String())
	v.SetDefault(keyCameraQuality, camera.DefaultQuality)
	v.SetDefault(keyCameraMaxWidth, camera.DefaultMaxWidth)
	v.SetDefault(keyClassifierModel, classifier.DefaultModel)
	v.SetDefault(keyClassifierBaseURL, "")
	v.SetDefault(keyClassifierTimeout, classifier.DefaultTimeout.String())
	v.SetDefault(keyHeatmapIntensity, heatmap.DefaultIntensity)
	v.SetDefault(keyHeatmapDwell, heatmap.DefaultDwell.String())
	v.SetDefault(keyHeatmapFade, heatmap.DefaultFade.String())
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyDarkTheme, true)

	if c.Capture.Interval != 0 {
		v.Set(keyCaptureInterval, c.Capture.Interval.String())
	}

	if c.Heatmap.Intensity != 0 {
		v.Set(keyHeatmapIntensity, c.Heatmap.Intensity)
	}
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	cli := c.CLI

	err := v.Unmarshal(c)
	if err != nil {
		return errReadConfig.Wrap(err)
	}

	c.CLI = cli

	return nil
}
