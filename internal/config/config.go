// Package config loads moodmap settings from the config file, the
// environment and command-line flags
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

type (
	// Config holds all configuration settings
	Config struct {
		CLI           CLIConfig          `mapstructure:"-"`
		Classifier    ClassifierConfig   `mapstructure:"classifier"`
		Camera        CameraConfig       `mapstructure:"camera"`
		Capture       CaptureConfig      `mapstructure:"capture"`
		Heatmap       HeatmapConfig      `mapstructure:"heatmap"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Display       DisplayConfig      `mapstructure:"display"`
	}

	// CaptureConfig holds capture cadence settings
	CaptureConfig struct {
		Interval time.Duration `mapstructure:"interval"`
	}

	// CameraConfig holds settings for the capture command and the frames
	// sent for analysis
	CameraConfig struct {
		Cmd      string        `mapstructure:"cmd"`
		Warmup   time.Duration `mapstructure:"warmup"`
		Quality  int           `mapstructure:"quality"`
		MaxWidth int           `mapstructure:"max_width"`
	}

	// ClassifierConfig holds settings for the remote model
	ClassifierConfig struct {
		Model   string        `mapstructure:"model"`
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	// HeatmapConfig holds heatmap rendering settings
	HeatmapConfig struct {
		Intensity float64       `mapstructure:"intensity"`
		Dwell     time.Duration `mapstructure:"dwell"`
		Fade      time.Duration `mapstructure:"fade"`
	}

	// NotificationConfig holds notification settings
	NotificationConfig struct {
		Enabled bool `mapstructure:"enabled"`
	}

	// DisplayConfig holds display-related settings
	DisplayConfig struct {
		DarkTheme bool `mapstructure:"dark_theme"`
	}

	// CLIConfig holds settings that only exist for the current invocation.
	// They are never written to the config file.
	CLIConfig struct {
		APIKey  string
		Debug   bool
		NoColor bool
	}

	// Option is a function that modifies Config
	Option func(*Config) error
)

const Version = "v0.3.0"

var (
	configDir      = "moodmap"
	configFileName = "config.yml"
	dbFileName     = "moodmap.db"
	logFileName    = "moodmap.log"
	dbFilePath     string
	configFilePath string
	logFilePath    string
)

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths resolves the config, database and log locations. Setting
// MOODMAP_ENV keeps a separate set of files per environment.
func InitializePaths() error {
	env := strings.TrimSpace(os.Getenv("MOODMAP_ENV"))
	if env != "" {
		configFileName = fmt.Sprintf("config_%s.yml", env)
		dbFileName = fmt.Sprintf("moodmap_%s.db", env)
		logFileName = fmt.Sprintf("moodmap_%s.log", env)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		return errInitPaths.Wrap(err)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		return errInitPaths.Wrap(err)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)

	return nil
}

// New creates a new Config and applies options in order. The result is
// validated.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}
