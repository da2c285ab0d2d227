package config

import (
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

// PromptOptions holds the user's responses to the configuration prompts.
type PromptOptions struct {
	IntervalSeconds int
	Intensity       float64
}

// WithPromptConfig returns an Option that asks for the most common settings
// the first time moodmap runs. It does nothing once a config file exists.
func WithPromptConfig(configPath string) Option {
	return func(c *Config) error {
		_, err := os.Stat(configPath)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return err
		}

		opts, err := promptUser()
		if err != nil {
			return err
		}

		applyPromptOptions(c, opts)

		return nil
	}
}

// promptUser handles the interactive configuration process.
func promptUser() (PromptOptions, error) {
	opts := PromptOptions{
		IntervalSeconds: 3,
		Intensity:       0.7,
	}

	_ = pterm.DefaultBigText.WithLetters(putils.LettersFromString("moodmap")).
		Render()

	_ = putils.BulletListFromString(`Follow the prompts below to configure moodmap for the first time.
Select your preferred value, or press ENTER to accept the defaults.
Edit the config file with 'moodmap edit-config' to change any settings.`, " ").
		Render()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("How often should a snapshot be analysed?").
				Options(
					huh.NewOption("Every 3 seconds", 3).Selected(true),
					huh.NewOption("Every 5 seconds", 5),
					huh.NewOption("Every 10 seconds", 10),
					huh.NewOption("Every 30 seconds", 30),
				).
				Value(&opts.IntervalSeconds),
		),
		huh.NewGroup(
			huh.NewSelect[float64]().
				Title("Heatmap intensity").
				Options(
					huh.NewOption("Subtle", 0.4),
					huh.NewOption("Balanced", 0.7).Selected(true),
					huh.NewOption("Vivid", 1.0),
				).
				Value(&opts.Intensity),
		),
	)

	err := form.Run()
	if err != nil {
		return opts, err
	}

	return opts, nil
}

// applyPromptOptions applies the user's prompt responses to the configuration.
func applyPromptOptions(c *Config, opts PromptOptions) {
	c.Capture.Interval = time.Duration(opts.IntervalSeconds) * time.Second
	c.Heatmap.Intensity = opts.Intensity
}
