package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/moodmap/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the moodmap app instance.
func Get() *cli.App {
	moodmapApp := &cli.App{
		Name: "moodmap",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		moodmap watches your webcam while you work and paints your emotions
		onto the terminal as a fading heatmap. Snapshots are analysed by a
		remote model and a running summary of the session is kept.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
			{
				Name:  "stats",
				Usage: "Summarise the emotions detected in the saved session",
				Flags: []cli.Flag{
					sinceFlag,
					untilFlag,
					jsonFlag,
					statsPortFlag,
				},
				Action: statsAction,
			},
			{
				Name:  "list",
				Usage: "List the detections in the saved session",
				Flags: []cli.Flag{
					sinceFlag,
					untilFlag,
					jsonFlag,
				},
				Action: listAction,
			},
			{
				Name:  "discard",
				Usage: "Delete the saved session",
				Flags: []cli.Flag{
					yesFlag,
				},
				Action: discardAction,
			},
		},
		Flags: []cli.Flag{
			intervalFlag,
			intensityFlag,
			modelFlag,
			cameraCmdFlag,
			apiKeyFlag,
			baseURLFlag,
			disableNotificationFlag,
			noColorFlag,
			debugFlag,
		},
		Action: defaultAction,
		Before: beforeAction,
		After:  afterAction,
	}

	return moodmapApp
}
