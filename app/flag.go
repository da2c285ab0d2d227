package app

import "github.com/urfave/cli/v2"

var (
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Write debug messages to the log file",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears when the webcam stops responding",
	}

	intervalFlag = &cli.StringFlag{
		Name:    "interval",
		Aliases: []string{"i"},
		Usage:   "Time between snapshots, in seconds or as a duration such as 5s (default: 3s)",
	}

	intensityFlag = &cli.StringFlag{
		Name:  "intensity",
		Usage: "Heatmap intensity between 0.1 and 1.0 (default: 0.7)",
	}

	modelFlag = &cli.StringFlag{
		Name:    "model",
		Aliases: []string{"m"},
		Usage:   "Model used for emotion analysis (default: gpt-4o-mini)",
	}

	cameraCmdFlag = &cli.StringFlag{
		Name:    "camera-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Command that writes MJPEG frames from the webcam to stdout",
	}

	apiKeyFlag = &cli.StringFlag{
		Name:  "api-key",
		Usage: "API key for the emotion analysis model. Prefer MOODMAP_API_KEY",
	}

	baseURLFlag = &cli.StringFlag{
		Name:  "base-url",
		Usage: "Base URL of an OpenAI-compatible endpoint",
	}

	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only include detections made after this time (e.g. '1 hour ago')",
	}

	untilFlag = &cli.StringFlag{
		Name:  "until",
		Usage: "Only include detections made before this time (e.g. 'today 3pm')",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output as JSON",
	}

	statsPortFlag = &cli.UintFlag{
		Name:  "port",
		Usage: "Serve the statistics on this port instead of printing them",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Do not ask for confirmation",
	}
)
