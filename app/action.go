package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/jonboulle/clockwork"
	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/moodmap/internal/camera"
	"github.com/ayoisaiah/moodmap/internal/capture"
	"github.com/ayoisaiah/moodmap/internal/classifier"
	"github.com/ayoisaiah/moodmap/internal/config"
	"github.com/ayoisaiah/moodmap/internal/heatmap"
	"github.com/ayoisaiah/moodmap/internal/models"
	"github.com/ayoisaiah/moodmap/internal/osutil"
	"github.com/ayoisaiah/moodmap/internal/session"
	"github.com/ayoisaiah/moodmap/internal/ui"
	"github.com/ayoisaiah/moodmap/stats"
	"github.com/ayoisaiah/moodmap/store"
	"github.com/ayoisaiah/moodmap/tracker"
)

const (
	envNoColor        = "NO_COLOR"
	envMoodmapNoColor = "MOODMAP_NO_COLOR"
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// savedHistory returns the history of the saved session, if any. The saved
// session is left untouched even when it cannot be read.
func savedHistory(db store.DB) ([]models.Sample, error) {
	saved, err := db.Load()
	if err != nil || saved == nil {
		return nil, err
	}

	return saved.History, nil
}

// editConfigAction handles the edit-config command which opens the moodmap
// config file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == osutil.Windows {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	// editors are often configured with arguments, e.g. "code --wait"
	args, err := shellquote.Split(editor)
	if err != nil || len(args) == 0 {
		args = []string{editor}
	}

	// write the default config if the file does not exist yet
	_, err = config.New(config.WithViperConfig(config.ConfigFilePath()))
	if err != nil {
		return err
	}

	args = append(args, config.ConfigFilePath())

	cmd := exec.Command(args[0], args[1:]...)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// listAction handles the list command and prints a table of the detections in
// the saved session.
func listAction(ctx *cli.Context) error {
	filter, err := config.Filter(ctx, time.Now())
	if err != nil {
		return err
	}

	db, err := store.NewClient(config.DBFilePath(), slog.Default())
	if err != nil {
		return err
	}

	history, err := savedHistory(db)
	if err != nil {
		return err
	}

	samples := filterSamples(history, stats.Options{
		Since: filter.Since,
		Until: filter.Until,
	})

	if filter.JSON {
		if samples == nil {
			samples = []models.Sample{}
		}

		b, err := json.Marshal(samples)
		if err != nil {
			return err
		}

		fmt.Fprintln(config.Stdout, string(b))

		return nil
	}

	listSamples(config.Stdout, samples)

	return nil
}

// statsAction computes the stats of the saved session. The report is printed
// to the terminal, as JSON, or served over HTTP when a port is given.
func statsAction(ctx *cli.Context) error {
	filter, err := config.Filter(ctx, time.Now())
	if err != nil {
		return err
	}

	db, err := store.NewClient(config.DBFilePath(), slog.Default())
	if err != nil {
		return err
	}

	if filter.Port != 0 {
		srv := stats.NewServer(func(context.Context) ([]models.Sample, error) {
			return savedHistory(db)
		})

		pterm.Info.Printfln(
			"Serving statistics on http://localhost:%d. Press Ctrl-C to stop",
			filter.Port,
		)

		return srv.ListenAndServe(ctx.Context, filter.Port)
	}

	history, err := savedHistory(db)
	if err != nil {
		return err
	}

	summary := stats.Compute(history, stats.Options{
		Since: filter.Since,
		Until: filter.Until,
	})

	if filter.JSON {
		b, err := summary.ToJSON()
		if err != nil {
			return err
		}

		fmt.Fprintln(config.Stdout, string(b))

		return nil
	}

	stats.Render(config.Stdout, summary)

	return nil
}

// defaultAction asks for consent, offers to restore the previous session and
// then shows the heatmap view until the user quits.
func defaultAction(ctx *cli.Context) error {
	cfg, err := config.New(
		config.WithPromptConfig(config.ConfigFilePath()),
		config.WithViperConfig(config.ConfigFilePath()),
		config.WithCLIConfig(ctx),
		config.WithEnvConfig(),
	)
	if err != nil {
		return err
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	logger := slog.Default()

	cls, err := classifier.New(classifier.Config{
		APIKey:  cfg.CLI.APIKey,
		BaseURL: cfg.Classifier.BaseURL,
		Model:   cfg.Classifier.Model,
		Timeout: cfg.Classifier.Timeout,
	}, logger)
	if err != nil {
		return err
	}

	src, err := camera.NewCommand(cfg.Camera.Cmd, cfg.Camera.Warmup, logger)
	if err != nil {
		return err
	}

	db, err := store.NewClient(config.DBFilePath(), logger)
	if err != nil {
		return err
	}

	saved, err := tracker.Prepare(db, tracker.FormPrompter{}, cfg.Classifier.Model)
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}

	if errors.Is(err, tracker.ErrConsentDeclined) {
		pterm.Info.Println("moodmap needs camera access to run")
		return nil
	}

	if err != nil {
		return err
	}

	sessions := session.New()

	lifecycle := heatmap.NewLifecycle(
		sessions,
		clockwork.NewRealClock(),
		cfg.Heatmap.Dwell,
		cfg.Heatmap.Fade,
	)

	t := tracker.New(cfg, db, sessions, lifecycle, logger)

	loop := capture.New(
		src,
		camera.NewEncoder(cfg.Camera.Quality, cfg.Camera.MaxWidth),
		cls,
		sessions,
		capture.WithInterval(cfg.Capture.Interval),
		capture.WithTracker(lifecycle),
		capture.WithLogger(logger),
		capture.OnEvent(t.Forward),
	)

	t.Attach(loop)
	t.Restore(saved)

	return t.Run(ctx.Context)
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	// Override the default version printer
	oldVersionPrinter := cli.VersionPrinter
	cli.VersionPrinter = func(c *cli.Context) {
		oldVersionPrinter(c)
		fmt.Printf(
			"https://github.com/ayoisaiah/moodmap/releases/%s\n",
			c.App.Version,
		)
	}

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if MOODMAP_NO_COLOR is set
	if _, exists := os.LookupEnv(envMoodmapNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	err := config.InitializePaths()
	if err != nil {
		return err
	}

	setupLogging(ctx.Bool("debug"))

	slog.InfoContext(ctx.Context, "starting moodmap", slog.String("version", config.Version))

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting moodmap")

	if logFile != nil {
		return logFile.Close()
	}

	return nil
}
