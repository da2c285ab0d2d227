package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayoisaiah/moodmap/app"
	"github.com/ayoisaiah/moodmap/internal/config"
	"github.com/ayoisaiah/moodmap/report"
)

func run(ctx context.Context, args []string) error {
	err := config.LoadEnvFiles(".env")
	if err != nil {
		return err
	}

	return app.Get().RunContext(ctx, args)
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	err := run(ctx, os.Args)

	stop()

	if err != nil {
		report.Quit(err)
	}
}
