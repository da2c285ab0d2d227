package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/moodmap/internal/config"
	"github.com/ayoisaiah/moodmap/store"
)

// discardSession deletes the saved session. Unless skipConfirm is set, it
// requests for confirmation before proceeding with the operation.
func discardSession(
	db store.DB,
	w io.Writer,
	r io.Reader,
	skipConfirm bool,
) error {
	saved, err := db.LoadOnStartup()
	if err != nil {
		return err
	}

	if saved == nil {
		pterm.Info.Println("There is no saved session")
		return nil
	}

	if !skipConfirm {
		printSamplesTable(w, saved.History)

		warning := pterm.Warning.Sprint(
			"The above session will be deleted permanently. Press ENTER to proceed",
		)

		fmt.Fprint(w, warning)

		reader := bufio.NewReader(r)

		_, _ = reader.ReadString('\n')
	}

	err = db.Discard()
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"Discarded %d detections",
		len(saved.History),
	)

	return nil
}

// discardAction handles the discard command.
func discardAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath(), slog.Default())
	if err != nil {
		return err
	}

	return discardSession(db, config.Stdout, config.Stdin, ctx.Bool("yes"))
}
