package tracker

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/ayoisaiah/moodmap/internal/heatmap"
	"github.com/ayoisaiah/moodmap/internal/models"
	"github.com/ayoisaiah/moodmap/internal/session"
	"github.com/ayoisaiah/moodmap/store"
)

// Prompter asks the questions that precede the main view.
type Prompter interface {
	// Consent reports whether the user allows camera access.
	Consent(model string) (bool, error)
	// Restore reports whether the saved session should be restored.
	Restore(saved *models.SessionState) (bool, error)
}

// FormPrompter asks through huh forms on the terminal.
type FormPrompter struct{}

func (FormPrompter) Consent(model string) (bool, error) {
	allow := true

	err := huh.NewConfirm().
		Title("moodmap requires camera access").
		Description(fmt.Sprintf(
			"A snapshot is sent to %s every few seconds to detect your emotion.\nSnapshots are processed as they are taken and never stored.",
			model,
		)).
		Affirmative("Accept & enable camera").
		Negative("Quit").
		Value(&allow).
		Run()

	return allow, err
}

func (FormPrompter) Restore(saved *models.SessionState) (bool, error) {
	restore := true

	last := saved.History[len(saved.History)-1].Time().Local()

	err := huh.NewSelect[bool]().
		Title("Restore your previous session?").
		Description(fmt.Sprintf(
			"%d detections, the last one on %s",
			len(saved.History),
			last.Format("Jan 02, 2006 at 03:04 PM"),
		)).
		Options(
			huh.NewOption("Restore session", true),
			huh.NewOption("Start new session", false),
		).
		Value(&restore).
		Run()

	return restore, err
}

// Prepare runs the consent gate and then offers to restore a saved session.
// Whatever the answer, the saved session is cleared from the database. The
// returned state is nil when there is nothing to restore.
func Prepare(
	db store.DB,
	p Prompter,
	model string,
) (*models.SessionState, error) {
	ok, err := p.Consent(model)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrConsentDeclined
	}

	saved, err := db.LoadOnStartup()
	if err != nil {
		return nil, errRestoreFailed.Wrap(err)
	}

	if saved == nil {
		return nil, nil
	}

	restore, err := p.Restore(saved)
	if err != nil {
		return nil, err
	}

	err = db.Discard()
	if err != nil {
		return nil, errRestoreFailed.Wrap(err)
	}

	if !restore {
		return nil, nil
	}

	return saved, nil
}

// restoreSession loads saved into the store and gives every surviving point a
// fresh lifecycle. A nil saved session starts a new, empty one.
func restoreSession(
	s *session.Store,
	l *heatmap.Lifecycle,
	saved *models.SessionState,
) {
	l.Reset()

	if saved == nil {
		s.Reset()
		return
	}

	s.Restore(saved.History, saved.Points)

	for _, p := range s.Snapshot().Points {
		l.Track(p)
	}
}
