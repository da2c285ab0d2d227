// Package tracker runs the interactive moodmap session: the consent and
// restore prompts followed by the heatmap view
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"

	"github.com/ayoisaiah/moodmap/internal/capture"
	"github.com/ayoisaiah/moodmap/internal/config"
	"github.com/ayoisaiah/moodmap/internal/heatmap"
	"github.com/ayoisaiah/moodmap/internal/models"
	"github.com/ayoisaiah/moodmap/internal/session"
	"github.com/ayoisaiah/moodmap/store"
)

const (
	padding  = 2
	maxWidth = 40

	// footerHeight is the number of lines below the overlay.
	footerHeight = 4

	frameInterval = 200 * time.Millisecond
	eventBuffer   = 64
)

// Loop is the part of the capture loop driven by the UI.
type Loop interface {
	Enable(ctx context.Context) error
	Disable()
	State() capture.State
	Busy() bool
	Pointer() *capture.Pointer
}

type keymap struct {
	toggle        key.Binding
	intensityDown key.Binding
	intensityUp   key.Binding
	analytics     key.Binding
	esc           key.Binding
	quit          key.Binding
}

var defaultKeymap = keymap{
	toggle: key.NewBinding(
		key.WithKeys("t", " "),
		key.WithHelp("t", "toggle tracking"),
	),
	intensityDown: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "fainter"),
	),
	intensityUp: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "stronger"),
	),
	analytics: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "analytics"),
	),
	esc: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "dismiss"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type styles struct {
	base    lipgloss.Style
	title   lipgloss.Style
	hint    lipgloss.Style
	banner  lipgloss.Style
	active  lipgloss.Style
	paused  lipgloss.Style
	emotion lipgloss.Style
}

func newStyles(dark bool) styles {
	hint := lipgloss.Color("240")
	text := lipgloss.Color("235")

	if dark {
		hint = lipgloss.Color("245")
		text = lipgloss.Color("255")
	}

	return styles{
		base:  lipgloss.NewStyle().Padding(1, padding),
		title: lipgloss.NewStyle().Bold(true).Foreground(text),
		hint:  lipgloss.NewStyle().Foreground(hint),
		banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#EF4444")).
			Padding(0, 1),
		active:  lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		paused:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		emotion: lipgloss.NewStyle().Bold(true).Foreground(text),
	}
}

type (
	// eventMsg carries a capture loop event into the update loop.
	eventMsg capture.Event

	// enabledMsg reports the end of a tracking start attempt.
	enabledMsg struct {
		err error
	}

	// frameMsg redraws the overlay so lifecycle phase changes show up.
	frameMsg struct{}
)

// Tracker is the bubbletea model of the main view.
type Tracker struct {
	ctx       context.Context
	loop      Loop
	db        store.DB
	sessions  *session.Store
	lifecycle *heatmap.Lifecycle
	opts      *config.Config
	logger    *slog.Logger
	notify    func(title, message string) error
	events    chan capture.Event
	done      chan struct{}
	style     styles
	banner    string
	help      help.Model
	progress  progress.Model
	spinner   spinner.Model
	width     int
	height    int
	intensity float64
	closeOnce sync.Once
	state     capture.State
	busy      bool
	enabling  bool
	analytics bool
}

// New creates the main view. Attach must be called with the capture loop
// before the tracker runs.
func New(
	cfg *config.Config,
	db store.DB,
	sessions *session.Store,
	lifecycle *heatmap.Lifecycle,
	logger *slog.Logger,
) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Tracker{
		ctx:       context.Background(),
		db:        db,
		sessions:  sessions,
		lifecycle: lifecycle,
		opts:      cfg,
		logger:    logger,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		events:    make(chan capture.Event, eventBuffer),
		done:      make(chan struct{}),
		style:     newStyles(cfg.Display.DarkTheme),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:   s,
		intensity: heatmap.ClampIntensity(cfg.Heatmap.Intensity),
	}
}

// Attach sets the capture loop controlled by the view.
func (t *Tracker) Attach(loop Loop) {
	t.loop = loop
}

// Forward hands a capture loop event to the view. It is meant to be used as
// the loop's event callback and drops events once the view has exited.
func (t *Tracker) Forward(e capture.Event) {
	select {
	case t.events <- e:
	case <-t.done:
	}
}

// Restore loads a saved session into the view.
func (t *Tracker) Restore(saved *models.SessionState) {
	restoreSession(t.sessions, t.lifecycle, saved)
}

func (t *Tracker) listen() tea.Cmd {
	events, done := t.events, t.done

	return func() tea.Msg {
		select {
		case e := <-events:
			return eventMsg(e)
		case <-done:
			return nil
		}
	}
}

func (t *Tracker) enable() tea.Cmd {
	ctx := t.ctx

	return func() tea.Msg {
		return enabledMsg{err: t.loop.Enable(ctx)}
	}
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (t *Tracker) Init() tea.Cmd {
	return tea.Batch(t.listen(), t.spinner.Tick, frame())
}

// shutdown stops tracking and saves the session for the next run.
func (t *Tracker) shutdown() error {
	t.closeOnce.Do(func() {
		close(t.done)
	})

	t.loop.Disable()

	snap := t.sessions.Snapshot()

	t.lifecycle.Reset()

	err := t.db.SaveOnExit(snap.History, snap.Points)
	if err != nil {
		return errSaveFailed.Wrap(err)
	}

	return nil
}

// Run shows the main view until the user quits or ctx is cancelled. The
// session is saved on the way out.
func (t *Tracker) Run(ctx context.Context) error {
	t.ctx = ctx

	p := tea.NewProgram(
		t,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	_, runErr := p.Run()

	return t.exit(ctx, runErr)
}

// exit saves the session once the program has stopped. Being stopped by a
// cancelled ctx, e.g. on SIGTERM, is a normal way out.
func (t *Tracker) exit(ctx context.Context, runErr error) error {
	err := t.shutdown()

	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}

	if runErr != nil {
		return runErr
	}

	return err
}
