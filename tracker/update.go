package tracker

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/davecgh/go-spew/spew"

	"github.com/ayoisaiah/moodmap/internal/camera"
	"github.com/ayoisaiah/moodmap/internal/capture"
)

// handleEvent applies a capture loop event and keeps listening for the next
// one.
func (t *Tracker) handleEvent(e capture.Event) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case capture.EventStateChanged:
		t.state = e.State
		if e.State == capture.Idle {
			t.busy = false
		}

	case capture.EventBusy:
		t.busy = e.Busy
		// a new cycle replaces the message of the previous one
		if e.Busy {
			t.banner = ""
		}

	case capture.EventError:
		t.banner = bannerText(e.Err)

		if errors.Is(e.Err, camera.ErrDeviceLost) && t.opts.Notifications.Enabled {
			go t.notifyDeviceLost()
		}

	case capture.EventSample:
	}

	return t, t.listen()
}

func (t *Tracker) notifyDeviceLost() {
	err := t.notify("moodmap", "Tracking stopped: the webcam stopped responding")
	if err != nil {
		t.logger.Error("unable to display notification", slog.Any("error", err))
	}
}

func (t *Tracker) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.quit):
		return t, tea.Batch(tea.ClearScreen, tea.Quit)

	case key.Matches(msg, defaultKeymap.toggle):
		if t.enabling || t.loop.State() == capture.Tracking {
			t.enabling = false
			t.loop.Disable()
			t.state = capture.Idle

			return t, nil
		}

		t.enabling = true

		return t, t.enable()

	case key.Matches(msg, defaultKeymap.intensityUp):
		t.setIntensity(t.intensity + intensityStep)

	case key.Matches(msg, defaultKeymap.intensityDown):
		t.setIntensity(t.intensity - intensityStep)

	case key.Matches(msg, defaultKeymap.analytics):
		t.analytics = !t.analytics

	case key.Matches(msg, defaultKeymap.esc):
		if t.banner != "" {
			t.banner = ""
			break
		}

		t.analytics = false
	}

	return t, nil
}

func (t *Tracker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case eventMsg:
		t.logger.Debug(spew.Sdump(msg))

		return t.handleEvent(capture.Event(msg))

	case enabledMsg:
		t.enabling = false
		t.state = t.loop.State()

		if msg.err != nil {
			t.logger.Debug("tracking not started", slog.Any("error", msg.err))
		}

		return t, nil

	case frameMsg:
		return t, frame()

	case spinner.TickMsg:
		t.spinner, cmd = t.spinner.Update(msg)

		return t, cmd

	case tea.MouseMsg:
		t.loop.Pointer().Set(msg.X, msg.Y)

		return t, nil

	case tea.KeyMsg:
		t.logger.Debug(spew.Sdump(msg))

		return t.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height

		t.progress.Width = msg.Width - padding*2 - 4
		if t.progress.Width > maxWidth {
			t.progress.Width = maxWidth
		}

		return t, nil

		// FrameMsg is sent when the progress bar wants to animate itself
	case progress.FrameMsg:
		var progressModel tea.Model

		progressModel, cmd = t.progress.Update(msg)
		t.progress, _ = progressModel.(progress.Model)

		return t, cmd
	}

	return t, nil
}
