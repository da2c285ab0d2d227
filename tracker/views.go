package tracker

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/ayoisaiah/moodmap/internal/capture"
	"github.com/ayoisaiah/moodmap/internal/heatmap"
	"github.com/ayoisaiah/moodmap/stats"
)

// overlayView draws the live heatmap points.
func (t *Tracker) overlayView(width, height int) string {
	c := newCanvas(width, height)

	for _, p := range t.sessions.Snapshot().Points {
		phase := t.lifecycle.Phase(p.ID)
		if phase == heatmap.Gone {
			continue
		}

		c.plot(heatmap.MarkerFor(p, phase, t.intensity))
	}

	return c.String()
}

func (t *Tracker) statusView() string {
	var s strings.Builder

	switch {
	case t.busy:
		s.WriteString(t.spinner.View() + " Analyzing...")
	case t.enabling:
		s.WriteString(t.spinner.View() + " Starting camera...")
	case t.state == capture.Tracking:
		s.WriteString(t.style.active.Render("●") + " Tracking active")
	default:
		s.WriteString(t.style.paused.Render("●") + " Tracking paused")
	}

	s.WriteString(t.style.hint.Render("  ·  Live emotion: "))

	live, ok := t.sessions.Live()
	if !ok {
		s.WriteString(t.style.emotion.Render("N/A"))
		s.WriteString(t.style.hint.Render(" (--%)"))

		return s.String()
	}

	s.WriteString(t.style.emotion.Render(live.Emotion.Title()))
	s.WriteString(t.style.hint.Render(
		fmt.Sprintf(" (%.0f%%)", live.Confidence*100),
	))

	return s.String()
}

func (t *Tracker) intensityView() string {
	return fmt.Sprintf(
		"Intensity %s %s",
		t.progress.ViewAs(t.intensity),
		t.style.hint.Render(fmt.Sprintf("%.0f%%", t.intensity*100)),
	)
}

func (t *Tracker) helpView() string {
	return t.help.ShortHelpView([]key.Binding{
		defaultKeymap.toggle,
		defaultKeymap.intensityDown,
		defaultKeymap.intensityUp,
		defaultKeymap.analytics,
		defaultKeymap.esc,
		defaultKeymap.quit,
	})
}

// controlsView is the footer below the overlay. It always has footerHeight
// lines so the overlay does not jump when the banner comes and goes.
func (t *Tracker) controlsView() string {
	banner := ""
	if t.banner != "" {
		banner = t.style.banner.Render(t.banner)
	}

	return strings.Join([]string{
		banner,
		t.statusView(),
		t.intensityView(),
		t.helpView(),
	}, "\n")
}

func (t *Tracker) analyticsView() string {
	var buf bytes.Buffer

	summary := stats.Compute(t.sessions.Snapshot().History, stats.Options{})

	stats.Render(&buf, summary)

	var s strings.Builder

	s.WriteString(t.style.title.Render("Emotion Analytics"))
	s.WriteString("\n\n")
	s.WriteString(strings.TrimRight(buf.String(), "\n"))
	s.WriteString("\n\n")
	s.WriteString(t.help.ShortHelpView([]key.Binding{
		defaultKeymap.esc,
		defaultKeymap.quit,
	}))

	return s.String()
}

func (t *Tracker) View() string {
	if t.analytics {
		return t.style.base.Render(t.analyticsView())
	}

	overlay := t.overlayView(t.width, t.height-footerHeight)
	if overlay == "" {
		return t.controlsView()
	}

	return overlay + "\n" + t.controlsView()
}
