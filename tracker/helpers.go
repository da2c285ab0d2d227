package tracker

import (
	"errors"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ayoisaiah/moodmap/internal/camera"
	"github.com/ayoisaiah/moodmap/internal/classifier"
	"github.com/ayoisaiah/moodmap/internal/heatmap"
)

const intensityStep = 0.05

// Approximate pixel size of a terminal cell, used to turn marker sizes into
// cells.
const (
	cellWidth  = 8
	cellHeight = 16
)

// fadingWeight dims markers that are on their way out.
const fadingWeight = 0.35

// setIntensity updates the heatmap intensity, snapped to the slider step and
// kept within the allowed range.
func (t *Tracker) setIntensity(v float64) {
	v = math.Round(v/intensityStep) * intensityStep
	t.intensity = heatmap.ClampIntensity(math.Round(v*100) / 100)
}

// bannerText is the message shown to the user for a capture error.
func bannerText(err error) string {
	switch {
	case errors.Is(err, camera.ErrPermissionDenied):
		return "Could not access webcam. Please check permissions and try again."
	case errors.Is(err, camera.ErrNoDevice):
		return "No webcam found. Check the camera command in your config file."
	case errors.Is(err, camera.ErrDeviceLost):
		return "The webcam stopped responding. Tracking has been paused."
	case errors.Is(err, classifier.ErrClassifier):
		return "Failed to analyze emotion. Please try again later."
	default:
		return err.Error()
	}
}

type cell struct {
	color  string
	weight float64
	ch     rune
}

// canvas is a grid of terminal cells that markers are blended into.
type canvas struct {
	cells  [][]cell
	width  int
	height int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{
		width:  max(width, 0),
		height: max(height, 0),
	}

	c.cells = make([][]cell, c.height)
	for y := range c.cells {
		c.cells[y] = make([]cell, c.width)
	}

	return c
}

// shade maps a blend weight to a block character.
func shade(w float64) rune {
	switch {
	case w >= 0.75:
		return '█'
	case w >= 0.5:
		return '▓'
	case w >= 0.25:
		return '▒'
	case w > 0.05:
		return '░'
	default:
		return 0
	}
}

// plot draws m as an ellipse: a solid core the size of the marker and a halo
// that thins out over the blur radius. Where markers overlap the strongest
// one wins.
func (c *canvas) plot(m heatmap.Marker) {
	radius := m.Size * m.Scale / 2
	outer := radius + m.Blur

	rx := int(math.Ceil(outer / cellWidth))
	ry := int(math.Ceil(outer / cellHeight))

	strength := m.Color.A
	if m.Phase == heatmap.Fading {
		strength *= fadingWeight
	}

	for y := m.Y - ry; y <= m.Y+ry; y++ {
		if y < 0 || y >= c.height {
			continue
		}

		for x := m.X - rx; x <= m.X+rx; x++ {
			if x < 0 || x >= c.width {
				continue
			}

			d := math.Hypot(
				float64(x-m.X)*cellWidth,
				float64(y-m.Y)*cellHeight,
			)
			if d > outer {
				continue
			}

			w := 1.0
			if d > radius && m.Blur > 0 {
				w = 1 - (d-radius)/m.Blur
			}

			w *= strength

			ch := shade(w)
			if ch == 0 || w <= c.cells[y][x].weight {
				continue
			}

			c.cells[y][x] = cell{
				ch:     ch,
				color:  m.Color.Hex(),
				weight: w,
			}
		}
	}
}

// String renders the canvas, one line per row.
func (c *canvas) String() string {
	lines := make([]string, c.height)

	for y, row := range c.cells {
		var (
			line  strings.Builder
			run   []rune
			color string
		)

		flush := func() {
			if len(run) == 0 {
				return
			}

			if color == "" {
				line.WriteString(string(run))
			} else {
				line.WriteString(
					lipgloss.NewStyle().
						Foreground(lipgloss.Color(color)).
						Render(string(run)),
				)
			}

			run = run[:0]
		}

		for _, cl := range row {
			ch := cl.ch
			if ch == 0 {
				ch = ' '
			}

			if cl.color != color {
				flush()
				color = cl.color
			}

			run = append(run, ch)
		}

		flush()

		lines[y] = line.String()
	}

	return strings.Join(lines, "\n")
}
