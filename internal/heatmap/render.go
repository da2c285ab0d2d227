package heatmap

import (
	"fmt"
	"math"

	"github.com/ayoisaiah/moodmap/internal/models"
)

const (
	MinIntensity     = 0.1
	MaxIntensity     = 1.0
	DefaultIntensity = 0.7
)

// RGBA is a colour with a [0, 1] alpha channel.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// Hex returns the colour without its alpha channel, e.g. "#FACC15".
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatAlpha(c.A))
}

func formatAlpha(a float64) string {
	return fmt.Sprintf("%g", math.Round(a*1000)/1000)
}

type swatch struct {
	color RGBA
	// scale is applied to the intensity to derive the rendered alpha
	scale float64
}

var palette = map[models.Emotion]swatch{
	models.Happiness: {RGBA{250, 204, 21, 0.8}, 1},
	models.Sadness:   {RGBA{59, 130, 246, 0.8}, 1},
	models.Surprise:  {RGBA{249, 115, 22, 0.8}, 1},
	models.Anger:     {RGBA{239, 68, 68, 0.8}, 1},
	models.Neutral:   {RGBA{156, 163, 175, 0.7}, 0.8},
	models.None:      {RGBA{0, 0, 0, 0}, 0},
}

var fallback = RGBA{255, 255, 255, 0.5}

// BaseColor returns the unscaled colour for an emotion.
func BaseColor(e models.Emotion) RGBA {
	s, ok := palette[e]
	if !ok {
		return fallback
	}

	return s.color
}

// ClampIntensity bounds v to [MinIntensity, MaxIntensity].
func ClampIntensity(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultIntensity
	}

	return math.Min(MaxIntensity, math.Max(MinIntensity, v))
}

// Color returns the colour of an emotion at the given global intensity.
func Color(e models.Emotion, intensity float64) RGBA {
	s, ok := palette[e]
	if !ok {
		return fallback
	}

	c := s.color
	c.A = ClampIntensity(intensity) * s.scale

	return c
}

// Size is the marker diameter in pixels. More confident samples are larger.
func Size(confidence float64) float64 {
	return 40 + confidence*40
}

// Blur is the marker blur radius in pixels. More confident samples are
// sharper.
func Blur(confidence float64) float64 {
	return 10 - confidence*8
}

// Marker describes how a point is drawn.
type Marker struct {
	Color   RGBA
	X       int
	Y       int
	Size    float64
	Blur    float64
	Opacity float64
	Scale   float64
	Phase   Phase
}

// MarkerFor derives the drawing parameters of p in the given phase.
func MarkerFor(p models.Point, phase Phase, intensity float64) Marker {
	m := Marker{
		Color:   Color(p.Emotion, intensity),
		X:       p.X,
		Y:       p.Y,
		Size:    Size(p.Confidence),
		Blur:    Blur(p.Confidence),
		Opacity: 1,
		Scale:   1,
		Phase:   phase,
	}

	if phase != Fresh {
		m.Opacity = 0
		m.Scale = 1.25
	}

	return m
}
