package ui

import (
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/moodmap/internal/heatmap"
	"github.com/ayoisaiah/moodmap/internal/models"
)

var DarkTheme bool

func Green(a any) string {
	if DarkTheme {
		return pterm.LightGreen(a)
	}

	return pterm.Green(a)
}

func Blue(a any) string {
	if DarkTheme {
		return pterm.LightBlue(a)
	}

	return pterm.Blue(a)
}

// Emotion prints a in the heatmap colour of e.
func Emotion(e models.Emotion, a any) string {
	c := heatmap.BaseColor(e)

	return pterm.NewRGB(c.R, c.G, c.B).Sprint(a)
}
