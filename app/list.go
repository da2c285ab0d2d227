package app

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/moodmap/internal/models"
	"github.com/ayoisaiah/moodmap/internal/ui"
	"github.com/ayoisaiah/moodmap/stats"
)

const (
	noSamplesMsg = "No detections found for the specified time range"
)

// filterSamples keeps the samples that fall within opts.
func filterSamples(history []models.Sample, opts stats.Options) []models.Sample {
	var out []models.Sample

	for _, s := range history {
		if opts.Includes(s.Time()) {
			out = append(out, s)
		}
	}

	return out
}

// printSamplesTable prints a table of detections to w.
func printSamplesTable(w io.Writer, samples []models.Sample) {
	tableBody := make([][]string, len(samples))

	for i := range samples {
		s := samples[i]

		row := []string{
			fmt.Sprintf("%d", i+1),
			s.Time().Local().Format("Jan 02, 2006 03:04:05 PM"),
			ui.Emotion(s.Emotion, s.Emotion.Title()),
			fmt.Sprintf("%.0f%%", s.Confidence*100),
		}

		tableBody[i] = row
	}

	tableBody = append([][]string{
		{"#", "TIME", "EMOTION", "CONFIDENCE"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}

// listSamples prints out a table of detections.
func listSamples(w io.Writer, samples []models.Sample) {
	if len(samples) == 0 {
		pterm.Info.Println(noSamplesMsg)
		return
	}

	printSamplesTable(w, samples)
}
