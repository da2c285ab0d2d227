// Package stats reports moodmap emotion statistics
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/moodmap/internal/models"
	"github.com/ayoisaiah/moodmap/internal/ui"
)

const (
	barChartChar = "▇"
	noDataMsg    = "No emotion data collected yet."
	noDataHint   = "Start tracking to see your emotional analytics."
)

// charted lists the emotions that appear in reports, in display order.
var charted = []models.Emotion{
	models.Happiness,
	models.Sadness,
	models.Surprise,
	models.Anger,
	models.Neutral,
}

// Options bound the samples included in a report. Zero values are unbounded.
type Options struct {
	Since time.Time
	Until time.Time
}

// Includes reports whether t falls within the window.
func (o Options) Includes(t time.Time) bool {
	if !o.Since.IsZero() && t.Before(o.Since) {
		return false
	}

	if !o.Until.IsZero() && t.After(o.Until) {
		return false
	}

	return true
}

// EmotionStat summarises one emotion.
type EmotionStat struct {
	Emotion       models.Emotion `json:"emotion"`
	Name          string         `json:"name"`
	Count         int            `json:"count"`
	Share         float64        `json:"share"`
	AvgConfidence float64        `json:"avg_confidence"`
}

// Summary is the analytics view of a history.
type Summary struct {
	First    *time.Time     `json:"first,omitempty"`
	Last     *time.Time     `json:"last,omitempty"`
	Dominant models.Emotion `json:"dominant,omitempty"`
	Emotions []EmotionStat  `json:"emotions"`
	Total    int            `json:"total"`
	// Span is the time between the first and last sample in seconds
	Span float64 `json:"span_seconds"`
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Compute counts the samples in history that fall within opts. Samples
// without an emotion are never counted.
func Compute(history []models.Sample, opts Options) Summary {
	counts := make(map[models.Emotion]int, len(charted))
	confidence := make(map[models.Emotion]float64, len(charted))

	var s Summary

	var first, last time.Time

	for _, sample := range history {
		if sample.Emotion == models.None || !sample.Emotion.Valid() {
			continue
		}

		t := sample.Time()
		if !opts.Includes(t) {
			continue
		}

		counts[sample.Emotion]++
		confidence[sample.Emotion] += sample.Confidence
		s.Total++

		if first.IsZero() || t.Before(first) {
			first = t
		}

		if last.IsZero() || t.After(last) {
			last = t
		}
	}

	s.Emotions = make([]EmotionStat, 0, len(charted))

	best := 0

	for _, e := range charted {
		stat := EmotionStat{
			Emotion: e,
			Name:    e.Title(),
			Count:   counts[e],
		}

		if stat.Count > 0 {
			stat.AvgConfidence = round(confidence[e] / float64(stat.Count))
			stat.Share = round(float64(stat.Count) / float64(s.Total))
		}

		// ties go to the emotion listed first
		if stat.Count > best {
			best = stat.Count
			s.Dominant = e
		}

		s.Emotions = append(s.Emotions, stat)
	}

	if s.Total > 0 {
		first, last = first.UTC(), last.UTC()
		s.First = &first
		s.Last = &last
		s.Span = last.Sub(first).Seconds()
	}

	return s
}

// ToJSON encodes the summary for export.
func (s Summary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// SpanString is the session span in human readable form.
func (s Summary) SpanString() string {
	d := time.Duration(s.Span * float64(time.Second))

	//nolint:gomnd // limit to first 2 units
	return durafmt.Parse(d.Round(time.Second)).LimitToUnit("hours").LimitFirstN(2).String()
}

func getBarChart(s Summary) string {
	header := ui.Blue("\nDetections by emotion")

	bars := make(pterm.Bars, 0, len(s.Emotions))

	for _, e := range s.Emotions {
		bars = append(bars, pterm.Bar{
			Label: e.Name,
			Value: e.Count,
		})
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return header + chart
}

func getConfidence(s Summary) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("\n%s\n", ui.Blue("Average confidence")))

	for _, e := range s.Emotions {
		if e.Count == 0 {
			continue
		}

		builder.WriteString(fmt.Sprintf(
			"%s: %s\n",
			e.Name,
			ui.Green(fmt.Sprintf("%.0f%%", e.AvgConfidence*100)),
		))
	}

	return builder.String()
}

// getSummary retrieves the totals for the reporting period.
func getSummary(s Summary) string {
	header := fmt.Sprintf("%s\n", ui.Blue("Summary"))

	total := fmt.Sprintln("Total detections:", ui.Green(s.Total))
	dominant := fmt.Sprintln("Dominant emotion:", ui.Emotion(s.Dominant, s.Dominant.Title()))
	span := fmt.Sprintln("Session span:", ui.Green(s.SpanString()))

	return header + total + dominant + span
}

// Render writes the terminal report for s.
func Render(w io.Writer, s Summary) {
	if s.Total == 0 {
		fmt.Fprintln(w, noDataMsg)
		fmt.Fprintln(w, noDataHint)

		return
	}

	period := fmt.Sprintf(
		"Reporting period: %s - %s",
		s.First.Local().Format("Jan 02, 2006 15:04"),
		s.Last.Local().Format("Jan 02, 2006 15:04"),
	)

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintfln(period)

	output := fmt.Sprint(
		header,
		getSummary(s),
		getConfidence(s),
		getBarChart(s),
	)

	fmt.Fprintln(w, strings.TrimSpace(output))
}
