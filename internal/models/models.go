// Package models defines the emotion observations recorded by moodmap
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Emotion is one of a closed set of facial expressions.
type Emotion string

const (
	Happiness Emotion = "happiness"
	Sadness   Emotion = "sadness"
	Surprise  Emotion = "surprise"
	Anger     Emotion = "anger"
	Neutral   Emotion = "neutral"
	None      Emotion = "none"
)

// Emotions lists every valid emotion in display order.
var Emotions = []Emotion{
	Happiness,
	Sadness,
	Surprise,
	Anger,
	Neutral,
	None,
}

// ParseEmotion converts s to an Emotion. Values outside the enumeration are
// rejected.
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown emotion %q", s)
	}

	return e, nil
}

func (e Emotion) Valid() bool {
	switch e {
	case Happiness, Sadness, Surprise, Anger, Neutral, None:
		return true
	}

	return false
}

// Title returns the capitalised name used in charts.
func (e Emotion) Title() string {
	if e == "" {
		return ""
	}

	return strings.ToUpper(string(e[:1])) + string(e[1:])
}

func (e *Emotion) UnmarshalJSON(b []byte) error {
	var s string

	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}

	parsed, err := ParseEmotion(s)
	if err != nil {
		return err
	}

	*e = parsed

	return nil
}

// Result is a single classifier verdict.
type Result struct {
	Emotion    Emotion `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Sample is one classified emotion observation.
type Sample struct {
	Emotion    Emotion `json:"emotion"`
	Confidence float64 `json:"confidence"`
	// Timestamp is the capture time in milliseconds since the Unix epoch
	Timestamp int64 `json:"timestamp"`
}

// NewSample stamps a classifier result with t.
func NewSample(r Result, t time.Time) Sample {
	return Sample{
		Emotion:    r.Emotion,
		Confidence: r.Confidence,
		Timestamp:  t.UnixMilli(),
	}
}

func (s Sample) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Position is a screen coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point is a screen-positioned heatmap marker tied to one sample.
type Point struct {
	Sample
	X  int   `json:"x"`
	Y  int   `json:"y"`
	ID int64 `json:"id"`
}

func (p Point) Position() Position {
	return Position{X: p.X, Y: p.Y}
}

// SessionState is the full history plus the live heatmap points.
type SessionState struct {
	History []Sample `json:"history"`
	Points  []Point  `json:"points"`
}
