// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"regexp"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
	"github.com/markusmobius/go-dateparser/date"

	"github.com/ayoisaiah/moodmap/internal/apperr"
)

var errParseTime = &apperr.Error{
	Message: "unable to understand the time %q",
}

// timeOfDay matches inputs that name a clock time or a sub-day offset.
var timeOfDay = regexp.MustCompile(
	`(?i)\d:\d|\b(hours?|hrs?|minutes?|mins?|seconds?|secs?|am|pm|noon|midnight)\b`,
)

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RoundToEnd resets the given time to the end of the day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// parse reads absolute or relative dates and reports whether the input
// names a whole day or longer rather than a time of day.
func parse(s string, now time.Time) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}

	cfg := &dps.Configuration{
		CurrentTime: now,
	}

	dt, err := dps.Parse(cfg, s)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false, errParseTime.Fmt(s)
	}

	switch dt.Period {
	case date.Day, date.Month, date.Year:
		return dt.Time, !timeOfDay.MatchString(s), nil
	default:
		return dt.Time, false, nil
	}
}

// FromStr parses absolute or relative dates such as "2024-03-01 14:00",
// "yesterday" or "2 hours ago" relative to now. An empty string yields the
// zero time.
func FromStr(s string, now time.Time) (time.Time, error) {
	t, _, err := parse(s, now)

	return t, err
}

// Since parses the start of a reporting window. Days without a time of day
// start at midnight.
func Since(s string, now time.Time) (time.Time, error) {
	t, wholeDay, err := parse(s, now)
	if err != nil || !wholeDay {
		return t, err
	}

	return RoundToStart(t), nil
}

// Until parses the end of a reporting window. Days without a time of day
// end at their last second.
func Until(s string, now time.Time) (time.Time, error) {
	t, wholeDay, err := parse(s, now)
	if err != nil || !wholeDay {
		return t, err
	}

	return RoundToEnd(t), nil
}
