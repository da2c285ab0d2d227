// Package session holds the in-memory emotion history and live heatmap points
// for a tracking session
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/ayoisaiah/moodmap/internal/apperr"
	"github.com/ayoisaiah/moodmap/internal/models"
)

// ErrNoneSample is returned when Append receives a sample without a
// detected emotion. Such samples belong in the live slot only.
var ErrNoneSample = &apperr.Error{
	Message: "only samples with a detected emotion can be recorded",
}

// Store is the single source of truth for a session. It is safe for
// concurrent use.
type Store struct {
	now     func() time.Time
	points  map[int64]models.Point
	live    *models.Sample
	history []models.Sample
	lastID  int64
	mu      sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for id generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		points: make(map[int64]models.Point),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// nextID returns an id that is strictly greater than any issued before.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}

	s.lastID = id

	return id
}

// Append records sample in the history and creates its heatmap point at pos.
func (s *Store) Append(
	sample models.Sample,
	pos models.Position,
) (models.Point, error) {
	if sample.Emotion == models.None || !sample.Emotion.Valid() {
		return models.Point{}, ErrNoneSample
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// history must stay chronological
	if n := len(s.history); n > 0 && sample.Timestamp < s.history[n-1].Timestamp {
		sample.Timestamp = s.history[n-1].Timestamp
	}

	p := models.Point{
		Sample: sample,
		X:      pos.X,
		Y:      pos.Y,
		ID:     s.nextID(),
	}

	s.history = append(s.history, sample)
	s.points[p.ID] = p

	return p, nil
}

// SetLive updates the most recent observation shown to the user without
// touching the history or the points.
func (s *Store) SetLive(sample models.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = &sample
}

// Live returns the most recent observation, if any.
func (s *Store) Live() (models.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.live == nil {
		return models.Sample{}, false
	}

	return *s.live, true
}

func (s *Store) ClearLive() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = nil
}

// RemovePoint deletes a live point. Removing an unknown id is a no-op.
func (s *Store) RemovePoint(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.points, id)
}

// Point looks up a live point.
func (s *Store) Point(id int64) (models.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.points[id]

	return p, ok
}

// Len returns the number of samples in the history.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.history)
}

// Snapshot returns a copy of the session. Points are ordered by id.
func (s *Store) Snapshot() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := models.SessionState{
		History: slices.Clone(s.history),
		Points:  make([]models.Point, 0, len(s.points)),
	}

	for _, p := range s.points {
		state.Points = append(state.Points, p)
	}

	slices.SortFunc(state.Points, func(a, b models.Point) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}

		return 0
	})

	return state
}

// Restore replaces the current session wholesale. Samples without an emotion
// and points without a matching history entry are dropped.
func (s *Store) Restore(history []models.Sample, points []models.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = make([]models.Sample, 0, len(history))
	s.points = make(map[int64]models.Point, len(points))
	s.live = nil
	s.lastID = 0

	recorded := make(map[models.Sample]int, len(history))

	for _, sample := range history {
		if sample.Emotion == models.None || !sample.Emotion.Valid() {
			continue
		}

		s.history = append(s.history, sample)
		recorded[sample]++
	}

	for _, p := range points {
		if recorded[p.Sample] == 0 {
			continue
		}

		recorded[p.Sample]--

		s.points[p.ID] = p

		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}
}

// Reset discards the session and starts a new empty one.
func (s *Store) Reset() {
	s.Restore(nil, nil)
}
