// Package heatmap manages the lifetime of heatmap points and derives how each
// point is drawn
package heatmap

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ayoisaiah/moodmap/internal/models"
)

const (
	DefaultDwell = 4 * time.Second
	DefaultFade  = 1 * time.Second
)

// Phase is the lifecycle state of a heatmap point.
type Phase int

const (
	Gone Phase = iota
	Fresh
	Fading
)

func (p Phase) String() string {
	switch p {
	case Fresh:
		return "fresh"
	case Fading:
		return "fading"
	}

	return "gone"
}

// Remover deletes points from the session once they are gone.
type Remover interface {
	RemovePoint(id int64)
}

type entry struct {
	timer clockwork.Timer
	id    int64
	phase Phase
}

// Lifecycle drives each tracked point from Fresh to Fading after the dwell
// interval and from Fading to Gone after the fade interval, removing it from
// the session on the final transition.
type Lifecycle struct {
	clock   clockwork.Clock
	remover Remover
	entries map[int64]*entry
	dwell   time.Duration
	fade    time.Duration
	mu      sync.Mutex
}

// NewLifecycle returns a Lifecycle that removes points through r. Zero
// durations fall back to the defaults.
func NewLifecycle(
	r Remover,
	c clockwork.Clock,
	dwell, fade time.Duration,
) *Lifecycle {
	if c == nil {
		c = clockwork.NewRealClock()
	}

	if dwell <= 0 {
		dwell = DefaultDwell
	}

	if fade <= 0 {
		fade = DefaultFade
	}

	return &Lifecycle{
		clock:   c,
		remover: r,
		entries: make(map[int64]*entry),
		dwell:   dwell,
		fade:    fade,
	}
}

// Track starts the lifecycle of p. Tracking an id that is already tracked
// restarts its lifecycle.
func (l *Lifecycle) Track(p models.Point) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.entries[p.ID]; ok {
		old.timer.Stop()
	}

	e := &entry{
		id:    p.ID,
		phase: Fresh,
	}

	e.timer = l.clock.AfterFunc(l.dwell, func() {
		l.startFading(e)
	})

	l.entries[p.ID] = e
}

func (l *Lifecycle) startFading(e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// the entry was cancelled or replaced while the timer was in flight
	if l.entries[e.id] != e || e.phase != Fresh {
		return
	}

	e.phase = Fading
	e.timer = l.clock.AfterFunc(l.fade, func() {
		l.expire(e)
	})
}

func (l *Lifecycle) expire(e *entry) {
	l.mu.Lock()

	if l.entries[e.id] != e || e.phase != Fading {
		l.mu.Unlock()
		return
	}

	e.phase = Gone
	delete(l.entries, e.id)

	l.mu.Unlock()

	l.remover.RemovePoint(e.id)
}

// Phase reports the lifecycle state of a point. Untracked ids are Gone.
func (l *Lifecycle) Phase(id int64) Phase {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[id]
	if !ok {
		return Gone
	}

	return e.phase
}

// Cancel stops the pending transitions of a point without removing it from
// the session.
func (l *Lifecycle) Cancel(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[id]; ok {
		e.timer.Stop()
		delete(l.entries, id)
	}
}

// Reset cancels every tracked point.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, e := range l.entries {
		e.timer.Stop()
		delete(l.entries, id)
	}
}

// Len returns the number of points still being tracked.
func (l *Lifecycle) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}
