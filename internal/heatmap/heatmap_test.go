package heatmap

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/moodmap/internal/models"
)

type removals struct {
	ids []int64
	mu  sync.Mutex
}

func (r *removals) RemovePoint(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ids = append(r.ids, id)
}

func (r *removals) list() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]int64(nil), r.ids...)
}

func point(id int64, e models.Emotion, c float64) models.Point {
	return models.Point{
		Sample: models.Sample{Emotion: e, Confidence: c, Timestamp: id},
		X:      10,
		Y:      20,
		ID:     id,
	}
}

func newTestLifecycle() (*Lifecycle, *clockwork.FakeClock, *removals) {
	c := clockwork.NewFakeClockAt(time.UnixMilli(0))
	r := &removals{}

	return NewLifecycle(r, c, DefaultDwell, DefaultFade), c, r
}

// waitPhase waits for the timer callbacks fired by the fake clock to run.
func waitPhase(t *testing.T, l *Lifecycle, id int64, want Phase) {
	t.Helper()

	require.Eventually(t, func() bool {
		return l.Phase(id) == want
	}, time.Second, time.Millisecond, "point %d never became %s", id, want)
}

func assertNoRemovals(t *testing.T, r *removals) {
	t.Helper()

	assert.Never(t, func() bool {
		return len(r.list()) > 0
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestLifecycleTimeline(t *testing.T) {
	l, c, r := newTestLifecycle()

	l.Track(point(1, models.Happiness, 0.9))
	assert.Equal(t, Fresh, l.Phase(1))

	c.Advance(3999 * time.Millisecond)
	assert.Equal(t, Fresh, l.Phase(1))

	c.Advance(1 * time.Millisecond)
	waitPhase(t, l, 1, Fading)
	assert.Empty(t, r.list(), "fading is a visual transition only")

	c.Advance(999 * time.Millisecond)
	assert.Equal(t, Fading, l.Phase(1))

	c.Advance(1 * time.Millisecond)
	waitPhase(t, l, 1, Gone)

	require.Eventually(t, func() bool {
		return len(r.list()) == 1
	}, time.Second, time.Millisecond)

	assert.Equal(t, []int64{1}, r.list())
	assert.Equal(t, 0, l.Len())
}

func TestLifecycleCancel(t *testing.T) {
	l, c, r := newTestLifecycle()

	l.Track(point(1, models.Anger, 0.5))
	c.Advance(DefaultDwell)
	waitPhase(t, l, 1, Fading)

	l.Cancel(1)
	assert.Equal(t, Gone, l.Phase(1))

	c.Advance(10 * time.Second)
	assertNoRemovals(t, r)
}

func TestLifecycleResetCancelsAll(t *testing.T) {
	l, c, r := newTestLifecycle()

	for i := int64(1); i <= 3; i++ {
		l.Track(point(i, models.Neutral, 0.2))
	}

	l.Reset()
	c.Advance(time.Minute)

	assertNoRemovals(t, r)
	assert.Equal(t, 0, l.Len())
}

func TestLifecycleRetrackRestartsTimers(t *testing.T) {
	l, c, r := newTestLifecycle()

	l.Track(point(7, models.Sadness, 0.3))
	c.Advance(3 * time.Second)

	// the id is reused after a reset; the first timers must not fire for it
	l.Track(point(7, models.Sadness, 0.3))
	c.Advance(2500 * time.Millisecond)

	assert.Equal(t, Fresh, l.Phase(7))
	assertNoRemovals(t, r)

	c.Advance(1500 * time.Millisecond)
	waitPhase(t, l, 7, Fading)

	c.Advance(DefaultFade)
	waitPhase(t, l, 7, Gone)

	require.Eventually(t, func() bool {
		return len(r.list()) == 1
	}, time.Second, time.Millisecond)

	assert.Equal(t, []int64{7}, r.list())
}

func TestSizeAndBlur(t *testing.T) {
	assert.InDelta(t, 76.8, Size(0.92), 1e-9)
	assert.InDelta(t, 40, Size(0), 1e-9)
	assert.InDelta(t, 80, Size(1), 1e-9)

	assert.InDelta(t, 10, Blur(0), 1e-9)
	assert.InDelta(t, 2, Blur(1), 1e-9)
	assert.Less(t, Blur(0.9), Blur(0.1))
}

func TestColorIntensity(t *testing.T) {
	c := Color(models.Happiness, 0.5)
	assert.Equal(t, "#FACC15", c.Hex())
	assert.InDelta(t, 0.5, c.A, 1e-9)

	n := Color(models.Neutral, 0.5)
	assert.InDelta(t, 0.4, n.A, 1e-9)

	none := Color(models.None, 1)
	assert.InDelta(t, 0, none.A, 1e-9)

	clamped := Color(models.Anger, 5)
	assert.InDelta(t, 1, clamped.A, 1e-9)

	low := Color(models.Anger, 0)
	assert.InDelta(t, 0.1, low.A, 1e-9)

	assert.Equal(t, "rgba(59, 130, 246, 0.8)", BaseColor(models.Sadness).String())
}

func TestMarkerFor(t *testing.T) {
	p := point(1, models.Happiness, 0.92)
	p.X, p.Y = 120, 340

	fresh := MarkerFor(p, Fresh, 0.7)
	assert.Equal(t, 120, fresh.X)
	assert.Equal(t, 340, fresh.Y)
	assert.InDelta(t, 76.8, fresh.Size, 1e-9)
	assert.InDelta(t, 1, fresh.Opacity, 1e-9)
	assert.InDelta(t, 1, fresh.Scale, 1e-9)

	fading := MarkerFor(p, Fading, 0.7)
	assert.InDelta(t, 0, fading.Opacity, 1e-9)
	assert.InDelta(t, 1.25, fading.Scale, 1e-9)
}
