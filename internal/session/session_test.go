package session

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/moodmap/internal/models"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time {
		return time.UnixMilli(ms)
	}
}

func sample(e models.Emotion, c float64, ts int64) models.Sample {
	return models.Sample{Emotion: e, Confidence: c, Timestamp: ts}
}

func TestAppendRejectsNone(t *testing.T) {
	s := New()

	_, err := s.Append(sample(models.None, 0.9, 1), models.Position{X: 1, Y: 1})

	require.ErrorIs(t, err, ErrNoneSample)

	state := s.Snapshot()
	assert.Empty(t, state.History)
	assert.Empty(t, state.Points)
}

func TestAppendCreatesMatchingPoint(t *testing.T) {
	s := New(WithClock(fixedClock(1000)))

	in := sample(models.Happiness, 0.92, 1000)

	p, err := s.Append(in, models.Position{X: 120, Y: 340})
	require.NoError(t, err)

	assert.Equal(t, 120, p.X)
	assert.Equal(t, 340, p.Y)
	assert.Equal(t, in, p.Sample)

	state := s.Snapshot()
	require.Len(t, state.History, 1)
	require.Len(t, state.Points, 1)
	assert.Equal(t, state.History[0], state.Points[0].Sample)
}

func TestAppendIDsAreUnique(t *testing.T) {
	// a frozen clock would hand out the same millisecond every time
	s := New(WithClock(fixedClock(5000)))

	seen := make(map[int64]bool)

	for i := 0; i < 50; i++ {
		p, err := s.Append(sample(models.Neutral, 0.5, 5000), models.Position{})
		require.NoError(t, err)
		require.False(t, seen[p.ID], "duplicate id %d", p.ID)

		seen[p.ID] = true
	}
}

func TestAppendKeepsHistoryChronological(t *testing.T) {
	s := New()

	_, err := s.Append(sample(models.Anger, 0.4, 2000), models.Position{})
	require.NoError(t, err)

	_, err = s.Append(sample(models.Sadness, 0.4, 1500), models.Position{})
	require.NoError(t, err)

	state := s.Snapshot()
	assert.Equal(t, int64(2000), state.History[1].Timestamp)
	assert.Equal(t, state.History[1], state.Points[1].Sample)
}

func TestSetLiveDoesNotRecord(t *testing.T) {
	s := New()

	s.SetLive(sample(models.None, 0.1, 10))

	live, ok := s.Live()
	require.True(t, ok)
	assert.Equal(t, models.None, live.Emotion)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot().Points)

	s.ClearLive()

	_, ok = s.Live()
	assert.False(t, ok)
}

func TestRemovePointIdempotent(t *testing.T) {
	s := New()

	p, err := s.Append(sample(models.Surprise, 0.7, 1), models.Position{})
	require.NoError(t, err)

	s.RemovePoint(p.ID)
	once := s.Snapshot()

	s.RemovePoint(p.ID)
	twice := s.Snapshot()

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second RemovePoint changed state (-once +twice):\n%s", diff)
	}

	assert.Len(t, twice.History, 1, "history outlives faded points")
	assert.Empty(t, twice.Points)
}

func TestRestoreReplacesState(t *testing.T) {
	s := New(WithClock(fixedClock(10)))

	_, err := s.Append(sample(models.Anger, 0.3, 10), models.Position{})
	require.NoError(t, err)

	s.SetLive(sample(models.Anger, 0.3, 10))

	history := []models.Sample{
		sample(models.Happiness, 0.8, 100),
		sample(models.None, 0.2, 150),
		sample(models.Sadness, 0.6, 200),
	}
	points := []models.Point{
		{Sample: history[2], X: 3, Y: 4, ID: 9000},
		{Sample: sample(models.Surprise, 0.1, 300), X: 1, Y: 1, ID: 9001},
	}

	s.Restore(history, points)

	state := s.Snapshot()

	want := models.SessionState{
		History: []models.Sample{history[0], history[2]},
		Points:  []models.Point{points[0]},
	}

	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("restored state mismatch (-want +got):\n%s", diff)
	}

	_, ok := s.Live()
	assert.False(t, ok)

	// ids issued after a restore never collide with restored ones
	p, err := s.Append(sample(models.Neutral, 0.5, 400), models.Position{})
	require.NoError(t, err)
	assert.Greater(t, p.ID, int64(9000))
}

func TestEveryPointHasHistoryEntry(t *testing.T) {
	s := New()

	emotions := []models.Emotion{
		models.Happiness,
		models.None,
		models.Sadness,
		models.None,
		models.Anger,
	}

	for i, e := range emotions {
		smp := sample(e, 0.5, int64(i))

		if e == models.None {
			s.SetLive(smp)
			continue
		}

		_, err := s.Append(smp, models.Position{X: i, Y: i})
		require.NoError(t, err)
	}

	state := s.Snapshot()

	for _, p := range state.Points {
		count := 0

		for _, h := range state.History {
			if h == p.Sample {
				count++
			}
		}

		assert.Equal(t, 1, count)
	}

	for _, h := range state.History {
		assert.NotEqual(t, models.None, h.Emotion)
	}
}

func TestReset(t *testing.T) {
	s := New()

	_, err := s.Append(sample(models.Happiness, 1, 1), models.Position{})
	require.NoError(t, err)

	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Snapshot().Points)
}
