package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/moodmap/internal/models"
)

var history = []models.Sample{
	{Emotion: models.Happiness, Confidence: 0.92, Timestamp: 1000},
	{Emotion: models.Sadness, Confidence: 0.41, Timestamp: 4000},
}

var points = []models.Point{
	{Sample: history[1], X: 120, Y: 340, ID: 4000},
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "moodmap.db"), nil)
	require.NoError(t, err)

	return c
}

func putRaw(t *testing.T, c *Client, key, value string) {
	t.Helper()

	require.NoError(t, c.Open())

	defer c.Close()

	err := c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(key), []byte(value))
	})
	require.NoError(t, err)
}

func keys(t *testing.T, c *Client) []string {
	t.Helper()

	require.NoError(t, c.Open())

	defer c.Close()

	var out []string

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	require.NoError(t, err)

	return out
}

func TestSaveAndLoad(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.SaveOnExit(history, points))

	got, err := c.LoadOnStartup()
	require.NoError(t, err)
	require.NotNil(t, got)

	want := &models.SessionState{History: history, Points: points}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("loaded session mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveEmptyHistoryIsNoop(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.SaveOnExit(nil, points))

	assert.Empty(t, keys(t, c))

	got, err := c.LoadOnStartup()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveWithoutPoints(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.SaveOnExit(history, nil))

	got, err := c.LoadOnStartup()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.History, 2)
	assert.Empty(t, got.Points)
}

func TestLoadMissingKey(t *testing.T) {
	c := newTestClient(t)

	putRaw(t, c, historyKey, `[{"emotion":"anger","confidence":0.5,"timestamp":1}]`)

	got, err := c.LoadOnStartup()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadEmptyHistory(t *testing.T) {
	c := newTestClient(t)

	putRaw(t, c, historyKey, `[]`)
	putRaw(t, c, pointsKey, `[]`)

	got, err := c.LoadOnStartup()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadCorruptClearsBothKeys(t *testing.T) {
	cases := []struct {
		name    string
		history string
		points  string
	}{
		{
			name:    "garbage",
			history: "{not json",
			points:  "[]",
		},
		{
			name:    "unknown emotion",
			history: `[{"emotion":"joy","confidence":0.5,"timestamp":1}]`,
			points:  "[]",
		},
		{
			name:    "none in history",
			history: `[{"emotion":"none","confidence":0.5,"timestamp":1}]`,
			points:  "[]",
		},
		{
			name:    "garbage points",
			history: `[{"emotion":"anger","confidence":0.5,"timestamp":1}]`,
			points:  "42",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t)

			putRaw(t, c, historyKey, tc.history)
			putRaw(t, c, pointsKey, tc.points)

			got, err := c.LoadOnStartup()
			require.NoError(t, err)
			assert.Nil(t, got)

			assert.Empty(t, keys(t, c))
		})
	}
}

func TestLoadLeavesCorruptSession(t *testing.T) {
	c := newTestClient(t)

	putRaw(t, c, historyKey, `[{"emotion":"joy","confidence":0.5,"timestamp":1}]`)
	putRaw(t, c, pointsKey, "[]")

	got, err := c.Load()
	require.ErrorIs(t, err, ErrCorruptSession)
	assert.Nil(t, got)

	assert.ElementsMatch(t, []string{historyKey, pointsKey}, keys(t, c))

	// only the startup path clears it
	got, err = c.LoadOnStartup()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, keys(t, c))
}

func TestLoadMatchesLoadOnStartup(t *testing.T) {
	c := newTestClient(t)

	got, err := c.Load()
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.SaveOnExit(history, points))

	got, err = c.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(&models.SessionState{History: history, Points: points}, got); diff != "" {
		t.Fatalf("loaded session mismatch (-want +got):\n%s", diff)
	}

	assert.ElementsMatch(t, []string{historyKey, pointsKey}, keys(t, c))
}

func TestDiscard(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.SaveOnExit(history, points))
	require.NoError(t, c.Discard())

	assert.Empty(t, keys(t, c))

	// discarding twice is harmless
	require.NoError(t, c.Discard())
}

func TestDatabaseReleasedBetweenCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmap.db")

	first, err := NewClient(path, nil)
	require.NoError(t, err)

	second, err := NewClient(path, nil)
	require.NoError(t, err)

	require.NoError(t, first.SaveOnExit(history, points))

	got, err := second.LoadOnStartup()
	require.NoError(t, err)
	require.NotNil(t, got)
}
