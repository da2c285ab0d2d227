// Package store persists a tracking session between runs
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/moodmap/internal/apperr"
	"github.com/ayoisaiah/moodmap/internal/models"
	"github.com/ayoisaiah/moodmap/internal/osutil"
)

const (
	sessionBucket = "session"
	historyKey    = "emotionHistory"
	pointsKey     = "heatmapPoints"
)

var (
	// ErrCorruptSession is returned by Load when the saved session cannot be
	// parsed.
	ErrCorruptSession = &apperr.Error{
		Message: "the saved session is corrupt",
	}

	errDBBusy = &apperr.Error{
		Message: "the session database at %s is locked by another moodmap process",
	}
)

// Client is a BoltDB database client. The database file is only held open
// while a load or save is in progress unless Open is called explicitly.
type Client struct {
	*bolt.DB
	logger *slog.Logger
	path   string
}

// open creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	db, err := bolt.Open(
		pathToDB,
		osutil.FilePermission,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errDBBusy.Fmt(pathToDB)
		}

		return nil, err
	}

	return db, nil
}

// NewClient creates the database and its bucket if they do not exist yet.
func NewClient(dbPath string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		path:   dbPath,
		logger: logger,
	}

	err := c.with(func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) Open() error {
	if c.DB != nil {
		return nil
	}

	db, err := openDB(c.path)
	if err != nil {
		return err
	}

	c.DB = db

	return nil
}

func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}

	err := c.DB.Close()
	c.DB = nil

	return err
}

// with runs fn against an open database, opening and closing it around the
// call if the client is not already open.
func (c *Client) with(fn func(db *bolt.DB) error) (err error) {
	if c.DB != nil {
		return fn(c.DB)
	}

	db, err := openDB(c.path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(db)
}

func (c *Client) SaveOnExit(
	history []models.Sample,
	points []models.Point,
) error {
	if len(history) == 0 {
		return nil
	}

	if points == nil {
		points = []models.Point{}
	}

	historyBytes, err := json.Marshal(history)
	if err != nil {
		return err
	}

	pointBytes, err := json.Marshal(points)
	if err != nil {
		return err
	}

	err = c.with(func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			b, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
			if err != nil {
				return err
			}

			err = b.Put([]byte(historyKey), historyBytes)
			if err != nil {
				return err
			}

			return b.Put([]byte(pointsKey), pointBytes)
		})
	})
	if err != nil {
		return err
	}

	c.logger.Info(
		"session saved",
		slog.Int("samples", len(history)),
		slog.Int("points", len(points)),
	)

	return nil
}

// Load returns the saved session or nil if there isn't one. Unlike
// LoadOnStartup it never modifies the database: saved data that cannot be
// parsed is reported as ErrCorruptSession.
func (c *Client) Load() (*models.SessionState, error) {
	var historyBytes, pointBytes []byte

	err := c.with(func(db *bolt.DB) error {
		return db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket([]byte(sessionBucket))
			if b == nil {
				return nil
			}

			// values are only valid for the life of the transaction
			historyBytes = cloneBytes(b.Get([]byte(historyKey)))
			pointBytes = cloneBytes(b.Get([]byte(pointsKey)))

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if historyBytes == nil || pointBytes == nil {
		return nil, nil
	}

	state, err := decode(historyBytes, pointBytes)
	if err != nil {
		return nil, ErrCorruptSession.Wrap(err)
	}

	if len(state.History) == 0 {
		return nil, nil
	}

	return state, nil
}

func (c *Client) LoadOnStartup() (*models.SessionState, error) {
	state, err := c.Load()
	if errors.Is(err, ErrCorruptSession) {
		c.logger.Warn("discarding corrupt saved session", slog.Any("error", err))

		return nil, c.Discard()
	}

	return state, err
}

func decode(historyBytes, pointBytes []byte) (*models.SessionState, error) {
	var state models.SessionState

	err := json.Unmarshal(historyBytes, &state.History)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(pointBytes, &state.Points)
	if err != nil {
		return nil, err
	}

	for i := range state.History {
		if e := state.History[i].Emotion; e == models.None || !e.Valid() {
			return nil, fmt.Errorf("history entry %d has no emotion", i)
		}
	}

	for i := range state.Points {
		if e := state.Points[i].Emotion; e == models.None || !e.Valid() {
			return nil, fmt.Errorf("point %d has no emotion", state.Points[i].ID)
		}
	}

	return &state, nil
}

func (c *Client) Discard() error {
	return c.with(func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket([]byte(sessionBucket))
			if b == nil {
				return nil
			}

			err := b.Delete([]byte(historyKey))
			if err != nil {
				return err
			}

			return b.Delete([]byte(pointsKey))
		})
	})
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	return append([]byte{}, b...)
}
