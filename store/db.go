package store

import (
	"github.com/ayoisaiah/moodmap/internal/models"
)

// DB is the session persistence interface.
type DB interface {
	// SaveOnExit persists the history and the live points. Nothing is written
	// when the history is empty.
	SaveOnExit(history []models.Sample, points []models.Point) error
	// LoadOnStartup returns the saved session or nil if there isn't one.
	// Saved data that cannot be parsed is deleted and reported as absent.
	LoadOnStartup() (*models.SessionState, error)
	// Load returns the saved session without modifying the database.
	Load() (*models.SessionState, error)
	// Discard deletes a saved session
	Discard() error
	// Close ends the database connection
	Close() error
	// Open begins a database connection
	Open() error
}
