// Package store persists saved video summaries. SQLite is the default
// backend; PostgreSQL is used when DATABASE_URL is set.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// ErrNotFound is returned by Get and Delete for unknown ids.
var ErrNotFound = errors.New("summary not found")

// Record is one saved summary.
type Record struct {
	ID         string                 `json:"id"`
	VideoID    string                 `json:"videoId"`
	Title      string                 `json:"title"`
	Language   string                 `json:"language,omitempty"`
	Source     string                 `json:"source,omitempty"`
	Transcript string                 `json:"transcript,omitempty"`
	Summary    engine.Summary         `json:"summary"`
	Settings   engine.SummarySettings `json:"settings"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// Store is the summary storage collaborator.
type Store interface {
	// Save assigns ID and CreatedAt when empty and inserts rec.
	Save(ctx context.Context, rec *Record) error
	// List returns the newest records first, without transcripts.
	List(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns a Postgres store when databaseURL is set, else SQLite at sqlitePath.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		return ConnectPostgres(ctx, databaseURL)
	}
	if sqlitePath == "" {
		sqlitePath = DefaultSQLitePath()
	}
	return OpenSQLite(sqlitePath)
}

// DefaultSQLitePath is $HOME/.go_transcript/summaries.db.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_transcript", "summaries.db")
}

func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

// validID rejects ids that are not UUIDs before they reach the database.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
