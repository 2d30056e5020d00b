package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is a Store backed by a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS summaries (
		id         TEXT PRIMARY KEY,
		video_id   TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		language   TEXT,
		source     TEXT,
		transcript TEXT,
		summary    TEXT NOT NULL,
		settings   TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Save implements Store.
func (s *SQLite) Save(ctx context.Context, rec *Record) error {
	prepare(rec)
	summary, settings, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, video_id, title, language, source, transcript, summary, settings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VideoID, rec.Title, rec.Language, rec.Source, rec.Transcript,
		summary, settings, rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, title, language, source, '', summary, settings, created_at
		 FROM summaries ORDER BY created_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, title, language, source, transcript, summary, settings, created_at
		 FROM summaries WHERE id = ?`, id)
	rec, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row scanner) (*Record, error) {
	var rec Record
	var language, source, transcript sql.NullString
	var summary, settings, created string
	if err := row.Scan(&rec.ID, &rec.VideoID, &rec.Title, &language, &source, &transcript,
		&summary, &settings, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan: %w", err)
	}
	rec.Language, rec.Source, rec.Transcript = language.String, source.String, transcript.String
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	if err := decodeRecord(&rec, []byte(summary), []byte(settings)); err != nil {
		return nil, err
	}
	return &rec, nil
}

func encodeRecord(rec *Record) (summary, settings []byte, err error) {
	if summary, err = json.Marshal(rec.Summary); err != nil {
		return nil, nil, fmt.Errorf("store: encode summary: %w", err)
	}
	if settings, err = json.Marshal(rec.Settings); err != nil {
		return nil, nil, fmt.Errorf("store: encode settings: %w", err)
	}
	return summary, settings, nil
}

func decodeRecord(rec *Record, summary, settings []byte) error {
	if err := json.Unmarshal(summary, &rec.Summary); err != nil {
		return fmt.Errorf("store: decode summary: %w", err)
	}
	if err := json.Unmarshal(settings, &rec.Settings); err != nil {
		return fmt.Errorf("store: decode settings: %w", err)
	}
	return nil
}
