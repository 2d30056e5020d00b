package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS summaries (
	id         UUID PRIMARY KEY,
	video_id   TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	language   TEXT,
	source     TEXT,
	transcript TEXT,
	summary    JSONB NOT NULL,
	settings   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS summaries_created_at_idx ON summaries (created_at DESC)`

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and ensures the schema exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Save implements Store.
func (p *Postgres) Save(ctx context.Context, rec *Record) error {
	prepare(rec)
	summary, settings, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO summaries (id, video_id, title, language, source, transcript, summary, settings, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.VideoID, rec.Title, rec.Language, rec.Source, rec.Transcript,
		summary, settings, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

// List implements Store.
func (p *Postgres) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, video_id, title, COALESCE(language, ''), COALESCE(source, ''), '', summary, settings, created_at
		 FROM summaries ORDER BY created_at DESC LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, id string) (*Record, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := p.pool.QueryRow(ctx,
		`SELECT id::text, video_id, title, COALESCE(language, ''), COALESCE(source, ''), COALESCE(transcript, ''), summary, settings, created_at
		 FROM summaries WHERE id = $1`, id)
	rec, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Delete implements Store.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM summaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanPostgres(row pgx.Row) (*Record, error) {
	var rec Record
	var summary, settings []byte
	if err := row.Scan(&rec.ID, &rec.VideoID, &rec.Title, &rec.Language, &rec.Source, &rec.Transcript,
		&summary, &settings, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan: %w", err)
	}
	if err := decodeRecord(&rec, summary, settings); err != nil {
		return nil, err
	}
	return &rec, nil
}
