// Package postgres provides the Postgres-backed metric store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Store persists tracks and daily metric snapshots with upsert semantics.
// A second snapshot write for the same (track_key, date) fully replaces the
// first, including its status and error message.
type Store struct {
	pool execCloser
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for testing).
func NewWithPool(pool execCloser) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the tables when they do not exist yet. A failure here
// is a startup-time problem and aborts before any target is processed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tracks (
	track_key    TEXT PRIMARY KEY,
	platform     TEXT NOT NULL,
	song_id      TEXT NOT NULL,
	alias        TEXT,
	title        TEXT,
	artist       TEXT,
	album        TEXT,
	release_date TEXT,
	source_url   TEXT,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS metric_snapshots (
	track_key       TEXT NOT NULL REFERENCES tracks(track_key),
	date            DATE NOT NULL,
	total_plays     BIGINT,
	total_listeners BIGINT,
	collected_at    TIMESTAMPTZ NOT NULL,
	status          TEXT NOT NULL,
	error_message   TEXT,
	PRIMARY KEY (track_key, date)
);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertTrack inserts or updates the metadata mirror row by track_key,
// always bumping updated_at. Tracks are never deleted here.
func (s *Store) UpsertTrack(ctx context.Context, track collect.Track) error {
	if track.TrackKey == "" {
		return fmt.Errorf("track key is required")
	}
	const query = `
INSERT INTO tracks (
	track_key, platform, song_id, alias, title, artist, album,
	release_date, source_url, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (track_key) DO UPDATE SET
	alias        = EXCLUDED.alias,
	title        = EXCLUDED.title,
	artist       = EXCLUDED.artist,
	album        = EXCLUDED.album,
	release_date = EXCLUDED.release_date,
	source_url   = EXCLUDED.source_url,
	updated_at   = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		track.TrackKey,
		string(track.Platform),
		track.SongID,
		track.Alias,
		track.Title,
		track.Artist,
		track.Album,
		track.ReleaseDate,
		track.SourceURL,
		track.CreatedAt,
		track.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert track %s: %w", track.TrackKey, err)
	}
	return nil
}

// UpsertSnapshot inserts or replaces the snapshot by (track_key, date).
// The write is a single statement: either the full row commits or none of it.
func (s *Store) UpsertSnapshot(ctx context.Context, snapshot collect.Snapshot) error {
	if snapshot.TrackKey == "" {
		return fmt.Errorf("snapshot track key is required")
	}
	const query = `
INSERT INTO metric_snapshots (
	track_key, date, total_plays, total_listeners, collected_at, status, error_message
) VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (track_key, date) DO UPDATE SET
	total_plays     = EXCLUDED.total_plays,
	total_listeners = EXCLUDED.total_listeners,
	collected_at    = EXCLUDED.collected_at,
	status          = EXCLUDED.status,
	error_message   = EXCLUDED.error_message`

	_, err := s.pool.Exec(ctx, query,
		snapshot.TrackKey,
		snapshot.Date,
		snapshot.TotalPlays,
		snapshot.TotalListeners,
		snapshot.CollectedAt,
		string(snapshot.Status),
		snapshot.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s@%s: %w", snapshot.TrackKey, snapshot.Date, err)
	}
	return nil
}
