// Package memory provides an in-memory metric store for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// Store keeps tracks and snapshots in maps with the same upsert semantics as
// the Postgres store: tracks keyed by track_key, snapshots by (track_key, date),
// last write wins.
type Store struct {
	mu        sync.Mutex
	tracks    map[string]collect.Track
	snapshots map[string]collect.Snapshot
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		tracks:    make(map[string]collect.Track),
		snapshots: make(map[string]collect.Snapshot),
	}
}

// UpsertTrack stores the track by key, replacing any previous version.
func (s *Store) UpsertTrack(_ context.Context, track collect.Track) error {
	if track.TrackKey == "" {
		return fmt.Errorf("track key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[track.TrackKey] = track
	return nil
}

// UpsertSnapshot stores the snapshot by (track_key, date), replacing any
// previous row for that day in full.
func (s *Store) UpsertSnapshot(_ context.Context, snapshot collect.Snapshot) error {
	if snapshot.TrackKey == "" {
		return fmt.Errorf("snapshot track key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshotKey(snapshot.TrackKey, snapshot.Date)] = snapshot
	return nil
}

// Close is a no-op; it exists to satisfy the store interface.
func (s *Store) Close() {}

// Track returns the stored track for key, if any.
func (s *Store) Track(key string) (collect.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	track, ok := s.tracks[key]
	return track, ok
}

// Snapshot returns the stored snapshot for (key, date), if any.
func (s *Store) Snapshot(key, date string) (collect.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[snapshotKey(key, date)]
	return snapshot, ok
}

// SnapshotCount reports how many distinct (track_key, date) rows exist.
func (s *Store) SnapshotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func snapshotKey(trackKey, date string) string {
	return trackKey + "@" + date
}
