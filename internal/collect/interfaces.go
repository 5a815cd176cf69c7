package collect

import (
	"context"
	"time"
)

// Fetcher retrieves a URL and returns the body plus metadata. Implementations
// exist for the static HTTP tier and the headless rendering tier.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Collector is the per-platform strategy: it knows the song page URL shape,
// the fixed capability set, and how to pull metrics out of page content.
type Collector interface {
	Platform() Platform
	BuildURL(songID string) string
	Capabilities() Capabilities
	ParseMetrics(content []byte) (MetricSet, error)
}

// Resolver maps human-entered song metadata to a platform song identifier.
type Resolver interface {
	Resolve(ctx context.Context, target Target) (ResolvedIdentifier, error)
}

// MetricStore persists tracks and their daily snapshots with upsert
// (latest-write-wins) semantics.
type MetricStore interface {
	UpsertTrack(ctx context.Context, track Track) error
	UpsertSnapshot(ctx context.Context, snapshot Snapshot) error
	Close()
}

// RunLogger appends one machine-readable line per target per run.
type RunLogger interface {
	Append(ctx context.Context, entry RunLogEntry) error
}

// ArchiveStore writes raw artifacts and returns a URI.
type ArchiveStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes run summaries to a message bus (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock returns the current instant and the platform-local calendar day
// (useful for testing).
type Clock interface {
	Now() time.Time
	Today() string
}

// RunLogEntry is one append-log line. The schema is stable across platforms:
// unsupported metrics appear as null, never omitted.
type RunLogEntry struct {
	RunID          string   `json:"run_id"`
	ReqDate        string   `json:"req_date"`
	Platform       Platform `json:"platform"`
	SongID         string   `json:"song_id"`
	Alias          string   `json:"alias"`
	Title          string   `json:"title"`
	Artist         string   `json:"artist"`
	Album          string   `json:"album"`
	SourceURL      string   `json:"source_url"`
	RawPlays       *string  `json:"raw_plays"`
	RawListeners   *string  `json:"raw_listeners"`
	TotalPlays     *int64   `json:"total_plays"`
	TotalListeners *int64   `json:"total_listeners"`
	UsedHeadless   bool     `json:"used_headless"`
	Error          *string  `json:"error"`
}
