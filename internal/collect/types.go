// Package collect defines the core types and interfaces for the metric
// collection engine. It includes the targets, resolved identifiers, metric
// sets, persisted rows, and the Engine orchestrating a collection run.
package collect

import (
	"fmt"
	"time"
)

// Platform identifies a streaming service whose public pages we scrape.
type Platform string

// Supported platform tags.
const (
	PlatformGenie Platform = "GENIE"
	PlatformBugs  Platform = "BUGS"
	PlatformMelon Platform = "MELON"
)

// FetchMode selects the retrieval tier for a fetch.
type FetchMode string

// Fetch modes. Under ModeAuto the engine starts with the static tier and
// escalates to the dynamic tier at most once per target per run.
const (
	ModeStatic  FetchMode = "static"
	ModeDynamic FetchMode = "dynamic"
	ModeAuto    FetchMode = "auto"
)

// Target is one (platform, song) unit to collect. SongID may be empty until
// the resolver backfills it; everything else is read-only to the engine.
type Target struct {
	Platform Platform `mapstructure:"platform" json:"platform"`
	SongID   string   `mapstructure:"song_id" json:"song_id"`
	Alias    string   `mapstructure:"alias" json:"alias"`
	Title    string   `mapstructure:"title" json:"title"`
	Artist   string   `mapstructure:"artist" json:"artist"`
	Album    string   `mapstructure:"album" json:"album"`
}

// TrackKey returns the stable identity "{platform}:{song_id}".
func (t Target) TrackKey() string {
	return fmt.Sprintf("%s:%s", t.Platform, t.SongID)
}

// ResolvedIdentifier records the outcome of a successful identifier search.
type ResolvedIdentifier struct {
	Platform     Platform
	SongID       string
	MatchedStage int
	SourceQuery  string
	Confidence   float64
}

// Capabilities declares which metrics a platform's public pages expose.
// It is fixed per platform and enforced regardless of what the markup holds.
type Capabilities struct {
	TotalPlays     bool
	TotalListeners bool
}

// MetricSet is a partial metric extraction for one fetch attempt. A nil
// field means the metric was absent (unsupported or not matched), not zero.
type MetricSet struct {
	TotalPlays     *int64
	TotalListeners *int64

	// Raw selector text kept for the append log, pre-normalization.
	RawPlays     string
	RawListeners string
}

// Empty reports whether no metric was extracted at all.
func (m MetricSet) Empty() bool {
	return m.TotalPlays == nil && m.TotalListeners == nil
}

// SnapshotStatus is the terminal state of one target's collection.
type SnapshotStatus string

// Snapshot statuses persisted in the store.
const (
	StatusOK     SnapshotStatus = "OK"
	StatusFailed SnapshotStatus = "FAILED"
)

// Snapshot is the persisted per-day metric record for a track. At most one
// row exists per (TrackKey, Date); a later write for the same day replaces
// the earlier one entirely.
type Snapshot struct {
	TrackKey       string
	Date           string // YYYY-MM-DD, platform-local calendar day
	TotalPlays     *int64
	TotalListeners *int64
	CollectedAt    time.Time
	Status         SnapshotStatus
	ErrorMessage   string
}

// Track mirrors target metadata into the store. Created on the first write
// for a track key, updated on every subsequent one, never deleted.
type Track struct {
	TrackKey    string
	Platform    Platform
	SongID      string
	Alias       string
	Title       string
	Artist      string
	Album       string
	ReleaseDate string
	SourceURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FetchRequest captures everything needed to fetch one page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
}

// FetchResponse is the result returned by a Fetcher tier.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// PlatformCounters tracks success/failure per platform within one run.
type PlatformCounters struct {
	OK     int `json:"ok"`
	Failed int `json:"failed"`
}

// RunSummary reports the aggregate outcome of one collection run.
type RunSummary struct {
	RunID       string                        `json:"run_id"`
	Date        string                        `json:"date"`
	Total       int                           `json:"total_targets"`
	OK          int                           `json:"ok"`
	Failed      int                           `json:"failed"`
	Skipped     int                           `json:"skipped"`
	RowsWritten int                           `json:"rows_written"`
	Escalations int                           `json:"headless_escalations"`
	PerPlatform map[Platform]PlatformCounters `json:"per_platform"`
	Elapsed     time.Duration                 `json:"elapsed"`
}
