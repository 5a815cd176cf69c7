// Package archive defines the blob store used for raw page snapshots. The
// engine archives fetched HTML so a parse regression can be replayed without
// hitting the live platforms again.
package archive

import (
	"context"
)

// Noop is an archive store that discards everything. Used when archiving is
// disabled in config or in dry-run mode.
type Noop struct{}

// PutObject does nothing and reports an empty URI.
func (Noop) PutObject(_ context.Context, _ string, _ string, _ []byte) (string, error) {
	return "", nil
}

// ObjectPath builds the archive key for one fetched page:
// {PLATFORM}/{date}/{song_id}-{hash}.html.
func ObjectPath(platform string, date string, songID string, hash string) string {
	return platform + "/" + date + "/" + songID + "-" + hash + ".html"
}
