package runlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

func strp(s string) *string { return &s }
func int64p(v int64) *int64 { return &v }

func TestAppendWritesOneLinePerEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	entry := collect.RunLogEntry{
		RunID:        "run-1",
		ReqDate:      "2026-08-30",
		Platform:     collect.PlatformGenie,
		SongID:       "12345678",
		Title:        "첫사랑",
		Artist:       "정키",
		RawPlays:     strp("1,234,567"),
		TotalPlays:   int64p(1234567),
		UsedHeadless: false,
	}
	require.NoError(t, logger.Append(context.Background(), entry))
	require.NoError(t, logger.Append(context.Background(), entry))

	path := filepath.Join(dir, "2026-08-30_GENIE.jsonl")
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []collect.RunLogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var got collect.RunLogEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &got))
		lines = append(lines, got)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)
	require.Equal(t, "run-1", lines[0].RunID)
	require.Equal(t, int64(1234567), *lines[0].TotalPlays)
}

func TestAppendSplitsFilesByPlatform(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	for _, platform := range []collect.Platform{collect.PlatformGenie, collect.PlatformBugs} {
		err := logger.Append(context.Background(), collect.RunLogEntry{
			ReqDate:  "2026-08-30",
			Platform: platform,
			SongID:   "1",
		})
		require.NoError(t, err)
	}

	require.FileExists(t, filepath.Join(dir, "2026-08-30_GENIE.jsonl"))
	require.FileExists(t, filepath.Join(dir, "2026-08-30_BUGS.jsonl"))
}

func TestAppendNullsStayInSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	err = logger.Append(context.Background(), collect.RunLogEntry{
		ReqDate:  "2026-08-30",
		Platform: collect.PlatformBugs,
		SongID:   "6220762",
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "2026-08-30_BUGS.jsonl"))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"total_listeners":null`)
	require.Contains(t, string(raw), `"raw_listeners":null`)
}

func TestNewRejectsEmptyDir(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)
}
