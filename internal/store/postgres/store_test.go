package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

func int64p(v int64) *int64 { return &v }

func TestUpsertTrackInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()

	track := collect.Track{
		TrackKey:  "GENIE:12345678",
		Platform:  collect.PlatformGenie,
		SongID:    "12345678",
		Alias:     "첫사랑",
		Title:     "첫사랑 (슬기로운 의사생활 OST)",
		Artist:    "정키",
		Album:     "슬기로운 의사생활 OST Part 3",
		SourceURL: "https://www.genie.co.kr/detail/songInfo?xgnm=12345678",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO tracks").
		WithArgs(
			track.TrackKey,
			"GENIE",
			track.SongID,
			track.Alias,
			track.Title,
			track.Artist,
			track.Album,
			track.ReleaseDate,
			track.SourceURL,
			track.CreatedAt,
			track.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.UpsertTrack(context.Background(), track)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertTrackRequiresKey(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	err = store.UpsertTrack(context.Background(), collect.Track{})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSnapshotInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()

	snap := collect.Snapshot{
		TrackKey:       "GENIE:12345678",
		Date:           "2026-08-30",
		TotalPlays:     int64p(1234567),
		TotalListeners: int64p(98765),
		CollectedAt:    now,
		Status:         collect.StatusOK,
	}

	mock.ExpectExec("INSERT INTO metric_snapshots").
		WithArgs(
			snap.TrackKey,
			snap.Date,
			snap.TotalPlays,
			snap.TotalListeners,
			snap.CollectedAt,
			"OK",
			snap.ErrorMessage,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.UpsertSnapshot(context.Background(), snap)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSnapshotFailedRowKeepsMessage(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()

	snap := collect.Snapshot{
		TrackKey:     "BUGS:6220762",
		Date:         "2026-08-30",
		CollectedAt:  now,
		Status:       collect.StatusFailed,
		ErrorMessage: "parse: no metric extracted",
	}

	mock.ExpectExec("INSERT INTO metric_snapshots").
		WithArgs(
			snap.TrackKey,
			snap.Date,
			(*int64)(nil),
			(*int64)(nil),
			snap.CollectedAt,
			"FAILED",
			snap.ErrorMessage,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.UpsertSnapshot(context.Background(), snap)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSnapshotPropagatesError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO metric_snapshots").
		WithArgs(
			"MELON:101",
			"2026-08-30",
			(*int64)(nil),
			(*int64)(nil),
			pgxmock.AnyArg(),
			"OK",
			"",
		).
		WillReturnError(errors.New("connection reset"))

	err = store.UpsertSnapshot(context.Background(), collect.Snapshot{
		TrackKey: "MELON:101",
		Date:     "2026-08-30",
		Status:   collect.StatusOK,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaCreatesTables(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS tracks").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
