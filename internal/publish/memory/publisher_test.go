package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

func TestPublisherRecordsRunSummaries(t *testing.T) {
	t.Parallel()

	pub := New()

	id, err := pub.Publish(context.Background(), "collection-runs", collect.RunSummary{
		RunID: "run-1",
		Date:  "2026-08-30",
		Total: 3,
		OK:    2,
	})
	require.NoError(t, err)
	require.Equal(t, "mem-1", id)

	id, err = pub.Publish(context.Background(), "collection-runs", collect.RunSummary{RunID: "run-2"})
	require.NoError(t, err)
	require.Equal(t, "mem-2", id)

	msgs := pub.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "collection-runs", msgs[0].Topic)
	require.Equal(t, "run-1", msgs[0].Payload.(collect.RunSummary).RunID)

	msgs[0].Topic = "modified"
	require.Equal(t, "collection-runs", pub.Messages()[0].Topic)
}
