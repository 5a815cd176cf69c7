package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	if targetsTotal == nil || fetchesTotal == nil || escalationsTotal == nil ||
		resolutionsTotal == nil || snapshotUpsertsTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveTargetCounts(t *testing.T) {
	Init()

	before := testutil.ToFloat64(targetsTotal.WithLabelValues("GENIE", "ok"))
	ObserveTarget("GENIE", "ok")
	after := testutil.ToFloat64(targetsTotal.WithLabelValues("GENIE", "ok"))
	if after != before+1 {
		t.Errorf("expected counter to advance by 1, got %f -> %f", before, after)
	}
}

func TestObserveFetchCountsPerTier(t *testing.T) {
	Init()

	before := testutil.ToFloat64(fetchesTotal.WithLabelValues("BUGS", "static"))
	ObserveFetch("BUGS", "static", 120*time.Millisecond)
	after := testutil.ToFloat64(fetchesTotal.WithLabelValues("BUGS", "static"))
	if after != before+1 {
		t.Errorf("expected fetch counter to advance by 1, got %f -> %f", before, after)
	}
}

func TestObserveEscalation(t *testing.T) {
	Init()

	before := testutil.ToFloat64(escalationsTotal.WithLabelValues("MELON"))
	ObserveEscalation("MELON")
	after := testutil.ToFloat64(escalationsTotal.WithLabelValues("MELON"))
	if after != before+1 {
		t.Errorf("expected escalation counter to advance by 1, got %f -> %f", before, after)
	}
}
