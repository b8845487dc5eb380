package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBackendOp_RecordsSeries(t *testing.T) {
	before := testutil.CollectAndCount(BackendOpDuration)

	ObserveBackendOp("mongo", "test_op", time.Now().Add(-5*time.Millisecond))

	after := testutil.CollectAndCount(BackendOpDuration)
	if after != before+1 {
		t.Fatalf("expected a new histogram series, had %d now %d", before, after)
	}

	// A second observation on the same labels reuses the series.
	ObserveBackendOp("mongo", "test_op", time.Now())
	if n := testutil.CollectAndCount(BackendOpDuration); n != after {
		t.Fatalf("expected no new series for repeated labels, had %d now %d", after, n)
	}
}
