package coremetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetchIncrementsCounterForOutcome(t *testing.T) {
	before := testutil.ToFloat64(FetchTotal.WithLabelValues("ok"))
	ObserveFetch(0.05, "ok")
	after := testutil.ToFloat64(FetchTotal.WithLabelValues("ok"))
	if after != before+1 {
		t.Fatalf("expected FetchTotal{ok} to increment by 1, got %v -> %v", before, after)
	}
}

func TestDispatchTotalLabelsByMsgType(t *testing.T) {
	before := testutil.ToFloat64(DispatchTotal.WithLabelValues("msg.ActionUnload"))
	DispatchTotal.WithLabelValues("msg.ActionUnload").Inc()
	after := testutil.ToFloat64(DispatchTotal.WithLabelValues("msg.ActionUnload"))
	if after != before+1 {
		t.Fatalf("expected counter to increment, got %v -> %v", before, after)
	}
}
