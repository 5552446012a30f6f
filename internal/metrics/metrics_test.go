package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMove(t *testing.T) {
	moved := testutil.ToFloat64(treeMoves.WithLabelValues(MoveMoved))
	rejected := testutil.ToFloat64(treeMoves.WithLabelValues(MoveRejected))
	duplicate := testutil.ToFloat64(treeMoveRejections.WithLabelValues("duplicate_role"))

	RecordMove(MoveMoved, "")
	RecordMove(MoveRejected, "duplicate_role")

	if got := testutil.ToFloat64(treeMoves.WithLabelValues(MoveMoved)) - moved; got != 1 {
		t.Errorf("moved delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(treeMoves.WithLabelValues(MoveRejected)) - rejected; got != 1 {
		t.Errorf("rejected delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(treeMoveRejections.WithLabelValues("duplicate_role")) - duplicate; got != 1 {
		t.Errorf("duplicate_role delta = %v, want 1", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	tests := []struct {
		hit   bool
		err   error
		label string
	}{
		{true, nil, "hit"},
		{false, nil, "miss"},
		{true, errors.New("conn reset"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			before := testutil.ToFloat64(treeCache.WithLabelValues(tt.label))
			RecordCacheLookup(tt.hit, tt.err)
			if got := testutil.ToFloat64(treeCache.WithLabelValues(tt.label)) - before; got != 1 {
				t.Errorf("%s delta = %v, want 1", tt.label, got)
			}
		})
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "GET /health", "200"))
	RecordHTTPRequest("GET", "GET /health", 200, 3*time.Millisecond)
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "GET /health", "200")) - before; got != 1 {
		t.Errorf("requests delta = %v, want 1", got)
	}
}
