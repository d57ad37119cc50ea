package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/trace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTrace(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordTrace(trace.Stats{Lines: 10, Records: 6, Skipped: 4, Fallbacks: 1}, map[string]int{"QP": 4, "MVL0": 2})

	if got := testutil.ToFloat64(m.TraceLines.WithLabelValues("record")); got != 6 {
		t.Fatalf("record lines = %v, want 6", got)
	}
	if got := testutil.ToFloat64(m.TraceLines.WithLabelValues("skipped")); got != 4 {
		t.Fatalf("skipped lines = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.TraceFallbacks); got != 1 {
		t.Fatalf("fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TraceRecords.WithLabelValues("MVL0")); got != 2 {
		t.Fatalf("MVL0 records = %v, want 2", got)
	}
}

func TestRecordSampleAndFrames(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordSample("train", nil, time.Millisecond)
	m.RecordSample("train", errors.New("boom"), time.Millisecond)
	m.RecordFrameRead("decoded", "ok")
	m.RecordFrameRead("reference", "missing")
	m.SetDatasetFrames("train", 32)

	if got := testutil.ToFloat64(m.SamplesAssembled.WithLabelValues("train", "error")); got != 1 {
		t.Fatalf("error samples = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FramesRead.WithLabelValues("reference", "missing")); got != 1 {
		t.Fatalf("missing reference reads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DatasetFrames.WithLabelValues("train")); got != 32 {
		t.Fatalf("dataset frames = %v, want 32", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordTrace(trace.Stats{Records: 1}, nil)
	m.RecordFrameRead("decoded", "ok")
	m.RecordSample("x", nil, 0)
	m.SetDatasetFrames("x", 1)
}
