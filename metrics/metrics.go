package metrics

import (
	"time"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/trace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for trace parsing, frame reads and
// sample assembly. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Trace metrics
	TraceLines     *prometheus.CounterVec
	TraceFallbacks prometheus.Counter
	TraceRecords   *prometheus.CounterVec

	// Frame metrics
	FramesRead *prometheus.CounterVec

	// Sample metrics
	SamplesAssembled *prometheus.CounterVec
	SampleDuration   prometheus.Histogram
	DatasetFrames    *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TraceLines: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vtmsample_trace_lines_total",
				Help: "Trace lines seen, by parse result",
			},
			[]string{"result"}, // result: record or skipped
		),
		TraceFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "vtmsample_trace_value_fallbacks_total",
			Help: "Block statistics whose value failed to parse and was defaulted",
		}),
		TraceRecords: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vtmsample_trace_records_total",
				Help: "Block statistic records parsed, by parameter",
			},
			[]string{"param"},
		),
		FramesRead: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vtmsample_frames_read_total",
				Help: "YUV frame reads, by video role and result",
			},
			[]string{"video", "result"}, // video: decoded or reference; result: ok, missing, error
		),
		SamplesAssembled: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vtmsample_samples_total",
				Help: "Samples assembled, by dataset and result",
			},
			[]string{"dataset", "result"},
		),
		SampleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vtmsample_sample_duration_seconds",
			Help:    "Time to assemble one sample",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}),
		DatasetFrames: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vtmsample_dataset_frames",
				Help: "Frame indices available per dataset",
			},
			[]string{"dataset"},
		),
	}
}

// RecordTrace records the outcome of one parse pass.
func (m *Metrics) RecordTrace(s trace.Stats, byParam map[string]int) {
	if m == nil {
		return
	}
	m.TraceLines.WithLabelValues("record").Add(float64(s.Records))
	m.TraceLines.WithLabelValues("skipped").Add(float64(s.Skipped))
	m.TraceFallbacks.Add(float64(s.Fallbacks))
	for param, n := range byParam {
		m.TraceRecords.WithLabelValues(param).Add(float64(n))
	}
}

// RecordFrameRead records a single frame read attempt.
func (m *Metrics) RecordFrameRead(video, result string) {
	if m == nil {
		return
	}
	m.FramesRead.WithLabelValues(video, result).Inc()
}

// RecordSample records an assembled (or failed) sample.
func (m *Metrics) RecordSample(dataset string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SamplesAssembled.WithLabelValues(dataset, result).Inc()
	m.SampleDuration.Observe(elapsed.Seconds())
}

// SetDatasetFrames publishes the size of a dataset's frame index set.
func (m *Metrics) SetDatasetFrames(dataset string, n int) {
	if m == nil {
		return
	}
	m.DatasetFrames.WithLabelValues(dataset).Set(float64(n))
}
