// Package metrics defines the Prometheus instrumentation shared by the
// registry and ioadapter packages: segment I/O counters and merge/evaluate
// latency histograms.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every collector the core registers. A nil *Metrics is
// valid and every method on it is a safe no-op, so instrumentation can be
// wired optionally without littering callers with nil checks.
type Metrics struct {
	SegmentReads  *prometheus.CounterVec
	SegmentWrites *prometheus.CounterVec
	MergeLatency  *prometheus.HistogramVec
	EvalLatency   prometheus.Histogram
}

// New registers the core's collectors into reg and returns the bundle. If
// reg is nil, a private registry is created so the core never pollutes the
// global default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		SegmentReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shardbit",
			Subsystem: "segio",
			Name:      "segment_reads_total",
			Help:      "Segment reads by result (hit, miss, error).",
		}, []string{"result"}),

		SegmentWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shardbit",
			Subsystem: "segio",
			Name:      "segment_writes_total",
			Help:      "Segment writes by result (ok, error).",
		}, []string{"result"}),

		MergeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shardbit",
			Subsystem: "slice",
			Name:      "merge_duration_seconds",
			Help:      "IndexSlice.Execute latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),

		EvalLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shardbit",
			Subsystem: "planner",
			Name:      "evaluate_duration_seconds",
			Help:      "Predicate tree evaluation latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.SegmentReads, m.SegmentWrites, m.MergeLatency, m.EvalLatency)
	return m
}

func (m *Metrics) ObserveSegmentRead(result string) {
	if m == nil {
		return
	}
	m.SegmentReads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSegmentWrite(result string) {
	if m == nil {
		return
	}
	m.SegmentWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveMerge(op string, seconds float64) {
	if m == nil {
		return
	}
	m.MergeLatency.WithLabelValues(op).Observe(seconds)
}

func (m *Metrics) ObserveEvaluate(seconds float64) {
	if m == nil {
		return
	}
	m.EvalLatency.Observe(seconds)
}
