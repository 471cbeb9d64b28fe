package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics records the outcome and latency of barcode scan resolution.
type ScanMetrics struct {
	events  *prometheus.CounterVec
	resolve *prometheus.HistogramVec
}

// NewScanMetrics registers the scan metrics on the provided registerer.
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	if reg == nil {
		return &ScanMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_events_total",
		Help: "Scan events by resolution result.",
	}, []string{"result"})
	resolve := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scan_resolve_duration_seconds",
		Help:    "Time spent resolving a decoded barcode to a pick.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	reg.MustRegister(events, resolve)
	return &ScanMetrics{
		events:  events,
		resolve: resolve,
	}
}

// Observe records a single resolved scan.
func (s *ScanMetrics) Observe(result string, duration time.Duration) {
	if s == nil || s.events == nil {
		return
	}
	label := normalizeLabel(result)
	s.events.WithLabelValues(label).Inc()
	s.resolve.WithLabelValues(label).Observe(duration.Seconds())
}
