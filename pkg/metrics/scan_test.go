package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestScanMetricsExportsEventsAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewScanMetrics(reg)
	metrics.Observe("picked", 40*time.Millisecond)
	metrics.Observe("picked", 25*time.Millisecond)
	metrics.Observe("not_found", 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "scan_events_total", "result", "picked"); err != nil {
		t.Fatalf("fetch picked: %v", err)
	} else if got != 2 {
		t.Fatalf("expected picked=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "scan_events_total", "result", "not_found"); err != nil {
		t.Fatalf("fetch not_found: %v", err)
	} else if got != 1 {
		t.Fatalf("expected not_found=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "scan_resolve_duration_seconds", "result", "picked"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestScanMetricsNilSafe(t *testing.T) {
	var metrics *ScanMetrics
	metrics.Observe("picked", time.Millisecond)

	empty := NewScanMetrics(nil)
	empty.Observe("", time.Millisecond)
}
