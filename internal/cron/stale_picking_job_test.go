package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pickpackhq/pickpack-backend/pkg/logger"
)

type fakeStaleMarker struct {
	lastCutoff time.Time
	flagged    int
	called     int
	err        error
}

func (f *fakeStaleMarker) MarkPickingStalled(ctx context.Context, cutoff time.Time) (int, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.flagged, nil
}

func newStalePickingJob(t *testing.T, marker *fakeStaleMarker, ttl time.Duration) *stalePickingJob {
	t.Helper()
	jobIface, err := NewStalePickingJob(StalePickingJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "test"}),
		Fulfillment: marker,
		TTL:         ttl,
	})
	if err != nil {
		t.Fatalf("NewStalePickingJob: %v", err)
	}
	job, ok := jobIface.(*stalePickingJob)
	if !ok {
		t.Fatalf("expected stalePickingJob, got %T", jobIface)
	}
	return job
}

func TestStalePickingJobUsesConfiguredTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	marker := &fakeStaleMarker{flagged: 3}
	job := newStalePickingJob(t, marker, 4*time.Hour)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expected := now.Add(-4 * time.Hour)
	if !marker.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, marker.lastCutoff)
	}
	if marker.called != 1 {
		t.Fatalf("expected one sweep, got %d", marker.called)
	}
}

func TestStalePickingJobDefaultsTTL(t *testing.T) {
	job := newStalePickingJob(t, &fakeStaleMarker{}, 0)
	if job.ttl != defaultStalePickingTTL {
		t.Fatalf("expected default ttl, got %s", job.ttl)
	}
}

func TestStalePickingJobPropagatesError(t *testing.T) {
	marker := &fakeStaleMarker{err: errors.New("boom")}
	job := newStalePickingJob(t, marker, time.Hour)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
