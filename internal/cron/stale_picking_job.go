package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/pickpackhq/pickpack-backend/pkg/logger"
)

const defaultStalePickingTTL = 2 * time.Hour

// staleMarker is the slice of the fulfillment service this job drives.
type staleMarker interface {
	MarkPickingStalled(ctx context.Context, cutoff time.Time) (int, error)
}

// StalePickingJobParams configure the stale picking sweep.
type StalePickingJobParams struct {
	Logger      *logger.Logger
	Fulfillment staleMarker
	TTL         time.Duration
}

// NewStalePickingJob builds the job that nudges orders stuck in picking.
func NewStalePickingJob(params StalePickingJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Fulfillment == nil {
		return nil, fmt.Errorf("fulfillment service required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultStalePickingTTL
	}
	return &stalePickingJob{
		logg:        params.Logger,
		fulfillment: params.Fulfillment,
		ttl:         ttl,
		now:         time.Now,
	}, nil
}

type stalePickingJob struct {
	logg        *logger.Logger
	fulfillment staleMarker
	ttl         time.Duration
	now         func() time.Time
}

func (j *stalePickingJob) Name() string { return "stale-picking" }

func (j *stalePickingJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	flagged, err := j.fulfillment.MarkPickingStalled(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("stale picking sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"ttl":     j.ttl.String(),
		"flagged": flagged,
	})
	j.logg.Info(logCtx, "stale picking sweep complete")
	return nil
}
