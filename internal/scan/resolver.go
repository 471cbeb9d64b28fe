package scan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
	"github.com/pickpackhq/pickpack-backend/pkg/metrics"
)

const (
	defaultDedupeWindow = 2 * time.Second
	readRetryBase       = 50 * time.Millisecond
	readRetryMax        = 2
)

// fulfillmentService is the slice of the fulfillment service the resolver
// drives: one idempotent read and one pick mutation.
type fulfillmentService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*fulfillment.OrderDetail, error)
	PickPlus(ctx context.Context, input fulfillment.PickInput) (*models.OrderLineItem, error)
}

// deduper suppresses repeat reads of the same code inside the window.
type deduper interface {
	ScanDedupeKey(orderID, barcode string) string
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Result is what one decoded barcode turned into. Rejected results carry the
// error code and a client-safe message instead of a line item.
type Result struct {
	Outcome  enums.ScanOutcome        `json:"outcome"`
	Barcode  string                   `json:"barcode"`
	LineItem *models.OrderLineItem    `json:"line_item,omitempty"`
	Order    *fulfillment.OrderDetail `json:"order,omitempty"`
	Code     pkgerrors.Code           `json:"code,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// rejectedResult wraps a resolve failure into a frame the client can show.
// Only the public message for the code leaves the process.
func rejectedResult(barcode string, err error) Result {
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	return Result{
		Outcome: enums.ScanOutcomeRejected,
		Barcode: barcode,
		Code:    code,
		Error:   pkgerrors.MetadataFor(code).PublicMessage,
	}
}

// Resolver maps decoded barcodes onto line-item picks for one order at a
// time. It holds no state of its own; the ledger stays the single authority.
type Resolver struct {
	fulfillment fulfillmentService
	dedupe      deduper
	metrics     *metrics.ScanMetrics
	log         *logger.Logger
	window      time.Duration
}

// NewResolver builds a scan resolver. The dedupe window falls back to a
// conservative default when zero.
func NewResolver(svc fulfillmentService, dedupe deduper, scanMetrics *metrics.ScanMetrics, log *logger.Logger, window time.Duration) (*Resolver, error) {
	if svc == nil {
		return nil, errors.New("scan: fulfillment service is required")
	}
	if dedupe == nil {
		return nil, errors.New("scan: dedupe store is required")
	}
	if window <= 0 {
		window = defaultDedupeWindow
	}
	return &Resolver{
		fulfillment: svc,
		dedupe:      dedupe,
		metrics:     scanMetrics,
		log:         log,
		window:      window,
	}, nil
}

// Resolve handles one decoded barcode for the order. Misses and repeats are
// reported as outcomes, not errors; only infrastructure failures return err.
func (r *Resolver) Resolve(ctx context.Context, orderID uuid.UUID, barcode string, actor fulfillment.Actor) (*Result, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode required")
	}

	started := time.Now()
	result, err := r.resolve(ctx, orderID, barcode, actor)
	if err != nil {
		r.metrics.Observe("error", time.Since(started))
		return nil, err
	}
	r.metrics.Observe(result.Outcome.String(), time.Since(started))
	return result, nil
}

func (r *Resolver) resolve(ctx context.Context, orderID uuid.UUID, barcode string, actor fulfillment.Actor) (*Result, error) {
	dedupeKey := r.dedupe.ScanDedupeKey(orderID.String(), barcode)
	fresh, err := r.dedupe.SetNX(ctx, dedupeKey, 1, r.window)
	if err != nil {
		// A broken dedupe store must not block picking; the ledger
		// rejects double counts anyway.
		if r.log != nil {
			r.log.Warn(ctx, "scan dedupe unavailable, continuing without suppression")
		}
		fresh = true
	}
	if !fresh {
		return &Result{Outcome: enums.ScanOutcomeDuplicate, Barcode: barcode}, nil
	}

	detail, err := r.getOrder(ctx, orderID)
	if err != nil {
		r.clearDedupe(ctx, dedupeKey)
		return nil, err
	}

	item := matchLineItem(detail.Order.Items, barcode)
	if item == nil {
		return &Result{Outcome: enums.ScanOutcomeNotFound, Barcode: barcode, Order: detail}, nil
	}
	if fulfillment.Resolved(item) {
		return &Result{Outcome: enums.ScanOutcomeAlreadyPicked, Barcode: barcode, LineItem: item, Order: detail}, nil
	}

	picked, err := r.fulfillment.PickPlus(ctx, fulfillment.PickInput{
		OrderID:    orderID,
		LineItemID: item.ID,
		Count:      1,
		Actor:      actor,
	})
	if err != nil {
		// A race against a concurrent pick shows up as the ledger refusing
		// the unit; report it like any other scan of a finished item.
		if pkgerrors.HasCode(err, pkgerrors.CodeAlreadyPicked) || pkgerrors.HasCode(err, pkgerrors.CodeQuantityExceeded) {
			return &Result{Outcome: enums.ScanOutcomeAlreadyPicked, Barcode: barcode, LineItem: item, Order: detail}, nil
		}
		// Mutation failures surface immediately; free the window so the
		// picker can scan again after fixing the cause.
		r.clearDedupe(ctx, dedupeKey)
		return nil, err
	}

	updated, err := r.getOrder(ctx, orderID)
	if err != nil {
		// The pick itself landed; return it without the refreshed view.
		return &Result{Outcome: enums.ScanOutcomePicked, Barcode: barcode, LineItem: picked}, nil
	}
	return &Result{Outcome: enums.ScanOutcomePicked, Barcode: barcode, LineItem: picked, Order: updated}, nil
}

// getOrder retries the idempotent read with backoff.
func (r *Resolver) getOrder(ctx context.Context, orderID uuid.UUID) (*fulfillment.OrderDetail, error) {
	var detail *fulfillment.OrderDetail
	backoff := retry.WithMaxRetries(readRetryMax, retry.NewExponential(readRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		detail, err = r.fulfillment.GetOrder(ctx, orderID)
		if err == nil {
			return nil
		}
		if pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *Resolver) clearDedupe(ctx context.Context, key string) {
	if err := r.dedupe.Del(ctx, key); err != nil && r.log != nil {
		r.log.Warn(ctx, "failed to clear scan dedupe key")
	}
}

// matchLineItem prefers an unresolved item carrying the barcode so repeated
// codes walk through duplicate lines before reporting AlreadyPicked.
func matchLineItem(items []models.OrderLineItem, barcode string) *models.OrderLineItem {
	var resolved *models.OrderLineItem
	for i := range items {
		item := &items[i]
		if item.Barcode == nil || *item.Barcode != barcode {
			continue
		}
		if !fulfillment.Resolved(item) {
			return item
		}
		if resolved == nil {
			resolved = item
		}
	}
	return resolved
}
