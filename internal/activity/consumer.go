package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
	"github.com/pickpackhq/pickpack-backend/pkg/outbox"
	"github.com/pickpackhq/pickpack-backend/pkg/outbox/payloads"
	"github.com/pickpackhq/pickpack-backend/pkg/outbox/registry"
)

const (
	consumerScope = "activity-worker"
	// processedTTL bounds the dedupe markers; Pub/Sub redelivery windows are
	// far shorter than a day.
	processedTTL = 24 * time.Hour
)

// deduper marks events as processed so redeliveries do not double-log.
type deduper interface {
	IdempotencyKey(scope, id string) string
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Consumer tails the fulfillment event stream and writes one structured log
// line per decoded event. The floor dashboards scrape these lines for the
// order activity feed.
type Consumer struct {
	subscription *pubsub.Subscriber
	decoders     *registry.DecoderRegistry
	dedupe       deduper
	logg         *logger.Logger
}

// NewConsumer builds the activity consumer on the fulfillment subscription.
func NewConsumer(subscription *pubsub.Subscriber, dedupe deduper, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("fulfillment subscription required")
	}
	if dedupe == nil {
		return nil, fmt.Errorf("dedupe store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		decoders:     newDecoderRegistry(),
		dedupe:       dedupe,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Warn(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	key := c.dedupe.IdempotencyKey(consumerScope, eventID.String())
	fresh, err := c.dedupe.SetNX(ctx, key, 1, processedTTL)
	if err != nil {
		c.logg.Error(logCtx, "dedupe check failed", err)
		return processResult{nack: true}
	}
	if !fresh {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	decoded, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		_ = c.dedupe.Del(ctx, key)
		return processResult{nack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"event_id":    envelope.EventID,
		"occurred_at": envelope.OccurredAt.Format(time.RFC3339Nano),
	})
	if envelope.Actor != nil {
		logCtx = c.logg.WithFields(logCtx, map[string]any{
			"actor_id":   envelope.Actor.UserID.String(),
			"actor_role": envelope.Actor.Role,
		})
	}
	logCtx = c.logg.WithFields(logCtx, eventFields(decoded))
	c.logg.Info(logCtx, "fulfillment activity")
	return processResult{ack: true}
}

// eventFields flattens a decoded payload into the activity line. Unknown
// payload shapes still get logged with the envelope fields alone.
func eventFields(decoded interface{}) map[string]any {
	switch p := decoded.(type) {
	case *payloads.OrderImportedEvent:
		return map[string]any{
			"order_id":     p.OrderID.String(),
			"external_ref": p.ExternalRef,
			"item_count":   p.ItemCount,
			"unit_count":   p.UnitCount,
		}
	case *payloads.OrderStageChangedEvent:
		return map[string]any{
			"order_id": p.OrderID.String(),
			"from":     p.From,
			"to":       p.To,
		}
	case *payloads.LineItemPickedEvent:
		return map[string]any{
			"order_id":     p.OrderID.String(),
			"line_item_id": p.LineItemID.String(),
			"count":        p.Count,
			"verified_qty": p.VerifiedQty,
			"resolved":     p.Resolved,
		}
	case *payloads.LineItemFlaggedEvent:
		return map[string]any{
			"order_id":     p.OrderID.String(),
			"line_item_id": p.LineItemID.String(),
			"reason":       p.Reason,
			"count":        p.Count,
		}
	case *payloads.LineItemSubstitutedEvent:
		return map[string]any{
			"order_id":       p.OrderID.String(),
			"line_item_id":   p.LineItemID.String(),
			"reason":         p.Reason,
			"sub_product_id": p.SubProductID.String(),
			"sub_variant_id": p.SubVariantID.String(),
			"sub_qty":        p.SubQty,
		}
	case *payloads.LineItemUndoneEvent:
		return map[string]any{
			"order_id":     p.OrderID.String(),
			"line_item_id": p.LineItemID.String(),
		}
	case *payloads.TotesAssignedEvent:
		return map[string]any{
			"order_id":   p.OrderID.String(),
			"tote_names": p.ToteNames,
		}
	case *payloads.ApprovalFinalizedEvent:
		return map[string]any{
			"order_id":       p.OrderID.String(),
			"approved_items": p.ApprovedItems,
		}
	case *payloads.OrderPickingStalledEvent:
		return map[string]any{
			"order_id":      p.OrderID.String(),
			"picking_since": p.PickingSince.Format(time.RFC3339),
		}
	default:
		return map[string]any{}
	}
}

func newDecoderRegistry() *registry.DecoderRegistry {
	reg := registry.NewDecoderRegistry()
	reg.Register(enums.EventOrderImported, 1, decodeInto(func() interface{} { return &payloads.OrderImportedEvent{} }))
	reg.Register(enums.EventOrderStageChanged, 1, decodeInto(func() interface{} { return &payloads.OrderStageChangedEvent{} }))
	reg.Register(enums.EventLineItemPicked, 1, decodeInto(func() interface{} { return &payloads.LineItemPickedEvent{} }))
	reg.Register(enums.EventLineItemFlagged, 1, decodeInto(func() interface{} { return &payloads.LineItemFlaggedEvent{} }))
	reg.Register(enums.EventLineItemSubstituted, 1, decodeInto(func() interface{} { return &payloads.LineItemSubstitutedEvent{} }))
	reg.Register(enums.EventLineItemUndone, 1, decodeInto(func() interface{} { return &payloads.LineItemUndoneEvent{} }))
	reg.Register(enums.EventTotesAssigned, 1, decodeInto(func() interface{} { return &payloads.TotesAssignedEvent{} }))
	reg.Register(enums.EventApprovalFinalized, 1, decodeInto(func() interface{} { return &payloads.ApprovalFinalizedEvent{} }))
	reg.Register(enums.EventOrderPickingStalled, 1, decodeInto(func() interface{} { return &payloads.OrderPickingStalledEvent{} }))
	return reg
}

func decodeInto(factory func() interface{}) func(json.RawMessage) (interface{}, error) {
	return func(payload json.RawMessage) (interface{}, error) {
		target := factory()
		if err := json.Unmarshal(payload, target); err != nil {
			return nil, err
		}
		return target, nil
	}
}
