package activity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
	"github.com/pickpackhq/pickpack-backend/pkg/outbox"
)

type fakeDedupe struct {
	seen    map[string]bool
	setErr  error
	deleted []string
}

func (f *fakeDedupe) IdempotencyKey(scope, id string) string {
	return "pp:idem:" + scope + ":" + id
}

func (f *fakeDedupe) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeDedupe) Del(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func newTestConsumer(t *testing.T, dedupe deduper) *Consumer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "activity-test", Output: io.Discard})
	return &Consumer{
		decoders: newDecoderRegistry(),
		dedupe:   dedupe,
		logg:     logg,
	}
}

func eventMessage(t *testing.T, eventType enums.OutboxEventType, data any) *pubsub.Message {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}
	payload, err := json.Marshal(envelope)
	require.NoError(t, err)
	return &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event_type": string(eventType)},
	}
}

func TestProcessAcksDecodedEvent(t *testing.T) {
	dedupe := &fakeDedupe{}
	consumer := newTestConsumer(t, dedupe)

	msg := eventMessage(t, enums.EventLineItemPicked, map[string]any{
		"order_id":     uuid.NewString(),
		"line_item_id": uuid.NewString(),
		"count":        2,
		"verified_qty": 2,
	})

	result := consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.False(t, result.nack)
	require.Len(t, dedupe.seen, 1)
}

func TestProcessAcksUnknownEventType(t *testing.T) {
	dedupe := &fakeDedupe{}
	consumer := newTestConsumer(t, dedupe)

	msg := &pubsub.Message{
		Data:       []byte(`{}`),
		Attributes: map[string]string{"event_type": "price_changed"},
	}

	result := consumer.process(context.Background(), msg)
	require.True(t, result.ack)
	require.Empty(t, dedupe.seen)
}

func TestProcessSkipsDuplicateDelivery(t *testing.T) {
	dedupe := &fakeDedupe{}
	consumer := newTestConsumer(t, dedupe)

	msg := eventMessage(t, enums.EventTotesAssigned, map[string]any{
		"order_id":   uuid.NewString(),
		"tote_names": []string{"T-4"},
	})

	first := consumer.process(context.Background(), msg)
	require.True(t, first.ack)

	second := consumer.process(context.Background(), msg)
	require.True(t, second.ack)
	require.Len(t, dedupe.seen, 1)
}

func TestProcessNacksWhenDedupeUnavailable(t *testing.T) {
	dedupe := &fakeDedupe{setErr: errors.New("redis down")}
	consumer := newTestConsumer(t, dedupe)

	msg := eventMessage(t, enums.EventOrderStageChanged, map[string]any{
		"order_id": uuid.NewString(),
		"from":     "picking",
		"to":       "packing",
	})

	result := consumer.process(context.Background(), msg)
	require.True(t, result.nack)
}

func TestProcessReleasesDedupeKeyOnDecodeFailure(t *testing.T) {
	dedupe := &fakeDedupe{}
	consumer := newTestConsumer(t, dedupe)

	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"count":"not-a-number"}`),
	}
	payload, err := json.Marshal(envelope)
	require.NoError(t, err)
	msg := &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event_type": string(enums.EventLineItemPicked)},
	}

	result := consumer.process(context.Background(), msg)
	require.True(t, result.nack)
	require.Len(t, dedupe.deleted, 1)
}
