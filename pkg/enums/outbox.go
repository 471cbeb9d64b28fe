package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder    OutboxAggregateType = "order"
	AggregateLineItem OutboxAggregateType = "line_item"
	AggregateTote     OutboxAggregateType = "tote"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateLineItem,
	AggregateTote,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderImported       OutboxEventType = "order_imported"
	EventOrderStageChanged   OutboxEventType = "order_stage_changed"
	EventLineItemPicked      OutboxEventType = "line_item_picked"
	EventLineItemFlagged     OutboxEventType = "line_item_flagged"
	EventLineItemSubstituted OutboxEventType = "line_item_substituted"
	EventLineItemUndone      OutboxEventType = "line_item_undone"
	EventTotesAssigned       OutboxEventType = "totes_assigned"
	EventApprovalFinalized   OutboxEventType = "approval_finalized"
	EventOrderPickingStalled OutboxEventType = "order_picking_stalled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderImported,
	EventOrderStageChanged,
	EventLineItemPicked,
	EventLineItemFlagged,
	EventLineItemSubstituted,
	EventLineItemUndone,
	EventTotesAssigned,
	EventApprovalFinalized,
	EventOrderPickingStalled,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
