package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

// OrderImportedEvent signals a new order landed on the floor.
type OrderImportedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	ExternalRef string    `json:"external_ref"`
	ItemCount   int       `json:"item_count"`
	UnitCount   int       `json:"unit_count"`
}

// OrderStageChangedEvent is emitted on every forward status transition.
type OrderStageChangedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// LineItemPickedEvent reports a verified-quantity change on a line item.
type LineItemPickedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	LineItemID  uuid.UUID `json:"line_item_id"`
	Count       int       `json:"count"`
	VerifiedQty int       `json:"verified_qty"`
	Resolved    bool      `json:"resolved"`
}

// LineItemFlaggedEvent reports units recorded as unavailable.
type LineItemFlaggedEvent struct {
	OrderID    uuid.UUID        `json:"order_id"`
	LineItemID uuid.UUID        `json:"line_item_id"`
	Reason     enums.FlagReason `json:"reason"`
	Count      int              `json:"count"`
}

// LineItemSubstitutedEvent reports a substitution record written on an item.
type LineItemSubstitutedEvent struct {
	OrderID      uuid.UUID        `json:"order_id"`
	LineItemID   uuid.UUID        `json:"line_item_id"`
	Reason       enums.FlagReason `json:"reason"`
	SubProductID uuid.UUID        `json:"sub_product_id"`
	SubVariantID uuid.UUID        `json:"sub_variant_id"`
	SubQty       int              `json:"sub_qty"`
}

// LineItemUndoneEvent reports an item reset to its imported state.
type LineItemUndoneEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	LineItemID uuid.UUID `json:"line_item_id"`
}

// TotesAssignedEvent reports totes bound to an order.
type TotesAssignedEvent struct {
	OrderID   uuid.UUID   `json:"order_id"`
	ToteIDs   []uuid.UUID `json:"tote_ids"`
	ToteNames []string    `json:"tote_names"`
}

// ApprovalFinalizedEvent reports the admin review of an order completing.
type ApprovalFinalizedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	ApprovedItems int       `json:"approved_items"`
}

// OrderPickingStalledEvent flags an order stuck in picking past the cutoff.
type OrderPickingStalledEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	PickingSince time.Time `json:"picking_since"`
}
