package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

// Actor identifies the warehouse user issuing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// ImportLineItemInput is one ordered line in an import request.
type ImportLineItemInput struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	Name      string
	Barcode   *string
	Quantity  int
}

// ImportOrderInput carries a new order from the upstream shop system.
type ImportOrderInput struct {
	ExternalRef  string
	Name         string
	CustomerRef  string
	CustomerNote *string
	Items        []ImportLineItemInput
	Actor        Actor
}

// PickInput carries a counted pick or pack increment on a line item.
type PickInput struct {
	OrderID    uuid.UUID
	LineItemID uuid.UUID
	Count      int
	Actor      Actor
}

// LineItemInput addresses a single line item with no extra arguments.
type LineItemInput struct {
	OrderID    uuid.UUID
	LineItemID uuid.UUID
	Actor      Actor
}

// FlagInput records a shortage on a line item.
type FlagInput struct {
	OrderID    uuid.UUID
	LineItemID uuid.UUID
	Reason     enums.FlagReason
	Count      int
	Actor      Actor
}

// SubstituteInput flags a shortage and proposes a replacement variant.
type SubstituteInput struct {
	OrderID      uuid.UUID
	LineItemID   uuid.UUID
	Reason       enums.FlagReason
	Count        int
	SubProductID uuid.UUID
	SubVariantID uuid.UUID
	Actor        Actor
}

// AssignTotesInput binds named totes to an order.
type AssignTotesInput struct {
	OrderID   uuid.UUID
	ToteNames []string
	Actor     Actor
}

// StageInput addresses an order-level operation.
type StageInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// ApproveInput records an admin decision on a single line item.
type ApproveInput struct {
	OrderID    uuid.UUID
	LineItemID uuid.UUID
	Actor      Actor
}

// OrderDetail couples the persisted order with its derived progress view.
type OrderDetail struct {
	Order    models.Order `json:"order"`
	Progress Progress     `json:"progress"`
}

// OrderFilters describe the inputs supported by the order list.
type OrderFilters struct {
	Status *enums.OrderStatus
	Query  string
}

// OrderSummary exposes the aggregated fields returned in the order list.
type OrderSummary struct {
	ID               uuid.UUID         `json:"id"`
	ExternalRef      string            `json:"external_ref"`
	Name             string            `json:"name"`
	CustomerRef      string            `json:"customer_ref"`
	Status           enums.OrderStatus `json:"status"`
	TotalItems       int               `json:"total_items"`
	ResolvedItems    int               `json:"resolved_items"`
	PendingApprovals int               `json:"pending_approvals"`
	ToteCount        int               `json:"tote_count"`
	CreatedAt        time.Time         `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
