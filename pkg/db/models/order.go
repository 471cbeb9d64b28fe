package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

// Order is the shared fulfillment record every floor screen reads and
// mutates. Line items and tote bindings hang off it; the status column only
// ever moves forward through the picking/packing stages.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalRef  string            `gorm:"column:external_ref;not null;uniqueIndex:ux_orders_external_ref"`
	Name         string            `gorm:"column:name;not null"`
	CustomerRef  string            `gorm:"column:customer_ref;not null"`
	Status       enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'new'"`
	AdminNote    *string           `gorm:"column:admin_note"`
	CustomerNote *string           `gorm:"column:customer_note"`
	Items        []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Totes        []Tote            `gorm:"foreignKey:OrderID"`
	PickedAt     *time.Time        `gorm:"column:picked_at"`
	PackedAt     *time.Time        `gorm:"column:packed_at"`
	DeliveredAt  *time.Time        `gorm:"column:delivered_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
