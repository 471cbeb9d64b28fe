package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem carries the per-item quantity ledger. The three picking
// dispositions plus the packed counter are plain integer columns so the
// invariant checks stay structural; Version backs the optimistic write check
// that serializes concurrent mutations of the same row.
type OrderLineItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	Barcode   *string   `gorm:"column:barcode"`
	Position  int       `gorm:"column:position;not null;default:0"`

	// Quantity is the ordered unit count, immutable after import.
	Quantity      int `gorm:"column:quantity;not null"`
	VerifiedQty   int `gorm:"column:verified_qty;not null;default:0"`
	OutOfStockQty int `gorm:"column:out_of_stock_qty;not null;default:0"`
	DamagedQty    int `gorm:"column:damaged_qty;not null;default:0"`
	PackedQty     int `gorm:"column:packed_qty;not null;default:0"`

	// Substitution record; present iff SubProductID is set. At most one per
	// line item, replaced wholesale by a later substitute call.
	SubProductID *uuid.UUID `gorm:"column:sub_product_id;type:uuid"`
	SubVariantID *uuid.UUID `gorm:"column:sub_variant_id;type:uuid"`
	SubQty       int        `gorm:"column:sub_qty;not null;default:0"`

	Approved bool `gorm:"column:approved;not null;default:false"`
	Version  int  `gorm:"column:version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
