package catalog

import (
	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

// CandidateVariant is a replacement option offered for a shorted line item.
type CandidateVariant struct {
	ProductID   uuid.UUID `json:"product_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	VariantName string    `json:"variant_name"`
	SKU         string    `json:"sku"`
	Barcode     *string   `json:"barcode,omitempty"`
}

// ChooseInput commits one candidate as the substitution for a line item.
type ChooseInput struct {
	OrderID    uuid.UUID
	LineItemID uuid.UUID
	Candidate  CandidateVariant
	Count      int
	Reason     enums.FlagReason
	Actor      fulfillment.Actor
}

// VariantDetail couples a variant with its owning product for barcode lookups.
type VariantDetail struct {
	Product models.Product
	Variant models.ProductVariant
}
