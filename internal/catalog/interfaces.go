package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
)

// Repository exposes the synced catalog read model.
type Repository interface {
	FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
	FindVariantByBarcode(ctx context.Context, barcode string) (*VariantDetail, error)
	ListSiblingVariants(ctx context.Context, productID, excludeVariantID uuid.UUID) ([]models.ProductVariant, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	UpsertProduct(ctx context.Context, product *models.Product) error
}

// Service offers substitution candidates and commits the chosen one.
type Service interface {
	FetchCandidates(ctx context.Context, productID, variantID uuid.UUID) ([]CandidateVariant, error)
	Choose(ctx context.Context, input ChooseInput) (*models.OrderLineItem, error)
	LookupBarcode(ctx context.Context, barcode string) (*VariantDetail, error)
	SyncProduct(ctx context.Context, product *models.Product) error
}
