package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) FindVariantByBarcode(ctx context.Context, barcode string) (*VariantDetail, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("barcode = ?", barcode).
		First(&variant).Error
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = r.db.WithContext(ctx).
		Where("id = ?", variant.ProductID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &VariantDetail{Product: product, Variant: variant}, nil
}

// ListSiblingVariants returns the in-stock variants of the same product,
// excluding the one that came up short.
func (r *repository) ListSiblingVariants(ctx context.Context, productID, excludeVariantID uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND id <> ? AND in_stock = ?", productID, excludeVariantID, true).
		Order("name ASC").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertProduct writes the product and its variants from an upstream sync.
func (r *repository) UpsertProduct(ctx context.Context, product *models.Product) error {
	tx := r.db.WithContext(ctx)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Omit("Variants").Create(product).Error
	if err != nil {
		return err
	}
	if len(product.Variants) == 0 {
		return nil
	}
	for i := range product.Variants {
		product.Variants[i].ProductID = product.ID
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "sku", "barcode", "in_stock", "updated_at"}),
	}).Create(&product.Variants).Error
}
