package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
)

// substituter is the slice of the fulfillment service that Choose needs.
type substituter interface {
	SubstituteItem(ctx context.Context, input fulfillment.SubstituteInput) (*models.OrderLineItem, error)
}

type service struct {
	repo        Repository
	fulfillment substituter
}

// NewService builds the substitution selector.
func NewService(repo Repository, fulfillment substituter) (Service, error) {
	if repo == nil {
		return nil, errors.New("catalog: repository is required")
	}
	if fulfillment == nil {
		return nil, errors.New("catalog: fulfillment service is required")
	}
	return &service{repo: repo, fulfillment: fulfillment}, nil
}

// FetchCandidates lists the in-stock sibling variants of the shorted one. An
// empty list is a normal answer, including when the catalog has not synced
// the product yet.
func (s *service) FetchCandidates(ctx context.Context, productID, variantID uuid.UUID) ([]CandidateVariant, error) {
	if productID == uuid.Nil || variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and variant id required")
	}

	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []CandidateVariant{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}

	variants, err := s.repo.ListSiblingVariants(ctx, productID, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sibling variants")
	}

	candidates := make([]CandidateVariant, 0, len(variants))
	for _, variant := range variants {
		candidates = append(candidates, CandidateVariant{
			ProductID:   product.ID,
			VariantID:   variant.ID,
			ProductName: product.Name,
			VariantName: variant.Name,
			SKU:         variant.SKU,
			Barcode:     variant.Barcode,
		})
	}
	return candidates, nil
}

// Choose commits the candidate as the line item's substitution.
func (s *service) Choose(ctx context.Context, input ChooseInput) (*models.OrderLineItem, error) {
	if input.Candidate.ProductID == uuid.Nil || input.Candidate.VariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate product and variant required")
	}

	variant, err := s.repo.FindVariant(ctx, input.Candidate.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "substitute variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find substitute variant")
	}
	if variant.ProductID != input.Candidate.ProductID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to candidate product")
	}
	if !variant.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "substitute variant is out of stock")
	}

	return s.fulfillment.SubstituteItem(ctx, fulfillment.SubstituteInput{
		OrderID:      input.OrderID,
		LineItemID:   input.LineItemID,
		Reason:       input.Reason,
		Count:        input.Count,
		SubProductID: input.Candidate.ProductID,
		SubVariantID: input.Candidate.VariantID,
		Actor:        input.Actor,
	})
}

func (s *service) LookupBarcode(ctx context.Context, barcode string) (*VariantDetail, error) {
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode required")
	}
	detail, err := s.repo.FindVariantByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "barcode not in catalog")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find variant by barcode")
	}
	return detail, nil
}

// SyncProduct ingests a catalog entry pushed from the upstream shop system.
func (s *service) SyncProduct(ctx context.Context, product *models.Product) error {
	if product == nil || product.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if product.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	for _, variant := range product.Variants {
		if variant.ID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
		}
		if variant.Name == "" || variant.SKU == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant name and sku required")
		}
	}
	if err := s.repo.UpsertProduct(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert product")
	}
	return nil
}
