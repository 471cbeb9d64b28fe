package catalog

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/api/middleware"
	"github.com/pickpackhq/pickpack-backend/api/responses"
	"github.com/pickpackhq/pickpack-backend/api/validators"
	internalcatalog "github.com/pickpackhq/pickpack-backend/internal/catalog"
	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
)

// Candidates lists in-stock sibling variants that could replace a line item.
// An empty list is a valid answer and distinct from an error.
func Candidates(catalogSvc internalcatalog.Service, fulfillmentSvc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil || fulfillmentSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		orderID, itemID, err := parseItemPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := findLineItem(r, fulfillmentSvc, orderID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		candidates, err := catalogSvc.FetchCandidates(r.Context(), item.ProductID, item.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, candidates)
	}
}

// Choose commits a substitution candidate against a line item.
func Choose(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		orderID, itemID, err := parseItemPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload chooseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := enums.ParseFlagReason(payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flag reason"))
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		variantID, err := uuid.Parse(payload.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id"))
			return
		}

		item, err := svc.Choose(r.Context(), internalcatalog.ChooseInput{
			OrderID:    orderID,
			LineItemID: itemID,
			Candidate: internalcatalog.CandidateVariant{
				ProductID: productID,
				VariantID: variantID,
			},
			Count:  payload.Count,
			Reason: reason,
			Actor:  actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// LookupBarcode resolves a barcode to its product and variant.
func LookupBarcode(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		barcode := validators.SanitizeString(chi.URLParam(r, "barcode"), 64)
		if barcode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required"))
			return
		}

		detail, err := svc.LookupBarcode(r.Context(), barcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SyncProduct upserts a product and its variants from the upstream catalog feed.
func SyncProduct(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload syncProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := payload.toModel()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SyncProduct(r.Context(), product); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, nil)
	}
}

type chooseRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	VariantID string `json:"variant_id" validate:"required,uuid4"`
	Count     int    `json:"count" validate:"required,gt=0"`
	Reason    string `json:"reason" validate:"required"`
}

type syncVariantRequest struct {
	ID      string  `json:"id" validate:"required,uuid4"`
	Name    string  `json:"name" validate:"required,max=255"`
	SKU     string  `json:"sku" validate:"required,max=64"`
	Barcode *string `json:"barcode,omitempty"`
	InStock bool    `json:"in_stock"`
}

type syncProductRequest struct {
	ID       string               `json:"id" validate:"required,uuid4"`
	Name     string               `json:"name" validate:"required,max=255"`
	Variants []syncVariantRequest `json:"variants" validate:"required,min=1,dive"`
}

func (req syncProductRequest) toModel() (*models.Product, error) {
	productID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	product := &models.Product{
		ID:   productID,
		Name: validators.SanitizeString(req.Name, 255),
	}
	for _, variant := range req.Variants {
		variantID, err := uuid.Parse(variant.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id")
		}
		product.Variants = append(product.Variants, models.ProductVariant{
			ID:        variantID,
			ProductID: productID,
			Name:      validators.SanitizeString(variant.Name, 255),
			SKU:       validators.SanitizeString(variant.SKU, 64),
			Barcode:   variant.Barcode,
			InStock:   variant.InStock,
		})
	}
	return product, nil
}

func findLineItem(r *http.Request, svc fulfillment.Service, orderID, itemID uuid.UUID) (*models.OrderLineItem, error) {
	detail, err := svc.GetOrder(r.Context(), orderID)
	if err != nil {
		return nil, err
	}
	for i := range detail.Order.Items {
		if detail.Order.Items[i].ID == itemID {
			return &detail.Order.Items[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found in order")
}

func parseItemPath(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	rawOrderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if rawOrderID == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}

	rawItemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
	if rawItemID == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id is required")
	}
	itemID, err := uuid.Parse(rawItemID)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line item id")
	}
	return orderID, itemID, nil
}
