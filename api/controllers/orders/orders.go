package orders

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/api/middleware"
	"github.com/pickpackhq/pickpack-backend/api/responses"
	"github.com/pickpackhq/pickpack-backend/api/validators"
	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
	"github.com/pickpackhq/pickpack-backend/pkg/pagination"
)

// List returns a cursor page of order summaries filtered by status and search text.
func List(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns the order with its line items, totes, and derived progress.
func Detail(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// Import registers an order from the upstream shop system.
func Import(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload importOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ImportOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type importLineItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid4"`
	VariantID string  `json:"variant_id" validate:"required,uuid4"`
	Name      string  `json:"name" validate:"required,max=255"`
	Barcode   *string `json:"barcode,omitempty"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

type importOrderRequest struct {
	ExternalRef  string                  `json:"external_ref" validate:"required,max=128"`
	Name         string                  `json:"name" validate:"required,max=255"`
	CustomerRef  string                  `json:"customer_ref" validate:"required,max=128"`
	CustomerNote *string                 `json:"customer_note,omitempty"`
	Items        []importLineItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (req importOrderRequest) toInput(actor fulfillment.Actor) (fulfillment.ImportOrderInput, error) {
	input := fulfillment.ImportOrderInput{
		ExternalRef:  validators.SanitizeString(req.ExternalRef, 128),
		Name:         validators.SanitizeString(req.Name, 255),
		CustomerRef:  validators.SanitizeString(req.CustomerRef, 128),
		CustomerNote: req.CustomerNote,
		Actor:        actor,
	}
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid product_id at items[%d]", i))
		}
		variantID, err := uuid.Parse(item.VariantID)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid variant_id at items[%d]", i))
		}
		input.Items = append(input.Items, fulfillment.ImportLineItemInput{
			ProductID: productID,
			VariantID: variantID,
			Name:      validators.SanitizeString(item.Name, 255),
			Barcode:   item.Barcode,
			Quantity:  item.Quantity,
		})
	}
	return input, nil
}

func buildFilters(r *http.Request) (fulfillment.OrderFilters, error) {
	var filters fulfillment.OrderFilters
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status %q", raw))
		}
		filters.Status = &status
	}
	filters.Query = validators.ParseQueryString(r, "q", 128)
	return filters, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
