package packing

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/api/middleware"
	"github.com/pickpackhq/pickpack-backend/api/responses"
	"github.com/pickpackhq/pickpack-backend/api/validators"
	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
)

// Start moves a picked order into the packing stage.
func Start(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseStageInput(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.StartPacking(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// Complete closes packing once every unit is packed and approvals are settled.
func Complete(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseStageInput(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.CompletePacking(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// Deliver marks a packed order as handed off and releases its totes.
func Deliver(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseStageInput(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MarkDelivered(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// PackPlus adds packed units to a line item.
func PackPlus(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, itemID, actor, err := parseItemRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload countRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count := payload.Count
		if count == 0 {
			count = 1
		}

		item, err := svc.PackPlus(r.Context(), fulfillment.PickInput{
			OrderID:    orderID,
			LineItemID: itemID,
			Count:      count,
			Actor:      actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// PackMinus removes one packed unit from a line item.
func PackMinus(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, itemID, actor, err := parseItemRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.PackMinus(r.Context(), fulfillment.LineItemInput{
			OrderID:    orderID,
			LineItemID: itemID,
			Actor:      actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// An omitted count means a single unit, matching one press of the button.
type countRequest struct {
	Count int `json:"count" validate:"omitempty,gt=0"`
}

func parseStageInput(r *http.Request, svc fulfillment.Service) (fulfillment.StageInput, error) {
	if svc == nil {
		return fulfillment.StageInput{}, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable")
	}
	orderID, err := parseOrderID(r)
	if err != nil {
		return fulfillment.StageInput{}, err
	}
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		return fulfillment.StageInput{}, err
	}
	return fulfillment.StageInput{OrderID: orderID, Actor: actor}, nil
}

func parseItemRequest(r *http.Request) (uuid.UUID, uuid.UUID, fulfillment.Actor, error) {
	orderID, err := parseOrderID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, fulfillment.Actor{}, err
	}

	rawItemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
	if rawItemID == "" {
		return uuid.Nil, uuid.Nil, fulfillment.Actor{}, pkgerrors.New(pkgerrors.CodeValidation, "line item id is required")
	}
	itemID, err := uuid.Parse(rawItemID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fulfillment.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line item id")
	}

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, fulfillment.Actor{}, err
	}
	return orderID, itemID, actor, nil
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
