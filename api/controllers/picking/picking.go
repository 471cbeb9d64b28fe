package picking

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/api/middleware"
	"github.com/pickpackhq/pickpack-backend/api/responses"
	"github.com/pickpackhq/pickpack-backend/api/validators"
	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
)

// Start moves the order into the picking stage.
func Start(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return stageHandler(svc, logg, func(s fulfillment.Service) stageFunc { return s.StartPicking })
}

// Complete closes picking once every line item is resolved and totes are bound.
func Complete(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return stageHandler(svc, logg, func(s fulfillment.Service) stageFunc { return s.CompletePicking })
}

// PickPlus adds verified units to a line item.
func PickPlus(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseCountedInput(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.PickPlus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// PickMinus removes one verified unit from a line item.
func PickMinus(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return lineItemHandler(svc, logg, func(s fulfillment.Service) lineItemFunc { return s.PickMinus })
}

// Undo clears every resolution on a line item and returns it to pending.
func Undo(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return lineItemHandler(svc, logg, func(s fulfillment.Service) lineItemFunc { return s.UndoItem })
}

// Flag records a shortage on a line item without proposing a replacement.
func Flag(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload flagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := enums.ParseFlagReason(payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flag reason"))
			return
		}

		item, err := svc.FlagShortage(r.Context(), fulfillment.FlagInput{
			OrderID:    orderID,
			LineItemID: itemID,
			Reason:     reason,
			Count:      payload.Count,
			Actor:      actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// Substitute records a shortage and the proposed replacement variant.
func Substitute(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload substituteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := enums.ParseFlagReason(payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flag reason"))
			return
		}
		subProductID, err := uuid.Parse(payload.SubProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid substitute product id"))
			return
		}
		subVariantID, err := uuid.Parse(payload.SubVariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid substitute variant id"))
			return
		}

		item, err := svc.SubstituteItem(r.Context(), fulfillment.SubstituteInput{
			OrderID:      orderID,
			LineItemID:   itemID,
			Reason:       reason,
			Count:        payload.Count,
			SubProductID: subProductID,
			SubVariantID: subVariantID,
			Actor:        actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AssignTotes binds named totes to the order, creating unknown names on the fly.
func AssignTotes(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
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
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignTotesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		names := make([]string, 0, len(payload.Totes))
		for _, name := range payload.Totes {
			if trimmed := validators.SanitizeString(name, 64); trimmed != "" {
				names = append(names, trimmed)
			}
		}
		if len(names) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at least one tote name is required"))
			return
		}

		totes, err := svc.AssignTotes(r.Context(), fulfillment.AssignTotesInput{
			OrderID:   orderID,
			ToteNames: names,
			Actor:     actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totes)
	}
}

type flagRequest struct {
	Reason string `json:"reason" validate:"required"`
	Count  int    `json:"count" validate:"required,gt=0"`
}

type substituteRequest struct {
	Reason       string `json:"reason" validate:"required"`
	Count        int    `json:"count" validate:"required,gt=0"`
	SubProductID string `json:"sub_product_id" validate:"required,uuid4"`
	SubVariantID string `json:"sub_variant_id" validate:"required,uuid4"`
}

type assignTotesRequest struct {
	Totes []string `json:"totes" validate:"required,min=1"`
}

// An omitted count means a single unit, matching one press of the button.
type countRequest struct {
	Count int `json:"count" validate:"omitempty,gt=0"`
}

type stageFunc func(ctx context.Context, input fulfillment.StageInput) error

type lineItemFunc func(ctx context.Context, input fulfillment.LineItemInput) (*models.OrderLineItem, error)

func stageHandler(svc fulfillment.Service, logg *logger.Logger, pick func(fulfillment.Service) stageFunc) http.HandlerFunc {
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
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := pick(svc)(r.Context(), fulfillment.StageInput{OrderID: orderID, Actor: actor}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func lineItemHandler(svc fulfillment.Service, logg *logger.Logger, pick func(fulfillment.Service) lineItemFunc) http.HandlerFunc {
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

		item, err := pick(svc)(r.Context(), fulfillment.LineItemInput{
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

func parseCountedInput(r *http.Request, svc fulfillment.Service) (fulfillment.PickInput, error) {
	if svc == nil {
		return fulfillment.PickInput{}, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable")
	}

	orderID, itemID, actor, err := parseItemRequest(r)
	if err != nil {
		return fulfillment.PickInput{}, err
	}

	var payload countRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return fulfillment.PickInput{}, err
	}
	count := payload.Count
	if count == 0 {
		count = 1
	}

	return fulfillment.PickInput{
		OrderID:    orderID,
		LineItemID: itemID,
		Count:      count,
		Actor:      actor,
	}, nil
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
