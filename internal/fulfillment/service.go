package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
	"github.com/pickpackhq/pickpack-backend/pkg/outbox"
	"github.com/pickpackhq/pickpack-backend/pkg/outbox/payloads"
	"github.com/pickpackhq/pickpack-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the fulfillment operations exposed to controllers and
// workers.
type Service interface {
	ImportOrder(ctx context.Context, input ImportOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)

	PickPlus(ctx context.Context, input PickInput) (*models.OrderLineItem, error)
	PickMinus(ctx context.Context, input LineItemInput) (*models.OrderLineItem, error)
	FlagShortage(ctx context.Context, input FlagInput) (*models.OrderLineItem, error)
	SubstituteItem(ctx context.Context, input SubstituteInput) (*models.OrderLineItem, error)
	UndoItem(ctx context.Context, input LineItemInput) (*models.OrderLineItem, error)
	AssignTotes(ctx context.Context, input AssignTotesInput) ([]models.Tote, error)

	StartPicking(ctx context.Context, input StageInput) error
	CompletePicking(ctx context.Context, input StageInput) error
	StartPacking(ctx context.Context, input StageInput) error
	PackPlus(ctx context.Context, input PickInput) (*models.OrderLineItem, error)
	PackMinus(ctx context.Context, input LineItemInput) (*models.OrderLineItem, error)
	CompletePacking(ctx context.Context, input StageInput) error
	MarkDelivered(ctx context.Context, input StageInput) error

	ApproveItem(ctx context.Context, input ApproveInput) (*models.OrderLineItem, error)
	FinalizeApproval(ctx context.Context, input StageInput) error

	MarkPickingStalled(ctx context.Context, cutoff time.Time) (int, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a fulfillment service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outbox,
	}, nil
}

func validateActor(actor Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "actor role missing")
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if err := validateActor(actor); err != nil {
		return err
	}
	if actor.Role != enums.ActorRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: actor.UserID,
		Role:   actor.Role,
	}
}

func (s *service) ImportOrder(ctx context.Context, input ImportOrderInput) (*models.Order, error) {
	if input.ExternalRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external ref required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item required")
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("line %d: quantity must be positive", i))
		}
		if item.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("line %d: name required", i))
		}
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Import is idempotent on the external ref: replays return the
		// already-imported order untouched.
		existing, err := repo.FindOrderByExternalRef(ctx, input.ExternalRef)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup external ref")
		}

		order := &models.Order{
			ExternalRef:  input.ExternalRef,
			Name:         input.Name,
			CustomerRef:  input.CustomerRef,
			CustomerNote: input.CustomerNote,
			Status:       enums.OrderStatusNew,
		}
		unitCount := 0
		for i, line := range input.Items {
			order.Items = append(order.Items, models.OrderLineItem{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Name:      line.Name,
				Barcode:   line.Barcode,
				Position:  i,
				Quantity:  line.Quantity,
			})
			unitCount += line.Quantity
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		result = order

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderImported,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderImportedEvent{
				OrderID:     order.ID,
				ExternalRef: order.ExternalRef,
				ItemCount:   len(order.Items),
				UnitCount:   unitCount,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{
		Order:    *order,
		Progress: BuildProgress(order),
	}, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) PickPlus(ctx context.Context, input PickInput) (*models.OrderLineItem, error) {
	return s.mutateItem(ctx, input.OrderID, input.LineItemID, input.Actor, []enums.OrderStatus{enums.OrderStatusPicking},
		func(item *models.OrderLineItem) (*outbox.DomainEvent, error) {
			if err := PickPlus(item, input.Count); err != nil {
				return nil, err
			}
			return s.pickedEvent(item, input.Count, input.Actor), nil
		})
}

func (s *service) PickMinus(ctx context.Context, input LineItemInput) (*models.OrderLineItem, error) {
	return s.mutateItem(ctx, input.OrderID, input.LineItemID, input.Actor, []enums.OrderStatus{enums.OrderStatusPicking},
		func(item *models.OrderLineItem) (*outbox.DomainEvent, error) {
			if err := PickMinus(item); err != nil {
				return nil, err
			}
			return s.pickedEvent(item, -1, input.Actor), nil
		})
}

func (s *service) FlagShortage(ctx context.Context, input FlagInput) (*models.OrderLineItem, error) {
	return s.mutateItem(ctx, input.OrderID, input.LineItemID, input.Actor, []enums.OrderStatus{enums.OrderStatusPicking},
		func(item *models.OrderLineItem) (*outbox.DomainEvent, error) {
			if err := Flag(item, input.Reason, input.Count); err != nil {
				return nil, err
			}
			return &outbox.DomainEvent{
				EventType:     enums.EventLineItemFlagged,
				AggregateType: enums.AggregateLineItem,
				AggregateID:   item.ID,
				Version:       1,
				Actor:         actorRef(input.Actor),
				Data: payloads.LineItemFlaggedEvent{
					OrderID:    item.OrderID,
					LineItemID: item.ID,
					Reason:     input.Reason,
					Count:      input.Count,
				},
			}, nil
		})
}

func (s *service) SubstituteItem(ctx context.Context, input SubstituteInput) (*models.OrderLineItem, error) {
	if input.SubProductID == uuid.Nil || input.SubVariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "substitute product and variant required")
	}
	return s.mutateItem(ctx, input.OrderID, input.LineItemID, input.Actor, []enums.OrderStatus{enums.OrderStatusPicking},
		func(item *models.OrderLineItem) (*outbox.DomainEvent, error) {
			if err := Substitute(item, input.Reason, input.Count, input.SubProductID, input.SubVariantID); err != nil {
				return nil, err
			}
			return &outbox.DomainEvent{
				EventType:     enums.EventLineItemSubstituted,
				AggregateType: enums.AggregateLineItem,
				AggregateID:   item.ID,
				Version:       1,
				Actor:         actorRef(input.Actor),
				Data: payloads.LineItemSubstitutedEvent{
					OrderID:      item.OrderID,
					LineItemID:   item.ID,
					Reason:       input.Reason,
					SubProductID: input.SubProductID,
					SubVariantID: input.SubVariantID,
					SubQty:       item.SubQty,
				},
			}, nil
		})
}

func (s *service) UndoItem(ctx context.Context, input LineItemInput) (*models.OrderLineItem, error) {
	return s.mutateItem(ctx, input.OrderID, input.LineItemID, input.Actor, []enums.OrderStatus{enums.OrderStatusPicking},
		func(item *models.OrderLineItem) (*outbox.DomainEvent, error) {
			Undo(item)
			return &outbox.DomainEvent{
				EventType:     enums.EventLineItemUndone,
				AggregateType: enums.AggregateLineItem,
				AggregateID:   item.ID,
				Version:       1,
				Actor:         actorRef(input.Actor),
				Data: payloads.LineItemUndoneEvent{
					OrderID:    item.OrderID,
					LineItemID: item.ID,
				},
			}, nil
		})
}

func (s *service) AssignTotes(ctx context.Context, input AssignTotesInput) ([]models.Tote, error) {
	if len(input.ToteNames) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one tote name required")
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}

	var bound []models.Tote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPicking {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "totes can only be assigned while picking")
		}

		var toteIDs []uuid.UUID
		var toteNames []string
		for _, name := range input.ToteNames {
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "tote name required")
			}
			tote, err := repo.FindToteByName(ctx, name)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Unknown totes are registered on first use; labels are
				// printed on the floor.
				tote, err = repo.CreateTote(ctx, &models.Tote{Name: name})
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register tote")
				}
			} else if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup tote")
			}

			if tote.OrderID != nil {
				if *tote.OrderID == order.ID {
					bound = append(bound, *tote)
					continue
				}
				return pkgerrors.New(pkgerrors.CodeToteConflict,
					fmt.Sprintf("tote %q is bound to another order", name)).
					WithDetails(map[string]any{"tote": name, "order_id": tote.OrderID.String()})
			}
			if err := repo.BindTote(ctx, tote.ID, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind tote")
			}
			tote.OrderID = &order.ID
			bound = append(bound, *tote)
			toteIDs = append(toteIDs, tote.ID)
			toteNames = append(toteNames, tote.Name)
		}

		if len(toteIDs) == 0 {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventTotesAssigned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.TotesAssignedEvent{
				OrderID:   order.ID,
				ToteIDs:   toteIDs,
				ToteNames: toteNames,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return bound, nil
}

func (s *service) StartPicking(ctx context.Context, input StageInput) error {
	return s.transitionOrder(ctx, input, enums.OrderStatusPicking, nil, nil)
}

func (s *service) CompletePicking(ctx context.Context, input StageInput) error {
	return s.transitionOrder(ctx, input, enums.OrderStatusPicked,
		func(order *models.Order) error {
			if !AllResolved(order.Items) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order has unresolved line items")
			}
			if len(order.Totes) == 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no totes assigned")
			}
			return nil
		},
		func(now time.Time) map[string]any {
			return map[string]any{"picked_at": now}
		})
}

func (s *service) StartPacking(ctx context.Context, input StageInput) error {
	return s.transitionOrder(ctx, input, enums.OrderStatusPacking, nil, nil)
}

func (s *service) PackPlus(ctx context.Context, input PickInput) (*models.OrderLineItem, error) {
	return s.mutateItem(ctx, input.OrderID, input.LineItemID, input.Actor, []enums.OrderStatus{enums.OrderStatusPacking},
		func(item *models.OrderLineItem) (*outbox.DomainEvent, error) {
			return nil, PackPlus(item, input.Count)
		})
}

func (s *service) PackMinus(ctx context.Context, input LineItemInput) (*models.OrderLineItem, error) {
	return s.mutateItem(ctx, input.OrderID, input.LineItemID, input.Actor, []enums.OrderStatus{enums.OrderStatusPacking},
		func(item *models.OrderLineItem) (*outbox.DomainEvent, error) {
			return nil, PackMinus(item)
		})
}

func (s *service) CompletePacking(ctx context.Context, input StageInput) error {
	return s.transitionOrder(ctx, input, enums.OrderStatusPacked,
		func(order *models.Order) error {
			if !ApprovalComplete(order.Items) {
				return pkgerrors.New(pkgerrors.CodeIncompleteApproval, "order has undecided flagged or substituted items")
			}
			for i := range order.Items {
				if !Packed(&order.Items[i]) {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "order has unpacked line items")
				}
			}
			return nil
		},
		func(now time.Time) map[string]any {
			return map[string]any{"packed_at": now}
		})
}

func (s *service) MarkDelivered(ctx context.Context, input StageInput) error {
	return s.transitionOrder(ctx, input, enums.OrderStatusDelivered, nil,
		func(now time.Time) map[string]any {
			return map[string]any{"delivered_at": now}
		})
}

func (s *service) ApproveItem(ctx context.Context, input ApproveInput) (*models.OrderLineItem, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return nil, err
	}
	return s.mutateItem(ctx, input.OrderID, input.LineItemID, input.Actor,
		[]enums.OrderStatus{enums.OrderStatusPicking, enums.OrderStatusPicked, enums.OrderStatusPacking},
		func(item *models.OrderLineItem) (*outbox.DomainEvent, error) {
			if !NeedsApproval(item) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item does not require approval")
			}
			item.Approved = true
			return nil, nil
		})
}

func (s *service) FinalizeApproval(ctx context.Context, input StageInput) error {
	if err := requireAdmin(input.Actor); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already delivered")
		}

		var pending []string
		approved := 0
		for i := range order.Items {
			item := &order.Items[i]
			if !NeedsApproval(item) {
				continue
			}
			if item.Approved {
				approved++
			} else {
				pending = append(pending, item.ID.String())
			}
		}
		if len(pending) > 0 {
			return pkgerrors.New(pkgerrors.CodeIncompleteApproval, "order has undecided line items").
				WithDetails(map[string]any{"pending_line_items": pending})
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventApprovalFinalized,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.ApprovalFinalizedEvent{
				OrderID:       order.ID,
				ApprovedItems: approved,
			},
		}
		return s.outbox.EmitIfNotExists(ctx, tx, event)
	})
}

// MarkPickingStalled emits a stalled event for every order stuck in picking
// since before the cutoff. The dedup on the outbox keeps repeat sweeps quiet.
func (s *service) MarkPickingStalled(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.repo.FindStalePickingOrders(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find stale picking orders")
	}
	if len(stale) == 0 {
		return 0, nil
	}

	flagged := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, order := range stale {
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderPickingStalled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Data: payloads.OrderPickingStalledEvent{
					OrderID:      order.ID,
					PickingSince: order.UpdatedAt,
				},
			}
			if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return err
			}
			flagged++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return flagged, nil
}

func (s *service) pickedEvent(item *models.OrderLineItem, count int, actor Actor) *outbox.DomainEvent {
	return &outbox.DomainEvent{
		EventType:     enums.EventLineItemPicked,
		AggregateType: enums.AggregateLineItem,
		AggregateID:   item.ID,
		Version:       1,
		Actor:         actorRef(actor),
		Data: payloads.LineItemPickedEvent{
			OrderID:     item.OrderID,
			LineItemID:  item.ID,
			Count:       count,
			VerifiedQty: item.VerifiedQty,
			Resolved:    Resolved(item),
		},
	}
}

type itemMutation func(item *models.OrderLineItem) (*outbox.DomainEvent, error)

// mutateItem runs a line item mutation inside a transaction: load, stage
// check, apply, optimistic save, event emit. allowed lists the order stages
// the mutation is legal in.
func (s *service) mutateItem(ctx context.Context, orderID, lineItemID uuid.UUID, actor Actor, allowed []enums.OrderStatus, mutate itemMutation) (*models.OrderLineItem, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if lineItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}
	if err := validateActor(actor); err != nil {
		return nil, err
	}

	var result *models.OrderLineItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if !stageAllowed(order.Status, allowed) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("operation not allowed while order is %s", order.Status))
		}

		item, err := repo.FindLineItem(ctx, lineItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load line item")
		}
		if item.OrderID != order.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item does not belong to order")
		}

		event, err := mutate(item)
		if err != nil {
			return err
		}

		if err := repo.SaveLineItem(ctx, item); err != nil {
			if errors.Is(err, ErrStaleWrite) {
				return pkgerrors.New(pkgerrors.CodeStaleWrite, "line item was modified concurrently").
					WithDetails(map[string]any{"line_item_id": item.ID.String()})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save line item")
		}
		result = item

		if event == nil {
			return nil
		}
		return s.outbox.Emit(ctx, tx, *event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func stageAllowed(status enums.OrderStatus, allowed []enums.OrderStatus) bool {
	for _, candidate := range allowed {
		if candidate == status {
			return true
		}
	}
	return false
}

// transitionOrder advances the order one stage forward. Repeat calls for a
// stage already reached are no-ops; anything else out of order is rejected.
func (s *service) transitionOrder(ctx context.Context, input StageInput, target enums.OrderStatus,
	gate func(order *models.Order) error, stamps func(now time.Time) map[string]any) error {

	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := validateActor(input.Actor); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == target {
			return nil
		}
		if !order.Status.CanAdvanceTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
		}
		if gate != nil {
			if err := gate(order); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": target}
		if stamps != nil {
			for col, val := range stamps(now) {
				updates[col] = val
			}
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		if target == enums.OrderStatusDelivered {
			if err := repo.ReleaseTotes(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release totes")
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStageChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderStageChangedEvent{
				OrderID: order.ID,
				From:    order.Status,
				To:      target,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
