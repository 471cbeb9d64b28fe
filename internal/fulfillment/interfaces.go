package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/pagination"
)

// Repository defines persistence operations for fulfillment tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderByExternalRef(ctx context.Context, externalRef string) (*models.Order, error)
	FindLineItem(ctx context.Context, lineItemID uuid.UUID) (*models.OrderLineItem, error)
	FindLineItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
	SaveLineItem(ctx context.Context, item *models.OrderLineItem) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	FindToteByName(ctx context.Context, name string) (*models.Tote, error)
	CreateTote(ctx context.Context, tote *models.Tote) (*models.Tote, error)
	BindTote(ctx context.Context, toteID, orderID uuid.UUID) error
	ReleaseTotes(ctx context.Context, orderID uuid.UUID) error
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	FindStalePickingOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}
