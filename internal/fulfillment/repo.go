package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/pagination"
)

// ErrStaleWrite reports that a line item row changed between read and write.
// Callers reload and retry or surface the conflict to the client.
var ErrStaleWrite = errors.New("line item was modified concurrently")

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Totes").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderByExternalRef(ctx context.Context, externalRef string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Totes").
		Where("external_ref = ?", externalRef).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindLineItem(ctx context.Context, lineItemID uuid.UUID) (*models.OrderLineItem, error) {
	var item models.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("id = ?", lineItemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindLineItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SaveLineItem writes the mutable columns guarded by the version check. A
// zero rows-affected result means another writer got there first.
func (r *repository) SaveLineItem(ctx context.Context, item *models.OrderLineItem) error {
	res := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]any{
			"verified_qty":     item.VerifiedQty,
			"out_of_stock_qty": item.OutOfStockQty,
			"damaged_qty":      item.DamagedQty,
			"packed_qty":       item.PackedQty,
			"sub_product_id":   item.SubProductID,
			"sub_variant_id":   item.SubVariantID,
			"sub_qty":          item.SubQty,
			"approved":         item.Approved,
			"version":          item.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	item.Version++
	return nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) FindToteByName(ctx context.Context, name string) (*models.Tote, error) {
	var tote models.Tote
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&tote).Error
	if err != nil {
		return nil, err
	}
	return &tote, nil
}

func (r *repository) CreateTote(ctx context.Context, tote *models.Tote) (*models.Tote, error) {
	if err := r.db.WithContext(ctx).Create(tote).Error; err != nil {
		return nil, err
	}
	return tote, nil
}

func (r *repository) BindTote(ctx context.Context, toteID, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Tote{}).
		Where("id = ?", toteID).
		Update("order_id", orderID).Error
}

func (r *repository) ReleaseTotes(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Tote{}).
		Where("order_id = ?", orderID).
		Update("order_id", nil).Error
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Preload("Totes").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("external_ref LIKE ? OR name LIKE ? OR customer_ref LIKE ?", like, like, like)
	}
	if cursor, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, err
	} else if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		list.Orders = append(list.Orders, summarizeOrder(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) FindStalePickingOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", "picking", cutoff).
		Order("updated_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func summarizeOrder(order *models.Order) OrderSummary {
	summary := OrderSummary{
		ID:          order.ID,
		ExternalRef: order.ExternalRef,
		Name:        order.Name,
		CustomerRef: order.CustomerRef,
		Status:      order.Status,
		TotalItems:  len(order.Items),
		ToteCount:   len(order.Totes),
		CreatedAt:   order.CreatedAt,
	}
	for i := range order.Items {
		item := &order.Items[i]
		if Resolved(item) {
			summary.ResolvedItems++
		}
		if NeedsApproval(item) && !item.Approved {
			summary.PendingApprovals++
		}
	}
	return summary
}
