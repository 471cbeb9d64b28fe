package fulfillment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pickpackhq/pickpack-backend/pkg/db/models"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	"github.com/pickpackhq/pickpack-backend/pkg/pagination"
)

func setupFulfillmentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  external_ref TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  customer_ref TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'new',
  admin_note TEXT,
  customer_note TEXT,
  picked_at DATETIME,
  packed_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  barcode TEXT,
  position INTEGER NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL,
  verified_qty INTEGER NOT NULL DEFAULT 0,
  out_of_stock_qty INTEGER NOT NULL DEFAULT 0,
  damaged_qty INTEGER NOT NULL DEFAULT 0,
  packed_qty INTEGER NOT NULL DEFAULT 0,
  sub_product_id TEXT,
  sub_variant_id TEXT,
  sub_qty INTEGER NOT NULL DEFAULT 0,
  approved INTEGER NOT NULL DEFAULT 0,
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	totes := `
CREATE TABLE IF NOT EXISTS totes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  order_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLineItems).Error)
	require.NoError(t, db.Exec(totes).Error)
	return db
}

func createTestOrder(t *testing.T, db *gorm.DB, ref string, status enums.OrderStatus, created time.Time, quantities ...int) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:          uuid.New(),
		ExternalRef: ref,
		Name:        "#" + ref,
		CustomerRef: "cust-" + ref,
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(order).Error)

	for i, qty := range quantities {
		item := &models.OrderLineItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: uuid.New(),
			VariantID: uuid.New(),
			Name:      "Test Item",
			Position:  i,
			Quantity:  qty,
			CreatedAt: created,
			UpdatedAt: created,
		}
		require.NoError(t, db.Create(item).Error)
		order.Items = append(order.Items, *item)
	}
	return order
}

func TestRepositoryFindOrder_preloadsAssociations(t *testing.T) {
	db := setupFulfillmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := time.Now().UTC()
	order := createTestOrder(t, db, "shop-1", enums.OrderStatusPicking, created, 2, 1, 3)
	tote := &models.Tote{ID: uuid.New(), Name: "T-01", OrderID: &order.ID}
	require.NoError(t, db.Create(tote).Error)

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 3)
	for i, item := range found.Items {
		assert.Equal(t, i, item.Position)
	}
	require.Len(t, found.Totes, 1)
	assert.Equal(t, "T-01", found.Totes[0].Name)

	_, err = repo.FindOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositorySaveLineItem_versionConflict(t *testing.T) {
	db := setupFulfillmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, db, "shop-2", enums.OrderStatusPicking, time.Now().UTC(), 3)

	first, err := repo.FindLineItem(ctx, order.Items[0].ID)
	require.NoError(t, err)
	second, err := repo.FindLineItem(ctx, order.Items[0].ID)
	require.NoError(t, err)

	first.VerifiedQty = 1
	require.NoError(t, repo.SaveLineItem(ctx, first))
	assert.Equal(t, 1, first.Version)

	// The second reader still holds version 0 and must lose.
	second.VerifiedQty = 2
	err = repo.SaveLineItem(ctx, second)
	assert.ErrorIs(t, err, ErrStaleWrite)

	stored, err := repo.FindLineItem(ctx, order.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.VerifiedQty)
	assert.Equal(t, 1, stored.Version)

	// Reload and retry succeeds.
	stored.VerifiedQty = 2
	require.NoError(t, repo.SaveLineItem(ctx, stored))
	assert.Equal(t, 2, stored.Version)
}

func TestRepositorySaveLineItem_persistsSubstitution(t *testing.T) {
	db := setupFulfillmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, db, "shop-3", enums.OrderStatusPicking, time.Now().UTC(), 2)

	item, err := repo.FindLineItem(ctx, order.Items[0].ID)
	require.NoError(t, err)

	subProduct := uuid.New()
	subVariant := uuid.New()
	item.OutOfStockQty = 2
	item.SubProductID = &subProduct
	item.SubVariantID = &subVariant
	item.SubQty = 2
	require.NoError(t, repo.SaveLineItem(ctx, item))

	stored, err := repo.FindLineItem(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SubProductID)
	assert.Equal(t, subProduct, *stored.SubProductID)
	assert.Equal(t, subVariant, *stored.SubVariantID)
	assert.Equal(t, 2, stored.SubQty)
	assert.Equal(t, 2, stored.OutOfStockQty)
}

func TestRepositoryToteLifecycle(t *testing.T) {
	db := setupFulfillmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, db, "shop-4", enums.OrderStatusPicking, time.Now().UTC(), 1)

	tote, err := repo.CreateTote(ctx, &models.Tote{Name: "T-07"})
	require.NoError(t, err)
	require.NoError(t, repo.BindTote(ctx, tote.ID, order.ID))

	bound, err := repo.FindToteByName(ctx, "T-07")
	require.NoError(t, err)
	require.NotNil(t, bound.OrderID)
	assert.Equal(t, order.ID, *bound.OrderID)

	require.NoError(t, repo.ReleaseTotes(ctx, order.ID))
	released, err := repo.FindToteByName(ctx, "T-07")
	require.NoError(t, err)
	assert.Nil(t, released.OrderID)
}

func TestRepositoryListOrders_pagination(t *testing.T) {
	db := setupFulfillmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	createTestOrder(t, db, "shop-10", enums.OrderStatusNew, now.Add(-time.Hour), 2)
	newer := createTestOrder(t, db, "shop-11", enums.OrderStatusPicking, now, 1, 1)

	list, err := repo.ListOrders(ctx, pagination.Params{Limit: 1}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, newer.ID, list.Orders[0].ID)
	assert.Equal(t, 2, list.Orders[0].TotalItems)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListOrders(ctx, pagination.Params{Limit: 1, Cursor: list.NextCursor}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, "shop-10", second.Orders[0].ExternalRef)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListOrders_filtersAndSearch(t *testing.T) {
	db := setupFulfillmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	createTestOrder(t, db, "shop-20", enums.OrderStatusNew, now.Add(-time.Minute), 1)
	picking := createTestOrder(t, db, "shop-21", enums.OrderStatusPicking, now, 2)
	require.NoError(t, db.Model(&models.OrderLineItem{}).
		Where("order_id = ?", picking.ID).
		Updates(map[string]any{"verified_qty": 1, "damaged_qty": 1}).Error)

	status := enums.OrderStatusPicking
	list, err := repo.ListOrders(ctx, pagination.Params{Limit: 10}, OrderFilters{Status: &status, Query: "shop-21"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, picking.ID, list.Orders[0].ID)
	assert.Equal(t, 1, list.Orders[0].ResolvedItems)
	assert.Equal(t, 1, list.Orders[0].PendingApprovals)
	assert.Empty(t, list.NextCursor)
}

func TestRepositoryFindStalePickingOrders(t *testing.T) {
	db := setupFulfillmentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	stale := createTestOrder(t, db, "shop-30", enums.OrderStatusPicking, now.Add(-6*time.Hour), 1)
	createTestOrder(t, db, "shop-31", enums.OrderStatusPicking, now, 1)
	createTestOrder(t, db, "shop-32", enums.OrderStatusNew, now.Add(-6*time.Hour), 1)

	orders, err := repo.FindStalePickingOrders(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, stale.ID, orders[0].ID)
}
