package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

func mustSeedItem(t *testing.T, db *gorm.DB, name string, stock, threshold int) *models.Item {
	t.Helper()
	item := &models.Item{ID: uuid.New(), Name: name, Stock: stock, InitialStock: stock, Threshold: threshold, IsActive: true}
	require.NoError(t, db.Create(item).Error)
	return item
}

func mustSeedPendingRequest(t *testing.T, db *gorm.DB, itemID uuid.UUID, status enums.RequestStatus) {
	t.Helper()
	division := &models.Division{ID: uuid.New(), Name: "Div " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(division).Error)
	request := &models.Request{
		ID:            uuid.New(),
		RequestNumber: "REQ-2025-" + uuid.NewString()[:4],
		TrackingToken: uuid.NewString() + uuid.NewString()[:4],
		RequesterName: "Repo Tester",
		DivisionID:    division.ID,
		Status:        status,
		RequestDate:   time.Now(),
	}
	require.NoError(t, db.Create(request).Error)
	line := &models.RequestItem{ID: uuid.New(), RequestID: request.ID, ItemID: itemID, QtyRequested: 1}
	require.NoError(t, db.Create(line).Error)
}

func TestAddStockSkipsInactiveItems(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustSeedItem(t, db, "Stapler", 5, 10)
	require.NoError(t, repo.Deactivate(ctx, item.ID))

	ok, err := repo.AddStock(ctx, item.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	var reloaded models.Item
	require.NoError(t, db.First(&reloaded, "id = ?", item.ID).Error)
	assert.Equal(t, 5, reloaded.Stock)
}

func TestRemoveStockGuard(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustSeedItem(t, db, "Stapler", 5, 10)

	ok, err := repo.RemoveStock(ctx, item.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.RemoveStock(ctx, item.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "guard must reject removal past zero")

	var reloaded models.Item
	require.NoError(t, db.First(&reloaded, "id = ?", item.ID).Error)
	assert.Equal(t, 2, reloaded.Stock)
}

func TestCompareAndSetStockDetectsConcurrentWrites(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustSeedItem(t, db, "Stapler", 10, 10)

	ok, err := repo.CompareAndSetStock(ctx, item.ID, 10, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompareAndSetStock(ctx, item.ID, 10, 7)
	require.NoError(t, err)
	assert.False(t, ok, "stale observed value must lose")

	var reloaded models.Item
	require.NoError(t, db.First(&reloaded, "id = ?", item.ID).Error)
	assert.Equal(t, 4, reloaded.Stock)
}

func TestCountPendingReferencesOnlyCountsPending(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustSeedItem(t, db, "Stapler", 10, 10)
	mustSeedPendingRequest(t, db, item.ID, enums.RequestStatusPending)
	mustSeedPendingRequest(t, db, item.ID, enums.RequestStatusApproved)
	mustSeedPendingRequest(t, db, item.ID, enums.RequestStatusRejected)

	count, err := repo.CountPendingReferences(ctx, item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestListLowStockUsesThreshold(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	low := mustSeedItem(t, db, "Stapler", 2, 10)
	atThreshold := mustSeedItem(t, db, "Notebook", 10, 10)
	mustSeedItem(t, db, "Monitor", 50, 10)
	inactive := mustSeedItem(t, db, "Legacy Pen", 0, 10)
	require.NoError(t, repo.Deactivate(ctx, inactive.ID))

	items, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, low.ID, items[0].ID, "ordered by stock ascending")
	assert.Equal(t, atThreshold.ID, items[1].ID)
}

func TestTotalStockSumsActiveItems(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mustSeedItem(t, db, "Stapler", 5, 10)
	mustSeedItem(t, db, "Notebook", 7, 10)
	inactive := mustSeedItem(t, db, "Legacy Pen", 100, 10)
	require.NoError(t, repo.Deactivate(ctx, inactive.ID))

	total, err := repo.TotalStock(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
}

func TestAppendHistoryAssignsID(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustSeedItem(t, db, "Stapler", 5, 10)
	adminID := uuid.New()

	row := &models.StockHistory{ItemID: item.ID, ChangeType: enums.StockChangeRestock, QtyChange: 5, AdminID: &adminID}
	require.NoError(t, repo.AppendHistory(ctx, row))
	assert.NotEqual(t, uuid.Nil, row.ID)

	var loaded models.StockHistory
	require.NoError(t, db.First(&loaded, "item_id = ?", item.ID).Error)
	assert.Equal(t, enums.StockChangeRestock, loaded.ChangeType)
	assert.Equal(t, 5, loaded.QtyChange)
}
