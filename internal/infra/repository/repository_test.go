package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"orderbot/internal/domain/model"
	"orderbot/internal/infra/db"
	gormrepo "orderbot/internal/infra/repository"
	repo "orderbot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func newProduct(t *testing.T, r *gormrepo.ProductGormRepository, code string, price int64) model.Product {
	t.Helper()
	p, err := r.Create(context.Background(), model.Product{Code: code, Title: "title " + code, Price: price})
	require.NoError(t, err)
	return p
}

func TestCartRepository_AddOneUpsert(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()
	products := gormrepo.NewProductGormRepository(gdb)
	carts := gormrepo.NewCartGormRepository(gdb)

	a := newProduct(t, products, "a", 100)
	b := newProduct(t, products, "b", 250)

	require.NoError(t, carts.AddOne(ctx, 1, a.ID))
	require.NoError(t, carts.AddOne(ctx, 1, b.ID))
	require.NoError(t, carts.AddOne(ctx, 1, a.ID))
	require.NoError(t, carts.AddOne(ctx, 2, a.ID))

	lines, err := carts.ListByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, a.ID, lines[0].ProductID)
	assert.Equal(t, int64(2), lines[0].Quantity)
	assert.Equal(t, "title a", lines[0].Title)
	assert.Equal(t, int64(100), lines[0].Price)
	assert.Equal(t, b.ID, lines[1].ProductID)
	assert.Less(t, lines[0].EntryID, lines[1].EntryID)

	var rows int64
	require.NoError(t, gdb.Model(&model.CartItem{}).Where("user_id = ? AND product_id = ?", 1, a.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestCartRepository_SetQuantityAndDelete(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()
	products := gormrepo.NewProductGormRepository(gdb)
	carts := gormrepo.NewCartGormRepository(gdb)

	p := newProduct(t, products, "a", 100)
	require.NoError(t, carts.AddOne(ctx, 1, p.ID))
	lines, err := carts.ListByUserID(ctx, 1)
	require.NoError(t, err)
	entry := lines[0].EntryID

	require.NoError(t, carts.SetQuantity(ctx, entry, 5))
	item, err := carts.FindByID(ctx, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Quantity)

	require.NoError(t, carts.SetQuantity(ctx, entry, 0))
	_, err = carts.FindByID(ctx, entry)
	assert.True(t, errors.Is(err, repo.ErrNotFound))

	assert.True(t, errors.Is(carts.DeleteByID(ctx, entry), repo.ErrNotFound))

	lines, err = carts.ListByUserID(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Len(t, lines, 0)
}

func TestOrderRepository_ListFilters(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()
	orders := gormrepo.NewOrderGormRepository(gdb)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []int64
	for i, uid := range []int64{1, 2, 1} {
		id, err := orders.Create(ctx, model.Order{
			UserID:     uid,
			NationalID: "0012345679",
			FullName:   "علی",
			Phone:      "0912",
			Address:    "addr",
			Status:     model.OrderStatusNew,
			CreatedAt:  now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, orders.UpdateStatus(ctx, ids[0], model.OrderStatusDone))

	all, err := orders.List(ctx, repo.OrderListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	uid := int64(1)
	mine, err := orders.List(ctx, repo.OrderListFilter{Limit: 10, UserID: &uid})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	fresh, err := orders.List(ctx, repo.OrderListFilter{Limit: 10, Status: model.OrderStatusNew})
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	limited, err := orders.List(ctx, repo.OrderListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	n, err := orders.CountByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = orders.FindByID(ctx, 999)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	assert.True(t, errors.Is(orders.UpdateStatus(ctx, 999, model.OrderStatusDone), repo.ErrNotFound))
}

func TestProductRepository(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()
	products := gormrepo.NewProductGormRepository(gdb)

	p := newProduct(t, products, "mug", 90000)
	assert.True(t, p.IsActive)

	_, err := products.Create(ctx, model.Product{Code: "mug", Title: "dup", Price: 1})
	assert.Error(t, err)

	require.NoError(t, products.SetActive(ctx, p.ID, false))
	got, err := products.FindByCode(ctx, "mug")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = products.FindByCode(ctx, "none")
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	assert.True(t, errors.Is(products.SetActive(ctx, 999, true), repo.ErrNotFound))
}

func TestTxManager_RollbackOnError(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()
	tm := gormrepo.NewTxManagerGorm(gdb)
	orders := gormrepo.NewOrderGormRepository(gdb)

	boom := errors.New("boom")
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Orders().Create(ctx, model.Order{
			UserID: 1, NationalID: "0012345679", FullName: "x", Phone: "1", Address: "a",
			Status: model.OrderStatusNew, CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := orders.CountByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestAuditLogRepository_ListOrderStatusChanges(t *testing.T) {
	gdb := newDB(t)
	ctx := context.Background()
	audits := gormrepo.NewAuditLogGormRepository(gdb)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, rid := range []int64{1, 2, 1} {
		require.NoError(t, audits.Create(ctx, model.AuditLog{
			ActorUserID:  9000,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   rid,
			BeforeJSON:   `{"status":"new"}`,
			AfterJSON:    `{"status":"done"}`,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// 別種の操作は混ざらない
	require.NoError(t, audits.Create(ctx, model.AuditLog{
		ActorUserID:  9000,
		Action:       "OTHER",
		ResourceType: model.AuditResourceOrder,
		ResourceID:   1,
		CreatedAt:    base,
	}))

	logs, err := audits.ListOrderStatusChanges(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))

	logs, err = audits.ListOrderStatusChanges(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	logs, err = audits.ListOrderStatusChanges(ctx, 99, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 0)
}
