package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderbot/internal/domain/model"
	gormrepo "orderbot/internal/infra/repository"
	"orderbot/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_Direct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.order.PlaceOrder(ctx, validInput(21))
	require.NoError(t, err)
	assert.NotZero(t, placed.Order.ID)
	assert.Equal(t, model.OrderStatusNew, placed.Order.Status)
	assert.Equal(t, 0, placed.ItemCount)
	require.Len(t, f.events.created, 1)

	d, err := f.order.GetMyOrderDetail(ctx, 21, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "علی رضایی", d.Order.FullName)
	assert.Len(t, d.Items, 0)
}

func TestPlaceOrder_FromCartCopiesAndClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustProduct(t, "a", "الف", 1000)
	b := f.mustProduct(t, "b", "ب", 300)
	require.NoError(t, f.cart.AddToCart(ctx, 22, a.ID))
	require.NoError(t, f.cart.AddToCart(ctx, 22, b.ID))
	require.NoError(t, f.cart.AddToCart(ctx, 22, b.ID))

	in := validInput(22)
	in.FromCart = true
	placed, err := f.order.PlaceOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, placed.ItemCount)

	lines, _ := f.cart.ListCart(ctx, 22)
	assert.Len(t, lines, 0)

	d, err := f.order.GetMyOrderDetail(ctx, 22, placed.Order.ID)
	require.NoError(t, err)
	assert.Len(t, d.Items, 2)
	assert.Equal(t, int64(1600), d.Subtotal)
}

func TestPlaceOrder_InvalidInput(t *testing.T) {
	f := newFixture(t)

	in := validInput(23)
	in.NationalID = "12ab"
	_, err := f.order.PlaceOrder(context.Background(), in)
	assert.Equal(t, usecase.CodeInvalid, usecase.CodeOf(err))

	in = validInput(0)
	_, err = f.order.PlaceOrder(context.Background(), in)
	assert.Equal(t, usecase.CodeInvalid, usecase.CodeOf(err))

	assert.Len(t, f.events.created, 0)
}

func TestPlaceOrder_EventFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	placed, err := f.order.PlaceOrder(context.Background(), validInput(24))
	require.NoError(t, err)
	assert.NotZero(t, placed.Order.ID)
}

func TestPlaceOrder_FromEmptyCartRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validInput(25)
	in.FromCart = true
	_, err := f.order.PlaceOrder(ctx, in)
	assert.Equal(t, usecase.CodeEmptyCart, usecase.CodeOf(err))

	// 注文行もロールバックされる
	has, err := f.order.HasOrders(ctx, 25)
	require.NoError(t, err)
	assert.False(t, has)
	assert.Len(t, f.events.created, 0)
}

type blockingPublisher struct{ recordingPublisher }

func (p *blockingPublisher) OrderCreated(ctx context.Context, _ model.Order, _ bool, _ int) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPlaceOrder_SlowPublisherIsBounded(t *testing.T) {
	prev := usecase.EventPublishTimeout
	usecase.EventPublishTimeout = 50 * time.Millisecond
	t.Cleanup(func() { usecase.EventPublishTimeout = prev })

	f := newFixture(t)
	tx, orders, items := gormrepo.NewTxManagerGorm(f.db), gormrepo.NewOrderGormRepository(f.db), gormrepo.NewOrderItemGormRepository(f.db)
	uc := usecase.NewOrderUsecase(tx, orders, items, &blockingPublisher{}, fixedClock{t: time.Now()})

	start := time.Now()
	placed, err := uc.PlaceOrder(context.Background(), validInput(26))
	require.NoError(t, err)
	assert.NotZero(t, placed.Order.ID)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestListMyOrders_NewestFirstAndLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 12; i++ {
		p, err := f.order.PlaceOrder(ctx, validInput(25))
		require.NoError(t, err)
		last = p.Order.ID
	}
	_, err := f.order.PlaceOrder(ctx, validInput(26))
	require.NoError(t, err)

	orders, err := f.order.ListMyOrders(ctx, 25, 0)
	require.NoError(t, err)
	require.Len(t, orders, usecase.MyOrdersLimit)
	assert.Equal(t, last, orders[0].ID)
	for _, o := range orders {
		assert.Equal(t, int64(25), o.UserID)
	}

	has, err := f.order.HasOrders(ctx, 25)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = f.order.HasOrders(ctx, 27)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGetMyOrderDetail_AccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.order.PlaceOrder(ctx, validInput(31))
	require.NoError(t, err)

	_, err = f.order.GetMyOrderDetail(ctx, 32, placed.Order.ID)
	assert.Equal(t, usecase.CodeForbidden, usecase.CodeOf(err))

	_, err = f.order.GetMyOrderDetail(ctx, 31, placed.Order.ID+100)
	assert.Equal(t, usecase.CodeNotFound, usecase.CodeOf(err))
}

func TestAdminUpdateStatus_WritesAuditLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.order.PlaceOrder(ctx, validInput(41))
	require.NoError(t, err)

	ch, err := f.admin.UpdateStatus(ctx, 900, placed.Order.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusNew, ch.Before)
	assert.Equal(t, model.OrderStatusDone, ch.Order.Status)
	assert.Equal(t, int64(41), ch.Order.UserID)

	var logs []model.AuditLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(900), logs[0].ActorUserID)
	assert.Equal(t, model.AuditActionUpdateOrderStatus, logs[0].Action)
	assert.JSONEq(t, `{"status":"new"}`, logs[0].BeforeJSON)
	assert.JSONEq(t, `{"status":"done"}`, logs[0].AfterJSON)

	// 遷移の制限はない
	ch, err = f.admin.UpdateStatus(ctx, 900, placed.Order.ID, "new")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDone, ch.Before)
}

func TestAdminLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := []int64{}
	for i := 0; i < 25; i++ {
		p, err := f.order.PlaceOrder(ctx, validInput(int64(50+i%3)))
		require.NoError(t, err)
		ids = append(ids, p.Order.ID)
	}
	_, err := f.admin.UpdateStatus(ctx, 1, ids[0], "in_progress")
	require.NoError(t, err)

	all, err := f.admin.List(ctx, usecase.AdminListAll)
	require.NoError(t, err)
	assert.Len(t, all, 25)

	latest, err := f.admin.List(ctx, usecase.AdminListLatest)
	require.NoError(t, err)
	assert.Len(t, latest, 20)
	assert.Equal(t, ids[24], latest[0].ID)

	unreviewed, err := f.admin.List(ctx, usecase.AdminListUnreviewed)
	require.NoError(t, err)
	assert.Len(t, unreviewed, 24)
	for _, o := range unreviewed {
		assert.Equal(t, model.OrderStatusNew, o.Status)
	}
}

func TestProduct_EnsureTestProductIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1, created, err := f.product.EnsureTestProduct(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, usecase.TestProduct.Code, p1.Code)
	assert.True(t, p1.IsActive)

	p2, created, err := f.product.EnsureTestProduct(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p1.ID, p2.ID)
}
