package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"orderbot/internal/domain/model"
	"orderbot/internal/infra/db"
	gormrepo "orderbot/internal/infra/repository"
	"orderbot/internal/usecase"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// テストごとに別のインメモリDB
func newTestDB(t *testing.T) *gorm.DB {
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

type fixture struct {
	db      *gorm.DB
	cart    *usecase.CartUsecase
	order   *usecase.OrderUsecase
	admin   *usecase.AdminOrderUsecase
	product *usecase.ProductUsecase
	events  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := newTestDB(t)

	products := gormrepo.NewProductGormRepository(gdb)
	carts := gormrepo.NewCartGormRepository(gdb)
	orders := gormrepo.NewOrderGormRepository(gdb)
	items := gormrepo.NewOrderItemGormRepository(gdb)
	audits := gormrepo.NewAuditLogGormRepository(gdb)
	tx := gormrepo.NewTxManagerGorm(gdb)
	events := &recordingPublisher{}
	clock := fixedClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}

	return &fixture{
		db:      gdb,
		cart:    usecase.NewCartUsecase(carts, products, items),
		order:   usecase.NewOrderUsecase(tx, orders, items, events, clock),
		admin:   usecase.NewAdminOrderUsecase(tx, orders, items, audits, events, clock),
		product: usecase.NewProductUsecase(products),
		events:  events,
	}
}

func (f *fixture) mustProduct(t *testing.T, code, title string, price int64) model.Product {
	t.Helper()
	p, err := f.product.Create(context.Background(), usecase.CreateProductInput{Code: code, Title: title, Price: price})
	require.NoError(t, err)
	return p
}

func validInput(userID int64) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		UserID:      userID,
		NationalID:  "0012345679",
		FullName:    "علی رضایی",
		Phone:       "09121234567",
		Address:     "استان تهران، شهر تهران، خیابان ولیعصر، پلاک 12",
		Description: "-",
	}
}

type recordingPublisher struct {
	created []model.Order
	changed []model.OrderStatus
	err     error
}

func (p *recordingPublisher) OrderCreated(_ context.Context, o model.Order, _ bool, _ int) error {
	p.created = append(p.created, o)
	return p.err
}

func (p *recordingPublisher) OrderStatusChanged(_ context.Context, o model.Order, before model.OrderStatus, _ int64) error {
	p.changed = append(p.changed, before, o.Status)
	return p.err
}
