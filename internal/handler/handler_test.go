package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"orderbot/internal/chat"
	"orderbot/internal/domain/model"
	"orderbot/internal/handler"
	"orderbot/internal/infra/db"
	gormrepo "orderbot/internal/infra/repository"
	"orderbot/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UpdateHandlerMock struct{ mock.Mock }

func (m *UpdateHandlerMock) Handle(ctx context.Context, upd chat.Update) error {
	return m.Called(ctx, upd).Error(0)
}

type StatusNotifierMock struct{ mock.Mock }

func (m *StatusNotifierMock) StatusChanged(ctx context.Context, order model.Order) {
	m.Called(ctx, order)
}

func request(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhook(t *testing.T) {
	updates := new(UpdateHandlerMock)
	e := echo.New()
	handler.NewWebhookHandler(updates).RegisterRoutes(e)

	updates.On("Handle", mock.Anything, chat.Update{UserID: 5, FullName: "Ali", Text: "hi"}).Return(nil).Once()
	rec := request(e, http.MethodPost, "/webhook", `{"user_id":5,"full_name":"Ali","text":"hi"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	// 失敗しても 200（再送させない）
	updates.On("Handle", mock.Anything, chat.Update{UserID: 5, Action: "checkout"}).Return(errors.New("boom")).Once()
	rec = request(e, http.MethodPost, "/webhook", `{"user_id":5,"action":"checkout"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":false}`, rec.Body.String())

	rec = request(e, http.MethodPost, "/webhook", `{"text":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(e, http.MethodPost, "/webhook", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	updates.AssertExpectations(t)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	handler.NewHealthHandler(pinger{}).RegisterRoutes(e)
	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/metrics", "").Code)

	down := echo.New()
	handler.NewHealthHandler(pinger{err: errors.New("down")}).RegisterRoutes(down)
	assert.Equal(t, http.StatusServiceUnavailable, request(down, http.MethodGet, "/healthz", "").Code)
}

type adminEnv struct {
	e        *echo.Echo
	orders   *usecase.OrderUsecase
	notifier *StatusNotifierMock
}

func newAdminEnv(t *testing.T) adminEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	orders := gormrepo.NewOrderGormRepository(gdb)
	items := gormrepo.NewOrderItemGormRepository(gdb)
	tx := gormrepo.NewTxManagerGorm(gdb)

	notifier := new(StatusNotifierMock)
	adminUC := usecase.NewAdminOrderUsecase(tx, orders, items, gormrepo.NewAuditLogGormRepository(gdb), nil, nil)
	productUC := usecase.NewProductUsecase(gormrepo.NewProductGormRepository(gdb))

	e := echo.New()
	g := e.Group("/admin", func(next echo.HandlerFunc) echo.HandlerFunc {
		// AuthJWT の代わり
		return func(c echo.Context) error {
			c.Set("user_id", int64(9000))
			return next(c)
		}
	})
	handler.NewAdminOrderHandler(adminUC, notifier).RegisterRoutes(g)
	handler.NewAdminProductHandler(productUC).RegisterRoutes(g)

	return adminEnv{
		e:        e,
		orders:   usecase.NewOrderUsecase(tx, orders, items, nil, nil),
		notifier: notifier,
	}
}

func (env adminEnv) place(t *testing.T, userID int64) model.Order {
	t.Helper()
	p, err := env.orders.PlaceOrder(context.Background(), usecase.PlaceOrderInput{
		UserID:     userID,
		NationalID: "0012345679",
		FullName:   "علی رضایی",
		Phone:      "09121234567",
		Address:    "استان تهران، شهر تهران، خیابان ولیعصر، پلاک 12",
	})
	require.NoError(t, err)
	return p.Order
}

func TestAdminOrders_ListAndDetail(t *testing.T) {
	env := newAdminEnv(t)
	first := env.place(t, 1)
	second := env.place(t, 2)

	rec := request(env.e, http.MethodGet, "/admin/orders?kind=latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []handler.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	rec = request(env.e, http.MethodGet, "/admin/orders?kind=weird", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(env.e, http.MethodGet, "/admin/orders/"+itoa(first.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d handler.OrderDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "new", d.Order.Status)
	assert.Empty(t, d.Items)
	assert.Equal(t, int64(0), d.Subtotal)

	assert.Equal(t, http.StatusNotFound, request(env.e, http.MethodGet, "/admin/orders/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, request(env.e, http.MethodGet, "/admin/orders/x", "").Code)
}

func TestAdminOrders_UpdateStatusAndHistory(t *testing.T) {
	env := newAdminEnv(t)
	o := env.place(t, 1)

	env.notifier.On("StatusChanged", mock.Anything, mock.MatchedBy(func(got model.Order) bool {
		return got.ID == o.ID && got.Status == model.OrderStatusDone
	})).Once()

	rec := request(env.e, http.MethodPut, "/admin/orders/"+itoa(o.ID)+"/status", `{"status":"done"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ch handler.StatusChangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ch))
	assert.Equal(t, "new", ch.Before)
	assert.Equal(t, "done", ch.Order.Status)

	rec = request(env.e, http.MethodPut, "/admin/orders/"+itoa(o.ID)+"/status", `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(env.e, http.MethodGet, "/admin/orders/"+itoa(o.ID)+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []handler.AuditLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, int64(9000), logs[0].ActorUserID)
	assert.JSONEq(t, `{"status":"new"}`, logs[0].Before)
	assert.JSONEq(t, `{"status":"done"}`, logs[0].After)

	env.notifier.AssertExpectations(t)
}

func TestAdminProducts(t *testing.T) {
	env := newAdminEnv(t)

	rec := request(env.e, http.MethodPost, "/admin/products", `{"code":"mug","title":"ماگ","price":90000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p handler.ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.IsActive)
	assert.Equal(t, "add_mug", p.DeepLink)

	rec = request(env.e, http.MethodPost, "/admin/products", `{"code":"","title":"x","price":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(env.e, http.MethodPost, "/admin/products/"+itoa(p.ID)+"/deactivate", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = request(env.e, http.MethodGet, "/admin/products/mug", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.False(t, p.IsActive)

	assert.Equal(t, http.StatusNotFound, request(env.e, http.MethodGet, "/admin/products/none", "").Code)
	assert.Equal(t, http.StatusNotFound, request(env.e, http.MethodPost, "/admin/products/999/deactivate", "").Code)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
