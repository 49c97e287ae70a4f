package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"orderbot/internal/domain/model"
	"orderbot/internal/usecase"

	"github.com/labstack/echo/v4"
)

// StatusNotifier は注文者へのステータス変更通知（notify.Notifier）。
type StatusNotifier interface {
	StatusChanged(ctx context.Context, order model.Order)
}

type AdminOrderHandler struct {
	uc       *usecase.AdminOrderUsecase
	notifier StatusNotifier
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, notifier StatusNotifier) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, notifier: notifier}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	FullName    string `json:"full_name"`
	NationalID  string `json:"national_id"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type OrderItemResponse struct {
	ProductTitle string `json:"product_title"`
	Quantity     int64  `json:"quantity"`
	Price        int64  `json:"price"`
	LineTotal    int64  `json:"line_total"`
}

type OrderDetailResponse struct {
	Order    OrderResponse       `json:"order"`
	Items    []OrderItemResponse `json:"items"`
	Subtotal int64               `json:"subtotal"`
}

type StatusChangeResponse struct {
	Order  OrderResponse `json:"order"`
	Before string        `json:"before"`
}

type AuditLogResponse struct {
	ID          int64  `json:"id"`
	ActorUserID int64  `json:"actor_user_id"`
	Before      string `json:"before_json"`
	After       string `json:"after_json"`
	CreatedAt   string `json:"created_at"`
}

// g は AuthJWT + AdminRoleGuard 済みの /admin グループ
func (h *AdminOrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.GET("/orders/:id", h.detail)
	g.PUT("/orders/:id/status", h.updateStatus)
	g.GET("/orders/:id/history", h.history)
}

// kind: all | latest | unreviewed（default all）
func (h *AdminOrderHandler) list(c echo.Context) error {
	kind := usecase.AdminListAll
	if v := c.QueryParam("kind"); v != "" {
		kind = usecase.AdminListKind(v)
	}

	orders, err := h.uc.List(c.Request().Context(), kind)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	d, err := h.uc.GetDetail(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}

	items := make([]OrderItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, OrderItemResponse{
			ProductTitle: it.ProductTitle,
			Quantity:     it.Quantity,
			Price:        it.Price,
			LineTotal:    it.LineTotal(),
		})
	}
	return c.JSON(http.StatusOK, OrderDetailResponse{
		Order:    toOrderResponse(d.Order),
		Items:    items,
		Subtotal: d.Subtotal,
	})
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// 操作した管理者ID（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	ch, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	if h.notifier != nil {
		h.notifier.StatusChanged(c.Request().Context(), ch.Order)
	}

	return c.JSON(http.StatusOK, StatusChangeResponse{
		Order:  toOrderResponse(ch.Order),
		Before: string(ch.Before),
	})
}

func (h *AdminOrderHandler) history(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	logs, err := h.uc.StatusHistory(c.Request().Context(), orderID, limit)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, AuditLogResponse{
			ID:          l.ID,
			ActorUserID: l.ActorUserID,
			Before:      l.BeforeJSON,
			After:       l.AfterJSON,
			CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func toOrderResponse(o model.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		FullName:    o.FullName,
		NationalID:  o.NationalID,
		Phone:       o.Phone,
		Address:     o.Address,
		Description: o.Description,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
