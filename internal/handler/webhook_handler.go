package handler

import (
	"context"
	"net/http"

	"orderbot/internal/chat"
	"orderbot/internal/logging"

	"github.com/labstack/echo/v4"
)

// UpdateHandler はゲートウェイから届いた1件を処理する（bot.Router）。
type UpdateHandler interface {
	Handle(ctx context.Context, upd chat.Update) error
}

type WebhookResponse struct {
	OK bool `json:"ok"`
}

type WebhookHandler struct {
	updates UpdateHandler
}

func NewWebhookHandler(updates UpdateHandler) *WebhookHandler {
	return &WebhookHandler{updates: updates}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.POST("/webhook", h.receive, mw...)
}

// 処理に失敗しても 200 を返す（ゲートウェイに再送させない）。
// ユーザーへの通知は Router 側で済んでいる。
func (h *WebhookHandler) receive(c echo.Context) error {
	var upd chat.Update
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if upd.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
	}

	ctx := c.Request().Context()
	if err := h.updates.Handle(ctx, upd); err != nil {
		logging.FromCtx(ctx).Warn("update failed", "user_id", upd.UserID, "err", err)
		return c.JSON(http.StatusOK, WebhookResponse{OK: false})
	}
	return c.JSON(http.StatusOK, WebhookResponse{OK: true})
}
