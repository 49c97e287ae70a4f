package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orderbot/internal/domain/model"
	"orderbot/internal/logging"
	repo "orderbot/internal/repository"
)

type AdminListKind string

const (
	AdminListAll        AdminListKind = "all"
	AdminListLatest     AdminListKind = "latest"
	AdminListUnreviewed AdminListKind = "unreviewed"
)

const (
	adminAllLimit    = 1000
	adminLatestLimit = 20
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	items  repo.OrderItemRepository
	audits repo.AuditLogRepository
	events OrderEventPublisher
	clock  Clock
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	audits repo.AuditLogRepository,
	events OrderEventPublisher,
	clock Clock,
) *AdminOrderUsecase {
	if events == nil {
		events = NoopEventPublisher{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &AdminOrderUsecase{tx: tx, orders: orders, items: items, audits: audits, events: events, clock: clock}
}

type StatusChange struct {
	Order  model.Order
	Before model.OrderStatus
}

// 注文一覧（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context, kind AdminListKind) ([]model.Order, error) {
	var f repo.OrderListFilter
	switch kind {
	case AdminListAll:
		f.Limit = adminAllLimit
	case AdminListLatest:
		f.Limit = adminLatestLimit
	case AdminListUnreviewed:
		f.Limit = adminAllLimit
		f.Status = model.OrderStatusNew
	default:
		return []model.Order{}, NewAppError(CodeInvalid, "invalid list kind")
	}

	orders, err := u.orders.List(ctx, f)
	if err != nil {
		return []model.Order{}, internalError("list orders", err)
	}
	return orders, nil
}

func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID int64) (OrderDetail, error) {
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderDetail{}, NewAppError(CodeNotFound, "order not found")
	}
	if err != nil {
		return OrderDetail{}, internalError("find order", err)
	}
	return loadDetail(ctx, u.items, o)
}

// ステータス更新（どの状態からどの状態へも可）。監査ログも同じTxで残す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, status string) (StatusChange, error) {
	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(status))
	if !ok {
		return StatusChange{}, NewAppError(CodeInvalid, "invalid status")
	}

	var out StatusChange

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewAppError(CodeNotFound, "order not found")
		}
		if err != nil {
			return internalError("find order", err)
		}

		before := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewAppError(CodeNotFound, "order not found")
			}
			return internalError("update status", err)
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, before),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, newStatus),
			CreatedAt:    u.clock.Now().UTC(),
		}); err != nil {
			return internalError("audit log", err)
		}

		o.Status = newStatus
		out = StatusChange{Order: o, Before: before}
		return nil
	})
	if err != nil {
		if _, ok := AsAppError(err); ok {
			return StatusChange{}, err
		}
		return StatusChange{}, internalError("update status", err)
	}

	ectx, cancel := eventContext(ctx)
	defer cancel()
	if err := u.events.OrderStatusChanged(ectx, out.Order, out.Before, actorAdminUserID); err != nil {
		logging.FromCtx(ctx).Warn("status event publish failed", "order_id", orderID, "err", err)
	}
	return out, nil
}

// StatusHistory は注文のステータス変更履歴（新しい順）。
func (u *AdminOrderUsecase) StatusHistory(ctx context.Context, orderID int64, limit int) ([]model.AuditLog, error) {
	if orderID <= 0 {
		return []model.AuditLog{}, NewAppError(CodeInvalid, "invalid id")
	}
	logs, err := u.audits.ListOrderStatusChanges(ctx, orderID, limit)
	if err != nil {
		return []model.AuditLog{}, internalError("list audit logs", err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
