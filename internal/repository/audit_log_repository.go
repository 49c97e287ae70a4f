package repository

import (
	"context"

	"orderbot/internal/domain/model"
)

// 監査ログは注文ステータス変更の履歴としてだけ読む。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// ListOrderStatusChanges は1注文分を新しい順で返す。limit<=0 は既定件数。
	ListOrderStatusChanges(ctx context.Context, orderID int64, limit int) ([]model.AuditLog, error)
}
