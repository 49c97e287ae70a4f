package usecase

import (
	"context"
	"time"

	"orderbot/internal/domain/model"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// イベント送信に使える時間。ユーザーへの返信をこれ以上待たせない
var EventPublishTimeout = 2 * time.Second

// 呼び出し元のキャンセルは引き継がず、時間だけ区切る
func eventContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), EventPublishTimeout)
}

// 注文イベントの外部通知（失敗しても注文は成立する）
type OrderEventPublisher interface {
	OrderCreated(ctx context.Context, order model.Order, fromCart bool, itemCount int) error
	OrderStatusChanged(ctx context.Context, order model.Order, before model.OrderStatus, actorID int64) error
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) OrderCreated(context.Context, model.Order, bool, int) error {
	return nil
}

func (NoopEventPublisher) OrderStatusChanged(context.Context, model.Order, model.OrderStatus, int64) error {
	return nil
}
