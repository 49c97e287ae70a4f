// Package notify は管理者・注文者への通知。どれも失敗しても呼び出し元には返さない。
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"orderbot/internal/chat"
	"orderbot/internal/domain/model"
	"orderbot/internal/logging"
	"orderbot/internal/metrics"

	"golang.org/x/sync/errgroup"
)

const maxParallelSends = 8

type Notifier struct {
	sender chat.Sender
	admins []int64
	log    *slog.Logger
}

func NewNotifier(sender chat.Sender, admins []int64, log *slog.Logger) *Notifier {
	if log == nil {
		log = logging.New("notify")
	}
	return &Notifier{sender: sender, admins: admins, log: log}
}

func NewOrderText(order model.Order, submitter string, fromCart bool) string {
	text := fmt.Sprintf("📥 سفارش جدید ثبت شد\nکد: #%d\nکاربر: %s (%d)", order.ID, submitter, order.UserID)
	if fromCart {
		text += "\nمنبع: 🛒 سبد خرید"
	}
	return text
}

func StatusChangedText(order model.Order) string {
	return fmt.Sprintf("سلام 👋\nوضعیت سفارش شما با کد #%d به «%s» تغییر کرد.", order.ID, order.Status.Label())
}

// NewOrder は全管理者へ並行に送る。宛先ごとの失敗は記録して捨てる。
func (n *Notifier) NewOrder(ctx context.Context, order model.Order, submitter string, fromCart bool) {
	msg := chat.Text(NewOrderText(order, submitter, fromCart))

	var g errgroup.Group
	g.SetLimit(maxParallelSends)
	for _, adminID := range n.admins {
		g.Go(func() error {
			if err := n.sender.Send(ctx, adminID, msg); err != nil {
				metrics.NotificationFailures.WithLabelValues("admin_new_order").Inc()
				n.log.Warn("admin notification failed", "admin_id", adminID, "order_id", order.ID, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// StatusChanged は注文者へ新しいステータスを知らせる。
func (n *Notifier) StatusChanged(ctx context.Context, order model.Order) {
	if err := n.sender.Send(ctx, order.UserID, chat.Text(StatusChangedText(order))); err != nil {
		metrics.NotificationFailures.WithLabelValues("status_change").Inc()
		n.log.Warn("status notification failed", "user_id", order.UserID, "order_id", order.ID, "err", err)
	}
}
