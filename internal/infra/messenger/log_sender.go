package messenger

import (
	"context"
	"log/slog"

	"orderbot/internal/chat"
)

// LogSender は送信先が無い環境（ローカル・テスト）用。内容をログに出すだけ。
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, recipientID int64, msg chat.Message) error {
	s.log.InfoContext(ctx, "outbound message",
		"recipient_id", recipientID,
		"text", msg.Text,
		"buttons", len(msg.Buttons),
		"keyboard_rows", len(msg.Keyboard),
	)
	return nil
}

var _ chat.Sender = (*LogSender)(nil)
