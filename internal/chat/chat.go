// Package chat は配信チャネルに依存しない受信イベント・送信メッセージの型。
package chat

import "context"

// Update はゲートウェイから届く1件の入力。Text か Action のどちらかが入る。
type Update struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Text     string `json:"text,omitempty"`
	Action   string `json:"action,omitempty"`
}

func (u Update) IsAction() bool { return u.Action != "" }

// Button はインラインボタン。押されると Action が Update.Action として戻ってくる。
type Button struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

type Message struct {
	Text           string     `json:"text"`
	Buttons        [][]Button `json:"buttons,omitempty"`
	Keyboard       [][]string `json:"keyboard,omitempty"`
	RemoveKeyboard bool       `json:"remove_keyboard,omitempty"`
}

func Text(s string) Message { return Message{Text: s} }

type Sender interface {
	Send(ctx context.Context, recipientID int64, msg Message) error
}

// Keyboard は options を width 列ずつに並べる。extra は最後の行として足す。
func Keyboard(options []string, width int, extra ...string) [][]string {
	if width <= 0 {
		width = 3
	}
	rows := make([][]string, 0, len(options)/width+2)
	for i := 0; i < len(options); i += width {
		end := i + width
		if end > len(options) {
			end = len(options)
		}
		row := make([]string, end-i)
		copy(row, options[i:end])
		rows = append(rows, row)
	}
	if len(extra) > 0 {
		rows = append(rows, extra)
	}
	return rows
}
