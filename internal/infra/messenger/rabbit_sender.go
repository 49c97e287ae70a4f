package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderbot/internal/chat"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher は *amqp.Channel のうち送信に使う部分。
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Outbound はゲートウェイが受け取って配信する1通。
type Outbound struct {
	MessageID      string          `json:"message_id"`
	RecipientID    int64           `json:"recipient_id"`
	Text           string          `json:"text"`
	Buttons        [][]chat.Button `json:"buttons,omitempty"`
	Keyboard       [][]string      `json:"keyboard,omitempty"`
	RemoveKeyboard bool            `json:"remove_keyboard,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type RabbitSender struct {
	pub        Publisher
	exchange   string
	routingKey string
	now        func() time.Time
}

func NewRabbitSender(pub Publisher, exchange, routingKey string) *RabbitSender {
	return &RabbitSender{pub: pub, exchange: exchange, routingKey: routingKey, now: time.Now}
}

func (s *RabbitSender) Send(ctx context.Context, recipientID int64, msg chat.Message) error {
	out := Outbound{
		MessageID:      uuid.NewString(),
		RecipientID:    recipientID,
		Text:           msg.Text,
		Buttons:        msg.Buttons,
		Keyboard:       msg.Keyboard,
		RemoveKeyboard: msg.RemoveKeyboard,
		CreatedAt:      s.now().UTC(),
	}
	body, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode outbound: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.pub.PublishWithContext(ctx,
		s.exchange,
		s.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    out.MessageID,
			Timestamp:    out.CreatedAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", s.exchange, err)
	}
	return nil
}

// DialRabbit は接続して送信用の exchange を宣言する。
func DialRabbit(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return conn, ch, nil
}

var _ chat.Sender = (*RabbitSender)(nil)
