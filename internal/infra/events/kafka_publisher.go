package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"orderbot/internal/domain/model"
	"orderbot/internal/logging"
	"orderbot/internal/metrics"
	"orderbot/internal/usecase"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent は Kafka に流す JSON。キーは注文ID（同じ注文の順序を保つ）。
type OrderEvent struct {
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	OrderID    int64             `json:"order_id"`
	UserID     int64             `json:"user_id"`
	Status     model.OrderStatus `json:"status"`
	Before     model.OrderStatus `json:"before,omitempty"`
	ActorID    int64             `json:"actor_id,omitempty"`
	FromCart   bool              `json:"from_cart,omitempty"`
	ItemCount  int               `json:"item_count,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// KafkaPublisher は AsyncProducer に積むだけで ack は待たない。
// 送信失敗は Errors() を読むゴルーチンでログとメトリクスに落とす。
type KafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	log      *slog.Logger
	now      func() time.Time
	done     chan struct{}
}

func NewKafkaPublisher(producer sarama.AsyncProducer, topic string, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = logging.New("events")
	}
	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go p.drainErrors()
	return p
}

// NewAsyncProducer は全レプリカの ack を待つ設定で作る。成功通知は読まないので返さない。
func NewAsyncProducer(brokers []string) (sarama.AsyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = false
	cfg.Producer.Return.Errors = true
	cfg.Producer.Retry.Max = 3
	cfg.Net.DialTimeout = 5 * time.Second
	return sarama.NewAsyncProducer(brokers, cfg)
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, order model.Order, fromCart bool, itemCount int) error {
	return p.publish(ctx, OrderEvent{
		Type:      TypeOrderCreated,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		FromCart:  fromCart,
		ItemCount: itemCount,
	})
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, order model.Order, before model.OrderStatus, actorID int64) error {
	return p.publish(ctx, OrderEvent{
		Type:    TypeOrderStatusChanged,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		Before:  before,
		ActorID: actorID,
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, ev OrderEvent) error {
	ev.EventID = uuid.NewString()
	ev.OccurredAt = p.now().UTC()

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:    p.topic,
		Key:      sarama.StringEncoder(strconv.FormatInt(ev.OrderID, 10)),
		Value:    sarama.ByteEncoder(body),
		Metadata: ev.Type,
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("kafka enqueue %s: %w", ev.Type, err)
	}
	select {
	case p.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("kafka enqueue %s: %w", ev.Type, ctx.Err())
	}
}

func (p *KafkaPublisher) drainErrors() {
	defer close(p.done)
	for perr := range p.producer.Errors() {
		metrics.NotificationFailures.WithLabelValues("order_event").Inc()
		attrs := []any{"err", perr.Err}
		if perr.Msg != nil {
			attrs = append(attrs, "topic", perr.Msg.Topic, "type", perr.Msg.Metadata)
		}
		p.log.Warn("kafka send failed", attrs...)
	}
}

// Close は積み残しを送り切ってから返る。
func (p *KafkaPublisher) Close() error {
	p.producer.AsyncClose()
	<-p.done
	return nil
}

var _ usecase.OrderEventPublisher = (*KafkaPublisher)(nil)
