package conversation

import (
	"context"
	"fmt"

	"orderbot/internal/chat"
	"orderbot/internal/domain/model"
	"orderbot/internal/logging"
	"orderbot/internal/metrics"
	"orderbot/internal/usecase"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (usecase.PlacedOrder, error)
}

type CartSummarizer interface {
	Summary(ctx context.Context, userID int64) (usecase.CartSummary, error)
}

// OrderNotifier は失敗を返さない（ベストエフォート）。
type OrderNotifier interface {
	NewOrder(ctx context.Context, order model.Order, submitter string, fromCart bool)
}

// Engine は Transition の結果に応じて保存・送信・注文作成を行う。
type Engine struct {
	store    DraftStore
	catalog  *Catalog
	orders   OrderPlacer
	carts    CartSummarizer
	notifier OrderNotifier
	sender   chat.Sender
	clock    usecase.Clock
	locks    userLocks
}

func NewEngine(
	store DraftStore,
	catalog *Catalog,
	orders OrderPlacer,
	carts CartSummarizer,
	notifier OrderNotifier,
	sender chat.Sender,
	clock usecase.Clock,
) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if clock == nil {
		clock = usecase.SystemClock{}
	}
	return &Engine{
		store:    store,
		catalog:  catalog,
		orders:   orders,
		carts:    carts,
		notifier: notifier,
		sender:   sender,
		clock:    clock,
	}
}

// StartDirect は空の下書きで始める。進行中の下書きがあれば置き換える。
func (e *Engine) StartDirect(ctx context.Context, userID int64) error {
	defer e.locks.lock(userID)()

	if err := e.save(ctx, NewDraft(userID)); err != nil {
		return err
	}
	metrics.Conversations.WithLabelValues("started").Inc()
	e.send(ctx, userID, chat.Message{Text: msgStartDirect, Keyboard: cancelKeyboard})
	return nil
}

// StartCheckout はカートが空なら案内だけして下書きは作らない。
func (e *Engine) StartCheckout(ctx context.Context, userID int64) error {
	defer e.locks.lock(userID)()

	summary, err := e.carts.Summary(ctx, userID)
	if err != nil {
		return fmt.Errorf("cart summary: %w", err)
	}
	if summary.Empty() {
		metrics.Conversations.WithLabelValues("empty_cart").Inc()
		e.send(ctx, userID, chat.Text(msgEmptyCart))
		return nil
	}

	text := CartText(summary)
	if err := e.save(ctx, NewCartDraft(userID, text, summary.Total)); err != nil {
		return err
	}
	metrics.Conversations.WithLabelValues("started").Inc()
	e.send(ctx, userID, chat.Message{Text: text + msgStartCheckout, Keyboard: cancelKeyboard})
	return nil
}

// Active は有効な下書きがあるか。
func (e *Engine) Active(ctx context.Context, userID int64) (bool, error) {
	_, ok, err := e.store.Get(ctx, userID)
	return ok, err
}

// Cancel は下書きを捨てる。下書きが無ければ false。
func (e *Engine) Cancel(ctx context.Context, userID int64) (bool, error) {
	defer e.locks.lock(userID)()

	_, ok, err := e.store.Get(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	if err := e.store.Delete(ctx, userID); err != nil {
		return false, fmt.Errorf("delete draft: %w", err)
	}
	metrics.Conversations.WithLabelValues("cancelled").Inc()
	e.send(ctx, userID, chat.Message{Text: msgCancelled, RemoveKeyboard: true})
	return true, nil
}

// Handle は下書きがある場合だけ入力を処理し、handled=true を返す。
// 同じユーザーの入力は1件ずつ処理する（確認ボタンの連打対策）。
func (e *Engine) Handle(ctx context.Context, upd chat.Update) (bool, error) {
	defer e.locks.lock(upd.UserID)()

	d, ok, err := e.store.Get(ctx, upd.UserID)
	if err != nil {
		return false, fmt.Errorf("load draft: %w", err)
	}
	if !ok {
		return false, nil
	}

	next, outcome := Transition(d, Input{Text: upd.Text, Action: upd.Action}, e.catalog)
	log := logging.FromCtx(ctx)
	log.Debug("conversation transition", "user_id", upd.UserID, "from", d.State, "to", next.State, "outcome", outcome)

	switch outcome {
	case OutcomeIgnored:
		// 入力があった以上は期限を延ばす
		return true, e.save(ctx, d)

	case OutcomeReprompt:
		metrics.ValidationFailures.WithLabelValues(string(d.State)).Inc()
		if err := e.save(ctx, d); err != nil {
			return true, err
		}
		e.send(ctx, upd.UserID, reprompt(d, e.catalog))
		return true, nil

	case OutcomeAdvanced:
		if err := e.save(ctx, next); err != nil {
			return true, err
		}
		e.send(ctx, upd.UserID, prompt(next, e.catalog))
		return true, nil

	case OutcomeRestarted:
		if err := e.save(ctx, next); err != nil {
			return true, err
		}
		e.send(ctx, upd.UserID, chat.Message{Text: msgRestarted, Keyboard: cancelKeyboard})
		return true, nil

	case OutcomeCancelled:
		if err := e.store.Delete(ctx, upd.UserID); err != nil {
			return true, fmt.Errorf("delete draft: %w", err)
		}
		metrics.Conversations.WithLabelValues("cancelled").Inc()
		e.send(ctx, upd.UserID, chat.Message{Text: msgCancelled, RemoveKeyboard: true})
		return true, nil

	case OutcomeConfirmed:
		return true, e.confirm(ctx, upd.UserID, upd.FullName)
	}

	return true, nil
}

// confirm は下書きを取り出してから注文を作る。取り出せなければ別の確定が先に済んでいる。
func (e *Engine) confirm(ctx context.Context, userID int64, submitter string) error {
	log := logging.FromCtx(ctx)

	d, ok, err := e.store.Take(ctx, userID)
	if err != nil {
		return fmt.Errorf("take draft: %w", err)
	}
	if !ok {
		log.Info("draft already confirmed", "user_id", userID)
		return nil
	}
	if d.State != StateConfirm {
		// 別プロセスで状態が変わっていた
		return e.save(ctx, d)
	}

	placed, err := e.orders.PlaceOrder(ctx, usecase.PlaceOrderInput{
		UserID:      d.UserID,
		NationalID:  d.Field(FieldNationalID),
		FullName:    d.Field(FieldFullName),
		Phone:       d.Field(FieldPhone),
		Address:     d.Address(),
		Description: d.OrderDescription(),
		FromCart:    d.FromCart,
	})
	switch usecase.CodeOf(err) {
	case "":
	case usecase.CodeEmptyCart:
		// 確認中にカートが空になった。下書きは捨てる
		metrics.Conversations.WithLabelValues("empty_cart").Inc()
		e.send(ctx, d.UserID, chat.Message{Text: msgEmptyCart, RemoveKeyboard: true})
		return nil
	default:
		// 下書きを戻すので確認ボタンからやり直せる
		log.Error("place order failed", "user_id", d.UserID, "err", err)
		if err := e.save(ctx, d); err != nil {
			log.Error("restore draft failed", "user_id", d.UserID, "err", err)
		}
		e.send(ctx, d.UserID, chat.Text(msgSaveFailed))
		return nil
	}

	metrics.Conversations.WithLabelValues("completed").Inc()

	e.send(ctx, d.UserID, orderPlacedMessage(placed.Order.ID))
	e.send(ctx, d.UserID, chat.Message{Text: msgFinished, Keyboard: finishedKeyboard})

	if e.notifier != nil {
		e.notifier.NewOrder(ctx, placed.Order, submitter, d.FromCart)
	}
	return nil
}

func (e *Engine) save(ctx context.Context, d Draft) error {
	d.UpdatedAt = e.clock.Now().UTC()
	if err := e.store.Save(ctx, d); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// ユーザーへの送信失敗は記録だけ
func (e *Engine) send(ctx context.Context, userID int64, msg chat.Message) {
	if err := e.sender.Send(ctx, userID, msg); err != nil {
		logging.FromCtx(ctx).Warn("send to user failed", "user_id", userID, "err", err)
	}
}
