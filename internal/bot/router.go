// Package bot は受信イベントをコマンド・メニュー・ボタン・会話へ振り分ける。
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"orderbot/internal/chat"
	"orderbot/internal/conversation"
	"orderbot/internal/logging"
	"orderbot/internal/metrics"
	"orderbot/internal/notify"
	"orderbot/internal/usecase"
)

var errBadPayload = errors.New("bad action payload")

type Router struct {
	engine   *conversation.Engine
	carts    *usecase.CartUsecase
	orders   *usecase.OrderUsecase
	admin    *usecase.AdminOrderUsecase
	products *usecase.ProductUsecase
	notifier *notify.Notifier
	sender   chat.Sender
	admins   Admins
}

func NewRouter(
	engine *conversation.Engine,
	carts *usecase.CartUsecase,
	orders *usecase.OrderUsecase,
	admin *usecase.AdminOrderUsecase,
	products *usecase.ProductUsecase,
	notifier *notify.Notifier,
	sender chat.Sender,
	admins Admins,
) *Router {
	return &Router{
		engine:   engine,
		carts:    carts,
		orders:   orders,
		admin:    admin,
		products: products,
		notifier: notifier,
		sender:   sender,
		admins:   admins,
	}
}

// Handle の優先順位: ボタン → コマンド → 進行中の会話 → メニュー文言。
func (r *Router) Handle(ctx context.Context, upd chat.Update) error {
	if upd.UserID == 0 {
		return errors.New("update without user id")
	}
	ctx = logging.WithCtx(ctx, logging.FromCtx(ctx).With("user_id", upd.UserID))

	var err error
	switch {
	case upd.IsAction():
		metrics.Updates.WithLabelValues("action").Inc()
		err = r.handleAction(ctx, upd)
	case isCommand(upd.Text):
		metrics.Updates.WithLabelValues("command").Inc()
		err = r.handleCommand(ctx, upd)
	default:
		metrics.Updates.WithLabelValues("text").Inc()
		err = r.handleText(ctx, upd)
	}

	if err != nil {
		logging.FromCtx(ctx).Error("update failed", "err", err)
		r.reply(ctx, upd.UserID, chat.Text(msgInternal))
	}
	return err
}

var knownCommands = map[string]struct{}{
	"/start":                   {},
	"/order":                   {},
	conversation.CancelCommand: {},
	"/my_orders":               {},
	"/add_test_product":        {},
}

// parseCommand は "/cmd@botname args..." を分解する。
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd, fields[1:]
}

// 知らない "/..." は会話の入力として扱う（説明欄に "/" で始まる文を書く人もいる）
func isCommand(text string) bool {
	cmd, _ := parseCommand(text)
	_, ok := knownCommands[cmd]
	return ok
}

func (r *Router) handleCommand(ctx context.Context, upd chat.Update) error {
	cmd, args := parseCommand(upd.Text)

	switch cmd {
	case "/start":
		return r.start(ctx, upd, args)
	case "/order":
		return r.engine.StartDirect(ctx, upd.UserID)
	case conversation.CancelCommand:
		_, err := r.engine.Cancel(ctx, upd.UserID)
		return err
	case "/my_orders":
		return r.myOrders(ctx, upd.UserID)
	case "/add_test_product":
		return r.addTestProduct(ctx, upd.UserID)
	}
	return nil
}

func (r *Router) handleText(ctx context.Context, upd chat.Update) error {
	handled, err := r.engine.Handle(ctx, upd)
	if err != nil || handled {
		return err
	}

	switch strings.TrimSpace(upd.Text) {
	case menuNewOrder, menuNewOrderAlt:
		return r.engine.StartDirect(ctx, upd.UserID)
	case menuMyOrders:
		return r.myOrders(ctx, upd.UserID)
	case menuAdminAll:
		return r.adminList(ctx, upd.UserID, usecase.AdminListAll)
	case menuAdminLatest:
		return r.adminList(ctx, upd.UserID, usecase.AdminListLatest)
	case menuAdminPending:
		return r.adminList(ctx, upd.UserID, usecase.AdminListUnreviewed)
	}
	return nil
}

func (r *Router) handleAction(ctx context.Context, upd chat.Update) error {
	name, payload, _ := strings.Cut(upd.Action, ":")

	switch name {
	case conversation.ActionConfirm, conversation.ActionRestart, conversation.ActionCancel:
		handled, err := r.engine.Handle(ctx, upd)
		if err != nil {
			return err
		}
		if !handled {
			r.reply(ctx, upd.UserID, chat.Text(msgNoActiveDraft))
		}
		return nil
	case actionCheckout:
		return r.engine.StartCheckout(ctx, upd.UserID)
	case actionViewCart:
		return r.showCart(ctx, upd.UserID)
	case actionCartInc, actionCartDec, actionCartDel:
		return r.modifyCart(ctx, upd.UserID, name, payload)
	case actionViewOrder:
		return r.adminViewOrder(ctx, upd.UserID, payload)
	case actionSetStatus:
		return r.adminSetStatus(ctx, upd.UserID, payload)
	case actionUserOrder:
		return r.userViewOrder(ctx, upd.UserID, payload)
	}

	logging.FromCtx(ctx).Debug("unknown action", "action", upd.Action)
	return nil
}

func (r *Router) start(ctx context.Context, upd chat.Update, args []string) error {
	if len(args) > 0 && strings.HasPrefix(args[0], usecase.DeepLinkAddPrefix) {
		p, err := r.carts.AddByDeepLink(ctx, upd.UserID, args[0])
		switch usecase.CodeOf(err) {
		case "":
			r.reply(ctx, upd.UserID, addedToCartMessage(p))
			return nil
		case usecase.CodeNotFound, usecase.CodeInvalid:
			r.reply(ctx, upd.UserID, chat.Text(msgProductMissing))
			return nil
		case usecase.CodeInactive:
			r.reply(ctx, upd.UserID, chat.Text(msgProductOff))
			return nil
		default:
			return err
		}
	}

	if r.admins.IsAdmin(upd.UserID) {
		r.reply(ctx, upd.UserID, chat.Message{Text: msgGreetAdmin, Keyboard: adminMenu()})
		return nil
	}

	has, err := r.orders.HasOrders(ctx, upd.UserID)
	if err != nil {
		return err
	}
	r.reply(ctx, upd.UserID, chat.Message{Text: msgGreetUser, Keyboard: userMenu(has)})
	return nil
}

func (r *Router) myOrders(ctx context.Context, userID int64) error {
	orders, err := r.orders.ListMyOrders(ctx, userID, usecase.MyOrdersLimit)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		r.reply(ctx, userID, chat.Text(msgNoOrdersUser))
		return nil
	}
	r.reply(ctx, userID, myOrdersMessage(orders))
	return nil
}

func (r *Router) userViewOrder(ctx context.Context, userID int64, payload string) error {
	orderID, err := parseID(payload)
	if err != nil {
		r.reply(ctx, userID, chat.Text(msgInvalidData))
		return nil
	}

	d, err := r.orders.GetMyOrderDetail(ctx, userID, orderID)
	switch usecase.CodeOf(err) {
	case "":
		r.reply(ctx, userID, userDetailMessage(d))
		return nil
	case usecase.CodeNotFound, usecase.CodeInvalid:
		r.reply(ctx, userID, chat.Text(msgOrderNotFound))
		return nil
	case usecase.CodeForbidden:
		r.reply(ctx, userID, chat.Text(msgForbidden))
		return nil
	default:
		return err
	}
}

func (r *Router) showCart(ctx context.Context, userID int64) error {
	s, err := r.carts.Summary(ctx, userID)
	if err != nil {
		return err
	}
	r.reply(ctx, userID, cartMessage(s))
	return nil
}

func (r *Router) modifyCart(ctx context.Context, userID int64, name, payload string) error {
	entryID, err := parseID(payload)
	if err != nil {
		r.reply(ctx, userID, chat.Text(msgCartBadData))
		return nil
	}

	op := usecase.CartOp(strings.TrimPrefix(name, "cart_"))
	err = r.carts.ModifyEntry(ctx, userID, entryID, op)
	switch usecase.CodeOf(err) {
	case "":
		return r.showCart(ctx, userID)
	case usecase.CodeNotFound:
		r.reply(ctx, userID, chat.Text(msgCartNotFound))
		return nil
	case usecase.CodeInvalid:
		r.reply(ctx, userID, chat.Text(msgCartBadData))
		return nil
	default:
		return err
	}
}

// ===== 管理者 =====

func (r *Router) adminList(ctx context.Context, userID int64, kind usecase.AdminListKind) error {
	// 管理者以外のメニュー文言は無視
	if !r.admins.IsAdmin(userID) {
		return nil
	}

	orders, err := r.admin.List(ctx, kind)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		if kind == usecase.AdminListUnreviewed {
			r.reply(ctx, userID, chat.Text(msgNoPendingAdmin))
		} else {
			r.reply(ctx, userID, chat.Text(msgNoOrdersAdmin))
		}
		return nil
	}
	r.reply(ctx, userID, adminListMessage(kind, orders))
	return nil
}

func (r *Router) adminViewOrder(ctx context.Context, userID int64, payload string) error {
	if !r.admins.IsAdmin(userID) {
		r.reply(ctx, userID, chat.Text(msgNotAdmin))
		return nil
	}
	orderID, err := parseID(payload)
	if err != nil {
		r.reply(ctx, userID, chat.Text(msgInvalidData))
		return nil
	}

	d, err := r.admin.GetDetail(ctx, orderID)
	switch usecase.CodeOf(err) {
	case "":
		r.reply(ctx, userID, adminDetailMessage(d))
		return nil
	case usecase.CodeNotFound:
		r.reply(ctx, userID, chat.Text(msgOrderNotFound))
		return nil
	default:
		return err
	}
}

// payload: <orderID>:<status>
func (r *Router) adminSetStatus(ctx context.Context, userID int64, payload string) error {
	if !r.admins.IsAdmin(userID) {
		r.reply(ctx, userID, chat.Text(msgNotAdmin))
		return nil
	}
	idPart, status, ok := strings.Cut(payload, ":")
	orderID, err := parseID(idPart)
	if !ok || err != nil {
		r.reply(ctx, userID, chat.Text(msgInvalidData))
		return nil
	}

	ch, err := r.admin.UpdateStatus(ctx, userID, orderID, status)
	switch usecase.CodeOf(err) {
	case "":
	case usecase.CodeNotFound:
		r.reply(ctx, userID, chat.Text(msgOrderNotFound))
		return nil
	case usecase.CodeInvalid:
		r.reply(ctx, userID, chat.Text(msgInvalidStatus))
		return nil
	default:
		return err
	}

	r.reply(ctx, userID, chat.Text(fmt.Sprintf("✅ وضعیت سفارش #%d به «%s» تغییر کرد.", orderID, ch.Order.Status.Label())))
	r.notifier.StatusChanged(ctx, ch.Order)
	return nil
}

func (r *Router) addTestProduct(ctx context.Context, userID int64) error {
	if !r.admins.IsAdmin(userID) {
		r.reply(ctx, userID, chat.Text(msgNotAdmin))
		return nil
	}

	p, created, err := r.products.EnsureTestProduct(ctx)
	if err != nil {
		return err
	}
	if created {
		r.reply(ctx, userID, productMessage("محصول تستی ساخته شد ✅", p))
	} else {
		r.reply(ctx, userID, productMessage("این محصول تستی قبلاً وجود داره ✅", p))
	}
	return nil
}

func (r *Router) reply(ctx context.Context, userID int64, msg chat.Message) {
	if err := r.sender.Send(ctx, userID, msg); err != nil {
		logging.FromCtx(ctx).Warn("reply failed", "err", err)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadPayload
	}
	return id, nil
}
