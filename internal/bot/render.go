package bot

import (
	"fmt"
	"strings"

	"orderbot/internal/chat"
	"orderbot/internal/conversation"
	"orderbot/internal/domain/model"
	"orderbot/internal/usecase"
)

const timeLayout = "2006-01-02 15:04:05"

// メニュー文言（受信テキストとの一致判定にも使う）
const (
	menuNewOrder     = "ثبت سفارش جدید"
	menuNewOrderAlt  = "ثبت سفارش مرحله‌ای"
	menuMyOrders     = "سفارش های من"
	menuAdminAll     = "لیست همه سفارشات"
	menuAdminLatest  = "لیست آخرین سفارشات"
	menuAdminPending = "سفارشات تعیین وضعیت نشده"
)

const (
	actionViewCart  = "view_cart"
	actionCheckout  = "checkout"
	actionViewOrder = "view_order"
	actionSetStatus = "set_status"
	actionUserOrder = "user_view_order"
	actionCartInc   = "cart_inc"
	actionCartDec   = "cart_dec"
	actionCartDel   = "cart_del"
)

const (
	msgNotAdmin       = "شما ادمین نیستید ❌"
	msgInvalidData    = "داده‌ی نامعتبر."
	msgOrderNotFound  = "این سفارش پیدا نشد."
	msgForbidden      = "به این سفارش دسترسی نداری ❌"
	msgInternal       = "خطایی رخ داد، لطفاً دوباره تلاش کن."
	msgNoActiveDraft  = "فرآیند ثبت سفارش فعالی وجود ندارد."
	msgCartEmpty      = "🧺 سبد خریدت خالیه."
	msgCartBadData    = "داده‌ی نامعتبر برای سبد خرید."
	msgCartNotFound   = "این آیتم در سبدت پیدا نشد."
	msgInvalidStatus  = "وضعیت نامعتبر است."
	msgNoOrdersUser   = "هنوز هیچ سفارشی ثبت نکردی 💤"
	msgNoOrdersAdmin  = "هنوز هیچ سفارشی ثبت نشده 💤"
	msgNoPendingAdmin = "همه‌ی سفارش‌ها وضعیت دارند ✅\nسفارشی بدون وضعیت (new) پیدا نشد."
	msgProductMissing = "محصول مورد نظر پیدا نشد ❌"
	msgProductOff     = "این محصول فعلاً غیرفعاله ❌"
	msgGreetAdmin     = "سلام ادمین عزیز 👑\nاز منوی زیر می‌تونی سفارش‌ها رو مدیریت کنی."
	msgGreetUser      = "سلام! 👋\n" +
		"برای ثبت سفارش روی دکمه‌ی «ثبت سفارش جدید» بزن.\n" +
		"بعد از اولین سفارش، می‌تونی از دکمه‌ی «سفارش های من» هم استفاده کنی.\n" +
		"برای لغو در هر مرحله: /cancel"
)

func userMenu(hasOrders bool) [][]string {
	if hasOrders {
		return [][]string{{menuNewOrder}, {menuMyOrders}}
	}
	return [][]string{{menuNewOrder}}
}

func adminMenu() [][]string {
	return [][]string{{menuAdminAll}, {menuAdminLatest}, {menuAdminPending}}
}

func viewButton(action string, orderID int64) []chat.Button {
	return []chat.Button{{Text: fmt.Sprintf("مشاهده #%d", orderID), Action: fmt.Sprintf("%s:%d", action, orderID)}}
}

// orderList は見出し＋1行ずつの一覧と「مشاهده」ボタン。
func orderList(header string, orders []model.Order, action string, line func(model.Order) string) chat.Message {
	lines := []string{header}
	buttons := make([][]chat.Button, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, line(o))
		buttons = append(buttons, viewButton(action, o.ID))
	}
	return chat.Message{Text: strings.Join(lines, "\n"), Buttons: buttons}
}

func adminListMessage(kind usecase.AdminListKind, orders []model.Order) chat.Message {
	byName := func(o model.Order) string {
		return fmt.Sprintf("#%d | %s | %s", o.ID, o.FullName, o.Status.Label())
	}
	switch kind {
	case usecase.AdminListLatest:
		return orderList("📋 آخرین سفارش‌ها:\n", orders, actionViewOrder, byName)
	case usecase.AdminListUnreviewed:
		return orderList("⏳ سفارشات تعیین وضعیت نشده:\n", orders, actionViewOrder, func(o model.Order) string {
			return fmt.Sprintf("#%d | %s | %s", o.ID, o.FullName, o.CreatedAt.Format(timeLayout))
		})
	default:
		return orderList("📚 لیست همه سفارش‌ها (جدیدترین در بالا):\n", orders, actionViewOrder, byName)
	}
}

func myOrdersMessage(orders []model.Order) chat.Message {
	return orderList("🧾 لیست آخرین سفارش‌های تو:\n", orders, actionUserOrder, func(o model.Order) string {
		return fmt.Sprintf("#%d | %s | %s", o.ID, o.Status.Label(), o.CreatedAt.Format(timeLayout))
	})
}

func itemsText(d usecase.OrderDetail) string {
	if len(d.Items) == 0 {
		return ""
	}
	lines := []string{"\n🛒 محصولات این سفارش:"}
	for _, it := range d.Items {
		lines = append(lines, fmt.Sprintf("- %s × %d = %d تومان", it.ProductTitle, it.Quantity, it.LineTotal()))
	}
	lines = append(lines, fmt.Sprintf("\nجمع کل کالاها: %d تومان", d.Subtotal))
	return "\n" + strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func adminDetailMessage(d usecase.OrderDetail) chat.Message {
	o := d.Order
	text := fmt.Sprintf("🧾 جزئیات سفارش #%d\n\n"+
		"👤 نام: %s\n"+
		"🆔 کد ملی: %s\n"+
		"📞 تلفن: %s\n"+
		"📍 آدرس: %s\n"+
		"📅 زمان ثبت: %s\n"+
		"وضعیت فعلی: %s\n"+
		"\n📝 توضیحات: %s%s",
		o.ID, o.FullName, o.NationalID, o.Phone, o.Address,
		o.CreatedAt.Format(timeLayout), o.Status.Label(), orDash(o.Description), itemsText(d))

	btn := func(s model.OrderStatus) chat.Button {
		return chat.Button{Text: s.Label(), Action: fmt.Sprintf("%s:%d:%s", actionSetStatus, o.ID, s)}
	}
	return chat.Message{
		Text: text,
		Buttons: [][]chat.Button{
			{btn(model.OrderStatusNew), btn(model.OrderStatusInProgress)},
			{btn(model.OrderStatusDone), btn(model.OrderStatusCanceled)},
		},
	}
}

func userDetailMessage(d usecase.OrderDetail) chat.Message {
	o := d.Order
	return chat.Text(fmt.Sprintf("🧾 سفارش #%d\n\n"+
		"📅 زمان ثبت: %s\n"+
		"وضعیت: %s\n"+
		"👤 نام: %s\n"+
		"🆔 کد ملی: %s\n"+
		"\n📍 آدرس ارسال: %s\n"+
		"📞 تلفن: %s\n"+
		"\n📝 توضیحات: %s%s",
		o.ID, o.CreatedAt.Format(timeLayout), o.Status.Label(), o.FullName, o.NationalID,
		o.Address, o.Phone, orDash(o.Description), itemsText(d)))
}

func cartMessage(s usecase.CartSummary) chat.Message {
	if s.Empty() {
		return chat.Text(msgCartEmpty)
	}
	buttons := make([][]chat.Button, 0, len(s.Lines)+1)
	for _, l := range s.Lines {
		buttons = append(buttons, []chat.Button{
			{Text: "➕", Action: fmt.Sprintf("%s:%d", actionCartInc, l.EntryID)},
			{Text: "➖", Action: fmt.Sprintf("%s:%d", actionCartDec, l.EntryID)},
			{Text: "❌ حذف", Action: fmt.Sprintf("%s:%d", actionCartDel, l.EntryID)},
		})
	}
	buttons = append(buttons, []chat.Button{{Text: "✅ ثبت سفارش", Action: actionCheckout}})
	return chat.Message{Text: conversation.CartText(s), Buttons: buttons}
}

func addedToCartMessage(p model.Product) chat.Message {
	return chat.Message{
		Text: fmt.Sprintf("✅ «%s» به سبد خریدت اضافه شد.\n"+
			"می‌تونی خریدت رو ادامه بدی، سبد رو ببینی یا ثبت سفارش کنی:", p.Title),
		Buttons: [][]chat.Button{
			{{Text: "👀 مشاهده‌ی سبد خرید", Action: actionViewCart}},
			{{Text: "✅ ثبت سفارش", Action: actionCheckout}},
		},
	}
}

func productMessage(header string, p model.Product) chat.Message {
	return chat.Text(fmt.Sprintf("%s\n\nID: %d\nکد: %s\nعنوان: %s\nقیمت: %d", header, p.ID, p.Code, p.Title, p.Price))
}
