package conversation

import (
	"fmt"
	"strings"

	"orderbot/internal/chat"
)

const keyboardWidth = 3

var cancelKeyboard = [][]string{{CancelKeyword}}

const (
	msgStartDirect   = "✅ شروع ثبت سفارش\n\nاسم و فامیلت رو بنویس:"
	msgStartCheckout = "\n\nبرای نهایی کردن سفارش، اول اسم و فامیلت رو بنویس:"
	msgRestarted     = "از اول شروع می‌کنیم ✅\n\nاسم و فامیلت رو بنویس:"
	msgCancelled     = "فرآیند ثبت سفارش لغو شد ✅"
	msgEmptyCart     = "🧺 سبد خریدت خالیه، چیزی برای ثبت سفارش نیست."
	msgSaveFailed    = "ثبت سفارش انجام نشد. لطفاً دوباره «تایید و ثبت» را بزن."
	msgFinished      = "✔️ فرآیند ثبت سفارش به پایان رسید.\n\nاز دکمه‌های زیر می‌تونی استفاده کنی:"
)

// 完了後に出すメニュー
var finishedKeyboard = [][]string{{"ثبت سفارش جدید"}, {"سفارش های من"}}

// prompt は state に入った直後に送る案内。
func prompt(d Draft, cat *Catalog) chat.Message {
	switch d.State {
	case StateNationalID:
		return chat.Text("کد ملی‌ات را وارد کن (10 رقم):")
	case StatePhone:
		return chat.Text("شماره تماس را بفرست (مثلاً 0912... یا +98...):")
	case StateProvince:
		return chat.Message{
			Text:     "لطفاً نام استان محل سکونت خود را از لیست زیر انتخاب کنید:",
			Keyboard: chat.Keyboard(cat.Provinces(), keyboardWidth, CancelKeyword),
		}
	case StateCity:
		p := d.Field(FieldProvince)
		return chat.Message{
			Text:     fmt.Sprintf("نام شهر محل سکونت‌ات در استان %s را از لیست زیر انتخاب کن:", p),
			Keyboard: chat.Keyboard(cat.Cities(p), keyboardWidth, CancelKeyword),
		}
	case StateStreet:
		return chat.Message{Text: "نام خیابان را بنویس:", Keyboard: cancelKeyboard}
	case StatePlaque:
		return chat.Text("پلاک منزل را بنویس (می‌تواند عدد باشد):")
	case StateAddressNote:
		return chat.Text("اگر توضیح اضافی برای آدرس داری بنویس (مثلاً واحد، طبقه، نشانی دقیق).\n" +
			"اگر توضیحی نداری، یک خط تیره (-) بفرست.")
	case StateDescription:
		return chat.Text("توضیحات سفارش (اختیاری). اگر توضیحی برای سفارش نداری بنویس: -")
	case StateConfirm:
		return preview(d)
	default:
		return chat.Message{Text: "اسم و فامیلت رو بنویس:", Keyboard: cancelKeyboard}
	}
}

// reprompt は検証に失敗したときの再入力の案内。state は変わらない。
func reprompt(d Draft, cat *Catalog) chat.Message {
	switch d.State {
	case StateFullName:
		return chat.Text("لطفاً نام و نام خانوادگی را به صورت فارسی و خوانا وارد کن (بدون حروف انگلیسی):")
	case StateNationalID:
		return chat.Text("کد ملی نامعتبر است. لطفاً دوباره 10 رقم کد ملی را درست وارد کن:")
	case StatePhone:
		return chat.Text("شماره معتبر نیست. دوباره وارد کن:")
	case StateProvince:
		return chat.Message{
			Text:     "استان واردشده معتبر نیست. لطفاً از روی دکمه‌ها یکی از استان‌ها را انتخاب کن:",
			Keyboard: chat.Keyboard(cat.Provinces(), keyboardWidth, CancelKeyword),
		}
	case StateCity:
		return chat.Message{
			Text:     "شهر انتخاب‌شده معتبر نیست. لطفاً از روی دکمه‌ها یکی از شهرها را انتخاب کن:",
			Keyboard: chat.Keyboard(cat.Cities(d.Field(FieldProvince)), keyboardWidth, CancelKeyword),
		}
	case StateStreet:
		return chat.Text("خیابان را به فارسی و بدون حروف انگلیسی وارد کن:")
	case StatePlaque:
		return chat.Text("پلاک را درست وارد کن (می‌تواند عدد/حروف فارسی باشد):")
	case StateAddressNote:
		return chat.Text("توضیحات آدرس را به فارسی و بدون حروف انگلیسی وارد کن، یا اگر نمی‌خواهی بنویسی فقط - بفرست:")
	default:
		return prompt(d, cat)
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// preview は確認画面。集めた項目をすべて並べる。
func preview(d Draft) chat.Message {
	var b strings.Builder
	b.WriteString("🧾 پیش‌نمایش سفارش:\n\n")
	fmt.Fprintf(&b, "👤 نام: %s\n", d.Field(FieldFullName))
	fmt.Fprintf(&b, "🆔 کد ملی: %s\n", d.Field(FieldNationalID))
	fmt.Fprintf(&b, "📞 تلفن: %s\n", d.Field(FieldPhone))
	b.WriteString("📍 آدرس:\n")
	fmt.Fprintf(&b, "   استان: %s\n", d.Field(FieldProvince))
	fmt.Fprintf(&b, "   شهر: %s\n", d.Field(FieldCity))
	fmt.Fprintf(&b, "   خیابان: %s\n", d.Field(FieldStreet))
	fmt.Fprintf(&b, "   پلاک: %s\n", d.Field(FieldPlaque))
	fmt.Fprintf(&b, "   توضیحات آدرس: %s\n", orDash(d.Field(FieldAddressNote)))
	fmt.Fprintf(&b, "📝 توضیحات سفارش: %s\n", orDash(d.OrderDescription()))
	if d.FromCart {
		fmt.Fprintf(&b, "💰 جمع سبد خرید: %d تومان\n", d.CartTotal)
	}
	b.WriteString("\n")
	b.WriteString("تایید می‌کنی ثبت بشه؟")

	return chat.Message{
		Text: b.String(),
		Buttons: [][]chat.Button{
			{{Text: "✅ تایید و ثبت", Action: ActionConfirm}},
			{{Text: "✏️ ویرایش از اول", Action: ActionRestart}},
			{{Text: "❌ لغو", Action: ActionCancel}},
		},
	}
}

func orderPlacedMessage(orderID int64) chat.Message {
	return chat.Text(fmt.Sprintf("✅ سفارشت ثبت شد!\nکد سفارش: #%d", orderID))
}
