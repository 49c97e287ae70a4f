package conversation

import (
	"strings"

	"orderbot/internal/validator"
)

type Outcome string

const (
	OutcomeReprompt  Outcome = "reprompt"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeRestarted Outcome = "restarted"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeIgnored   Outcome = "ignored"
)

// CONFIRM 画面のボタン
const (
	ActionConfirm = "confirm_order"
	ActionRestart = "restart_order"
	ActionCancel  = "cancel_order"
)

const (
	CancelKeyword = "لغو"
	CancelCommand = "/cancel"
	// 「なし」を表す入力
	NoneSentinel = "-"
)

// Input はテキストかボタンのどちらか。
type Input struct {
	Text   string
	Action string
}

// IsCancel はどの状態からでも効く中断入力かどうか。
func (in Input) IsCancel() bool {
	if in.Action == ActionCancel {
		return true
	}
	t := strings.TrimSpace(in.Text)
	return t == CancelKeyword || t == CancelCommand
}

// accept は入力を検証し、保存する値を返す。
type acceptFunc func(d Draft, text string, cat *Catalog) (string, bool)

type step struct {
	field  Field
	accept acceptFunc
	next   State
}

var steps = map[State]step{
	StateFullName:    {field: FieldFullName, accept: acceptName, next: StateNationalID},
	StateNationalID:  {field: FieldNationalID, accept: acceptNationalID, next: StatePhone},
	StatePhone:       {field: FieldPhone, accept: acceptPhone, next: StateProvince},
	StateProvince:    {field: FieldProvince, accept: acceptProvince, next: StateCity},
	StateCity:        {field: FieldCity, accept: acceptCity, next: StateStreet},
	StateStreet:      {field: FieldStreet, accept: acceptAddressPart(2), next: StatePlaque},
	StatePlaque:      {field: FieldPlaque, accept: acceptAddressPart(1), next: StateAddressNote},
	StateAddressNote: {field: FieldAddressNote, accept: acceptAddressNote, next: StateDescription},
	StateDescription: {field: FieldDescription, accept: acceptDescription, next: StateConfirm},
}

// Transition は副作用なしで次の下書きと結果を返す。
// 入力 draft は変更しない。
func Transition(d Draft, in Input, cat *Catalog) (Draft, Outcome) {
	if in.IsCancel() {
		return d, OutcomeCancelled
	}

	if d.State == StateConfirm {
		switch in.Action {
		case ActionConfirm:
			return d, OutcomeConfirmed
		case ActionRestart:
			// カートの要約は残して入力だけやり直す
			next := d.clone()
			next.Fields = map[Field]string{}
			next.State = StateFullName
			return next, OutcomeRestarted
		default:
			return d, OutcomeIgnored
		}
	}

	st, ok := steps[d.State]
	if !ok || in.Action != "" {
		return d, OutcomeIgnored
	}

	value, ok := st.accept(d, in.Text, cat)
	if !ok {
		return d, OutcomeReprompt
	}

	next := d.clone()
	next.Fields[st.field] = value
	next.State = st.next
	return next, OutcomeAdvanced
}

func acceptName(_ Draft, text string, _ *Catalog) (string, bool) {
	name := strings.TrimSpace(text)
	return name, validator.ValidPersonName(name)
}

func acceptNationalID(_ Draft, text string, _ *Catalog) (string, bool) {
	if !validator.ValidNationalID(text) {
		return "", false
	}
	return validator.DigitsOnly(text), true
}

func acceptPhone(_ Draft, text string, _ *Catalog) (string, bool) {
	phone := strings.TrimSpace(validator.NormalizeDigits(text))
	return phone, validator.ValidPhone(phone)
}

func acceptProvince(_ Draft, text string, cat *Catalog) (string, bool) {
	p := strings.TrimSpace(text)
	return p, cat.HasProvince(p)
}

// 同じ下書きで選んだ استان の شهر だけを受け付ける
func acceptCity(d Draft, text string, cat *Catalog) (string, bool) {
	c := strings.TrimSpace(text)
	return c, cat.HasCity(d.Fields[FieldProvince], c)
}

func acceptAddressPart(minLen int) acceptFunc {
	return func(_ Draft, text string, _ *Catalog) (string, bool) {
		t := strings.TrimSpace(text)
		return t, validator.ValidAddressPart(t, minLen)
	}
}

func acceptAddressNote(d Draft, text string, cat *Catalog) (string, bool) {
	if strings.TrimSpace(text) == NoneSentinel {
		return "", true
	}
	return acceptAddressPart(2)(d, text, cat)
}

func acceptDescription(_ Draft, text string, _ *Catalog) (string, bool) {
	t := strings.TrimSpace(text)
	if t == NoneSentinel {
		return "", true
	}
	return t, true
}
