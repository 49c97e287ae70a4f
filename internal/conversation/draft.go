package conversation

import (
	"maps"
	"strings"
	"time"
)

type State string

const (
	StateFullName    State = "FULLNAME"
	StateNationalID  State = "NATIONAL_ID"
	StatePhone       State = "PHONE"
	StateProvince    State = "PROVINCE"
	StateCity        State = "CITY"
	StateStreet      State = "STREET"
	StatePlaque      State = "PLAQUE"
	StateAddressNote State = "ADDRESS_NOTE"
	StateDescription State = "DESCRIPTION"
	StateConfirm     State = "CONFIRM"
)

type Field string

const (
	FieldFullName    Field = "full_name"
	FieldNationalID  Field = "national_id"
	FieldPhone       Field = "phone"
	FieldProvince    Field = "province"
	FieldCity        Field = "city"
	FieldStreet      Field = "street"
	FieldPlaque      Field = "plaque"
	FieldAddressNote Field = "address_note"
	FieldDescription Field = "description"
)

// Draft は確定前の注文。ユーザーごとに1つだけ DraftStore に置く。
type Draft struct {
	UserID      int64            `json:"user_id"`
	State       State            `json:"state"`
	Fields      map[Field]string `json:"fields"`
	FromCart    bool             `json:"from_cart"`
	CartSummary string           `json:"cart_summary,omitempty"`
	CartTotal   int64            `json:"cart_total,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewDraft は FULLNAME から始まる空の下書き。
func NewDraft(userID int64) Draft {
	return Draft{UserID: userID, State: StateFullName, Fields: map[Field]string{}}
}

// NewCartDraft はカート内容を凍結して持つ下書き。
func NewCartDraft(userID int64, summary string, total int64) Draft {
	d := NewDraft(userID)
	d.FromCart = true
	d.CartSummary = summary
	d.CartTotal = total
	return d
}

func (d Draft) Field(f Field) string { return d.Fields[f] }

func (d Draft) clone() Draft {
	c := d
	c.Fields = maps.Clone(d.Fields)
	if c.Fields == nil {
		c.Fields = map[Field]string{}
	}
	return c
}

// Address は固定順で「،」区切り。توضیحات آدرس は空なら付けない。
func (d Draft) Address() string {
	parts := []string{
		"استان " + d.Fields[FieldProvince],
		"شهر " + d.Fields[FieldCity],
		"خیابان " + d.Fields[FieldStreet],
		"پلاک " + d.Fields[FieldPlaque],
	}
	if note := d.Fields[FieldAddressNote]; note != "" {
		parts = append(parts, "توضیحات آدرس: "+note)
	}
	return strings.Join(parts, "، ")
}

// OrderDescription はカート由来なら要約を必ず後ろに付ける。
func (d Draft) OrderDescription() string {
	desc := d.Fields[FieldDescription]
	if !d.FromCart || d.CartSummary == "" {
		return desc
	}
	if desc == "" {
		return "سبد خرید:\n" + d.CartSummary
	}
	return desc + "\n\n---\nسبد خرید:\n" + d.CartSummary
}
