package model

import "time"

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// 管理者が選べるステータス（順番はボタンの並び）
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusInProgress,
	OrderStatusDone,
	OrderStatusCanceled,
}

// ParseOrderStatus は列挙値以外を false で返す。
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// 作成後に変わるのは Status だけ
type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64       `gorm:"not null;index" json:"user_id"`
	NationalID  string      `gorm:"type:varchar(10);not null" json:"national_id"`
	FullName    string      `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone       string      `gorm:"type:varchar(30);not null" json:"phone"`
	Address     string      `gorm:"type:text;not null" json:"address"`
	Description string      `gorm:"type:text" json:"description"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
}

var statusLabels = map[OrderStatus]string{
	OrderStatusNew:        "🆕 جدید",
	OrderStatusInProgress: "🟡 در حال بررسی",
	OrderStatusDone:       "✅ تکمیل شده",
	OrderStatusCanceled:   "🔴 لغو شده",
}

// Label は表示用。未知の値はそのまま返す。
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
