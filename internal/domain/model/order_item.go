package model

// 注文確定時点のタイトルと価格をコピーして持つ（商品への参照は持たない）
type OrderItem struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64  `gorm:"not null;index" json:"order_id"`
	ProductTitle string `gorm:"type:varchar(255);not null" json:"product_title"`
	Quantity     int64  `gorm:"not null" json:"quantity"`
	Price        int64  `gorm:"not null" json:"price"`
}

func (OrderItem) TableName() string { return "order_items" }

// 明細の小計
func (i OrderItem) LineTotal() int64 {
	return i.Quantity * i.Price
}
