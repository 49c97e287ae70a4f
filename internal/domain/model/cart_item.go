package model

// カートの1行。(user_id, product_id) は一意
type CartItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64 `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`
}

func (CartItem) TableName() string { return "cart" }

// 商品と結合したカート行（一覧表示用）
type CartLine struct {
	EntryID   int64  `json:"entry_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
}

func (l CartLine) LineTotal() int64 {
	return l.Quantity * l.Price
}
