package model

// Code はディープリンク（add_<code>）で使うキー
type Product struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Code     string `gorm:"type:varchar(100);not null;uniqueIndex" json:"code"`
	Title    string `gorm:"type:varchar(255);not null" json:"title"`
	Price    int64  `gorm:"not null" json:"price"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}
