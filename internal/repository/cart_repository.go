package repository

import (
	"context"

	"orderbot/internal/domain/model"
)

type CartRepository interface {
	// 同一商品は数量+1、無ければ数量1で作成
	AddOne(ctx context.Context, userID int64, productID int64) error
	// 商品と結合して id 昇順で返す
	ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)
	FindByID(ctx context.Context, entryID int64) (model.CartItem, error)
	// 0以下なら削除
	SetQuantity(ctx context.Context, entryID int64, qty int64) error
	DeleteByID(ctx context.Context, entryID int64) error
	ClearByUserID(ctx context.Context, userID int64) error
}
