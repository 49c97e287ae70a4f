package repository

import (
	"context"
	"errors"

	"orderbot/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByCode(ctx context.Context, code string) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
	SetActive(ctx context.Context, id int64, active bool) error
}
