package repository

import (
	"context"

	"orderbot/internal/domain/model"
)

type OrderListFilter struct {
	Limit  int
	Offset int
	Status model.OrderStatus
	UserID *int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//新しい順（id desc）
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
}
