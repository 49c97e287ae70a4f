package usecase

import (
	"context"
	"errors"
	"fmt"

	"orderbot/internal/domain/model"
	"orderbot/internal/logging"
	"orderbot/internal/metrics"
	repo "orderbot/internal/repository"

	"github.com/go-playground/validator/v10"
)

const (
	MyOrdersLimit = 10
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	items    repo.OrderItemRepository
	events   OrderEventPublisher
	clock    Clock
	validate *validator.Validate
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	events OrderEventPublisher,
	clock Clock,
) *OrderUsecase {
	if events == nil {
		events = NoopEventPublisher{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &OrderUsecase{
		tx:       tx,
		orders:   orders,
		items:    items,
		events:   events,
		clock:    clock,
		validate: validator.New(),
	}
}

// 会話で集めた確定済みの入力
type PlaceOrderInput struct {
	UserID      int64  `validate:"gt=0"`
	NationalID  string `validate:"required,len=10,numeric"`
	FullName    string `validate:"required"`
	Phone       string `validate:"required"`
	Address     string `validate:"required"`
	Description string
	FromCart    bool
}

type PlacedOrder struct {
	Order     model.Order
	ItemCount int
}

type OrderDetail struct {
	Order    model.Order
	Items    []model.OrderItem
	Subtotal int64
}

// PlaceOrder は注文を作成し、カート由来なら明細コピー→カート削除までを1トランザクションで行う。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlacedOrder, error) {
	if err := u.validate.Struct(in); err != nil {
		return PlacedOrder{}, &AppError{Code: CodeInvalid, Message: "invalid order", Err: err}
	}

	order := model.Order{
		UserID:      in.UserID,
		NationalID:  in.NationalID,
		FullName:    in.FullName,
		Phone:       in.Phone,
		Address:     in.Address,
		Description: in.Description,
		Status:      model.OrderStatusNew,
		CreatedAt:   u.clock.Now().UTC(),
	}

	var out PlacedOrder

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.ID = id

		n := 0
		if in.FromCart {
			// 先にコピーしてから消す
			n, err = materializeCart(ctx, r.Carts(), r.OrderItems(), id, in.UserID)
			if err != nil {
				return fmt.Errorf("materialize cart: %w", err)
			}
			// 確認中にカートが空になった（別の確定で消えた等）。注文ごと巻き戻す
			if n == 0 {
				return NewAppError(CodeEmptyCart, "cart is empty")
			}
			if err := r.Carts().ClearByUserID(ctx, in.UserID); err != nil {
				return fmt.Errorf("clear cart: %w", err)
			}
		}

		out = PlacedOrder{Order: order, ItemCount: n}
		return nil
	})
	if err != nil {
		if _, ok := AsAppError(err); ok {
			return PlacedOrder{}, err
		}
		return PlacedOrder{}, internalError("place order", err)
	}

	source := "direct"
	if in.FromCart {
		source = "cart"
	}
	metrics.OrdersCreated.WithLabelValues(source).Inc()

	ectx, cancel := eventContext(ctx)
	defer cancel()
	if err := u.events.OrderCreated(ectx, out.Order, in.FromCart, out.ItemCount); err != nil {
		logging.FromCtx(ctx).Warn("order event publish failed", "order_id", out.Order.ID, "err", err)
	}

	return out, nil
}

// ListMyOrders は新しい順。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	if userID <= 0 {
		return []model.Order{}, NewAppError(CodeInvalid, "invalid user")
	}
	if limit <= 0 {
		limit = MyOrdersLimit
	}

	orders, err := u.orders.List(ctx, repo.OrderListFilter{Limit: limit, UserID: &userID})
	if err != nil {
		return []model.Order{}, internalError("list my orders", err)
	}
	return orders, nil
}

func (u *OrderUsecase) HasOrders(ctx context.Context, userID int64) (bool, error) {
	n, err := u.orders.CountByUserID(ctx, userID)
	if err != nil {
		return false, internalError("count orders", err)
	}
	return n > 0, nil
}

// GetMyOrderDetail は存在しなければ not_found、他人の注文なら forbidden。
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderDetail, error) {
	if orderID <= 0 {
		return OrderDetail{}, NewAppError(CodeInvalid, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderDetail{}, NewAppError(CodeNotFound, "order not found")
	}
	if err != nil {
		return OrderDetail{}, internalError("find order", err)
	}
	if o.UserID != userID {
		return OrderDetail{}, NewAppError(CodeForbidden, "order belongs to another user")
	}

	return loadDetail(ctx, u.items, o)
}

func loadDetail(ctx context.Context, itemsRepo repo.OrderItemRepository, o model.Order) (OrderDetail, error) {
	items, err := itemsRepo.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderDetail{}, internalError("list order items", err)
	}

	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	return OrderDetail{Order: o, Items: items, Subtotal: subtotal}, nil
}
