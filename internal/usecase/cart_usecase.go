package usecase

import (
	"context"
	"errors"
	"strings"

	"orderbot/internal/domain/model"
	repo "orderbot/internal/repository"
)

// ディープリンクのパラメータ形式: add_<productCode>
const DeepLinkAddPrefix = "add_"

// CartUsecase はユーザーごとのカート操作です。
type CartUsecase struct {
	cartRepo      repo.CartRepository
	productRepo   repo.ProductRepository
	orderItemRepo repo.OrderItemRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	orderItemRepo repo.OrderItemRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		orderItemRepo: orderItemRepo,
	}
}

type CartOp string

const (
	CartOpInc CartOp = "inc"
	CartOpDec CartOp = "dec"
	CartOpDel CartOp = "del"
)

type CartSummary struct {
	Lines []model.CartLine
	Total int64
}

func (s CartSummary) Empty() bool { return len(s.Lines) == 0 }

// AddToCart は同一商品なら数量+1、無ければ数量1で追加。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 || productID <= 0 {
		return NewAppError(CodeInvalid, "invalid id")
	}
	if err := u.cartRepo.AddOne(ctx, userID, productID); err != nil {
		return internalError("add to cart", err)
	}
	return nil
}

// AddByDeepLink は add_<code> を解釈して有効な商品だけをカートに入れる。
func (u *CartUsecase) AddByDeepLink(ctx context.Context, userID int64, payload string) (model.Product, error) {
	if !strings.HasPrefix(payload, DeepLinkAddPrefix) {
		return model.Product{}, NewAppError(CodeInvalid, "invalid deep link")
	}
	code := strings.TrimPrefix(payload, DeepLinkAddPrefix)
	if code == "" {
		return model.Product{}, NewAppError(CodeInvalid, "invalid deep link")
	}

	p, err := u.productRepo.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(CodeNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError("find product", err)
	}
	if !p.IsActive {
		return p, NewAppError(CodeInactive, "product inactive")
	}

	if err := u.AddToCart(ctx, userID, p.ID); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// ListCart は id 昇順。空なら空スライス。
func (u *CartUsecase) ListCart(ctx context.Context, userID int64) ([]model.CartLine, error) {
	lines, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return []model.CartLine{}, internalError("list cart", err)
	}
	return lines, nil
}

// Summary は一覧と合計（数量×価格の和）。
func (u *CartUsecase) Summary(ctx context.Context, userID int64) (CartSummary, error) {
	lines, err := u.ListCart(ctx, userID)
	if err != nil {
		return CartSummary{}, err
	}
	return summarize(lines), nil
}

// SetQuantity は 0 以下なら削除、それ以外は上書き。
func (u *CartUsecase) SetQuantity(ctx context.Context, entryID int64, qty int64) error {
	err := u.cartRepo.SetQuantity(ctx, entryID, qty)
	if errors.Is(err, repo.ErrNotFound) {
		return NewAppError(CodeNotFound, "cart entry not found")
	}
	if err != nil {
		return internalError("set quantity", err)
	}
	return nil
}

func (u *CartUsecase) RemoveEntry(ctx context.Context, entryID int64) error {
	err := u.cartRepo.DeleteByID(ctx, entryID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewAppError(CodeNotFound, "cart entry not found")
	}
	if err != nil {
		return internalError("remove entry", err)
	}
	return nil
}

func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if err := u.cartRepo.ClearByUserID(ctx, userID); err != nil {
		return internalError("clear cart", err)
	}
	return nil
}

// ModifyEntry はカート画面のボタン操作。自分のカートに無い明細は not found。
func (u *CartUsecase) ModifyEntry(ctx context.Context, userID int64, entryID int64, op CartOp) error {
	lines, err := u.ListCart(ctx, userID)
	if err != nil {
		return err
	}

	var target *model.CartLine
	for i := range lines {
		if lines[i].EntryID == entryID {
			target = &lines[i]
			break
		}
	}
	if target == nil {
		return NewAppError(CodeNotFound, "cart entry not found")
	}

	switch op {
	case CartOpInc:
		return u.SetQuantity(ctx, entryID, target.Quantity+1)
	case CartOpDec:
		return u.SetQuantity(ctx, entryID, target.Quantity-1)
	case CartOpDel:
		return u.RemoveEntry(ctx, entryID)
	default:
		return NewAppError(CodeInvalid, "invalid cart op")
	}
}

// MaterializeToOrder はカートの現在値を注文明細としてコピーする。
// カートは消さない（呼び出し側が ClearCart する）。
func (u *CartUsecase) MaterializeToOrder(ctx context.Context, orderID int64, userID int64) (int, error) {
	n, err := materializeCart(ctx, u.cartRepo, u.orderItemRepo, orderID, userID)
	if err != nil {
		return 0, internalError("materialize cart", err)
	}
	return n, nil
}

// トランザクション内の repo でも使えるように関数にしておく
func materializeCart(ctx context.Context, carts repo.CartRepository, items repo.OrderItemRepository, orderID int64, userID int64) (int, error) {
	lines, err := carts.ListByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}

	//スナップショット
	snapshot := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		snapshot = append(snapshot, model.OrderItem{
			OrderID:      orderID,
			ProductTitle: l.Title,
			Quantity:     l.Quantity,
			Price:        l.Price,
		})
	}

	if err := items.CreateBulk(ctx, orderID, snapshot); err != nil {
		return 0, err
	}
	return len(snapshot), nil
}

func summarize(lines []model.CartLine) CartSummary {
	var total int64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return CartSummary{Lines: lines, Total: total}
}
