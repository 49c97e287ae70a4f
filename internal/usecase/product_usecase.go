package usecase

import (
	"context"
	"errors"
	"strings"

	"orderbot/internal/domain/model"
	repo "orderbot/internal/repository"
)

// 管理者コマンドで作るサンプル商品
var TestProduct = model.Product{
	Code:  "test_product_1",
	Title: "محصول تستی (نمونه)",
	Price: 150000,
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

type CreateProductInput struct {
	Code  string
	Title string
	Price int64
}

func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (model.Product, error) {
	code := strings.TrimSpace(in.Code)
	title := strings.TrimSpace(in.Title)
	if code == "" || strings.ContainsAny(code, " \t\n") {
		return model.Product{}, NewAppError(CodeInvalid, "invalid code")
	}
	if title == "" {
		return model.Product{}, NewAppError(CodeInvalid, "invalid title")
	}
	if in.Price < 0 {
		return model.Product{}, NewAppError(CodeInvalid, "invalid price")
	}

	p, err := u.productRepo.Create(ctx, model.Product{Code: code, Title: title, Price: in.Price})
	if err != nil {
		return model.Product{}, internalError("create product", err)
	}
	return p, nil
}

func (u *ProductUsecase) FindByCode(ctx context.Context, code string) (model.Product, error) {
	p, err := u.productRepo.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(CodeNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError("find product", err)
	}
	return p, nil
}

// EnsureTestProduct は既にあればそれを返し created=false。
func (u *ProductUsecase) EnsureTestProduct(ctx context.Context) (model.Product, bool, error) {
	p, err := u.FindByCode(ctx, TestProduct.Code)
	if err == nil {
		return p, false, nil
	}
	if CodeOf(err) != CodeNotFound {
		return model.Product{}, false, err
	}

	p, err = u.Create(ctx, CreateProductInput{
		Code:  TestProduct.Code,
		Title: TestProduct.Title,
		Price: TestProduct.Price,
	})
	if err != nil {
		return model.Product{}, false, err
	}
	return p, true, nil
}

// 無効化（削除はしない）
func (u *ProductUsecase) Deactivate(ctx context.Context, productID int64) error {
	err := u.productRepo.SetActive(ctx, productID, false)
	if errors.Is(err, repo.ErrNotFound) {
		return NewAppError(CodeNotFound, "product not found")
	}
	if err != nil {
		return internalError("deactivate product", err)
	}
	return nil
}
