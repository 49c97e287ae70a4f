package handler

import (
	"net/http"
	"strconv"

	"orderbot/internal/domain/model"
	"orderbot/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ProductCreateRequest struct {
	Code  string `json:"code"`
	Title string `json:"title"`
	Price int64  `json:"price"`
}

type ProductResponse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	IsActive bool   `json:"is_active"`
	// /start add_<code> で使うパラメータ
	DeepLink string `json:"deep_link"`
}

// /admin/products
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products", h.createProduct)
	g.GET("/products/:code", h.getProduct)
	g.POST("/products/:id/deactivate", h.deactivateProduct)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.Create(c.Request().Context(), usecase.CreateProductInput{
		Code:  req.Code,
		Title: req.Title,
		Price: req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *AdminProductHandler) getProduct(c echo.Context) error {
	p, err := h.uc.FindByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// 削除はせず is_active=false にするだけ
func (h *AdminProductHandler) deactivateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Deactivate(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deactivated"})
}

func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Code:     p.Code,
		Title:    p.Title,
		Price:    p.Price,
		IsActive: p.IsActive,
		DeepLink: usecase.DeepLinkAddPrefix + p.Code,
	}
}
