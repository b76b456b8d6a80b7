package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	svc service.ProductService
}

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type ProductRequest struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	ModelNumber string  `json:"model_number"`
	Spec        string  `json:"spec"`
	Barcode     string  `json:"barcode"`
	CategoryID  *uint64 `json:"category_id"`
}

type ProductResponse struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand,omitempty"`
	ModelNumber string  `json:"model_number,omitempty"`
	Spec        string  `json:"spec,omitempty"`
	Barcode     string  `json:"barcode,omitempty"`
	CategoryID  *uint64 `json:"category_id,omitempty"`
	Category    string  `json:"category,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	product, err := h.svc.Create(c.Request().Context(), userID(c), toProductInput(&req))
	if err != nil {
		return writeServiceError(c, err, "product")
	}
	return c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	product, err := h.svc.Get(c.Request().Context(), userID(c), id)
	if err != nil {
		return writeServiceError(c, err, "product")
	}
	return c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.svc.List(c.Request().Context(), userID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch products"))
	}
	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"products": resp})
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	product, err := h.svc.Update(c.Request().Context(), userID(c), id, toProductInput(&req))
	if err != nil {
		return writeServiceError(c, err, "product")
	}
	return c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), userID(c), id); err != nil {
		return writeServiceError(c, err, "product")
	}
	return c.NoContent(http.StatusNoContent)
}

func toProductInput(req *ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Brand:       req.Brand,
		ModelNumber: req.ModelNumber,
		Spec:        req.Spec,
		Barcode:     req.Barcode,
		CategoryID:  req.CategoryID,
	}
}

func toProductResponse(product *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Brand:       product.Brand,
		ModelNumber: product.ModelNumber,
		Spec:        product.Spec,
		Barcode:     product.Barcode,
		CategoryID:  product.CategoryID,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   product.UpdatedAt.Format(time.RFC3339),
	}
	if product.Category != nil {
		resp.Category = product.Category.Name
	}
	return resp
}
