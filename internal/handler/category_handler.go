package handler

import (
	"net/http"
	"strconv"

	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type CategoryHandler struct {
	svc service.CategoryService
}

func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type CategoryResponse struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	category, err := h.svc.Create(c.Request().Context(), userID(c), req.Name)
	if err != nil {
		return writeServiceError(c, err, "category")
	}
	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.svc.List(c.Request().Context(), userID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch categories"))
	}
	resp := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, toCategoryResponse(&categories[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": resp})
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	category, err := h.svc.Update(c.Request().Context(), userID(c), id, req.Name)
	if err != nil {
		return writeServiceError(c, err, "category")
	}
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), userID(c), id); err != nil {
		return writeServiceError(c, err, "category")
	}
	return c.NoContent(http.StatusNoContent)
}

func toCategoryResponse(category *model.Category) CategoryResponse {
	return CategoryResponse{ID: category.ID, Name: category.Name}
}
