package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ItemHandler struct {
	svc      service.ItemService
	imageSvc service.ImageService
}

func NewItemHandler(svc service.ItemService, imageSvc service.ImageService) *ItemHandler {
	return &ItemHandler{svc: svc, imageSvc: imageSvc}
}

type ItemImageRef struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
}

type ItemRequest struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Location       string         `json:"location"`
	Price          *uint          `json:"price"`
	Barcode        string         `json:"barcode"`
	SerialNumber   string         `json:"serial_number"`
	ProductID      *uint64        `json:"product_id"`
	PurchasedAt    *string        `json:"purchased_at"`
	ReceivedAt     *string        `json:"received_at"`
	UsedAt         *string        `json:"used_at"`
	DiscardedAt    *string        `json:"discarded_at"`
	ExpirationDate *string        `json:"expiration_date"`
	Images         []ItemImageRef `json:"images"`
}

type ItemImageResponse struct {
	UUID       string `json:"uuid"`
	SortOrder  int    `json:"sort_order"`
	ThumbURL   string `json:"thumb_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

type ItemResponse struct {
	ShortID        string              `json:"short_id"`
	UUID           string              `json:"uuid"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Location       string              `json:"location"`
	Price          *uint               `json:"price,omitempty"`
	Barcode        string              `json:"barcode,omitempty"`
	SerialNumber   string              `json:"serial_number,omitempty"`
	ProductID      *uint64             `json:"product_id,omitempty"`
	Status         string              `json:"status"`
	PurchasedAt    *string             `json:"purchased_at"`
	ReceivedAt     *string             `json:"received_at"`
	UsedAt         *string             `json:"used_at"`
	DiscardedAt    *string             `json:"discarded_at"`
	ExpirationDate *string             `json:"expiration_date"`
	Images         []ItemImageResponse `json:"images"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      string              `json:"updated_at"`
}

type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int64          `json:"total"`
}

func (h *ItemHandler) Create(c echo.Context) error {
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	in, refs, err := toItemInput(&req)
	if err != nil {
		return writeServiceError(c, err, "item")
	}
	item, err := h.svc.Create(c.Request().Context(), userID(c), *in, refs)
	if err != nil {
		return writeServiceError(c, err, "item")
	}
	return c.JSON(http.StatusCreated, h.toItemResponse(item))
}

func (h *ItemHandler) Get(c echo.Context) error {
	item, err := h.svc.Get(c.Request().Context(), userID(c), c.Param("shortId"))
	if err != nil {
		return writeServiceError(c, err, "item")
	}
	return c.JSON(http.StatusOK, h.toItemResponse(item))
}

func (h *ItemHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	items, total, err := h.svc.List(c.Request().Context(), userID(c), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch items"))
	}
	resp := ItemListResponse{
		Items: make([]ItemResponse, 0, len(items)),
		Total: total,
	}
	for i := range items {
		resp.Items = append(resp.Items, h.toItemResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ItemHandler) Update(c echo.Context) error {
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	in, refs, err := toItemInput(&req)
	if err != nil {
		return writeServiceError(c, err, "item")
	}
	item, err := h.svc.Update(c.Request().Context(), userID(c), c.Param("shortId"), *in, refs)
	if err != nil {
		return writeServiceError(c, err, "item")
	}
	return c.JSON(http.StatusOK, h.toItemResponse(item))
}

func (h *ItemHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), userID(c), c.Param("shortId")); err != nil {
		return writeServiceError(c, err, "item")
	}
	return c.NoContent(http.StatusNoContent)
}

func toItemInput(req *ItemRequest) (*service.ItemInput, []service.ImageRef, error) {
	in := &service.ItemInput{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		Price:        req.Price,
		Barcode:      req.Barcode,
		SerialNumber: req.SerialNumber,
		ProductID:    req.ProductID,
	}
	for _, d := range []struct {
		field string
		src   *string
		dst   **time.Time
	}{
		{"purchased_at", req.PurchasedAt, &in.PurchasedAt},
		{"received_at", req.ReceivedAt, &in.ReceivedAt},
		{"used_at", req.UsedAt, &in.UsedAt},
		{"discarded_at", req.DiscardedAt, &in.DiscardedAt},
		{"expiration_date", req.ExpirationDate, &in.ExpirationDate},
	} {
		if d.src == nil {
			continue
		}
		t, err := service.ParseDate(*d.src)
		if err != nil {
			return nil, nil, &service.ValidationError{Field: d.field, Message: err.Error()}
		}
		*d.dst = t
	}

	var refs []service.ImageRef
	if req.Images != nil {
		refs = make([]service.ImageRef, 0, len(req.Images))
		for _, r := range req.Images {
			refs = append(refs, service.ImageRef{UUID: r.UUID, Status: r.Status})
		}
	}
	return in, refs, nil
}

func (h *ItemHandler) toItemResponse(item *model.Item) ItemResponse {
	resp := ItemResponse{
		ShortID:        item.ShortID,
		UUID:           item.UUID,
		Name:           item.Name,
		Description:    item.Description,
		Location:       item.Location,
		Price:          item.Price,
		Barcode:        item.Barcode,
		SerialNumber:   item.SerialNumber,
		ProductID:      item.ProductID,
		Status:         string(item.Status()),
		PurchasedAt:    formatDate(item.PurchasedAt),
		ReceivedAt:     formatDate(item.ReceivedAt),
		UsedAt:         formatDate(item.UsedAt),
		DiscardedAt:    formatDate(item.DiscardedAt),
		ExpirationDate: formatDate(item.ExpirationDate),
		Images:         make([]ItemImageResponse, 0, len(item.Images)),
		CreatedAt:      item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      item.UpdatedAt.Format(time.RFC3339),
	}
	for _, link := range item.Images {
		ir := ItemImageResponse{
			UUID:      link.Image.UUID,
			SortOrder: link.SortOrder,
		}
		if urls, err := h.imageSvc.URLs(&link.Image); err == nil {
			ir.ThumbURL = urls.Thumb
			ir.PreviewURL = urls.Preview
		}
		resp.Images = append(resp.Images, ir)
	}
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
