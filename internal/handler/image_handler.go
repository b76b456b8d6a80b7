package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/ktsujino/inventory-backend/internal/ai"
	"github.com/ktsujino/inventory-backend/internal/imaging"
	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"github.com/ktsujino/inventory-backend/internal/service"
	"github.com/ktsujino/inventory-backend/internal/storage"
	"github.com/labstack/echo/v4"
)

type ImageHandler struct {
	svc     service.ImageService
	store   storage.Storage
	suggest *ai.SuggestClient
}

func NewImageHandler(svc service.ImageService, store storage.Storage, suggest *ai.SuggestClient) *ImageHandler {
	return &ImageHandler{svc: svc, store: store, suggest: suggest}
}

type ImageResponse struct {
	UUID              string `json:"uuid"`
	ImagePath         string `json:"image_path"`
	OriginalExtension string `json:"original_extension"`
	Status            string `json:"status"`
	UsageCount        uint   `json:"usage_count"`
	OriginalPath      string `json:"original_path"`
	PreviewPath       string `json:"preview_path"`
	ThumbPath         string `json:"thumb_path"`
	OriginalURL       string `json:"original_url,omitempty"`
	PreviewURL        string `json:"preview_url,omitempty"`
	ThumbURL          string `json:"thumb_url,omitempty"`
}

type ImageListResponse struct {
	Images []ImageResponse `json:"images"`
}

// Upload handles POST /item-images: multipart upload of one image file.
func (h *ImageHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image file is required"))
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to open uploaded file"))
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to read uploaded file"))
	}

	img, err := h.svc.Upload(c.Request().Context(), userID(c), file.Filename, data)
	if err != nil {
		return writeServiceError(c, err, "image")
	}
	return c.JSON(http.StatusCreated, h.toImageResponse(img))
}

// List handles GET /media with optional status and has_items filters.
func (h *ImageHandler) List(c echo.Context) error {
	var filter repository.ImageFilter
	if s := c.QueryParam("status"); s != "" {
		status := model.ImageStatus(s)
		if status != model.ImageStatusDraft && status != model.ImageStatusUsed {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "status must be draft or used"))
		}
		filter.Status = &status
	}
	if s := c.QueryParam("has_items"); s != "" {
		hasItems := s == "true" || s == "1"
		filter.HasItems = &hasItems
	}
	return h.list(c, filter)
}

// ListUnused handles GET /media/unused: draft images nothing references.
func (h *ImageHandler) ListUnused(c echo.Context) error {
	status := model.ImageStatusDraft
	hasItems := false
	return h.list(c, repository.ImageFilter{Status: &status, HasItems: &hasItems})
}

func (h *ImageHandler) list(c echo.Context, filter repository.ImageFilter) error {
	images, err := h.svc.List(c.Request().Context(), userID(c), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch images"))
	}
	resp := ImageListResponse{Images: make([]ImageResponse, 0, len(images))}
	for i := range images {
		resp.Images = append(resp.Images, h.toImageResponse(&images[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /media/:uuid.
func (h *ImageHandler) Get(c echo.Context) error {
	img, err := h.svc.Get(c.Request().Context(), userID(c), c.Param("uuid"))
	if err != nil {
		return writeServiceError(c, err, "image")
	}
	return c.JSON(http.StatusOK, h.toImageResponse(img))
}

// Delete handles DELETE /media/:uuid. Images still attached to items are
// rejected without touching blobs or rows.
func (h *ImageHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), userID(c), c.Param("uuid")); err != nil {
		return writeServiceError(c, err, "image")
	}
	return c.NoContent(http.StatusNoContent)
}

// Suggest handles POST /item-images/:uuid/suggest: proposes an item name and
// category for an uploaded photo.
func (h *ImageHandler) Suggest(c echo.Context) error {
	if h.suggest == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "suggestions are not configured"))
	}
	img, err := h.svc.Get(c.Request().Context(), userID(c), c.Param("uuid"))
	if err != nil {
		return writeServiceError(c, err, "image")
	}
	data, err := h.store.Get(c.Request().Context(), img.OriginalPath())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "image blob not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to read image"))
	}
	suggestion, err := h.suggest.Suggest(c.Request().Context(), data, imaging.ContentType(img.OriginalExtension))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to generate suggestion"))
	}
	return c.JSON(http.StatusOK, suggestion)
}

func (h *ImageHandler) toImageResponse(img *model.Image) ImageResponse {
	resp := ImageResponse{
		UUID:              img.UUID,
		ImagePath:         img.ImagePath,
		OriginalExtension: img.OriginalExtension,
		Status:            string(img.Status),
		UsageCount:        img.UsageCount,
		OriginalPath:      img.OriginalPath(),
		PreviewPath:       img.PreviewPath(),
		ThumbPath:         img.ThumbPath(),
	}
	if urls, err := h.svc.URLs(img); err == nil {
		resp.OriginalURL = urls.Original
		resp.PreviewURL = urls.Preview
		resp.ThumbURL = urls.Thumb
	}
	return resp
}
