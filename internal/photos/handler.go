package photos

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// Handler wires photo HTTP routes.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches authenticated photo routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/photos", h.upload)
	rg.DELETE("/photos/*key", h.delete)
}

// RegisterPublicRoutes attaches the photo read route. Rendered documents embed
// photo URLs in <img> tags, which carry no bearer token; keys are random.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/photos/*key", h.serve)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoBytes+(64<<10))
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	defer file.Close()

	obj, err := h.Svc.Upload(c.Request.Context(), middleware.UserIDFromContext(c), header.Filename, file)
	switch {
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_file", "photo must be a JPEG, PNG or WebP image", nil)
		return
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "photo exceeds the 4MB limit", nil)
		return
	case err != nil:
		telemetry.Error("photos.upload_failed", map[string]any{
			"error":      err,
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store photo", nil)
		return
	}
	respond.Created(c, gin.H{
		"photoKey": obj.Key,
		"url":      h.Svc.URL(obj.Key),
		"mimeType": obj.MimeType,
		"size":     obj.Size,
	})
}

func (h *Handler) serve(c *gin.Context) {
	key := keyParam(c)
	data, err := h.Svc.Open(c.Request.Context(), key)
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "photo not found", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read photo", nil)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), keyParam(c))
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "photo not found", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete photo", nil)
		return
	}
	respond.NoContent(c)
}

func keyParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}
