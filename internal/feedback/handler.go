package feedback

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/feedback", h.submit)
	rg.GET("/feedback", h.list)
}

func (h *Handler) submit(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "rating must be between 1 and 5", nil)
		return
	}
	f, err := h.Svc.Submit(c.Request.Context(), middleware.UserIDFromContext(c), c.GetString("requestId"), in)
	if err != nil {
		fail(c, err, "failed to save feedback")
		return
	}
	respond.Created(c, f)
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit)
	if err != nil {
		fail(c, err, "failed to list feedback")
		return
	}
	if items == nil {
		items = []Feedback{}
	}
	respond.OK(c, gin.H{"items": items})
}

func fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
}
