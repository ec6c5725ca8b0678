package documents

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/layout"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

const maxDocumentBody = 1 << 20 // 1MB

// PlanResolver yields the caller's tier, cached per request.
type PlanResolver interface {
	LevelForRequest(c *gin.Context) (permissions.Level, error)
}

// Handler wires document HTTP routes for one kind.
type Handler[D model.Values[D]] struct {
	Svc      *Service[D]
	Plans    PlanResolver
	Renderer *render.Renderer[D]
	path     string
}

// NewHandler constructs a Handler mounted at path, e.g. "/resumes".
func NewHandler[D model.Values[D]](path string, svc *Service[D], plans PlanResolver, renderer *render.Renderer[D]) *Handler[D] {
	return &Handler[D]{Svc: svc, Plans: plans, Renderer: renderer, path: path}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler[D]) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group(h.path)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.save)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/render", h.render)
}

func (h *Handler[D]) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list documents")
		return
	}
	resp := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, summary(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler[D]) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	doc, ok := h.bind(c)
	if !ok {
		return
	}
	level, err := h.Plans.LevelForRequest(c)
	if err != nil {
		h.fail(c, err, "failed to resolve plan")
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), userID, level, doc)
	if err != nil {
		h.fail(c, err, "failed to create document")
		return
	}
	respond.Created(c, created)
}

func (h *Handler[D]) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch document")
		return
	}
	respond.OK(c, doc)
}

func (h *Handler[D]) save(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	doc, ok := h.bind(c)
	if !ok {
		return
	}
	level, err := h.Plans.LevelForRequest(c)
	if err != nil {
		h.fail(c, err, "failed to resolve plan")
		return
	}
	saved, err := h.Svc.Save(c.Request.Context(), userID, level, c.Param("id"), doc)
	if err != nil {
		h.fail(c, err, "failed to save document")
		return
	}
	respond.OK(c, saved)
}

func (h *Handler[D]) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete document")
		return
	}
	respond.NoContent(c)
}

// render returns the document as a standalone HTML page. With ?width= the
// page is scaled for a container of that width; without it the page is
// printed at reference size.
func (h *Handler[D]) render(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch document")
		return
	}

	frame := layout.PrintFrame()
	if v := c.Query("width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "width must be a number", nil)
			return
		}
		frame = layout.NewFrame(width)
	}
	fragment := c.Query("fragment") == "1" || c.Query("fragment") == "true"

	html, info, err := h.Renderer.RenderString(c.Request.Context(), doc.Values, frame, fragment)
	if err != nil {
		h.fail(c, err, "failed to render document")
		return
	}
	c.Header("X-Template-Id", info.ID)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler[D]) bind(c *gin.Context) (D, bool) {
	var doc D
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentBody)
	if err := c.ShouldBindJSON(&doc); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return doc, false
	}
	return doc, true
}

func (h *Handler[D]) fail(c *gin.Context, err error, msg string) {
	if permissions.RespondDenied(c, err) {
		return
	}
	var fe model.FieldErrors
	switch {
	case errors.As(err, &fe):
		respond.Error(c, http.StatusBadRequest, "validation_error", "document has invalid fields", fe)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}

func summary[D model.Values[D]](doc Document[D]) gin.H {
	v := doc.Values.Normalize()
	return gin.H{
		"id":         doc.ID,
		"kind":       v.Kind(),
		"title":      v.DisplayTitle(),
		"templateId": v.TemplateID(),
		"createdAt":  doc.CreatedAt,
		"updatedAt":  doc.UpdatedAt,
	}
}

// TemplatesHandler lists the registered template variants.
type TemplatesHandler struct {
	Resumes      *render.Registry[model.ResumeValues]
	CoverLetters *render.Registry[model.CoverLetterValues]
}

func (h *TemplatesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates/resumes", func(c *gin.Context) {
		respond.OK(c, gin.H{"default": h.Resumes.DefaultID(), "templates": h.Resumes.List()})
	})
	rg.GET("/templates/cover-letters", func(c *gin.Context) {
		respond.OK(c, gin.H{"default": h.CoverLetters.DefaultID(), "templates": h.CoverLetters.List()})
	})
}
