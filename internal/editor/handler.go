package editor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-builder/internal/documents"
	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

const maxPatchBody = 1 << 20 // 1MB

// Handler exposes editor sessions over REST and the live websocket.
type Handler struct {
	Sessions       *Registry
	Resumes        *documents.Store[model.ResumeValues]
	CoverLetters   *documents.Store[model.CoverLetterValues]
	ResumeRenderer *render.Renderer[model.ResumeValues]
	CoverRenderer  *render.Renderer[model.CoverLetterValues]
	Plans          documents.PlanResolver
	AutoSaveDelay  time.Duration
	ResizeDebounce time.Duration
	// AllowedOrigins gates websocket upgrades; requests without an Origin
	// header are always accepted.
	AllowedOrigins []string
}

// RegisterRoutes attaches editor routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/editor/sessions")
	g.POST("", h.open)
	g.GET("/:id", h.state)
	g.PATCH("/:id/steps/:step", h.update)
	g.POST("/:id/navigate", h.navigate)
	g.POST("/:id/resize", h.resize)
	g.GET("/:id/preview", h.preview)
	g.POST("/:id/save", h.save)
	g.DELETE("/:id", h.close)
	g.GET("/:id/live", h.live)
}

type openRequest struct {
	Kind       model.Kind `json:"kind"`
	DocumentID string     `json:"documentId"`
	Width      float64    `json:"width"`
}

func (h *Handler) open(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if !req.Kind.Valid() || req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "kind and documentId are required", nil)
		return
	}

	var (
		sess Handle
		err  error
	)
	switch req.Kind {
	case model.KindCoverLetter:
		sess, err = openSession(c.Request.Context(), h, userID, req.DocumentID, h.CoverLetters, h.CoverRenderer)
	default:
		sess, err = openSession(c.Request.Context(), h, userID, req.DocumentID, h.Resumes, h.ResumeRenderer)
	}
	if err != nil {
		h.fail(c, err, "failed to open editor")
		return
	}
	if req.Width > 0 {
		sess.Resize(req.Width)
	}
	h.Sessions.Add(sess)
	c.Set("sessionId", sess.ID())
	c.Set("documentId", sess.DocumentID())
	respond.Created(c, sess.State())
}

func openSession[D model.Values[D]](ctx context.Context, h *Handler, ownerID, documentID string, store *documents.Store[D], renderer *render.Renderer[D]) (Handle, error) {
	doc, err := store.Load(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	save := func(ctx context.Context, values D) error {
		_, err := store.Save(ctx, ownerID, documentID, values)
		return err
	}
	return NewSession(uuid.NewString(), ownerID, documentID, doc.Values, Options[D]{
		AutoSaveDelay:  h.AutoSaveDelay,
		ResizeDebounce: h.ResizeDebounce,
		Save:           save,
		Renderer:       renderer,
	}), nil
}

func (h *Handler) session(c *gin.Context) (Handle, bool) {
	sess, err := h.Sessions.Get(middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load session")
		return nil, false
	}
	c.Set("sessionId", sess.ID())
	c.Set("documentId", sess.DocumentID())
	return sess, true
}

func (h *Handler) state(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respond.OK(c, sess.State())
}

func (h *Handler) update(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var patch json.RawMessage
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPatchBody)
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	level, err := h.Plans.LevelForRequest(c)
	if err != nil {
		h.fail(c, err, "failed to resolve plan")
		return
	}
	if err := sess.Update(c.Param("step"), patch, level); err != nil {
		h.fail(c, err, "failed to update step")
		return
	}
	respond.OK(c, sess.State())
}

type navigateRequest struct {
	Action string `json:"action"`
	Step   string `json:"step"`
}

func (h *Handler) navigate(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if err := navigate(sess, req.Action, req.Step); err != nil {
		h.fail(c, err, "failed to navigate")
		return
	}
	respond.OK(c, sess.State())
}

var errUnknownAction = errors.New("action must be next, prev or jump")

func navigate(sess Handle, action, step string) error {
	switch action {
	case "next":
		sess.Next()
	case "prev":
		sess.Prev()
	case "jump":
		_, err := sess.JumpTo(step)
		return err
	default:
		return errUnknownAction
	}
	return nil
}

type resizeRequest struct {
	Width float64 `json:"width"`
}

func (h *Handler) resize(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	sess.Resize(req.Width)
	c.Status(http.StatusAccepted)
}

func (h *Handler) preview(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	fragment := c.Query("fragment") == "1" || c.Query("fragment") == "true"
	html, err := sess.Preview(c.Request.Context(), fragment)
	if err != nil {
		h.fail(c, err, "failed to render preview")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) save(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Flush(c.Request.Context()); err != nil {
		h.fail(c, err, "failed to save document")
		return
	}
	respond.OK(c, sess.State())
}

func (h *Handler) close(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Sessions.Remove(userID, c.Param("id")); err != nil {
		h.fail(c, err, "failed to close session")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	RespondError(c, err, msg)
}

// RespondError writes a session error, e.g. a step update rejected by
// validation, as the standard error body.
func RespondError(c *gin.Context, err error, msg string) {
	if permissions.RespondDenied(c, err) {
		return
	}
	status, body := errorBody(err, msg)
	respond.Error(c, status, body.Code, body.Message, body.Details)
}

// errorBody maps editor errors to the standard error body. It is shared by
// REST responses and live channel error frames.
func errorBody(err error, msg string) (int, respond.ErrorBody) {
	var fe model.FieldErrors
	var denied *permissions.DeniedError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, respond.ErrorBody{Code: "validation_error", Message: "step has invalid fields", Details: fe}
	case errors.As(err, &denied):
		return http.StatusForbidden, respond.ErrorBody{Code: "upgrade_required", Message: "Upgrade your plan to use this feature", Details: gin.H{
			"action":        denied.Action,
			"currentLevel":  denied.Level,
			"requiredLevel": denied.Required,
		}}
	case errors.Is(err, ErrUnknownStep):
		return http.StatusBadRequest, respond.ErrorBody{Code: "unknown_step", Message: err.Error()}
	case errors.Is(err, ErrInvalidPatch), errors.Is(err, errUnknownAction), errors.Is(err, errUnknownMessage):
		return http.StatusBadRequest, respond.ErrorBody{Code: "validation_error", Message: err.Error()}
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound, respond.ErrorBody{Code: "not_found", Message: err.Error()}
	case errors.Is(err, ErrSessionClosed):
		return http.StatusGone, respond.ErrorBody{Code: "session_closed", Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, respond.ErrorBody{Code: "timeout", Message: "request canceled"}
	default:
		return http.StatusInternalServerError, respond.ErrorBody{Code: "internal_error", Message: msg}
	}
}
