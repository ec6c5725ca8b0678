package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/documents"
	"resume-builder/internal/editor"
	"resume-builder/internal/extract"
	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
)

const maxImportSize = 5 << 20 // 5MB

// Handler exposes AI generation routes. Every route requires a tier that
// may use AI tools.
type Handler struct {
	Svc          *Service
	Policy       permissions.Policy
	Plans        documents.PlanResolver
	Sessions     *editor.Registry
	Resumes      *documents.Service[model.ResumeValues]
	CoverLetters *documents.Service[model.CoverLetterValues]
}

// RegisterRoutes attaches AI routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/ai")
	g.POST("/summary", h.summary)
	g.POST("/work-experience", h.workExperience)
	g.POST("/cover-letter-body", h.coverLetterBody)
	g.POST("/import", h.importResume)
}

// target names where a suggestion comes from and where it may be applied.
// SessionID wins over DocumentID.
type target struct {
	SessionID  string `json:"sessionId"`
	DocumentID string `json:"documentId"`
}

type summaryRequest struct {
	target
	Resume *model.ResumeValues `json:"resume"`
}

func (h *Handler) summary(c *gin.Context) {
	level, ok := h.gate(c)
	if !ok {
		return
	}
	var req summaryRequest
	if !bind(c, &req) {
		return
	}
	sess, resume, ok := h.sourceResume(c, req.target, req.Resume)
	if !ok {
		return
	}
	text, err := h.Svc.GenerateSummary(c.Request.Context(), resume)
	if err != nil {
		h.fail(c, err, "failed to generate summary")
		return
	}
	h.reply(c, sess, level, "summary", gin.H{"summary": text}, gin.H{"summary": text})
}

type workExperienceRequest struct {
	WorkExperienceInput
	SessionID string `json:"sessionId"`
}

func (h *Handler) workExperience(c *gin.Context) {
	level, ok := h.gate(c)
	if !ok {
		return
	}
	var req workExperienceRequest
	if !bind(c, &req) {
		return
	}
	var sess editor.Handle
	var current []model.WorkExperience
	if req.SessionID != "" {
		s, resume, ok := h.sessionResume(c, req.SessionID)
		if !ok {
			return
		}
		sess, current = s, resume.WorkExperiences
	}
	entry, err := h.Svc.GenerateWorkExperience(c.Request.Context(), req.WorkExperienceInput)
	if err != nil {
		h.fail(c, err, "failed to generate work experience")
		return
	}
	list := append(append([]model.WorkExperience(nil), current...), entry)
	h.reply(c, sess, level, "work-experience", gin.H{"workExperiences": list}, gin.H{"workExperience": entry})
}

type coverLetterRequest struct {
	target
	JobDescription string `json:"jobDescription"`
	ResumeID       string `json:"resumeId"`
}

func (h *Handler) coverLetterBody(c *gin.Context) {
	level, ok := h.gate(c)
	if !ok {
		return
	}
	var req coverLetterRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)

	in := CoverLetterInput{JobDescription: req.JobDescription}
	var sess editor.Handle
	switch {
	case req.SessionID != "":
		s, err := h.Sessions.Get(userID, req.SessionID)
		if err != nil {
			editor.RespondError(c, err, "failed to load session")
			return
		}
		letter, ok := s.State().Document.(model.CoverLetterValues)
		if !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "session is not editing a cover letter", nil)
			return
		}
		sess, in.Letter = s, letter
	case req.DocumentID != "":
		doc, err := h.CoverLetters.Get(ctx, userID, req.DocumentID)
		if err != nil {
			h.fail(c, err, "failed to load cover letter")
			return
		}
		in.Letter = doc.Values
	}
	if req.ResumeID != "" {
		doc, err := h.Resumes.Get(ctx, userID, req.ResumeID)
		if err != nil {
			h.fail(c, err, "failed to load resume")
			return
		}
		in.Resume = &doc.Values
	}

	body, err := h.Svc.GenerateCoverLetterBody(ctx, in)
	if err != nil {
		h.fail(c, err, "failed to generate cover letter body")
		return
	}
	h.reply(c, sess, level, "body", gin.H{"body": body}, gin.H{"body": body})
}

// importResume structures an uploaded PDF or DOCX into a new resume. It
// needs both AI access and a free resume slot.
func (h *Handler) importResume(c *gin.Context) {
	level, ok := h.gate(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the 5MB limit", nil)
		return
	}

	ctx := c.Request.Context()
	text, err := extract.Text(ctx, data, header.Header.Get("Content-Type"), header.Filename)
	switch {
	case errors.Is(err, extract.ErrUnsupported):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_file", "only PDF and DOCX files can be imported", nil)
		return
	case errors.Is(err, extract.ErrEmpty):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_document", "no text found in the uploaded file", nil)
		return
	case err != nil:
		h.fail(c, err, "failed to read uploaded file")
		return
	}

	values, err := h.Svc.StructureResume(ctx, text)
	if err != nil {
		h.fail(c, err, "failed to import resume")
		return
	}
	if strings.TrimSpace(values.Title) == "" {
		values.Title = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}
	doc, err := h.Resumes.Create(ctx, middleware.UserIDFromContext(c), level, values)
	if err != nil {
		h.fail(c, err, "failed to create resume")
		return
	}
	c.Set("documentId", doc.ID)
	respond.Created(c, doc)
}

func (h *Handler) gate(c *gin.Context) (permissions.Level, bool) {
	level, err := h.Plans.LevelForRequest(c)
	if err != nil {
		h.fail(c, err, "failed to resolve plan")
		return "", false
	}
	if err := h.Policy.Check(permissions.ActionUseAITools, level, permissions.Counts{}); err != nil {
		permissions.RespondDenied(c, err)
		return "", false
	}
	return level, true
}

func (h *Handler) sourceResume(c *gin.Context, t target, inline *model.ResumeValues) (editor.Handle, model.ResumeValues, bool) {
	switch {
	case t.SessionID != "":
		return h.sessionResume(c, t.SessionID)
	case t.DocumentID != "":
		doc, err := h.Resumes.Get(c.Request.Context(), middleware.UserIDFromContext(c), t.DocumentID)
		if err != nil {
			h.fail(c, err, "failed to load resume")
			return nil, model.ResumeValues{}, false
		}
		return nil, doc.Values, true
	case inline != nil:
		return nil, *inline, true
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "sessionId, documentId or resume is required", nil)
		return nil, model.ResumeValues{}, false
	}
}

func (h *Handler) sessionResume(c *gin.Context, id string) (editor.Handle, model.ResumeValues, bool) {
	sess, err := h.Sessions.Get(middleware.UserIDFromContext(c), id)
	if err != nil {
		editor.RespondError(c, err, "failed to load session")
		return nil, model.ResumeValues{}, false
	}
	resume, ok := sess.State().Document.(model.ResumeValues)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "session is not editing a resume", nil)
		return nil, model.ResumeValues{}, false
	}
	c.Set("sessionId", sess.ID())
	return sess, resume, true
}

// reply returns the suggestion and, when a session is open, merges patch
// into step through the session so the step's own validation applies.
func (h *Handler) reply(c *gin.Context, sess editor.Handle, level permissions.Level, step string, patch, suggestion gin.H) {
	body := gin.H{"suggestion": suggestion, "applied": false}
	if sess != nil {
		raw, err := json.Marshal(patch)
		if err != nil {
			h.fail(c, err, "failed to encode suggestion")
			return
		}
		if err := sess.Update(step, raw, level); err != nil {
			editor.RespondError(c, fmt.Errorf("apply suggestion: %w", err), "failed to apply suggestion")
			return
		}
		body["applied"] = true
		body["state"] = sess.State()
	}
	respond.OK(c, body)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	if permissions.RespondDenied(c, err) {
		return
	}
	var fe model.FieldErrors
	switch {
	case errors.As(err, &fe):
		respond.Error(c, http.StatusBadRequest, "validation_error", "document has invalid fields", fe)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrUnavailable):
		respond.Error(c, http.StatusBadGateway, "ai_unavailable", "The AI assistant is unavailable, please try again", nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return false
	}
	return true
}
