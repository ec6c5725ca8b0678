package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/metrics"
	"resume-builder/resume/model"
)

var tracer = otel.Tracer("ai")

var (
	// ErrUnavailable wraps provider failures and unusable provider output.
	ErrUnavailable = errors.New("ai provider unavailable")
	// ErrInvalidInput is returned when there is nothing to generate from.
	ErrInvalidInput = errors.New("invalid input")
)

// Service turns document content into AI suggestions.
type Service struct {
	Client llm.Client
}

// NewService constructs a Service. A nil client behaves as unconfigured.
func NewService(client llm.Client) *Service {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	return &Service{Client: client}
}

type summaryInput struct {
	JobTitle        string                 `json:"jobTitle,omitempty"`
	WorkExperiences []model.WorkExperience `json:"workExperiences,omitempty"`
	Educations      []model.Education      `json:"educations,omitempty"`
	Skills          []model.Skill          `json:"skills,omitempty"`
	Achievements    []model.Achievement    `json:"achievements,omitempty"`
}

// GenerateSummary writes a professional summary from the resume content.
func (s *Service) GenerateSummary(ctx context.Context, resume model.ResumeValues) (string, error) {
	in := summaryInput{
		JobTitle:        strings.TrimSpace(resume.JobTitle),
		WorkExperiences: nonBlank(resume.WorkExperiences),
		Educations:      nonBlank(resume.Educations),
		Skills:          nonBlank(resume.Skills),
		Achievements:    nonBlank(resume.Achievements),
	}
	if in.JobTitle == "" && len(in.WorkExperiences) == 0 && len(in.Educations) == 0 && len(in.Skills) == 0 {
		return "", fmt.Errorf("%w: add a job title, experience, education or skills first", ErrInvalidInput)
	}
	var out struct {
		Summary string `json:"summary"`
	}
	if err := s.complete(ctx, llm.TaskSummary, in, &out); err != nil {
		return "", err
	}
	return s.text(llm.TaskSummary, out.Summary)
}

// WorkExperienceInput is free-form notes about one role.
type WorkExperienceInput struct {
	Notes    string `json:"notes"`
	Position string `json:"position,omitempty"`
	Company  string `json:"company,omitempty"`
}

// GenerateWorkExperience turns notes into a structured entry. Dates the
// provider returns in the wrong format are dropped rather than rejected.
func (s *Service) GenerateWorkExperience(ctx context.Context, in WorkExperienceInput) (model.WorkExperience, error) {
	if strings.TrimSpace(in.Notes) == "" {
		return model.WorkExperience{}, fmt.Errorf("%w: notes are required", ErrInvalidInput)
	}
	var out model.WorkExperience
	if err := s.complete(ctx, llm.TaskWorkExperience, in, &out); err != nil {
		return model.WorkExperience{}, err
	}
	out.StartDate = cleanDate(out.StartDate)
	out.EndDate = cleanDate(out.EndDate)
	if out.StartDate != "" && out.EndDate != "" {
		start, _ := model.ParseDate(out.StartDate)
		end, _ := model.ParseDate(out.EndDate)
		if end.Before(start) {
			out.EndDate = ""
		}
	}
	if out.IsBlank() {
		metrics.IncAIRequest(string(llm.TaskWorkExperience), "empty")
		return model.WorkExperience{}, fmt.Errorf("%w: empty work experience", ErrUnavailable)
	}
	return out, nil
}

// CoverLetterInput is what the body is written from.
type CoverLetterInput struct {
	JobDescription string                  `json:"jobDescription"`
	Letter         model.CoverLetterValues `json:"-"`
	Resume         *model.ResumeValues     `json:"-"`
}

type coverLetterPrompt struct {
	JobDescription string        `json:"jobDescription"`
	CompanyName    string        `json:"companyName,omitempty"`
	RecipientName  string        `json:"recipientName,omitempty"`
	Applicant      string        `json:"applicant,omitempty"`
	JobTitle       string        `json:"jobTitle,omitempty"`
	Profile        *summaryInput `json:"profile,omitempty"`
	Summary        string        `json:"summary,omitempty"`
}

// GenerateCoverLetterBody writes the letter body for a job description.
func (s *Service) GenerateCoverLetterBody(ctx context.Context, in CoverLetterInput) (string, error) {
	if strings.TrimSpace(in.JobDescription) == "" {
		return "", fmt.Errorf("%w: jobDescription is required", ErrInvalidInput)
	}
	p := coverLetterPrompt{
		JobDescription: strings.TrimSpace(in.JobDescription),
		CompanyName:    in.Letter.CompanyName,
		RecipientName:  in.Letter.RecipientName,
		Applicant:      in.Letter.FullName(),
		JobTitle:       in.Letter.JobTitle,
	}
	if r := in.Resume; r != nil {
		p.Profile = &summaryInput{
			JobTitle:        r.JobTitle,
			WorkExperiences: nonBlank(r.WorkExperiences),
			Educations:      nonBlank(r.Educations),
			Skills:          nonBlank(r.Skills),
			Achievements:    nonBlank(r.Achievements),
		}
		p.Summary = r.Summary
	}
	var out struct {
		Body string `json:"body"`
	}
	if err := s.complete(ctx, llm.TaskCoverLetterBody, p, &out); err != nil {
		return "", err
	}
	return s.text(llm.TaskCoverLetterBody, out.Body)
}

// StructureResume turns extracted resume text into a new document. Styling
// and photo are never taken from the provider; fields that fail validation
// are cleared.
func (s *Service) StructureResume(ctx context.Context, text string) (model.ResumeValues, error) {
	if strings.TrimSpace(text) == "" {
		return model.ResumeValues{}, fmt.Errorf("%w: no text to import", ErrInvalidInput)
	}
	var out model.ResumeValues
	if err := s.complete(ctx, llm.TaskImportResume, text, &out); err != nil {
		return model.ResumeValues{}, err
	}
	out.PhotoKey = ""
	out.SelectedTemplate = ""
	out.ColorHex = ""
	out.BorderStyle = ""
	out.FontFamily = ""
	out.WorkExperiences = nonBlank(out.WorkExperiences)
	out.Educations = nonBlank(out.Educations)
	out.Skills = nonBlank(out.Skills)
	out.Languages = nonBlank(out.Languages)
	out.Achievements = nonBlank(out.Achievements)

	cleaned, err := dropInvalid(out.Normalize())
	if err != nil {
		return model.ResumeValues{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return cleaned, nil
}

// complete sends the task prompt with input and decodes the JSON reply
// into out.
func (s *Service) complete(ctx context.Context, task llm.Task, input any, out any) error {
	ctx, span := tracer.Start(ctx, "AI.Service."+string(task))
	defer span.End()
	span.SetAttributes(attribute.String("ai.task", string(task)))

	userContent, ok := input.(string)
	if !ok {
		raw, err := json.Marshal(input)
		if err != nil {
			return fmt.Errorf("encode %s input: %w", task, err)
		}
		userContent = string(raw)
	}

	raw, err := s.Client.CompleteJSON(ctx, llm.BuildPrompt(task, userContent))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		if ctx.Err() != nil {
			metrics.IncAIRequest(string(task), "timeout")
			return ctx.Err()
		}
		metrics.IncAIRequest(string(task), "error")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		span.RecordError(err)
		metrics.IncAIRequest(string(task), "invalid")
		return fmt.Errorf("%w: decode %s output: %v", ErrUnavailable, task, err)
	}
	metrics.IncAIRequest(string(task), "ok")
	return nil
}

func (s *Service) text(task llm.Task, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		metrics.IncAIRequest(string(task), "empty")
		return "", fmt.Errorf("%w: empty %s", ErrUnavailable, task)
	}
	return v, nil
}

func cleanDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if _, err := model.ParseDate(raw); err != nil {
		return ""
	}
	return raw
}

type blankable interface {
	IsBlank() bool
}

func nonBlank[T blankable](items []T) []T {
	var out []T
	for _, it := range items {
		if !it.IsBlank() {
			out = append(out, it)
		}
	}
	return out
}

// dropInvalid zeroes every top-level field that fails validation.
func dropInvalid(v model.ResumeValues) (model.ResumeValues, error) {
	fe := v.Validate()
	if len(fe) == 0 {
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return v, err
	}
	for path := range fe {
		delete(fields, model.TopLevelField(path))
	}
	if raw, err = json.Marshal(fields); err != nil {
		return v, err
	}
	var out model.ResumeValues
	if err := json.Unmarshal(raw, &out); err != nil {
		return v, err
	}
	return out.Normalize(), nil
}
