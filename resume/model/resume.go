package model

import "strings"

// ResumeValues is the editable resume document.
type ResumeValues struct {
	Title       string `json:"title" validate:"max=120"`
	Description string `json:"description" validate:"max=500"`

	PhotoKey string `json:"photoKey" validate:"max=512"`

	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	JobTitle  string `json:"jobTitle" validate:"max=120"`
	City      string `json:"city" validate:"max=100"`
	Country   string `json:"country" validate:"max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32,phone"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`

	WorkExperiences []WorkExperience `json:"workExperiences" validate:"max=30,dive"`
	Educations      []Education      `json:"educations" validate:"max=20,dive"`
	Skills          []Skill          `json:"skills" validate:"max=60,dive"`
	Languages       []Language       `json:"languages" validate:"max=20,dive"`
	Achievements    []Achievement    `json:"achievements" validate:"max=30,dive"`

	Summary string `json:"summary" validate:"max=4000"`

	SelectedTemplate string `json:"selectedTemplate" validate:"max=64"`
	ColorHex         string `json:"colorHex" validate:"omitempty,hexcolor"`
	BorderStyle      string `json:"borderStyle" validate:"omitempty,borderstyle"`
	FontFamily       string `json:"fontFamily" validate:"omitempty,fontfamily"`
}

// WorkExperience is one job entry. An empty EndDate means the role is current.
type WorkExperience struct {
	Position    string `json:"position" validate:"max=120"`
	Company     string `json:"company" validate:"max=120"`
	StartDate   string `json:"startDate" validate:"omitempty,docdate"`
	EndDate     string `json:"endDate" validate:"omitempty,docdate"`
	Description string `json:"description" validate:"max=4000"`
}

// IsBlank reports whether every field is empty or whitespace.
func (w WorkExperience) IsBlank() bool {
	return blank(w.Position, w.Company, w.StartDate, w.EndDate, w.Description)
}

// Education is one school entry.
type Education struct {
	Degree    string `json:"degree" validate:"max=120"`
	School    string `json:"school" validate:"max=120"`
	StartDate string `json:"startDate" validate:"omitempty,docdate"`
	EndDate   string `json:"endDate" validate:"omitempty,docdate"`
}

func (e Education) IsBlank() bool {
	return blank(e.Degree, e.School, e.StartDate, e.EndDate)
}

// Skill is a named skill with an optional grouping category.
type Skill struct {
	Name     string `json:"name" validate:"max=60"`
	Category string `json:"category" validate:"max=60"`
}

func (s Skill) IsBlank() bool {
	return blank(s.Name)
}

type Language struct {
	Name        string `json:"name" validate:"max=60"`
	Proficiency string `json:"proficiency" validate:"max=40"`
}

func (l Language) IsBlank() bool {
	return blank(l.Name)
}

type Achievement struct {
	Title       string `json:"title" validate:"max=160"`
	Date        string `json:"date" validate:"omitempty,docdate"`
	Description string `json:"description" validate:"max=2000"`
}

func (a Achievement) IsBlank() bool {
	return blank(a.Title, a.Date, a.Description)
}

func (v ResumeValues) Kind() Kind { return KindResume }

func (v ResumeValues) TemplateID() string { return v.SelectedTemplate }

func (v ResumeValues) PhotoHandle() string { return v.PhotoKey }

func (v ResumeValues) Styling() Styling {
	return Styling{ColorHex: v.ColorHex, BorderStyle: v.BorderStyle, FontFamily: v.FontFamily}
}

// DisplayTitle is the title shown in document lists.
func (v ResumeValues) DisplayTitle() string {
	if t := strings.TrimSpace(v.Title); t != "" {
		return t
	}
	if name := strings.TrimSpace(v.FirstName + " " + v.LastName); name != "" {
		return name
	}
	return "Untitled resume"
}

// FullName joins first and last name.
func (v ResumeValues) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(v.FirstName) + " " + strings.TrimSpace(v.LastName))
}

// Clone returns a deep copy.
func (v ResumeValues) Clone() ResumeValues {
	out := v
	out.WorkExperiences = cloneSlice(v.WorkExperiences)
	out.Educations = cloneSlice(v.Educations)
	out.Skills = cloneSlice(v.Skills)
	out.Languages = cloneSlice(v.Languages)
	out.Achievements = cloneSlice(v.Achievements)
	return out
}

// Normalize returns a copy with empty styling choices set to their defaults.
func (v ResumeValues) Normalize() ResumeValues {
	out := v.Clone()
	if strings.TrimSpace(out.SelectedTemplate) == "" {
		out.SelectedTemplate = DefaultTemplate
	}
	if strings.TrimSpace(out.ColorHex) == "" {
		out.ColorHex = DefaultColorHex
	}
	if strings.TrimSpace(out.BorderStyle) == "" {
		out.BorderStyle = DefaultBorderStyle
	}
	if strings.TrimSpace(out.FontFamily) == "" {
		out.FontFamily = DefaultFontFamily
	}
	return out
}

// Validate checks every field and returns nil when the document is valid.
func (v ResumeValues) Validate() FieldErrors {
	return validateStruct(v)
}

func blank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
