package model

import "strings"

// CoverLetterValues is the editable cover letter document.
type CoverLetterValues struct {
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

	RecipientName  string `json:"recipientName" validate:"max=120"`
	CompanyName    string `json:"companyName" validate:"max=120"`
	CompanyAddress string `json:"companyAddress" validate:"max=300"`

	Date          string `json:"date" validate:"omitempty,docdate"`
	Body          string `json:"body" validate:"max=10000"`
	Closing       string `json:"closing" validate:"max=120"`
	SignatureName string `json:"signatureName" validate:"max=120"`

	SelectedTemplate string `json:"selectedTemplate" validate:"max=64"`
	ColorHex         string `json:"colorHex" validate:"omitempty,hexcolor"`
	BorderStyle      string `json:"borderStyle" validate:"omitempty,borderstyle"`
}

func (v CoverLetterValues) Kind() Kind { return KindCoverLetter }

func (v CoverLetterValues) TemplateID() string { return v.SelectedTemplate }

func (v CoverLetterValues) PhotoHandle() string { return v.PhotoKey }

func (v CoverLetterValues) Styling() Styling {
	return Styling{ColorHex: v.ColorHex, BorderStyle: v.BorderStyle}
}

func (v CoverLetterValues) DisplayTitle() string {
	if t := strings.TrimSpace(v.Title); t != "" {
		return t
	}
	if c := strings.TrimSpace(v.CompanyName); c != "" {
		return "Cover letter for " + c
	}
	return "Untitled cover letter"
}

func (v CoverLetterValues) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(v.FirstName) + " " + strings.TrimSpace(v.LastName))
}

// Clone returns a copy. CoverLetterValues holds no reference types.
func (v CoverLetterValues) Clone() CoverLetterValues {
	return v
}

func (v CoverLetterValues) Normalize() CoverLetterValues {
	out := v
	if strings.TrimSpace(out.SelectedTemplate) == "" {
		out.SelectedTemplate = DefaultTemplate
	}
	if strings.TrimSpace(out.ColorHex) == "" {
		out.ColorHex = DefaultColorHex
	}
	if strings.TrimSpace(out.BorderStyle) == "" {
		out.BorderStyle = DefaultBorderStyle
	}
	return out
}

func (v CoverLetterValues) Validate() FieldErrors {
	return validateStruct(v)
}
