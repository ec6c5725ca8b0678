package render

import (
	"strings"

	"resume-builder/resume/model"
)

// EntryView is one dated entry in a section.
type EntryView struct {
	Title      string
	Subtitle   string
	Dates      string
	Paragraphs []string
}

type SkillGroup struct {
	Category string
	Skills   []string
}

type LanguageView struct {
	Name        string
	Proficiency string
}

// ResumeView is the render-ready projection of a resume. Nil slices mean
// the section is omitted.
type ResumeView struct {
	Name         string
	JobTitle     string
	Location     string
	Phone        string
	Email        string
	PhotoURL     string
	Style        Style
	Summary      []string
	Experience   []EntryView
	Education    []EntryView
	Skills       []string
	SkillGroups  []SkillGroup
	Languages    []LanguageView
	Achievements []EntryView
}

// HasContact reports whether any contact line is present.
func (v ResumeView) HasContact() bool {
	return v.Location != "" || v.Phone != "" || v.Email != ""
}

// CoverLetterView is the render-ready projection of a cover letter.
type CoverLetterView struct {
	Name           string
	JobTitle       string
	Location       string
	Phone          string
	Email          string
	PhotoURL       string
	Style          Style
	Date           string
	RecipientName  string
	CompanyName    string
	CompanyAddress []string
	Body           []string
	Closing        string
	Signature      string
}

func (v CoverLetterView) HasContact() bool {
	return v.Location != "" || v.Phone != "" || v.Email != ""
}

func (v CoverLetterView) HasRecipient() bool {
	return v.RecipientName != "" || v.CompanyName != "" || len(v.CompanyAddress) > 0
}

// DateRange formats "start – end", or "start – Present" when end is empty.
func DateRange(start, end string) string {
	s := model.FormatMonth(start)
	e := model.FormatMonth(end)
	switch {
	case s == "" && e == "":
		return ""
	case s == "":
		return e
	case e == "":
		return s + " – Present"
	default:
		return s + " – " + e
	}
}

// BuildResumeView projects doc for templates. doc is not modified.
func BuildResumeView(doc model.ResumeValues, opts Options) ResumeView {
	v := ResumeView{
		Name:     doc.FullName(),
		JobTitle: strings.TrimSpace(doc.JobTitle),
		Location: joinNonEmpty(", ", doc.City, doc.Country),
		Phone:    strings.TrimSpace(doc.Phone),
		Email:    strings.TrimSpace(doc.Email),
		PhotoURL: opts.PhotoURL,
		Style:    styleFor(doc.ColorHex, doc.BorderStyle, doc.FontFamily),
		Summary:  paragraphs(doc.Summary),
	}

	for _, w := range doc.WorkExperiences {
		if w.IsBlank() {
			continue
		}
		v.Experience = append(v.Experience, EntryView{
			Title:      strings.TrimSpace(w.Position),
			Subtitle:   strings.TrimSpace(w.Company),
			Dates:      DateRange(w.StartDate, w.EndDate),
			Paragraphs: paragraphs(w.Description),
		})
	}
	for _, e := range doc.Educations {
		if e.IsBlank() {
			continue
		}
		v.Education = append(v.Education, EntryView{
			Title:    strings.TrimSpace(e.Degree),
			Subtitle: strings.TrimSpace(e.School),
			Dates:    DateRange(e.StartDate, e.EndDate),
		})
	}

	groupIndex := map[string]int{}
	for _, s := range doc.Skills {
		if s.IsBlank() {
			continue
		}
		name := strings.TrimSpace(s.Name)
		v.Skills = append(v.Skills, name)
		category := strings.TrimSpace(s.Category)
		if category == "" {
			category = "Other"
		}
		idx, ok := groupIndex[category]
		if !ok {
			idx = len(v.SkillGroups)
			groupIndex[category] = idx
			v.SkillGroups = append(v.SkillGroups, SkillGroup{Category: category})
		}
		v.SkillGroups[idx].Skills = append(v.SkillGroups[idx].Skills, name)
	}

	for _, l := range doc.Languages {
		if l.IsBlank() {
			continue
		}
		v.Languages = append(v.Languages, LanguageView{
			Name:        strings.TrimSpace(l.Name),
			Proficiency: strings.TrimSpace(l.Proficiency),
		})
	}
	for _, a := range doc.Achievements {
		if a.IsBlank() {
			continue
		}
		v.Achievements = append(v.Achievements, EntryView{
			Title:      strings.TrimSpace(a.Title),
			Dates:      model.FormatMonth(a.Date),
			Paragraphs: paragraphs(a.Description),
		})
	}
	return v
}

// BuildCoverLetterView projects doc for templates. doc is not modified.
func BuildCoverLetterView(doc model.CoverLetterValues, opts Options) CoverLetterView {
	v := CoverLetterView{
		Name:           doc.FullName(),
		JobTitle:       strings.TrimSpace(doc.JobTitle),
		Location:       joinNonEmpty(", ", doc.City, doc.Country),
		Phone:          strings.TrimSpace(doc.Phone),
		Email:          strings.TrimSpace(doc.Email),
		PhotoURL:       opts.PhotoURL,
		Style:          styleFor(doc.ColorHex, doc.BorderStyle, ""),
		Date:           model.FormatLong(doc.Date),
		RecipientName:  strings.TrimSpace(doc.RecipientName),
		CompanyName:    strings.TrimSpace(doc.CompanyName),
		CompanyAddress: lines(doc.CompanyAddress),
		Body:           paragraphs(doc.Body),
		Closing:        strings.TrimSpace(doc.Closing),
		Signature:      strings.TrimSpace(doc.SignatureName),
	}
	if v.Signature == "" {
		v.Signature = v.Name
	}
	return v
}

// paragraphs splits text on blank lines and drops empty paragraphs.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
