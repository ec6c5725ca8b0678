package editor

import "resume-builder/resume/model"

// Step is one page of the editor. Fields are the top-level JSON fields of
// the document the step owns.
type Step struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// Steps is an ordered step registry.
type Steps []Step

// Index returns the position of key, or -1.
func (s Steps) Index(key string) int {
	for i, step := range s {
		if step.Key == key {
			return i
		}
	}
	return -1
}

var personalInfoFields = []string{"photoKey", "firstName", "lastName", "jobTitle", "city", "country", "phone", "email"}

var resumeSteps = Steps{
	{Key: "template", Title: "Template", Fields: []string{"selectedTemplate", "colorHex", "borderStyle", "fontFamily"}},
	{Key: "general-info", Title: "General info", Fields: []string{"title", "description"}},
	{Key: "personal-info", Title: "Personal info", Fields: personalInfoFields},
	{Key: "work-experience", Title: "Work experience", Fields: []string{"workExperiences"}},
	{Key: "education", Title: "Education", Fields: []string{"educations"}},
	{Key: "skills", Title: "Skills", Fields: []string{"skills"}},
	{Key: "languages", Title: "Languages", Fields: []string{"languages"}},
	{Key: "achievements", Title: "Achievements", Fields: []string{"achievements"}},
	{Key: "summary", Title: "Summary", Fields: []string{"summary"}},
}

var coverLetterSteps = Steps{
	{Key: "template", Title: "Template", Fields: []string{"selectedTemplate", "colorHex", "borderStyle"}},
	{Key: "general-info", Title: "General info", Fields: []string{"title", "description"}},
	{Key: "personal-info", Title: "Personal info", Fields: personalInfoFields},
	{Key: "recipient", Title: "Recipient", Fields: []string{"recipientName", "companyName", "companyAddress", "date"}},
	{Key: "body", Title: "Letter", Fields: []string{"body", "closing", "signatureName"}},
}

// StepsFor returns the registry for kind. The result must not be modified.
func StepsFor(kind model.Kind) Steps {
	if kind == model.KindCoverLetter {
		return coverLetterSteps
	}
	return resumeSteps
}
