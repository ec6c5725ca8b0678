package llm

import (
	_ "embed"
	"strings"
)

// Task names a prompt template.
type Task string

const (
	TaskSummary         Task = "summary"
	TaskWorkExperience  Task = "work_experience"
	TaskCoverLetterBody Task = "cover_letter_body"
	TaskImportResume    Task = "import_resume"
)

var (
	//go:embed prompts/summary_v1.txt
	summaryV1 string
	//go:embed prompts/work_experience_v1.txt
	workExperienceV1 string
	//go:embed prompts/cover_letter_body_v1.txt
	coverLetterBodyV1 string
	//go:embed prompts/import_resume_v1.txt
	importResumeV1 string
)

const systemPrompt = "You are a resume writing assistant. Respond with JSON only. No markdown. Output must match the schema exactly."

// PromptTemplate returns the developer prompt for task.
func PromptTemplate(task Task) (string, bool) {
	switch task {
	case TaskSummary:
		return summaryV1, true
	case TaskWorkExperience:
		return workExperienceV1, true
	case TaskCoverLetterBody:
		return coverLetterBodyV1, true
	case TaskImportResume:
		return importResumeV1, true
	default:
		return "", false
	}
}

// BuildPrompt assembles the messages for task with the given user input.
func BuildPrompt(task Task, input string) []Message {
	tmpl, _ := PromptTemplate(task)
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "developer", Content: strings.TrimSpace(tmpl)},
		{Role: "user", Content: input},
	}
}

// FixPrompt asks the provider to repair raw into valid JSON for task.
func FixPrompt(task Task, raw []byte) []Message {
	tmpl, _ := PromptTemplate(task)
	return []Message{
		{Role: "system", Content: "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."},
		{Role: "developer", Content: strings.TrimSpace(tmpl)},
		{Role: "user", Content: "Fix this JSON to match the schema exactly. Output JSON only:\n" + string(raw)},
	}
}
