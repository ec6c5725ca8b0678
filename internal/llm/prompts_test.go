package llm

import (
	"strings"
	"testing"
)

func TestPromptTemplatesEmbedded(t *testing.T) {
	for _, task := range []Task{TaskSummary, TaskWorkExperience, TaskCoverLetterBody, TaskImportResume} {
		tmpl, ok := PromptTemplate(task)
		if !ok || !strings.Contains(tmpl, "Return JSON") {
			t.Fatalf("prompt %s missing or malformed", task)
		}
	}
	if _, ok := PromptTemplate(Task("poem")); ok {
		t.Fatalf("unexpected template for unknown task")
	}
	msgs := BuildPrompt(TaskSummary, "input")
	if len(msgs) != 3 || msgs[2].Content != "input" || msgs[0].Role != "system" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
}
