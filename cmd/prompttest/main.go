package main

// Try the AI prompts against a live model:
//   go run ./cmd/prompttest -task import -resume ./cv.pdf
//   go run ./cmd/prompttest -task cover-letter -resume ./cv.pdf -jd ./job.txt
//   go run ./cmd/prompttest -task work-experience -notes "led the payments rewrite"

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-builder/internal/ai"
	"resume-builder/internal/extract"
	"resume-builder/internal/llm"
	openai "resume-builder/internal/llm/openai"
	"resume-builder/internal/shared/config"
	"resume-builder/resume/model"
)

func main() {
	cfg := config.Load()

	task := flag.String("task", "import", "import, summary, work-experience or cover-letter")
	resumePath := flag.String("resume", "", "Path to resume file (pdf or docx)")
	jdPath := flag.String("jd", "", "Path to job description file")
	notes := flag.String("notes", "", "Free-form notes for work-experience")
	outPath := flag.String("out", "", "Path to write raw JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	modelName := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	client, err := buildClient(*provider, *modelName, cfg.OpenAIAPIKey)
	if err != nil {
		exitErr(err.Error())
	}
	svc := ai.NewService(client)
	ctx := context.Background()

	var result any
	switch strings.TrimSpace(*task) {
	case "import":
		text := readResumeText(ctx, *resumePath)
		result, err = svc.StructureResume(ctx, text)
	case "summary":
		resume := importResume(ctx, svc, *resumePath)
		var summary string
		summary, err = svc.GenerateSummary(ctx, resume)
		result = map[string]string{"summary": summary}
	case "work-experience":
		result, err = svc.GenerateWorkExperience(ctx, ai.WorkExperienceInput{Notes: *notes})
	case "cover-letter":
		resume := importResume(ctx, svc, *resumePath)
		var body string
		body, err = svc.GenerateCoverLetterBody(ctx, ai.CoverLetterInput{
			JobDescription: readFile(*jdPath, "job description"),
			Resume:         &resume,
		})
		result = map[string]string{"body": body}
	default:
		exitErr(fmt.Sprintf("unsupported task: %s", *task))
	}
	if err != nil {
		exitErr(fmt.Sprintf("%s: %v", *task, err))
	}

	pretty, err := prettyJSON(result)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func buildClient(provider, modelName, apiKey string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return openai.NewClient(apiKey, modelName)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func importResume(ctx context.Context, svc *ai.Service, path string) model.ResumeValues {
	resume, err := svc.StructureResume(ctx, readResumeText(ctx, path))
	if err != nil {
		exitErr(fmt.Sprintf("import resume: %v", err))
	}
	return resume
}

func readResumeText(ctx context.Context, path string) string {
	data := []byte(readFile(path, "resume"))
	name := filepath.Base(path)
	text, err := extract.Text(ctx, data, extract.DetectMime("", name, data), name)
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}
	return text
}

func readFile(path, what string) string {
	if strings.TrimSpace(path) == "" {
		exitErr(what + " path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		exitErr(fmt.Sprintf("read %s: %v", what, err))
	}
	return string(raw)
}

func prettyJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
