package main

// Render a sample resume with every registered template:
//   go run ./cmd/renderdemo -out ./out

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"resume-builder/resume/layout"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

func main() {
	outDir := flag.String("out", "./out", "directory for the rendered HTML files")
	width := flag.Float64("width", 0, "container width in px; 0 renders at print size")
	flag.Parse()

	frame := layout.PrintFrame()
	if *width > 0 {
		frame = layout.NewFrame(*width)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	renderer := render.NewRenderer(render.Resumes(), nil)
	for _, info := range renderer.Registry.List() {
		doc := sampleResume()
		doc.SelectedTemplate = info.ID
		html, _, err := renderer.RenderString(context.Background(), doc, frame, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s: %v\n", info.ID, err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, "resume_"+info.ID+".html")
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s (%s)\n", path, info.Name)
	}
}

func sampleResume() model.ResumeValues {
	return model.ResumeValues{
		Title:     "Backend resume",
		FirstName: "Jordan",
		LastName:  "Lee",
		JobTitle:  "Senior Backend Engineer",
		City:      "Austin",
		Country:   "USA",
		Email:     "jordan.lee@example.com",
		Phone:     "+1 555 123 4567",
		Summary:   "Backend engineer focused on reliable APIs, data pipelines and developer tooling.",
		WorkExperiences: []model.WorkExperience{
			{
				Position:    "Senior Backend Engineer",
				Company:     "Acme Corp",
				StartDate:   "2021-03",
				Description: "Led migration of billing APIs to Go services.\nReduced p95 latency by 40%.",
			},
			{
				Position:    "Software Engineer",
				Company:     "Globex",
				StartDate:   "2017-06",
				EndDate:     "2021-02",
				Description: "Built event ingestion on SQS and Postgres.",
			},
		},
		Educations: []model.Education{
			{Degree: "B.S. Computer Science", School: "University of Texas", StartDate: "2013-09", EndDate: "2017-05"},
		},
		Skills: []model.Skill{
			{Name: "Go", Category: "Languages"},
			{Name: "PostgreSQL", Category: "Databases"},
			{Name: "AWS", Category: "Cloud"},
		},
		Languages: []model.Language{
			{Name: "English", Proficiency: "Native"},
			{Name: "Spanish", Proficiency: "Professional"},
		},
	}
}
