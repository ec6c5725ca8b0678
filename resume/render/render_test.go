package render

import (
	"context"
	"io"
	"reflect"
	"strings"
	"testing"

	"resume-builder/resume/layout"
	"resume-builder/resume/model"
)

type stubPhotos map[string]string

func (s stubPhotos) ResolvePhoto(_ context.Context, key string) (string, bool) {
	url, ok := s[key]
	return url, ok
}

func baseResume() model.ResumeValues {
	return model.ResumeValues{
		FirstName: "Ada",
		LastName:  "Lovelace",
		JobTitle:  "Engineer",
		City:      "London",
		Email:     "ada@example.com",
		Skills:    []model.Skill{{Name: "Go", Category: "Languages"}, {Name: "Postgres"}},
		ColorHex:  "#aa3300",
	}
}

func renderResume(t *testing.T, doc model.ResumeValues, frame layout.Frame, photos PhotoResolver) string {
	t.Helper()
	r := NewRenderer(Resumes(), photos)
	out, _, err := r.RenderString(context.Background(), doc, frame, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func TestResumeVariantsOmitEmptyWorkSection(t *testing.T) {
	for _, info := range Resumes().List() {
		t.Run(info.ID, func(t *testing.T) {
			doc := baseResume()
			doc.SelectedTemplate = info.ID
			doc.WorkExperiences = []model.WorkExperience{{Position: "  ", Description: "\n"}}

			out := renderResume(t, doc, layout.PrintFrame(), nil)
			if strings.Contains(out, "Experience") {
				t.Fatalf("template %s rendered an empty Experience section", info.ID)
			}
			if strings.Contains(out, "Education") || strings.Contains(out, "Achievements") {
				t.Fatalf("template %s rendered empty sections", info.ID)
			}
		})
	}
}

func TestResumeVariantsRenderOpenEndedRange(t *testing.T) {
	for _, info := range Resumes().List() {
		t.Run(info.ID, func(t *testing.T) {
			doc := baseResume()
			doc.SelectedTemplate = info.ID
			doc.WorkExperiences = []model.WorkExperience{{Position: "Analyst", Company: "Engines", StartDate: "2021-03"}}

			out := renderResume(t, doc, layout.PrintFrame(), nil)
			if !strings.Contains(out, "Experience") {
				t.Fatalf("expected Experience heading")
			}
			if !strings.Contains(out, "03/2021 – Present") {
				t.Fatalf("expected open ended range in %s output", info.ID)
			}
			if !strings.Contains(out, "#aa3300") {
				t.Fatalf("expected accent color in %s output", info.ID)
			}
		})
	}
}

func TestResumeVariantsSkipEmptyEntryHeadings(t *testing.T) {
	for _, info := range Resumes().List() {
		t.Run(info.ID, func(t *testing.T) {
			doc := baseResume()
			doc.SelectedTemplate = info.ID
			doc.WorkExperiences = []model.WorkExperience{{Company: "Engines", StartDate: "2021-03"}}
			doc.Educations = []model.Education{{School: "Cambridge"}}

			out := renderResume(t, doc, layout.PrintFrame(), nil)
			if strings.Contains(out, "<strong></strong>") {
				t.Fatalf("template %s rendered an empty entry heading", info.ID)
			}
			if !strings.Contains(out, "Engines") || !strings.Contains(out, "Cambridge") {
				t.Fatalf("template %s dropped the entry subtitles", info.ID)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		start, end, want string
	}{
		{start: "2021-03", end: "", want: "03/2021 – Present"},
		{start: "2019-01-15", end: "2020-12", want: "01/2019 – 12/2020"},
		{start: "", end: "2020-12", want: "12/2020"},
		{start: " ", end: "", want: ""},
	}
	for _, tt := range tests {
		if got := DateRange(tt.start, tt.end); got != tt.want {
			t.Fatalf("DateRange(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestRenderHiddenUntilWidthKnown(t *testing.T) {
	out := renderResume(t, baseResume(), layout.NewFrame(0), nil)
	if !strings.Contains(out, "visibility:hidden") {
		t.Fatalf("expected hidden page for zero width")
	}
	out = renderResume(t, baseResume(), layout.NewFrame(397), nil)
	if strings.Contains(out, "visibility:hidden") || !strings.Contains(out, "scale(0.5)") {
		t.Fatalf("expected visible page at half scale")
	}
}

func TestRenderPhoto(t *testing.T) {
	photos := stubPhotos{"good": "/api/v1/photos/good"}

	doc := baseResume()
	doc.PhotoKey = "good"
	if out := renderResume(t, doc, layout.PrintFrame(), photos); !strings.Contains(out, `src="/api/v1/photos/good"`) {
		t.Fatalf("expected photo to render")
	}

	doc.PhotoKey = "gone"
	if out := renderResume(t, doc, layout.PrintFrame(), photos); strings.Contains(out, "<img") {
		t.Fatalf("invalid photo handle must render no image")
	}

	doc.PhotoKey = ""
	if out := renderResume(t, doc, layout.PrintFrame(), photos); strings.Contains(out, "<img") {
		t.Fatalf("cleared photo must render no image")
	}
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	doc := baseResume()
	doc.WorkExperiences = []model.WorkExperience{{Position: "Analyst", StartDate: "2021-03"}}
	before := doc.Clone()
	renderResume(t, doc, layout.PrintFrame(), nil)
	if !reflect.DeepEqual(before, doc) {
		t.Fatalf("render mutated the document")
	}
}

func TestRenderUnknownTemplateFallsBackToDefault(t *testing.T) {
	doc := baseResume()
	doc.SelectedTemplate = "retired-template"
	r := NewRenderer(Resumes(), nil)
	_, info, err := r.RenderString(context.Background(), doc, layout.PrintFrame(), true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if info.ID != Resumes().DefaultID() {
		t.Fatalf("expected default template, got %s", info.ID)
	}
}

func TestRenderInvalidColorFallsBack(t *testing.T) {
	doc := baseResume()
	doc.ColorHex = "red;background:url(x)"
	out := renderResume(t, doc, layout.PrintFrame(), nil)
	if strings.Contains(out, "url(x)") {
		t.Fatalf("unsafe color leaked into output")
	}
	if !strings.Contains(out, model.DefaultColorHex) {
		t.Fatalf("expected default color")
	}
}

func TestSidebarGroupsSkillsByCategory(t *testing.T) {
	doc := baseResume()
	doc.SelectedTemplate = ResumeSidebar
	out := renderResume(t, doc, layout.PrintFrame(), nil)
	if !strings.Contains(out, "<strong>Languages</strong>") || !strings.Contains(out, "<strong>Other</strong>") {
		t.Fatalf("expected categorized skills in sidebar")
	}
}

func TestFragmentOmitsDocumentShell(t *testing.T) {
	r := NewRenderer(Resumes(), nil)
	out, _, err := r.RenderString(context.Background(), baseResume(), layout.PrintFrame(), true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<!DOCTYPE html>") || !strings.Contains(out, `class="rb-frame"`) {
		t.Fatalf("unexpected fragment output")
	}
}

func TestCoverLetterVariants(t *testing.T) {
	for _, info := range CoverLetters().List() {
		t.Run(info.ID, func(t *testing.T) {
			doc := model.CoverLetterValues{
				FirstName:        "Ada",
				LastName:         "Lovelace",
				CompanyName:      "Analytical Engines",
				CompanyAddress:   "1 Babbage Way\n\nLondon",
				Date:             "2024-05-02",
				Body:             "First paragraph.\n\nSecond paragraph.",
				Closing:          "Kind regards,",
				SelectedTemplate: info.ID,
			}
			r := NewRenderer(CoverLetters(), nil)
			out, _, err := r.RenderString(context.Background(), doc, layout.PrintFrame(), false)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			for _, want := range []string{"May 2, 2024", "<p>First paragraph.</p>", "<p>Second paragraph.</p>", "<div>London</div>", "Ada Lovelace"} {
				if !strings.Contains(out, want) {
					t.Fatalf("missing %q in %s output", want, info.ID)
				}
			}
		})
	}
}

func TestCoverLetterOmitsEmptyRecipient(t *testing.T) {
	r := NewRenderer(CoverLetters(), nil)
	out, _, err := r.RenderString(context.Background(), model.CoverLetterValues{Body: "Hello."}, layout.PrintFrame(), true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, `class="rb-recipient"`) || strings.Contains(out, `class="rb-date"`) {
		t.Fatalf("expected empty blocks to be omitted")
	}
}

type fakeTemplate struct{ id string }

func (f fakeTemplate) Info() Info { return Info{ID: f.id} }

func (f fakeTemplate) Render(io.Writer, string, Options) error { return nil }

func TestRegistry(t *testing.T) {
	reg := NewRegistry[string]("a", fakeTemplate{id: "a"}, fakeTemplate{id: "b"})
	if got := reg.Resolve("b").Info().ID; got != "b" {
		t.Fatalf("expected b, got %s", got)
	}
	if got := reg.Resolve("zzz").Info().ID; got != "a" {
		t.Fatalf("expected default, got %s", got)
	}
	if _, ok := reg.Lookup("zzz"); ok {
		t.Fatalf("lookup of unknown id must fail")
	}
	list := reg.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestRegistryPanicsOnProgrammerErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{name: "duplicate", fn: func() { NewRegistry[string]("a", fakeTemplate{id: "a"}, fakeTemplate{id: "a"}) }},
		{name: "empty id", fn: func() { NewRegistry[string]("a", fakeTemplate{id: "a"}, fakeTemplate{id: ""}) }},
		{name: "missing default", fn: func() { NewRegistry[string]("x", fakeTemplate{id: "a"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			tt.fn()
		})
	}
}
