package render

import (
	"embed"
	"html/template"
	"io"
	"sync"

	"resume-builder/resume/layout"
	"resume-builder/resume/model"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Stable template ids. They are persisted on documents and must not change.
const (
	ResumeClassic    = "classic"
	ResumeSidebar    = "sidebar"
	ResumeDarkHeader = "dark-header"
	CoverClassic     = "classic"
	CoverSidebar     = "sidebar"
)

const (
	baseFile       = "templates/base.html"
	resumeSections = "templates/resume_sections.html"
	coverSections  = "templates/cover_sections.html"
)

type pageData struct {
	Title      string
	Class      string
	TemplateID string
	Frame      layout.Frame
	View       any
}

// htmlTemplate renders one variant from embedded html/template files.
type htmlTemplate[D any] struct {
	info  Info
	class string
	tmpl  *template.Template
	view  func(D, Options) any
	title func(D) string
}

func newHTMLTemplate[D any](info Info, class, sections, file string, view func(D, Options) any, title func(D) string) *htmlTemplate[D] {
	tmpl := template.Must(template.New(info.ID).ParseFS(templateFiles, baseFile, sections, file))
	return &htmlTemplate[D]{info: info, class: class, tmpl: tmpl, view: view, title: title}
}

func (t *htmlTemplate[D]) Info() Info { return t.info }

func (t *htmlTemplate[D]) Render(w io.Writer, doc D, opts Options) error {
	name := "page"
	if opts.Fragment {
		name = "fragment"
	}
	return t.tmpl.ExecuteTemplate(w, name, pageData{
		Title:      t.title(doc),
		Class:      t.class,
		TemplateID: t.info.ID,
		Frame:      opts.Frame,
		View:       t.view(doc, opts),
	})
}

func resumeTemplate(info Info, file string) Template[model.ResumeValues] {
	return newHTMLTemplate(info, "rb-resume-"+info.ID, resumeSections, file,
		func(doc model.ResumeValues, opts Options) any { return BuildResumeView(doc, opts) },
		model.ResumeValues.DisplayTitle,
	)
}

func coverTemplate(info Info, file string) Template[model.CoverLetterValues] {
	return newHTMLTemplate(info, "rb-cover-"+info.ID, coverSections, file,
		func(doc model.CoverLetterValues, opts Options) any { return BuildCoverLetterView(doc, opts) },
		model.CoverLetterValues.DisplayTitle,
	)
}

var (
	resumeRegistry = sync.OnceValue(func() *Registry[model.ResumeValues] {
		return NewRegistry(ResumeClassic,
			resumeTemplate(Info{ID: ResumeClassic, Name: "Classic", Description: "Single column with a ruled header.", Columns: 1}, "templates/resume_classic.html"),
			resumeTemplate(Info{ID: ResumeSidebar, Name: "Sidebar", Description: "Two columns with contact and categorized skills in a sidebar.", Columns: 2}, "templates/resume_sidebar.html"),
			resumeTemplate(Info{ID: ResumeDarkHeader, Name: "Dark header", Description: "Dark header band over a three column body.", Columns: 3}, "templates/resume_dark_header.html"),
		)
	})
	coverRegistry = sync.OnceValue(func() *Registry[model.CoverLetterValues] {
		return NewRegistry(CoverClassic,
			coverTemplate(Info{ID: CoverClassic, Name: "Classic", Description: "Letterhead header over a single column letter.", Columns: 1}, "templates/cover_classic.html"),
			coverTemplate(Info{ID: CoverSidebar, Name: "Sidebar", Description: "Sender details in a sidebar beside the letter.", Columns: 2}, "templates/cover_sidebar.html"),
		)
	})
)

// Resumes returns the resume template registry.
func Resumes() *Registry[model.ResumeValues] { return resumeRegistry() }

// CoverLetters returns the cover letter template registry.
func CoverLetters() *Registry[model.CoverLetterValues] { return coverRegistry() }
