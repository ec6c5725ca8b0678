package ai

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/documents"
	"resume-builder/internal/editor"
	"resume-builder/internal/permissions"
	"resume-builder/resume/model"
)

type fixedPlan permissions.Level

func (f fixedPlan) LevelForRequest(*gin.Context) (permissions.Level, error) {
	return permissions.Level(f), nil
}

type aiFixture struct {
	router  *gin.Engine
	client  *fakeClient
	session *editor.Session[model.ResumeValues]
	resumes *documents.Service[model.ResumeValues]
}

func newAIFixture(t *testing.T, level permissions.Level) *aiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := documents.NewMemoryRepo()
	policy := permissions.DefaultPolicy()
	resumes := documents.NewService(documents.NewStore[model.ResumeValues](repo), policy)
	covers := documents.NewService(documents.NewStore[model.CoverLetterValues](repo), policy)

	sessions := editor.NewRegistry(time.Minute)
	t.Cleanup(sessions.Close)
	sess := editor.NewSession("sess-1", "user-1", "doc-1", model.ResumeValues{
		JobTitle:        "Engineer",
		WorkExperiences: []model.WorkExperience{{Position: "Dev", Company: "Acme"}},
	}.Normalize(), editor.Options[model.ResumeValues]{
		AutoSaveDelay: time.Hour,
		Save:          func(context.Context, model.ResumeValues) error { return nil },
	})
	sessions.Add(sess)

	client := &fakeClient{}
	h := &Handler{
		Svc:          NewService(client),
		Policy:       policy,
		Plans:        fixedPlan(level),
		Sessions:     sessions,
		Resumes:      resumes,
		CoverLetters: covers,
	}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))
	return &aiFixture{router: r, client: client, session: sess, resumes: resumes}
}

func (f *aiFixture) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return body.Error.Code
}

func TestAIRoutesRequirePaidPlan(t *testing.T) {
	f := newAIFixture(t, permissions.Free)
	for _, path := range []string{"/api/v1/ai/summary", "/api/v1/ai/work-experience", "/api/v1/ai/cover-letter-body", "/api/v1/ai/import"} {
		t.Run(path, func(t *testing.T) {
			resp := f.post(path, `{}`)
			if resp.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", resp.Code)
			}
			if code := errorCode(t, resp); code != "upgrade_required" {
				t.Fatalf("expected upgrade_required, got %s", code)
			}
		})
	}
	if len(f.client.calls) != 0 {
		t.Fatalf("provider must not be called for denied requests")
	}
}

func TestSummaryAppliesToSession(t *testing.T) {
	f := newAIFixture(t, permissions.Pro)
	f.client.reply = `{"summary":"Engineer who ships."}`

	resp := f.post("/api/v1/ai/summary", `{"sessionId":"sess-1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Applied    bool              `json:"applied"`
		Suggestion map[string]string `json:"suggestion"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Applied || body.Suggestion["summary"] != "Engineer who ships." {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
	if got := f.session.Document().Summary; got != "Engineer who ships." {
		t.Fatalf("session document not updated, summary=%q", got)
	}
}

func TestSummaryWithoutSessionOnlySuggests(t *testing.T) {
	f := newAIFixture(t, permissions.Enterprise)
	f.client.reply = `{"summary":"Inline"}`
	resp := f.post("/api/v1/ai/summary", `{"resume":{"jobTitle":"Chef"}}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if f.session.Document().Summary != "" {
		t.Fatalf("session must be untouched")
	}

	if resp := f.post("/api/v1/ai/summary", `{}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a source, got %d", resp.Code)
	}
}

func TestProviderFailureIsBadGateway(t *testing.T) {
	f := newAIFixture(t, permissions.Pro)
	f.client.err = errors.New("connection refused")
	resp := f.post("/api/v1/ai/summary", `{"sessionId":"sess-1"}`)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != "ai_unavailable" {
		t.Fatalf("expected ai_unavailable, got %s", code)
	}
}

func TestWorkExperienceAppendsEntry(t *testing.T) {
	f := newAIFixture(t, permissions.Pro)
	f.client.reply = `{"position":"Lead","company":"Globex","startDate":"2022-01","description":"- Led"}`

	resp := f.post("/api/v1/ai/work-experience", `{"sessionId":"sess-1","notes":"led globex team from 2022"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	list := f.session.Document().WorkExperiences
	if len(list) != 2 || list[0].Company != "Acme" || list[1].Company != "Globex" {
		t.Fatalf("expected entry appended, got %+v", list)
	}
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	f := newAIFixture(t, permissions.Pro)
	resp := f.post("/api/v1/ai/summary", `{"sessionId":"missing"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCoverLetterBodyRejectsResumeSession(t *testing.T) {
	f := newAIFixture(t, permissions.Pro)
	resp := f.post("/api/v1/ai/cover-letter-body", `{"sessionId":"sess-1","jobDescription":"x"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestImportCreatesResume(t *testing.T) {
	f := newAIFixture(t, permissions.Pro)
	f.client.reply = `{"firstName":"Ada","lastName":"Lovelace","skills":[{"name":"Analysis"}]}`

	var docx bytes.Buffer
	zw := zip.NewWriter(&docx)
	w, _ := zw.Create("word/document.xml")
	_, _ = w.Write([]byte(`<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p></w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip: %v", err)
	}

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "ada-cv.docx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write(docx.Bytes())
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/import", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	docs, err := f.resumes.List(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0].Values.FirstName != "Ada" || docs[0].Values.Title != "ada-cv" {
		t.Fatalf("unexpected imported docs %+v", docs)
	}
}
