package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"resume-builder/internal/documents"
	"resume-builder/internal/permissions"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

type fixedPlan permissions.Level

func (f fixedPlan) LevelForRequest(*gin.Context) (permissions.Level, error) {
	return permissions.Level(f), nil
}

type editorFixture struct {
	router  *gin.Engine
	handler *Handler
	resumes *documents.Store[model.ResumeValues]
	docID   string
}

func newEditorFixture(t *testing.T) *editorFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := documents.NewMemoryRepo()
	resumes := documents.NewStore[model.ResumeValues](repo)
	doc, err := resumes.Create(context.Background(), "user-1", model.ResumeValues{FirstName: "Grace"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	h := &Handler{
		Sessions:       NewRegistry(time.Minute),
		Resumes:        resumes,
		CoverLetters:   documents.NewStore[model.CoverLetterValues](repo),
		ResumeRenderer: render.NewRenderer(render.Resumes(), nil),
		CoverRenderer:  render.NewRenderer(render.CoverLetters(), nil),
		Plans:          fixedPlan(permissions.Free),
		AutoSaveDelay:  time.Hour,
	}
	t.Cleanup(h.Sessions.Close)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))
	return &editorFixture{router: r, handler: h, resumes: resumes, docID: doc.ID}
}

func (f *editorFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func (f *editorFixture) open(t *testing.T) State {
	t.Helper()
	resp := f.do(http.MethodPost, "/api/v1/editor/sessions", `{"kind":"resume","documentId":"`+f.docID+`","width":794}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var st State
	if err := json.Unmarshal(resp.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return st
}

func TestEditorRESTFlow(t *testing.T) {
	f := newEditorFixture(t)
	st := f.open(t)
	if st.CurrentStep != "template" || len(st.Steps) != 9 || !st.Frame.Ready {
		t.Fatalf("unexpected initial state %+v", st)
	}
	base := "/api/v1/editor/sessions/" + st.SessionID

	resp := f.do(http.MethodPost, base+"/navigate", `{"action":"jump","step":"skills"}`)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"currentStep":"skills"`) {
		t.Fatalf("unexpected navigate %d: %s", resp.Code, resp.Body.String())
	}
	resp = f.do(http.MethodPost, base+"/navigate", `{"action":"jump","step":"hobbies"}`)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "unknown_step") {
		t.Fatalf("expected unknown_step, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = f.do(http.MethodPatch, base+"/steps/skills", `{"skills":[{"name":"COBOL","category":"Languages"}]}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = f.do(http.MethodPatch, base+"/steps/personal-info", `{"email":"grace@"}`)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), `"email"`) {
		t.Fatalf("expected email validation error, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = f.do(http.MethodPatch, base+"/steps/template", `{"borderStyle":"circle"}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected customization gate, got %d", resp.Code)
	}

	resp = f.do(http.MethodGet, base+"/preview?fragment=1", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "COBOL") {
		t.Fatalf("expected preview with skill, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = f.do(http.MethodPost, base+"/save", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on save, got %d", resp.Code)
	}
	saved, err := f.resumes.Load(context.Background(), "user-1", f.docID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(saved.Values.Skills) != 1 || saved.Values.Skills[0].Name != "COBOL" {
		t.Fatalf("expected skill persisted, got %+v", saved.Values.Skills)
	}

	resp = f.do(http.MethodDelete, base, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = f.do(http.MethodGet, base, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", resp.Code)
	}
}

func TestEditorOpenMissingDocument(t *testing.T) {
	f := newEditorFixture(t)
	resp := f.do(http.MethodPost, "/api/v1/editor/sessions", `{"kind":"cover_letter","documentId":"`+f.docID+`"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("a resume id must not open as a cover letter, got %d", resp.Code)
	}
	resp = f.do(http.MethodPost, "/api/v1/editor/sessions", `{"kind":"poem","documentId":"x"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", resp.Code)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn, wantType string) serverMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == wantType {
			return msg
		}
	}
	t.Fatalf("no %s message received", wantType)
	return serverMessage{}
}

func TestEditorLiveChannel(t *testing.T) {
	f := newEditorFixture(t)
	st := f.open(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/editor/sessions/" + st.SessionID + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readMessage(t, conn, "state")
	if first.State == nil || !strings.Contains(first.HTML, "Grace") {
		t.Fatalf("expected initial state with preview, got %+v", first)
	}

	if err := conn.WriteJSON(map[string]any{
		"type":  "update",
		"step":  "summary",
		"patch": map[string]string{"summary": "Invented the compiler"},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		msg := readMessage(t, conn, "state")
		if strings.Contains(msg.HTML, "Invented the compiler") {
			break
		}
	}

	if err := conn.WriteJSON(map[string]any{"type": "goto", "action": "jump", "step": "nowhere"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readMessage(t, conn, "error")
	if msg.Error == nil || msg.Error.Code != "unknown_step" {
		t.Fatalf("expected unknown_step error, got %+v", msg)
	}

	if err := conn.WriteJSON(map[string]any{"type": "resize", "width": 397}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		msg := readMessage(t, conn, "state")
		if msg.State.Frame.Scale == 0.5 {
			break
		}
	}
}
