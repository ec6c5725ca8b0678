package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth())
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "email": UserEmailFromContext(c)})
	}
	router.GET("/api/v1/resumes", handler)
	router.GET("/api/v1/health", handler)
	router.GET("/api/v1/editor/sessions/:id/live", handler)
	router.GET("/api/v1/photos/*key", handler)
	router.DELETE("/api/v1/photos/*key", handler)
	return router
}

func signTestToken(t *testing.T, sub string) string {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	now := time.Now().UTC()
	token, err := auth.SignJWT(auth.Claims{Sub: sub, Email: "a@example.com", Iat: now.Unix(), Exp: now.Add(time.Hour).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestAuthAnswersOptionsWithoutRunningHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth())
	reached := false
	router.OPTIONS("/api/v1/resumes", func(c *gin.Context) {
		reached = true
		c.String(http.StatusOK, "user=%q", UserIDFromContext(c))
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if reached {
		t.Fatalf("handler must not run for an unauthenticated OPTIONS request")
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}
}

func TestAuth(t *testing.T) {
	token := signTestToken(t, "user-1")

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{name: "missing identity", path: "/api/v1/resumes", want: http.StatusUnauthorized},
		{name: "guest header is not identity", path: "/api/v1/resumes", header: map[string]string{"X-Guest-Id": "g1"}, want: http.StatusUnauthorized},
		{name: "malformed scheme", path: "/api/v1/resumes", header: map[string]string{"Authorization": "Token " + token}, want: http.StatusUnauthorized},
		{name: "bad token", path: "/api/v1/resumes", header: map[string]string{"Authorization": "Bearer nope"}, want: http.StatusUnauthorized},
		{name: "valid token", path: "/api/v1/resumes", header: map[string]string{"Authorization": "Bearer " + token}, want: http.StatusOK},
		{name: "public health", path: "/api/v1/health", want: http.StatusOK},
		{name: "public photo read", path: "/api/v1/photos/abc/x.png", want: http.StatusOK},
		{name: "query token without upgrade", path: "/api/v1/editor/sessions/s1/live?access_token=" + token, want: http.StatusUnauthorized},
		{name: "query token on upgrade", path: "/api/v1/editor/sessions/s1/live?access_token=" + token, header: map[string]string{"Upgrade": "websocket"}, want: http.StatusOK},
	}

	router := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestAuthPhotoDeleteNeedsIdentity(t *testing.T) {
	router := newAuthRouter()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/photos/abc/x.png", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
