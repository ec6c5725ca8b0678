package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("template registry corrupted") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("after write")
	})

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{path: "/boom", wantCode: http.StatusInternalServerError, wantBody: `"internal_error"`},
		{path: "/late", wantCode: http.StatusOK, wantBody: "partial"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if resp.Code != tt.wantCode || !strings.Contains(resp.Body.String(), tt.wantBody) {
				t.Fatalf("got %d %s", resp.Code, resp.Body.String())
			}
		})
	}
}
