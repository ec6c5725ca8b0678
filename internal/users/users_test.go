package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestUpsertFromAuthRequiresIdentity(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.UpsertFromAuth(context.Background(), User{ID: " ", Email: "a@example.com"}); err == nil {
		t.Fatalf("expected missing id error")
	}
	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: " a@example.com "}); err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	got, err := svc.GetByID(context.Background(), "google:1")
	if err != nil || got.Email != "a@example.com" || got.LastSignInAt == nil {
		t.Fatalf("unexpected user %+v, %v", got, err)
	}
}

func TestMemoryUpsertKeepsCreatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return first }
	if _, err := repo.Upsert(context.Background(), User{ID: "google:1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	repo.now = func() time.Time { return first.Add(time.Hour) }
	got, err := repo.Upsert(context.Background(), User{ID: "google:1", Email: "b@example.com"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !got.CreatedAt.Equal(first) || !got.UpdatedAt.Equal(first.Add(time.Hour)) || got.Email != "b@example.com" {
		t.Fatalf("unexpected user %+v", got)
	}
}

func TestMeFallsBackToClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepo())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "google:7")
		c.Set("userEmail", "claims@example.com")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["email"] != "claims@example.com" || body["id"] != "google:7" {
		t.Fatalf("unexpected body %v", body)
	}
}

var userCols = []string{"id", "email", "full_name", "given_name", "family_name", "picture_url", "last_sign_in_at", "created_at", "updated_at"}

func TestPGRepoGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPGRepo(db)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("google:1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("google:1", "a@example.com", "Ada L", nil, nil, nil, now, now, now))
	got, err := repo.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FullName != "Ada L" || got.GivenName != "" || got.LastSignInAt == nil {
		t.Fatalf("unexpected user %+v", got)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpsertReturnsStoredRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	signIn := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (id, email, full_name, given_name, family_name, picture_url, last_sign_in_at)")).
		WithArgs("google:1", "a@example.com", "Ada L", nil, nil, nil, signIn).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("google:1", "a@example.com", "Ada L", nil, nil, nil, signIn, created, signIn))

	got, err := NewPGRepo(db).Upsert(context.Background(), User{ID: "google:1", Email: "a@example.com", FullName: "Ada L", LastSignInAt: &signIn})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !got.CreatedAt.Equal(created) || got.LastSignInAt == nil || !got.LastSignInAt.Equal(signIn) {
		t.Fatalf("unexpected user %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
