package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-builder/resume/model"
)

var recordColumnNames = []string{"id", "owner_id", "kind", "title", "template_key", "content", "created_at", "updated_at"}

func newMock(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPGRepo(db), mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	rec := Record{
		ID:          "7d1c2c55-8a1e-4a55-bb4d-3f4bbf0b6c11",
		OwnerID:     "user-1",
		Kind:        model.KindResume,
		Title:       "Backend",
		TemplateKey: "classic",
		Content:     []byte(`{"title":"Backend"}`),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	mock.ExpectExec("INSERT INTO documents").
		WithArgs(rec.ID, rec.OwnerID, "resume", rec.Title, rec.TemplateKey, []byte(rec.Content), now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetScopesByOwnerAndKind(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .* FROM documents WHERE id = \\$1 AND owner_id = \\$2 AND kind = \\$3 AND deleted_at IS NULL").
		WithArgs("doc-1", "user-1", "cover_letter").
		WillReturnRows(sqlmock.NewRows(recordColumnNames).
			AddRow("doc-1", "user-1", "cover_letter", "Letter", "sidebar", []byte(`{"body":"Hi"}`), now, now))

	rec, err := repo.Get(context.Background(), "user-1", model.KindCoverLetter, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Kind != model.KindCoverLetter || string(rec.Content) != `{"body":"Hi"}` {
		t.Fatalf("unexpected record %+v", rec)
	}

	mock.ExpectQuery("SELECT .* FROM documents").
		WithArgs("doc-1", "intruder", "cover_letter").
		WillReturnRows(sqlmock.NewRows(recordColumnNames))
	if _, err := repo.Get(context.Background(), "intruder", model.KindCoverLetter, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSaveMissingIsNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("UPDATE documents SET title = \\$4").
		WithArgs("doc-1", "user-1", "resume", "T", "classic", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(recordColumnNames))

	_, err := repo.Save(context.Background(), Record{
		ID: "doc-1", OwnerID: "user-1", Kind: model.KindResume, Title: "T", TemplateKey: "classic", Content: []byte(`{}`),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDelete(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("UPDATE documents SET deleted_at = now\\(\\)").
		WithArgs("doc-1", "user-1", "resume").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE documents SET deleted_at = now\\(\\)").
		WithArgs("doc-2", "user-1", "resume").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "user-1", model.KindResume, "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "user-1", model.KindResume, "doc-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoCountByKind(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT kind, COUNT\\(\\*\\) FROM documents").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "count"}).
			AddRow("resume", 2).
			AddRow("cover_letter", 1))

	counts, err := repo.CountByKind(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountByKind: %v", err)
	}
	if counts[model.KindResume] != 2 || counts[model.KindCoverLetter] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListUnlimited(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT .* FROM documents WHERE owner_id = \\$1 AND kind = \\$2").
		WithArgs("user-1", "resume", nil, 0).
		WillReturnRows(sqlmock.NewRows(recordColumnNames))

	recs, err := repo.List(context.Background(), "user-1", model.KindResume, 0, -5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}
}
