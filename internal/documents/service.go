package documents

import (
	"context"
	"fmt"
	"strings"

	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/model"
)

// Service applies plan gates and validation around a Store.
type Service[D model.Values[D]] struct {
	Store  *Store[D]
	Policy permissions.Policy
}

// NewService constructs a Service.
func NewService[D model.Values[D]](store *Store[D], policy permissions.Policy) *Service[D] {
	return &Service[D]{Store: store, Policy: policy}
}

func (s *Service[D]) createAction() permissions.Action {
	if s.Store.Kind() == model.KindCoverLetter {
		return permissions.ActionCreateCoverLetter
	}
	return permissions.ActionCreateResume
}

// Create checks the per-kind limit for level, validates doc and stores it.
func (s *Service[D]) Create(ctx context.Context, ownerID string, level permissions.Level, doc D) (Document[D], error) {
	count, err := s.Store.Count(ctx, ownerID)
	if err != nil {
		return Document[D]{}, fmt.Errorf("count documents: %w", err)
	}
	counts := permissions.Counts{}
	if s.Store.Kind() == model.KindCoverLetter {
		counts.CoverLetters = count
	} else {
		counts.Resumes = count
	}
	if err := s.Policy.Check(s.createAction(), level, counts); err != nil {
		return Document[D]{}, err
	}
	var zero D
	if err := CheckCustomization(level, zero, doc); err != nil {
		return Document[D]{}, err
	}
	if fe := doc.Validate(); len(fe) > 0 {
		return Document[D]{}, fe
	}
	if fe := CheckPhoto(ownerID, zero, doc); len(fe) > 0 {
		return Document[D]{}, fe
	}
	created, err := s.Store.Create(ctx, ownerID, doc.Normalize())
	if err != nil {
		return Document[D]{}, err
	}
	metrics.IncDocumentCreated(string(s.Store.Kind()))
	return created, nil
}

// Get returns one document.
func (s *Service[D]) Get(ctx context.Context, ownerID, id string) (Document[D], error) {
	return s.Store.Load(ctx, ownerID, id)
}

// List returns a page of documents.
func (s *Service[D]) List(ctx context.Context, ownerID string, limit, offset int) ([]Document[D], error) {
	return s.Store.List(ctx, ownerID, limit, offset)
}

// Save overwrites a document. Changing its styling requires customizations.
func (s *Service[D]) Save(ctx context.Context, ownerID string, level permissions.Level, id string, doc D) (Document[D], error) {
	existing, err := s.Store.Load(ctx, ownerID, id)
	if err != nil {
		return Document[D]{}, err
	}
	if err := CheckCustomization(level, existing.Values, doc); err != nil {
		return Document[D]{}, err
	}
	if fe := doc.Validate(); len(fe) > 0 {
		return Document[D]{}, fe
	}
	if fe := CheckPhoto(ownerID, existing.Values, doc); len(fe) > 0 {
		return Document[D]{}, fe
	}
	return s.Store.Save(ctx, ownerID, id, doc.Normalize())
}

func (s *Service[D]) Delete(ctx context.Context, ownerID, id string) error {
	return s.Store.Delete(ctx, ownerID, id)
}

// CheckCustomization denies a styling change from before to after unless
// level may use customizations. Unchanged styling is always allowed.
func CheckCustomization[D model.Values[D]](level permissions.Level, before, after D) error {
	if before.Normalize().Styling() == after.Normalize().Styling() {
		return nil
	}
	if permissions.CanUseCustomizations(level) {
		return nil
	}
	return &permissions.DeniedError{
		Action:   permissions.ActionCustomize,
		Level:    level,
		Required: permissions.Enterprise,
	}
}

// CheckPhoto rejects a photo key outside ownerID's namespace. A key the
// document already carries is left alone.
func CheckPhoto[D model.Values[D]](ownerID string, before, after D) model.FieldErrors {
	key := strings.TrimSpace(after.PhotoHandle())
	if key == "" || key == strings.TrimSpace(before.PhotoHandle()) || util.OwnsKey(ownerID, key) {
		return nil
	}
	return model.FieldErrors{"photoKey": "is not one of your photos"}
}

// Counter reports per-kind document counts for plan snapshots.
type Counter struct {
	Repo Repo
}

func (c Counter) Counts(ctx context.Context, ownerID string) (permissions.Counts, error) {
	byKind, err := c.Repo.CountByKind(ctx, ownerID)
	if err != nil {
		return permissions.Counts{}, err
	}
	return permissions.Counts{
		Resumes:      byKind[model.KindResume],
		CoverLetters: byKind[model.KindCoverLetter],
	}, nil
}
