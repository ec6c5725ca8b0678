package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-builder/resume/model"
)

// Store is the typed view of Repo for one document kind.
type Store[D model.Values[D]] struct {
	Repo Repo
}

// NewStore constructs a Store.
func NewStore[D model.Values[D]](repo Repo) *Store[D] {
	return &Store[D]{Repo: repo}
}

// Kind is the document kind this store handles.
func (s *Store[D]) Kind() model.Kind {
	var zero D
	return zero.Kind()
}

// Create persists doc as a new document owned by ownerID.
func (s *Store[D]) Create(ctx context.Context, ownerID string, doc D) (Document[D], error) {
	rec, err := s.encode(ownerID, uuid.NewString(), doc)
	if err != nil {
		return Document[D]{}, err
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if err := s.Repo.Create(ctx, rec); err != nil {
		return Document[D]{}, err
	}
	return s.decode(rec)
}

// Load returns the document id owned by ownerID.
func (s *Store[D]) Load(ctx context.Context, ownerID, id string) (Document[D], error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document[D]{}, ErrNotFound
	}
	rec, err := s.Repo.Get(ctx, ownerID, s.Kind(), id)
	if err != nil {
		return Document[D]{}, err
	}
	return s.decode(rec)
}

// Save overwrites an existing document.
func (s *Store[D]) Save(ctx context.Context, ownerID, id string, doc D) (Document[D], error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document[D]{}, ErrNotFound
	}
	rec, err := s.encode(ownerID, id, doc)
	if err != nil {
		return Document[D]{}, err
	}
	saved, err := s.Repo.Save(ctx, rec)
	if err != nil {
		return Document[D]{}, err
	}
	return s.decode(saved)
}

// List returns the owner's documents, most recently updated first.
func (s *Store[D]) List(ctx context.Context, ownerID string, limit, offset int) ([]Document[D], error) {
	recs, err := s.Repo.List(ctx, ownerID, s.Kind(), limit, offset)
	if err != nil {
		return nil, err
	}
	docs := make([]Document[D], 0, len(recs))
	for _, rec := range recs {
		doc, err := s.decode(rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store[D]) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.Repo.Delete(ctx, ownerID, s.Kind(), id)
}

// Count returns how many documents of this kind ownerID has.
func (s *Store[D]) Count(ctx context.Context, ownerID string) (int, error) {
	counts, err := s.Repo.CountByKind(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return counts[s.Kind()], nil
}

func (s *Store[D]) encode(ownerID, id string, doc D) (Record, error) {
	content, err := json.Marshal(doc)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", s.Kind(), err)
	}
	return Record{
		ID:          id,
		OwnerID:     ownerID,
		Kind:        s.Kind(),
		Title:       doc.DisplayTitle(),
		TemplateKey: doc.TemplateID(),
		Content:     content,
	}, nil
}

func (s *Store[D]) decode(rec Record) (Document[D], error) {
	var values D
	if len(rec.Content) > 0 {
		if err := json.Unmarshal(rec.Content, &values); err != nil {
			return Document[D]{}, fmt.Errorf("decode %s %s: %w", rec.Kind, rec.ID, err)
		}
	}
	return Document[D]{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Values:    values,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}
