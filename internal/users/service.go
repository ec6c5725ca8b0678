package users

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// UpsertFromAuth records the profile delivered by the identity provider and
// stamps the sign-in time.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.TrimSpace(user.Email)
	if user.ID == "" || user.Email == "" {
		return errors.New("user id and email are required")
	}
	now := s.Now().UTC()
	user.LastSignInAt = &now
	_, err := s.Repo.Upsert(ctx, user)
	return err
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}
