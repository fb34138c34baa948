package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth records the identity of a completed sign in.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Username = strings.TrimSpace(user.Username)
	if user.ID == "" || user.Username == "" {
		return errors.New("user id and username are required")
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// Resolve accepts either a user ID or a username.
func (s *Service) Resolve(ctx context.Context, ref string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return User{}, errors.New("user reference is required")
	}
	user, err := s.Repo.GetByID(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		return s.Repo.GetByUsername(ctx, ref)
	}
	return user, err
}
