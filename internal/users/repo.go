package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	// GetByUsername returns the most recently updated user with that username.
	GetByUsername(ctx context.Context, username string) (User, error)
}
