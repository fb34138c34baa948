package platform

import (
	"context"

	"resume-tracker/internal/kv"
)

type KVItem = kv.Item

// KeyValue is the key-value surface of the facade, already scoped to one user.
type KeyValue interface {
	List(ctx context.Context, pattern string, includeValues bool) ([]KVItem, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Flush(ctx context.Context) error
}

// UserKV binds a kv.Repo to a single user.
type UserKV struct {
	repo   kv.Repo
	userID string
}

func NewUserKV(repo kv.Repo, userID string) *UserKV {
	return &UserKV{repo: repo, userID: userID}
}

func (u *UserKV) List(ctx context.Context, pattern string, includeValues bool) ([]KVItem, error) {
	return u.repo.List(ctx, u.userID, pattern, includeValues)
}

func (u *UserKV) Get(ctx context.Context, key string) (string, error) {
	return u.repo.Get(ctx, u.userID, key)
}

func (u *UserKV) Set(ctx context.Context, key, value string) error {
	return u.repo.Set(ctx, u.userID, key, value)
}

func (u *UserKV) Flush(ctx context.Context) error {
	return u.repo.Flush(ctx, u.userID)
}
