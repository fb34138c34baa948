package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist for the user.
var ErrNotFound = errors.New("kv: key not found")

// ErrInvalidKey is returned for empty keys.
var ErrInvalidKey = errors.New("kv: key is required")

// Item is a single key-value pair. Value is empty when values were not requested.
type Item struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// Repo stores string values per user. List returns items in store order.
type Repo interface {
	List(ctx context.Context, userID, pattern string, includeValues bool) ([]Item, error)
	Get(ctx context.Context, userID, key string) (string, error)
	Set(ctx context.Context, userID, key, value string) error
	Flush(ctx context.Context, userID string) error
}
