package kv

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo keeps entries in insertion order per user.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]*bucket
}

type bucket struct {
	order  []string
	values map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]*bucket)}
}

func (r *MemoryRepo) List(ctx context.Context, userID, pattern string, includeValues bool) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.users[userID]
	if !ok {
		return []Item{}, nil
	}
	items := make([]Item, 0, len(b.order))
	for _, key := range b.order {
		if !Match(pattern, key) {
			continue
		}
		item := Item{Key: key}
		if includeValues {
			item.Value = b.values[key]
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.users[userID]
	if !ok {
		return "", ErrNotFound
	}
	value, ok := b.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (r *MemoryRepo) Set(ctx context.Context, userID, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.users[userID]
	if !ok {
		b = &bucket{values: make(map[string]string)}
		r.users[userID] = b
	}
	if _, exists := b.values[key]; !exists {
		b.order = append(b.order, key)
	}
	b.values[key] = value
	return nil
}

func (r *MemoryRepo) Flush(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
