package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps profiles in process memory. Used when DATABASE_URL is unset.
type MemoryRepo struct {
	mu    sync.RWMutex
	now   func() time.Time
	byID  map[string]User
	names map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		now:   func() time.Time { return time.Now().UTC() },
		byID:  make(map[string]User),
		names: make(map[string]string),
	}
}

// Upsert stores the profile, keeping the original CreatedAt of a known user.
// A username moves with its owner when it changes.
func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	user.CreatedAt = now
	if prev, ok := r.byID[user.ID]; ok {
		user.CreatedAt = prev.CreatedAt
		if prev.Username != user.Username {
			delete(r.names, prev.Username)
		}
	}
	user.UpdatedAt = now
	r.byID[user.ID] = user
	r.names[user.Username] = user.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.byID[userID]; ok {
		return user, nil
	}
	return User{}, ErrNotFound
}

// GetByUsername resolves a username to its profile.
func (r *MemoryRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.names[username]; ok {
		return r.byID[id], nil
	}
	return User{}, ErrNotFound
}
