package platform

import (
	"context"
	"fmt"
	"sync"
)

// Check probes one backend.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Status carries the loading flag and the standing connectivity error of a facade.
type Status struct {
	checks []Check

	mu      sync.RWMutex
	loading bool
	err     string
}

func NewStatus(checks ...Check) *Status {
	return &Status{checks: checks}
}

func (s *Status) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the standing error, or "" when healthy.
func (s *Status) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Status) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

// Check runs every probe in order and records the first failure as the standing error.
func (s *Status) Check(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	var failure error
	for _, c := range s.checks {
		if c.Ping == nil {
			continue
		}
		if err := c.Ping(ctx); err != nil {
			failure = fmt.Errorf("%s unavailable: %w", c.Name, err)
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if failure != nil {
		s.err = failure.Error()
	}
	return failure
}
