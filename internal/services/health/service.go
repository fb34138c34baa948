package health

import (
	"context"
	"time"

	"resume-tracker/internal/platform"
)

// Report is the health payload. Checks maps a backend name to "ok" or its error.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Service pings the configured backends.
type Service struct {
	Checks  []platform.Check
	Timeout time.Duration
}

func NewService(checks ...platform.Check) *Service {
	return &Service{Checks: checks, Timeout: 3 * time.Second}
}

// Status runs every check, unlike platform.Status which stops at the first failure.
func (s *Service) Status(ctx context.Context) Report {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	report := Report{OK: true, Checks: make(map[string]string, len(s.Checks))}
	for _, check := range s.Checks {
		if err := check.Ping(ctx); err != nil {
			report.OK = false
			report.Checks[check.Name] = err.Error()
			continue
		}
		report.Checks[check.Name] = "ok"
	}
	return report
}
