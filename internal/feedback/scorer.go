// Package feedback produces AI feedback for an uploaded resume.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when no scoring provider is configured.
var ErrNotConfigured = errors.New("feedback provider not configured")

// ErrInvalidOutput is returned when a provider keeps answering with non-JSON output.
var ErrInvalidOutput = errors.New("feedback provider returned invalid JSON")

// Input is the material a scorer rates.
type Input struct {
	ResumeText     string
	CompanyName    string
	JobTitle       string
	JobDescription string
}

// Scorer rates a resume and returns the feedback document as raw JSON.
type Scorer interface {
	Score(ctx context.Context, in Input) (json.RawMessage, error)
}

// Placeholder is used when LLM_PROVIDER is none.
type Placeholder struct{}

func (Placeholder) Score(context.Context, Input) (json.RawMessage, error) {
	return nil, ErrNotConfigured
}

// Options selects and configures a provider.
type Options struct {
	Provider     string
	Model        string
	OpenAIAPIKey string
	GeminiAPIKey string
}

// New builds the scorer for opts.Provider.
func New(ctx context.Context, opts Options) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "none":
		return Placeholder{}, nil
	case "openai":
		return NewOpenAIScorer(opts.OpenAIAPIKey, opts.Model)
	case "gemini":
		return NewGeminiScorer(ctx, opts.GeminiAPIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", opts.Provider)
	}
}

// cleanJSON strips markdown fences some models wrap around JSON answers.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
