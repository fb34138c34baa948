package feedback

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

type fakeGenerator struct {
	replies []string
	err     error
	models  []string
	configs []*genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.models = append(f.models, model)
	f.configs = append(f.configs, config)
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: reply}}},
		}},
	}, nil
}

func TestGeminiScorerRequestsJSON(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{"overallScore":70}`}}
	scorer := newGeminiScorer(gen, "")

	raw, err := scorer.Score(context.Background(), Input{ResumeText: "text"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if string(raw) != `{"overallScore":70}` {
		t.Fatalf("unexpected raw %s", raw)
	}
	if gen.models[0] != defaultGeminiModel {
		t.Fatalf("expected default model, got %q", gen.models[0])
	}
	if gen.configs[0].ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON response mime type")
	}
}

func TestGeminiScorerRepairsOnce(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"oops", `{"overallScore":12}`}}
	raw, err := newGeminiScorer(gen, "gemini-pro").Score(context.Background(), Input{ResumeText: "text"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if string(raw) != `{"overallScore":12}` || len(gen.models) != 2 {
		t.Fatalf("unexpected raw=%s calls=%d", raw, len(gen.models))
	}
}

func TestGeminiScorerPropagatesErrors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota")}
	if _, err := newGeminiScorer(gen, "").Score(context.Background(), Input{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	s, err := New(context.Background(), Options{Provider: "none"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Score(context.Background(), Input{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := New(context.Background(), Options{Provider: "llama"}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	if _, err := New(context.Background(), Options{Provider: "gemini"}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestCleanJSON(t *testing.T) {
	if got := cleanJSON("```json\n{\"a\":1}\n```"); got != `{"a":1}` {
		t.Fatalf("cleanJSON = %q", got)
	}
	if got := cleanJSON(`  {"a":1} `); got != `{"a":1}` {
		t.Fatalf("cleanJSON = %q", got)
	}
}
