package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func withOpenAIServer(t *testing.T, replies ...string) (*[]map[string]any, func()) {
	t.Helper()
	var mu sync.Mutex
	var bodies []map[string]any
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		mu.Lock()
		bodies = append(bodies, payload)
		reply := replies[len(replies)-1]
		if calls < len(replies) {
			reply = replies[calls]
		}
		calls++
		mu.Unlock()

		content, _ := json.Marshal(reply)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` + string(content) + `}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	oldURL := openAIURL
	openAIURL = server.URL
	return &bodies, func() {
		openAIURL = oldURL
		server.Close()
	}
}

func TestOpenAIScorerReturnsJSON(t *testing.T) {
	bodies, done := withOpenAIServer(t, `{"overallScore":81}`)
	defer done()

	scorer, err := NewOpenAIScorer("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewOpenAIScorer: %v", err)
	}
	raw, err := scorer.Score(context.Background(), Input{ResumeText: "Go developer", JobTitle: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if string(raw) != `{"overallScore":81}` {
		t.Fatalf("unexpected raw %s", raw)
	}
	if len(*bodies) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*bodies))
	}
	body := (*bodies)[0]
	if body["model"] != "gpt-4o-mini" {
		t.Fatalf("unexpected model %v", body["model"])
	}
	if _, ok := body["temperature"]; !ok {
		t.Fatalf("expected temperature for non gpt-5 models")
	}
	messages := body["messages"].([]any)
	user := messages[len(messages)-1].(map[string]any)["content"].(string)
	if !strings.Contains(user, "Backend Engineer") || !strings.Contains(user, "Go developer") {
		t.Fatalf("user prompt missing inputs: %s", user)
	}
}

func TestOpenAIScorerRetriesOnceWithFixPrompt(t *testing.T) {
	bodies, done := withOpenAIServer(t, "not json", "```json\n{\"overallScore\":50}\n```")
	defer done()

	scorer, err := NewOpenAIScorer("test-key", "gpt-5-mini")
	if err != nil {
		t.Fatalf("NewOpenAIScorer: %v", err)
	}
	raw, err := scorer.Score(context.Background(), Input{ResumeText: "text"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if string(raw) != `{"overallScore":50}` {
		t.Fatalf("unexpected raw %s", raw)
	}
	if len(*bodies) != 2 {
		t.Fatalf("expected a repair request, got %d requests", len(*bodies))
	}
	if _, ok := (*bodies)[0]["temperature"]; ok {
		t.Fatalf("expected temperature omitted for gpt-5 models")
	}
	system := (*bodies)[1]["messages"].([]any)[0].(map[string]any)["content"]
	if system != systemPromptFixJSON {
		t.Fatalf("expected repair system prompt, got %v", system)
	}
}

func TestOpenAIScorerGivesUpAfterRepair(t *testing.T) {
	_, done := withOpenAIServer(t, "still not json")
	defer done()

	scorer, _ := NewOpenAIScorer("test-key", "gpt-4o-mini")
	if _, err := scorer.Score(context.Background(), Input{ResumeText: "text"}); !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestNewOpenAIScorerRequiresKeyAndModel(t *testing.T) {
	if _, err := NewOpenAIScorer("", "gpt-4o"); err == nil {
		t.Fatalf("expected error without key")
	}
	if _, err := NewOpenAIScorer("k", " "); err == nil {
		t.Fatalf("expected error without model")
	}
}

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{model: "gpt-5", want: true},
		{model: " GPT-5o ", want: true},
		{model: "gpt-4o", want: false},
		{model: "", want: false},
	}
	for _, tt := range tests {
		if got := isGPT5(tt.model); got != tt.want {
			t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}
