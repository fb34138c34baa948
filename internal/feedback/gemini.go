package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resume-tracker/internal/shared/telemetry"
)

const defaultGeminiModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiScorer scores resumes with the Gemini API.
type GeminiScorer struct {
	models contentGenerator
	model  string
}

func NewGeminiScorer(ctx context.Context, apiKey, model string) (*GeminiScorer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiScorer(client.Models, model), nil
}

func newGeminiScorer(models contentGenerator, model string) *GeminiScorer {
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	return &GeminiScorer{models: models, model: model}
}

func (g *GeminiScorer) Score(ctx context.Context, in Input) (json.RawMessage, error) {
	raw, err := g.generate(ctx, flatten(BuildPrompt(in)))
	if err != nil {
		return nil, err
	}
	if json.Valid(raw) {
		return raw, nil
	}
	raw, err = g.generate(ctx, flatten(buildFixPrompt(in, raw)))
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, ErrInvalidOutput
	}
	return raw, nil
}

func (g *GeminiScorer) generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("gemini returned no response")
	}
	text := cleanJSON(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini response empty content")
	}
	fields := map[string]any{"provider": "gemini", "model": g.model, "prompt_version": PromptVersion}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("feedback.llm_response", fields)
	return json.RawMessage(text), nil
}

var _ Scorer = (*GeminiScorer)(nil)
