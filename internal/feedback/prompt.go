package feedback

import (
	_ "embed"
	"fmt"
	"strings"
)

// PromptVersion identifies the embedded instructions.
const PromptVersion = "feedback_v1"

//go:embed prompts/feedback_v1.txt
var promptV1 string

const (
	systemPrompt        = "You are a resume feedback engine. Respond with JSON only. No markdown. Never omit keys."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the requested shape."
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Instructions returns the rendered feedback instructions.
func Instructions(in Input) string {
	provided := "true"
	if strings.TrimSpace(in.JobDescription) == "" {
		provided = "false"
	}
	return strings.NewReplacer(
		"{{PROMPT_VERSION}}", PromptVersion,
		"{{JOB_DESCRIPTION_PROVIDED}}", provided,
	).Replace(promptV1)
}

// BuildPrompt returns the chat messages for a scoring request.
func BuildPrompt(in Input) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "developer", Content: Instructions(in)},
		{Role: "user", Content: userPrompt(in)},
	}
}

func buildFixPrompt(in Input, raw []byte) []Message {
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "developer", Content: Instructions(in)},
		{Role: "user", Content: fmt.Sprintf("Fix this JSON to match the shape exactly. Output JSON only:\n%s", string(raw))},
	}
}

func userPrompt(in Input) string {
	return fmt.Sprintf("Company:\n%s\n\nJob Title:\n%s\n\nJob Description:\n%s\n\nResume Text:\n%s",
		orNA(in.CompanyName), orNA(in.JobTitle), orNA(in.JobDescription), in.ResumeText)
}

// flatten joins messages for providers that take a single prompt.
func flatten(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
