package studyassist

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer condenses submitted study text using GPT-4o
type Summarizer struct {
	client *openai.Client
}

// NewSummarizer creates a new summarizer with OpenAI client
func NewSummarizer(apiKey string) *Summarizer {
	return &Summarizer{
		client: openai.NewClient(apiKey),
	}
}

// Summarize produces a short study summary of the given text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	VerboseLog("Summarizing text: %d characters", len(text))

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a study assistant. Summarize the user's text into a clear, concise summary that preserves the key facts, terms, and concepts a student would need to review.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: text,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to summarize text: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from GPT-4o")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary from GPT-4o")
	}
	return summary, nil
}
