package knowledge

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// promptInputLimit caps how much README text is sent per request.
const promptInputLimit = 6000

// GeminiSummarizer implements Summarizer using Gemini text generation.
// Any generation failure falls back to truncation so documentation runs
// never abort on LLM errors.
type GeminiSummarizer struct {
	client   *genai.Client
	model    string
	maxLen   int
	fallback *TruncateSummarizer
}

func NewGeminiSummarizer(ctx context.Context, apiKey, modelName string, maxLen int) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxSummaryLen
	}
	return &GeminiSummarizer{
		client:   client,
		model:    modelName,
		maxLen:   maxLen,
		fallback: NewTruncateSummarizer(maxLen),
	}, nil
}

func (s *GeminiSummarizer) SummarizeReadme(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "No README content found.", nil
	}
	input := truncateRunes(text, promptInputLimit)
	prompt := "Summarize the following project README into a concise overview (avoid marketing fluff).\n\n" + input

	contents := genai.Text(prompt)
	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return s.fallback.SummarizeReadme(ctx, text)
	}
	out := cleanMarkdownOutput(resp.Text())
	if out == "" {
		return s.fallback.SummarizeReadme(ctx, text)
	}
	return truncateRunes(out, s.maxLen), nil
}
