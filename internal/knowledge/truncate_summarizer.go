package knowledge

import (
	"context"
	"strings"
)

// TruncateSummarizer collapses whitespace and truncates. It is the
// no-credentials fallback and the deterministic choice for tests.
type TruncateSummarizer struct {
	maxLen int
}

func NewTruncateSummarizer(maxLen int) *TruncateSummarizer {
	if maxLen <= 0 {
		maxLen = DefaultMaxSummaryLen
	}
	return &TruncateSummarizer{maxLen: maxLen}
}

func (s *TruncateSummarizer) SummarizeReadme(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "No README content found.", nil
	}
	cleaned := strings.Join(strings.Fields(text), " ")
	return truncateRunes(cleaned, s.maxLen), nil
}
