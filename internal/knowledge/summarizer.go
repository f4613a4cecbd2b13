// Package knowledge turns raw repository text into documentation prose.
// The LLM-backed summarizer is optional; the truncation fallback keeps
// the pipeline functional without credentials.
package knowledge

import (
	"context"
	"fmt"
	"strings"
)

// DefaultMaxSummaryLen bounds summary output in runes.
const DefaultMaxSummaryLen = 500

// Summarizer condenses README text into a short project overview.
type Summarizer interface {
	SummarizeReadme(ctx context.Context, text string) (string, error)
}

// Options selects and configures a summarizer implementation.
type Options struct {
	Provider string // "gemini" or "truncate"; empty selects truncate
	APIKey   string
	Model    string
	MaxLen   int
}

// NewSummarizer builds the summarizer named by opts.Provider. A gemini
// provider without an API key degrades to truncation rather than
// failing.
func NewSummarizer(ctx context.Context, opts Options) (Summarizer, error) {
	if opts.MaxLen <= 0 {
		opts.MaxLen = DefaultMaxSummaryLen
	}
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	switch provider {
	case "", "truncate":
		return NewTruncateSummarizer(opts.MaxLen), nil
	case "gemini":
		if opts.APIKey == "" {
			return NewTruncateSummarizer(opts.MaxLen), nil
		}
		return NewGeminiSummarizer(ctx, opts.APIKey, opts.Model, opts.MaxLen)
	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", opts.Provider)
	}
}

func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```markdown") {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
