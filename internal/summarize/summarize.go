// Package summarize turns article text into a short teaser, falling back to the
// article's opening sentences when the text-generation service cannot be used.
package summarize

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/jonathan/essay-site/internal/llm"
	"github.com/jonathan/essay-site/internal/prompts"
)

// MaxBodyChars bounds how much article text is sent with a request.
const MaxBodyChars = 3000

// FallbackSentences is how many leading sentences make up a fallback summary.
const FallbackSentences = 2

// Summarizer produces a summary of an article body.
type Summarizer interface {
	Summarize(ctx context.Context, text, title string) (string, error)
}

// Source tells where a summary came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Result is the outcome for one article. Err is set only for fallback results.
type Result struct {
	Summary string
	Source  Source
	Err     error
}

// Fallback reports whether the summary was extracted locally.
func (r Result) Fallback() bool {
	return r.Source == SourceFallback
}

// Run requests a summary for the truncated text and converts any failure into
// an extractive summary of the full text.
func Run(ctx context.Context, s Summarizer, text, title string) Result {
	summary, err := s.Summarize(ctx, Truncate(text, MaxBodyChars), title)
	if err != nil {
		return Result{Summary: Extract(text), Source: SourceFallback, Err: err}
	}
	return Result{Summary: summary, Source: SourceGenerated}
}

// Truncate returns at most n characters of text.
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// LLMSummarizer asks an LLM for a one or two sentence summary.
type LLMSummarizer struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
}

// NewLLMSummarizer creates a summarizer. A zero timeout leaves requests bounded
// only by the caller's context and the client's own limits.
func NewLLMSummarizer(client llm.Client, timeout time.Duration) *LLMSummarizer {
	return &LLMSummarizer{
		client:  client,
		tier:    llm.TierStandard,
		timeout: timeout,
	}
}

// Summarize sends one request built from the article title and text.
func (s *LLMSummarizer) Summarize(ctx context.Context, text, title string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return s.client.GenerateContent(ctx, BuildPrompt(text, title), s.tier)
}

// Model returns the model identifier requests are sent to.
func (s *LLMSummarizer) Model() string {
	return s.client.GetModel(s.tier)
}

// BuildPrompt renders the summary instruction for an article.
func BuildPrompt(text, title string) string {
	template := prompts.MustGet("summaries.json", "summarize-article")
	return prompts.Format(template, map[string]string{
		"Title": title,
		"Body":  text,
	})
}
