package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// NoReviewsSummary is reported when there is nothing to analyse.
	NoReviewsSummary = "No reviews to analyze."

	// ParseFailureSummary is reported when the model reply cannot be parsed.
	ParseFailureSummary = "LLM response parse error or ambiguous result. Manual review recommended."

	maxAnalyzedReviews = 10
)

// Completer turns a prompt into a model reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyzer asks a language model whether reviews mention food-safety or hygiene problems.
type Analyzer struct {
	llm Completer
}

// NewAnalyzer wraps llm.
func NewAnalyzer(llm Completer) *Analyzer {
	return &Analyzer{llm: llm}
}

// DetectRedFlags analyses up to the first ten reviews. An empty list is safe
// without calling the model. A reply that does not parse yields an unsafe
// verdict. The error is non-nil only when the model call itself fails.
func (a *Analyzer) DetectRedFlags(ctx context.Context, reviews []string) (Verdict, error) {
	if len(reviews) == 0 {
		return Verdict{RedFlags: []string{}, Safe: true, Summary: NoReviewsSummary}, nil
	}

	reply, err := a.llm.Complete(ctx, buildPrompt(reviews))
	if err != nil {
		return Verdict{}, fmt.Errorf("red flag analysis: %w", err)
	}

	verdict, ok := parseVerdict(reply)
	if !ok {
		logrus.WithField("reply_len", len(reply)).Warn("unparseable red flag reply, marking unsafe")
		return Verdict{RedFlags: []string{}, Safe: false, Summary: ParseFailureSummary}, nil
	}
	return verdict, nil
}

func buildPrompt(reviews []string) string {
	if len(reviews) > maxAnalyzedReviews {
		reviews = reviews[:maxAnalyzedReviews]
	}
	lines := make([]string, 0, len(reviews))
	for _, r := range reviews {
		lines = append(lines, "- "+strings.TrimSpace(r))
	}

	builder := &strings.Builder{}
	builder.WriteString("You are an expert food & safety auditor. Analyze these customer reviews for this restaurant. ")
	builder.WriteString("Identify and quote any that mention food safety, hygiene, rats/insects, food poisoning, ")
	builder.WriteString("severe unhygienic conditions, or serious customer mistreatment. ")
	builder.WriteString("If there are no such issues, reply that it seems safe. ")
	builder.WriteString(`Reply in JSON as {"red_flags": ..., "safe": ..., "summary": ...}`)
	builder.WriteString("\n\nReviews:\n")
	builder.WriteString(strings.Join(lines, "\n\n"))
	return builder.String()
}

// parseVerdict accepts a JSON object, optionally wrapped in a code fence.
// A missing or non-boolean "safe" counts as unsafe.
func parseVerdict(reply string) (Verdict, bool) {
	content := normalizeJSONBlock(reply)
	if content == "" {
		return Verdict{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil || raw == nil {
		return Verdict{}, false
	}

	verdict := Verdict{RedFlags: []string{}}
	if safe, ok := raw["safe"].(bool); ok {
		verdict.Safe = safe
	}
	if summary, ok := raw["summary"].(string); ok {
		verdict.Summary = strings.TrimSpace(summary)
	}
	switch flags := raw["red_flags"].(type) {
	case []any:
		for _, item := range flags {
			if text, ok := item.(string); ok && strings.TrimSpace(text) != "" {
				verdict.RedFlags = append(verdict.RedFlags, strings.TrimSpace(text))
			}
		}
	case string:
		if strings.TrimSpace(flags) != "" {
			verdict.RedFlags = append(verdict.RedFlags, strings.TrimSpace(flags))
		}
	}
	return verdict, true
}

func normalizeJSONBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		if strings.HasSuffix(trimmed, "```") {
			trimmed = trimmed[:len(trimmed)-3]
		}
	}
	return strings.TrimSpace(trimmed)
}
