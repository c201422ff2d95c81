// Package summarize derives the layered summary artifacts of a report via
// sequential dependent completion calls.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lyh9003/stock-report/internal/domain"
	"github.com/lyh9003/stock-report/internal/ports"
)

const (
	longInstruction = "You are an expert summarizer of brokerage research reports for " +
		"semiconductor-company executives. Read the report body and write a summary of " +
		"400 to 1000 characters in this format: 1. Market trends: 2. Industry issues: " +
		"3. Technology trends: 4. Other strategic insights: 5. Key keywords:"
	oneLineInstruction = "You are an expert at one-line summaries of brokerage research " +
		"reports for semiconductor-company executives. Summarize the text in a single sentence."
	keywordInstruction = "Extract 5 to 10 key keywords from the given summary, separated by commas."
)

// Basis selects the input of the one-line summary. Keywords always derive
// from the long summary.
type Basis string

const (
	BasisLongSummary Basis = "long_summary"
	BasisDocument    Basis = "document"
)

// Summarizer runs the three summarization stages against a completion
// backend. Per-stage methods surface typed failures; Derive is the boundary
// that degrades failures to empty record fields.
type Summarizer struct {
	client ports.CompletionClient
	basis  Basis
	logger *slog.Logger
}

var _ ports.Summarizer = (*Summarizer)(nil)

// New builds a summarizer; an unrecognized basis falls back to the long
// summary.
func New(client ports.CompletionClient, basis Basis, logger *slog.Logger) *Summarizer {
	if basis != BasisDocument {
		basis = BasisLongSummary
	}
	return &Summarizer{client: client, basis: basis, logger: logger}
}

// SummarizeLong produces the five-section analytical summary.
func (s *Summarizer) SummarizeLong(ctx context.Context, fullText string) (string, error) {
	return s.complete(ctx, longInstruction, fullText)
}

// SummarizeOneLine condenses the basis text into a single sentence.
func (s *Summarizer) SummarizeOneLine(ctx context.Context, basisText string) (string, error) {
	return s.complete(ctx, oneLineInstruction, basisText)
}

// ExtractKeywords pulls 5-10 comma-separated terms out of a summary.
func (s *Summarizer) ExtractKeywords(ctx context.Context, summaryText string) (string, error) {
	return s.complete(ctx, keywordInstruction, summaryText)
}

// Derive runs the stages in dependency order. A failed or empty stage is
// logged and its dependents are skipped; a stage is never called on empty
// input. Failures become empty fields here and nowhere else.
func (s *Summarizer) Derive(ctx context.Context, fullText string) domain.SummaryArtifacts {
	var out domain.SummaryArtifacts
	if strings.TrimSpace(fullText) == "" {
		return out
	}

	long, err := s.SummarizeLong(ctx, fullText)
	if err != nil {
		s.warn("long summary failed", err)
	}
	out.LongSummary = long

	basisText := out.LongSummary
	if s.basis == BasisDocument {
		basisText = fullText
	}

	if basisText != "" {
		oneLine, err := s.SummarizeOneLine(ctx, basisText)
		if err != nil {
			s.warn("one-line summary failed", err)
		}
		out.OneLineSummary = oneLine
	}

	if out.LongSummary != "" {
		keywords, err := s.ExtractKeywords(ctx, out.LongSummary)
		if err != nil {
			s.warn("keyword extraction failed", err)
		}
		out.Keywords = keywords
	}

	return out
}

func (s *Summarizer) complete(ctx context.Context, instruction, input string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("completion client not configured")
	}
	text, err := s.client.Complete(ctx, instruction, input)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *Summarizer) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, "error", err)
	}
}
