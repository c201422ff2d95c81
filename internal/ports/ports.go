package ports

import (
	"context"

	"github.com/lyh9003/stock-report/internal/domain"
)

// ReportSource discovers report candidates on a listing endpoint and fetches
// their documents.
type ReportSource interface {
	// ListCandidates returns candidates in the order the portal lists them
	// (assumed newest-first, not verified).
	ListCandidates(ctx context.Context, endpoint string) ([]domain.ReportCandidate, error)
	// FetchDocument performs a single GET; non-success status is an error.
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor pulls per-page plain text out of raw document bytes. A page
// that cannot be extracted contributes an empty segment, not an error.
type TextExtractor interface {
	ExtractPages(data []byte) ([]string, error)
}

// CompletionClient is the single logical operation of the external
// text-completion service.
type CompletionClient interface {
	Complete(ctx context.Context, instruction, input string) (string, error)
}

// Summarizer derives the three summary artifacts from normalized document
// text. Failed stages surface as empty fields.
type Summarizer interface {
	Derive(ctx context.Context, fullText string) domain.SummaryArtifacts
}

// ReportLedger owns the persisted dataset.
type ReportLedger interface {
	// Load reads the dataset if present; the seen-set is the set of
	// document URLs already persisted. An absent dataset yields empty
	// results, not an error.
	Load(ctx context.Context) (records []domain.ReportRecord, seen map[string]bool, err error)
	// MergeAndPersist normalizes dates across existing and batch rows,
	// sorts date-descending with unknown dates last, and atomically
	// replaces the dataset. An empty batch is a logged no-op.
	MergeAndPersist(ctx context.Context, existing, batch []domain.ReportRecord) error
}
