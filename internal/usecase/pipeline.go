package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lyh9003/stock-report/internal/dates"
	"github.com/lyh9003/stock-report/internal/domain"
	"github.com/lyh9003/stock-report/internal/ports"
	"github.com/lyh9003/stock-report/internal/textnorm"
)

const defaultSeenStopThreshold = 2

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Source            ports.ReportSource
	Extractor         ports.TextExtractor
	Summarizer        ports.Summarizer
	Ledger            ports.ReportLedger
	Endpoints         []string
	SeenStopThreshold int
	Logger            *slog.Logger
}

// Pipeline drives one incremental ingestion run: scan each configured
// endpoint, skip already-seen documents, fetch/extract/summarize new ones,
// then merge the batch into the persisted dataset.
type Pipeline struct {
	source     ports.ReportSource
	extractor  ports.TextExtractor
	summarizer ports.Summarizer
	ledger     ports.ReportLedger
	endpoints  []string
	seenStop   int
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	threshold := deps.SeenStopThreshold
	if threshold <= 0 {
		threshold = defaultSeenStopThreshold
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		source:     deps.Source,
		extractor:  deps.Extractor,
		summarizer: deps.Summarizer,
		ledger:     deps.Ledger,
		endpoints:  deps.Endpoints,
		seenStop:   threshold,
		logger:     logger,
	}
}

// Run executes one batch run. A failed endpoint scan aborts only that
// endpoint; only a persistence failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) error {
	existing, seen, err := p.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	var batch []domain.ReportRecord
	for _, endpoint := range p.endpoints {
		records, err := p.scanEndpoint(ctx, endpoint, seen)
		if err != nil {
			p.logger.Error("endpoint scan failed", "endpoint", endpoint, "error", err)
			continue
		}
		batch = append(batch, records...)
	}

	if err := p.ledger.MergeAndPersist(ctx, existing, batch); err != nil {
		return fmt.Errorf("persist dataset: %w", err)
	}

	p.logger.Info("run complete", "endpoints", len(p.endpoints), "appended", len(batch))
	return nil
}

// scanEndpoint walks the listing in page order and stops early after a run
// of consecutive already-seen rows. The listing is assumed reverse-
// chronological, so older entries past that run are taken as already
// ingested; this is a heuristic, not a correctness guarantee. Malformed
// rows count toward the run the same as dedup skips; only an appended row
// resets it.
func (p *Pipeline) scanEndpoint(ctx context.Context, endpoint string, seen map[string]bool) ([]domain.ReportRecord, error) {
	p.logger.Info("scanning endpoint", "endpoint", endpoint)

	candidates, err := p.source.ListCandidates(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var records []domain.ReportRecord
	consecutiveSeen := 0
	for _, c := range candidates {
		if !c.Usable() || seen[c.DocumentURL] {
			consecutiveSeen++
			if consecutiveSeen >= p.seenStop {
				p.logger.Debug("early stop", "endpoint", endpoint, "appended", len(records))
				break
			}
			continue
		}

		records = append(records, p.ingest(ctx, c))
		// Keep the dedup invariant when endpoints overlap: a URL ingested
		// here must not be ingested again by a later listing this run.
		seen[c.DocumentURL] = true
		consecutiveSeen = 0
	}

	p.logger.Info("endpoint scanned", "endpoint", endpoint, "rows", len(candidates), "new", len(records))
	return records, nil
}

// ingest assembles one record for a new candidate. Fetch, extraction and
// summarization failures degrade the record instead of dropping it; the
// identity and metadata fields stay valid either way.
func (p *Pipeline) ingest(ctx context.Context, c domain.ReportCandidate) domain.ReportRecord {
	rec := domain.ReportRecord{
		Date:        dates.Parse(c.DateRaw),
		Broker:      c.Broker,
		Title:       c.Title,
		DocumentURL: c.DocumentURL,
	}

	p.logger.Info("fetching document", "url", c.DocumentURL, "title", c.Title)
	data, err := p.source.FetchDocument(ctx, c.DocumentURL)
	if err != nil {
		p.logger.Warn("document fetch failed", "url", c.DocumentURL, "error", err)
		return rec
	}
	rec.ByteSize = int64(len(data))
	rec.SizeKnown = true

	pages, err := p.extractor.ExtractPages(data)
	if err != nil {
		p.logger.Warn("text extraction failed", "url", c.DocumentURL, "error", err)
		return rec
	}
	rec.FullText = textnorm.ReducePages(pages)
	if rec.FullText == "" {
		return rec
	}

	artifacts := p.summarizer.Derive(ctx, rec.FullText)
	rec.LongSummary = artifacts.LongSummary
	rec.OneLineSummary = artifacts.OneLineSummary
	rec.Keywords = artifacts.Keywords
	return rec
}
