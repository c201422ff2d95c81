// Package naver scans finance-portal research listing pages for brokerage
// report PDFs.
package naver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lyh9003/stock-report/internal/domain"
	"github.com/lyh9003/stock-report/internal/ports"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "stock-report/1.0"

	// A listing row needs at least date, title, broker, views and file cells.
	minRowCells = 5
)

// Source implements ports.ReportSource against the portal's research
// listing layout: table rows with a date-flagged cell, a title cell, a
// broker cell, and a file cell holding the PDF link.
type Source struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ ports.ReportSource = (*Source)(nil)

// NewSource wires an HTTP client; a nil client gets a bounded default.
func NewSource(client *http.Client, userAgent string, logger *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Source{client: client, userAgent: userAgent, logger: logger}
}

// ListCandidates fetches the endpoint's listing page once and parses it into
// candidates in page order.
func (s *Source) ListCandidates(ctx context.Context, endpoint string) ([]domain.ReportCandidate, error) {
	doc, err := s.fetchListing(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	candidates := extractCandidates(doc)
	s.debug("listing parsed", "endpoint", endpoint, "rows", len(candidates))
	return candidates, nil
}

// FetchDocument performs a single GET for the document bytes. There is no
// retry; a failed candidate stays un-seen and is retried on the next run.
func (s *Source) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document fetch returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	return body, nil
}

func (s *Source) fetchListing(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	return doc, nil
}

// extractCandidates walks the listing rows in document order. Rows without a
// file-indicator cell are not report rows (headers, spacers) and are dropped
// outright. Report rows that are malformed become placeholder candidates
// with an empty DocumentURL so the scan's stop accounting still counts them.
func extractCandidates(doc *goquery.Document) []domain.ReportCandidate {
	var candidates []domain.ReportCandidate

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		fileCell := row.Find("td.file").First()
		if fileCell.Length() == 0 {
			return
		}

		href, ok := fileCell.Find("a").First().Attr("href")
		href = strings.TrimSpace(href)
		cells := row.Find("td")
		if !ok || href == "" || cells.Length() < minRowCells {
			candidates = append(candidates, domain.ReportCandidate{})
			return
		}

		candidates = append(candidates, domain.ReportCandidate{
			Title:       strings.TrimSpace(cells.Eq(1).Find("a").First().Text()),
			Broker:      strings.TrimSpace(cells.Eq(2).Text()),
			DateRaw:     strings.TrimSpace(row.Find("td.date").First().Text()),
			DocumentURL: href,
		})
	})

	return candidates
}

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
