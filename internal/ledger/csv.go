// Package ledger owns the persisted report dataset: a single comma-delimited
// file, UTF-8 with a byte-order mark, every field quoted.
package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lyh9003/stock-report/internal/dates"
	"github.com/lyh9003/stock-report/internal/domain"
	"github.com/lyh9003/stock-report/internal/ports"
)

const bom = "\ufeff"

var columns = []string{
	"date",
	"broker",
	"title",
	"full_text",
	"long_summary",
	"one_line_summary",
	"keywords",
	"document_url",
	"byte_size",
}

// CSVLedger implements ports.ReportLedger on one dataset file that is both
// the input and the sole output of a run.
type CSVLedger struct {
	path   string
	logger *slog.Logger
}

var _ ports.ReportLedger = (*CSVLedger)(nil)

// NewCSVLedger points the ledger at the dataset path.
func NewCSVLedger(path string, logger *slog.Logger) *CSVLedger {
	return &CSVLedger{path: path, logger: logger}
}

// Load reads the dataset if present. Columns are resolved by header name, so
// a legacy transient index column is tolerated and ignored.
func (l *CSVLedger) Load(_ context.Context) ([]domain.ReportRecord, map[string]bool, error) {
	raw, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, map[string]bool{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read dataset: %w", err)
	}

	raw = bytes.TrimPrefix(raw, []byte(bom))
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, map[string]bool{}, nil
	}

	index := map[string]int{}
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]domain.ReportRecord, 0, len(rows)-1)
	seen := make(map[string]bool, len(rows)-1)
	for _, row := range rows[1:] {
		rec := domain.ReportRecord{
			Date:           domain.RawDate(field(row, "date")),
			Broker:         field(row, "broker"),
			Title:          field(row, "title"),
			FullText:       field(row, "full_text"),
			LongSummary:    field(row, "long_summary"),
			OneLineSummary: field(row, "one_line_summary"),
			Keywords:       field(row, "keywords"),
			DocumentURL:    field(row, "document_url"),
		}
		rec.ByteSize, rec.SizeKnown = parseByteSize(field(row, "byte_size"))
		records = append(records, rec)
		if rec.DocumentURL != "" {
			seen[rec.DocumentURL] = true
		}
	}

	return records, seen, nil
}

// MergeAndPersist concatenates existing and new rows, re-normalizes every
// date (legacy rows were persisted under looser formats), sorts descending
// with unknown dates last, and atomically replaces the dataset.
func (l *CSVLedger) MergeAndPersist(_ context.Context, existing, batch []domain.ReportRecord) error {
	if len(batch) == 0 {
		l.info("no new reports")
		return nil
	}

	merged := make([]domain.ReportRecord, 0, len(existing)+len(batch))
	merged = append(merged, existing...)
	merged = append(merged, batch...)

	for i := range merged {
		merged[i].Date = dates.Parse(merged[i].Date.Raw())
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	if err := l.persist(merged); err != nil {
		return err
	}
	l.info("dataset saved", "path", l.path, "appended", len(batch), "total", len(merged))
	return nil
}

// persist writes the whole dataset to a temp file and renames it over the
// old one so a failed write never leaves partial content behind.
func (l *CSVLedger) persist(records []domain.ReportRecord) error {
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".reports-*.csv")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	var buf bytes.Buffer
	buf.WriteString(bom)
	writeRow(&buf, columns)
	for _, rec := range records {
		writeRow(&buf, recordFields(rec))
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close dataset: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("replace dataset: %w", err)
	}
	return nil
}

// writeRow quotes every field unconditionally; encoding/csv only quotes on
// demand, which the dataset format does not allow.
func writeRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

func recordFields(rec domain.ReportRecord) []string {
	size := ""
	if rec.SizeKnown {
		size = strconv.FormatInt(rec.ByteSize, 10)
	}
	return []string{
		rec.Date.String(),
		rec.Broker,
		rec.Title,
		rec.FullText,
		rec.LongSummary,
		rec.OneLineSummary,
		rec.Keywords,
		rec.DocumentURL,
		size,
	}
}

// parseByteSize tolerates the legacy float rendering ("123456.0") of sizes.
func parseByteSize(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func (l *CSVLedger) info(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}
