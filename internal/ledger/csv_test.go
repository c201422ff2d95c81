package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lyh9003/stock-report/internal/dates"
	"github.com/lyh9003/stock-report/internal/domain"
)

func tempLedger(t *testing.T) (*CSVLedger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.csv")
	return NewCSVLedger(path, nil), path
}

func TestLoadAbsentDataset(t *testing.T) {
	t.Parallel()

	l, _ := tempLedger(t)
	records, seen, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(records) != 0 || len(seen) != 0 {
		t.Fatalf("expected empty dataset, got %d records, %d seen", len(records), len(seen))
	}
}

func TestMergeEmptyBatchIsNoOp(t *testing.T) {
	t.Parallel()

	l, path := tempLedger(t)
	if err := l.MergeAndPersist(context.Background(), nil, nil); err != nil {
		t.Fatalf("MergeAndPersist error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch must not touch the dataset")
	}
}

func TestMergeSortsDescendingUnknownLast(t *testing.T) {
	t.Parallel()

	l, _ := tempLedger(t)
	batch := []domain.ReportRecord{
		{Date: dates.Parse(""), DocumentURL: "https://x/unknown.pdf"},
		{Date: dates.Parse("24.01.10"), DocumentURL: "https://x/new.pdf"},
		{Date: dates.Parse("2023-12-01"), DocumentURL: "https://x/old.pdf"},
	}
	if err := l.MergeAndPersist(context.Background(), nil, batch); err != nil {
		t.Fatalf("MergeAndPersist error: %v", err)
	}

	records, _, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	wantURLs := []string{"https://x/new.pdf", "https://x/old.pdf", "https://x/unknown.pdf"}
	wantDates := []string{"2024-01-10", "2023-12-01", ""}
	for i := range records {
		if records[i].DocumentURL != wantURLs[i] {
			t.Fatalf("row %d url %q, want %q", i, records[i].DocumentURL, wantURLs[i])
		}
		if got := dates.Parse(records[i].Date.Raw()).String(); got != wantDates[i] {
			t.Fatalf("row %d date %q, want %q", i, got, wantDates[i])
		}
	}
}

func TestRoundTripAndSeenSet(t *testing.T) {
	t.Parallel()

	l, _ := tempLedger(t)
	rec := domain.ReportRecord{
		Date:           dates.Parse("24.01.05"),
		Broker:         "Alpha Securities",
		Title:          `Memory, "upcycle" ahead`,
		FullText:       "body text",
		LongSummary:    "long",
		OneLineSummary: "one line",
		Keywords:       "chips, memory",
		DocumentURL:    "https://x/doc.pdf",
		ByteSize:       12345,
		SizeKnown:      true,
	}
	if err := l.MergeAndPersist(context.Background(), nil, []domain.ReportRecord{rec}); err != nil {
		t.Fatalf("MergeAndPersist error: %v", err)
	}

	records, seen, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Title != rec.Title || got.Broker != rec.Broker || got.FullText != rec.FullText {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.SizeKnown || got.ByteSize != 12345 {
		t.Fatalf("byte size mismatch: %+v", got)
	}
	if !seen["https://x/doc.pdf"] {
		t.Fatalf("seen-set missing document url")
	}
}

func TestPersistedFormat(t *testing.T) {
	t.Parallel()

	l, path := tempLedger(t)
	batch := []domain.ReportRecord{{
		Date:        dates.Parse("24.01.05"),
		Broker:      "Alpha",
		DocumentURL: "https://x/doc.pdf",
	}}
	if err := l.MergeAndPersist(context.Background(), nil, batch); err != nil {
		t.Fatalf("MergeAndPersist error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	content := string(raw)

	if !strings.HasPrefix(content, "\ufeff") {
		t.Fatalf("dataset must start with a BOM")
	}
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(content, "\ufeff"), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != `"date","broker","title","full_text","long_summary","one_line_summary","keywords","document_url","byte_size"` {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	// Every field is quoted, including empty ones.
	if lines[1] != `"2024-01-05","Alpha","","","","","","https://x/doc.pdf",""` {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestMergeReNormalizesLegacyDates(t *testing.T) {
	t.Parallel()

	l, path := tempLedger(t)

	// A legacy dataset with a dotted date, a float byte size and a
	// transient index column.
	legacy := "\ufeff" + `"index","date","broker","title","full_text","long_summary","one_line_summary","keywords","document_url","byte_size"` + "\n" +
		`"1","23.11.20","Old Broker","Legacy row","","","","","https://x/legacy.pdf","123456.0"` + "\n"
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("seed dataset: %v", err)
	}

	existing, seen, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !seen["https://x/legacy.pdf"] {
		t.Fatalf("legacy url missing from seen-set")
	}
	if !existing[0].SizeKnown || existing[0].ByteSize != 123456 {
		t.Fatalf("legacy byte size not tolerated: %+v", existing[0])
	}

	batch := []domain.ReportRecord{{
		Date:        dates.Parse("24.01.05"),
		DocumentURL: "https://x/new.pdf",
	}}
	if err := l.MergeAndPersist(context.Background(), existing, batch); err != nil {
		t.Fatalf("MergeAndPersist error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	content := string(raw)
	if strings.Contains(content, "23.11.20") {
		t.Fatalf("legacy date not re-normalized:\n%s", content)
	}
	if !strings.Contains(content, `"2023-11-20"`) {
		t.Fatalf("expected canonical legacy date:\n%s", content)
	}
	if strings.Contains(content, `"index"`) {
		t.Fatalf("transient index column must be dropped:\n%s", content)
	}
}
