package domain

import "time"

// ReportCandidate describes one listing-page row before its document is
// fetched. A row that is recognizably a report row but malformed (no usable
// document link, too few cells) is represented with an empty DocumentURL so
// the scan's stop accounting still sees it; only rows with a DocumentURL are
// ever ingested.
type ReportCandidate struct {
	Title       string
	Broker      string
	DateRaw     string
	DocumentURL string
}

// Usable reports whether the candidate carries a document link and may be
// considered for ingestion. DocumentURL is the sole deduplication key.
func (c ReportCandidate) Usable() bool {
	return c.DocumentURL != ""
}

// ReportRecord is one persisted dataset row. Created once per ingested
// document and never mutated afterwards.
type ReportRecord struct {
	Date           Date
	Broker         string
	Title          string
	FullText       string
	LongSummary    string
	OneLineSummary string
	Keywords       string
	DocumentURL    string
	ByteSize       int64
	SizeKnown      bool
}

// SummaryArtifacts are the three derived texts produced from a document.
// A field is empty when its stage failed or was skipped.
type SummaryArtifacts struct {
	LongSummary    string
	OneLineSummary string
	Keywords       string
}

// Date is a calendar day or unknown. It remembers the raw string it was
// built from so the whole dataset can be re-normalized uniformly before
// sorting, regardless of how loosely a legacy row stored its date.
type Date struct {
	raw   string
	day   time.Time
	known bool
}

// KnownDate builds a parsed date that still carries its source string.
func KnownDate(raw string, day time.Time) Date {
	return Date{raw: raw, day: day, known: true}
}

// RawDate carries an unparsed (or unparseable) date string.
func RawDate(raw string) Date {
	return Date{raw: raw}
}

// Known reports whether the date resolved to a calendar day.
func (d Date) Known() bool {
	return d.known
}

// Day returns the resolved day; zero when unknown.
func (d Date) Day() time.Time {
	return d.day
}

// Raw returns the source string, falling back to the canonical form.
func (d Date) Raw() string {
	if d.raw != "" {
		return d.raw
	}
	return d.String()
}

// String renders the canonical persisted form: "2006-01-02", or the empty
// string when unknown.
func (d Date) String() string {
	if !d.known {
		return ""
	}
	return d.day.Format("2006-01-02")
}

// After orders dates for the descending dataset sort: any known date sorts
// after an unknown one.
func (d Date) After(other Date) bool {
	if !d.known {
		return false
	}
	if !other.known {
		return true
	}
	return d.day.After(other.day)
}
