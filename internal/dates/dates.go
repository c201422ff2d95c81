// Package dates normalizes the heterogeneous date strings found on listing
// pages and in legacy dataset rows.
package dates

import (
	"strings"
	"time"

	"github.com/lyh9003/stock-report/internal/domain"
)

const dottedLayout = "06.01.02"

// Layouts tried for dot-free inputs, most specific first. Legacy rows have
// been persisted both as bare days and as full timestamps.
var generalLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// Parse resolves a raw date string to a calendar day, degrading to unknown
// on blank or unparseable input. It never fails.
func Parse(raw string) domain.Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.RawDate(raw)
	}

	if strings.Contains(s, ".") {
		day, err := time.Parse(dottedLayout, s)
		if err != nil {
			return domain.RawDate(raw)
		}
		return domain.KnownDate(raw, day)
	}

	for _, layout := range generalLayouts {
		if day, err := time.Parse(layout, s); err == nil {
			return domain.KnownDate(raw, day)
		}
	}
	return domain.RawDate(raw)
}
