package tabular

import (
	"strings"
	"time"

	"github.com/FACorreiaa/statement-converter/pkg/money"
)

// descriptionKeywords mark the columns a wrapped PDF cell may continue
// into. Continuation lines only ever affect description-like text; numeric
// and date columns are never merged.
var descriptionKeywords = []string{"desc", "memo", "payee"}

// dateFormats are tried in order when normalizing date cells. Mirrors the
// spread of formats real bank statements use.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"2006/01/02",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

// MergeMultilineRows folds continuation artifacts back into their parent
// row. A row with exactly one populated cell, in a description-like
// column, is treated as the wrapped tail of the row above it: the value is
// space-joined onto the same column of the pivot row and no new row is
// emitted. Every other row flushes the pivot and becomes the new one.
func MergeMultilineRows(t *TableData) *TableData {
	out := &TableData{
		Headers:    append([]string(nil), t.Headers...),
		Confidence: t.Confidence,
	}
	if len(t.Rows) == 0 {
		return out
	}

	pivot := cloneRow(t.Rows[0])
	for _, row := range t.Rows[1:] {
		if col, ok := continuationColumn(row, t.Headers); ok {
			pivot[col] = strings.TrimSpace(pivot[col] + " " + row[col])
			continue
		}
		out.Rows = append(out.Rows, pivot)
		pivot = cloneRow(row)
	}
	out.Rows = append(out.Rows, pivot)
	return out
}

// continuationColumn reports whether the row is a continuation line: one
// populated cell, in a description-like column.
func continuationColumn(row Row, headers []string) (string, bool) {
	if populatedCells(row, headers) != 1 {
		return "", false
	}
	for _, h := range headers {
		if row[h] == "" {
			continue
		}
		if containsAny(strings.ToLower(h), descriptionKeywords) {
			return h, true
		}
		return "", false
	}
	return "", false
}

// NormalizeFinancialData canonicalizes date and monetary cells: date-like
// columns are reformatted to YYYY-MM-DD, amount/balance/total columns are
// stripped of display noise with accounting negatives converted to a
// leading minus. Cells that cannot be parsed pass through unchanged. The
// input table is not mutated.
func NormalizeFinancialData(t *TableData) *TableData {
	out := t.Clone()
	for _, row := range out.Rows {
		for _, h := range out.Headers {
			val := row[h]
			if val == "" {
				continue
			}
			lower := strings.ToLower(h)
			switch {
			case strings.Contains(lower, "date"):
				row[h] = NormalizeDate(val)
			case containsAny(lower, []string{"amount", "balance", "total"}):
				row[h] = money.NormalizeNumeric(val)
			}
		}
	}
	return out
}

// NormalizeDate reformats a recognized date to YYYY-MM-DD using the parsed
// calendar components directly, so no timezone conversion can shift the
// day. Unrecognized values come back unchanged.
func NormalizeDate(val string) string {
	s := strings.TrimSpace(val)
	for _, layout := range dateFormats {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return val
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
