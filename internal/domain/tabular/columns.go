package tabular

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ColumnKind is the inferred semantic role of an extracted column.
type ColumnKind string

const (
	ColumnDate        ColumnKind = "date"
	ColumnDescription ColumnKind = "description"
	ColumnAmount      ColumnKind = "amount"
	ColumnBalance     ColumnKind = "balance"
	ColumnReference   ColumnKind = "reference"
	ColumnUnknown     ColumnKind = "unknown"
)

// kindKeywords drive classification. Exact substring matches win; a small
// Levenshtein fallback catches the OCR misspellings extracted headers
// often carry ("Descriptiom", "Amounl").
var kindKeywords = []struct {
	kind     ColumnKind
	keywords []string
}{
	{ColumnDate, []string{"date", "data", "fecha", "datum"}},
	{ColumnDescription, []string{"description", "desc", "memo", "payee", "merchant", "details", "narrative"}},
	{ColumnBalance, []string{"balance", "saldo"}},
	{ColumnAmount, []string{"amount", "total", "value", "valor", "debit", "credit", "montant"}},
	{ColumnReference, []string{"reference", "ref", "check", "cheque", "fitid"}},
}

// maxFuzzyDistance bounds the edit distance accepted by the fallback.
const maxFuzzyDistance = 2

// ClassifyHeader infers the semantic kind of a single column header.
func ClassifyHeader(header string) ColumnKind {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return ColumnUnknown
	}

	for _, entry := range kindKeywords {
		if containsAny(h, entry.keywords) {
			return entry.kind
		}
	}

	// Fuzzy fallback for near-miss spellings, longest keywords first so
	// "descriptiom" lands on description rather than a short token.
	for _, entry := range kindKeywords {
		for _, kw := range entry.keywords {
			if len(kw) < 4 {
				continue
			}
			if fuzzy.LevenshteinDistance(h, kw) <= maxFuzzyDistance {
				return entry.kind
			}
		}
	}

	return ColumnUnknown
}

// ClassifyHeaders maps each header to its inferred kind, preserving the
// caller's ability to pick the first column of a given kind by walking the
// headers slice in order.
func ClassifyHeaders(headers []string) map[string]ColumnKind {
	kinds := make(map[string]ColumnKind, len(headers))
	for _, h := range headers {
		kinds[h] = ClassifyHeader(h)
	}
	return kinds
}

// FirstOfKind returns the first header classified as the wanted kind, or
// an empty string when the table has none.
func FirstOfKind(headers []string, kinds map[string]ColumnKind, want ColumnKind) string {
	for _, h := range headers {
		if kinds[h] == want {
			return h
		}
	}
	return ""
}
