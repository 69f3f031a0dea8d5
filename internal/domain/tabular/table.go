// Package tabular models tabular data extracted from PDF statements and
// provides the post-extraction cleanup stages: spatial row clustering,
// multiline row merging, and financial value normalization.
package tabular

// Row maps column names to cell values. Column order is carried by
// TableData.Headers, never by the map itself.
type Row map[string]string

// TableData is the canonical extracted-table shape: ordered headers, rows
// keyed by those headers, and a 0-1 extraction reliability score that every
// downstream stage propagates unchanged.
type TableData struct {
	Headers    []string
	Rows       []Row
	Confidence float64
}

// Clone returns a deep copy. Normalization stages transform copies so that
// callers holding the original keep an untouched value.
func (t *TableData) Clone() *TableData {
	out := &TableData{
		Headers:    make([]string, len(t.Headers)),
		Rows:       make([]Row, 0, len(t.Rows)),
		Confidence: t.Confidence,
	}
	copy(out.Headers, t.Headers)
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, cloneRow(row))
	}
	return out
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// populatedCells counts the non-empty cells of a row across the given
// header set.
func populatedCells(row Row, headers []string) int {
	n := 0
	for _, h := range headers {
		if row[h] != "" {
			n++
		}
	}
	return n
}
