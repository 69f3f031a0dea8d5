// Package export serializes the canonical transaction/table model into the
// download formats the product offers: CSV, QBO, QIF and XLSX. The textual
// serializers are pure functions and never fail; a partially-wrong export
// the user can hand-correct beats a failed one.
package export

import (
	"strings"

	"github.com/FACorreiaa/statement-converter/internal/domain/ofx"
	"github.com/FACorreiaa/statement-converter/pkg/money"
)

const csvHeader = "Date,Description,Amount,Type,Memo,Reference"

// TransactionsCSV renders transactions as CSV with a fixed header row.
// Description and memo are always double-quoted with internal quotes
// doubled; amounts carry exactly two decimals.
func TransactionsCSV(txns []ofx.Transaction) string {
	lines := make([]string, 0, len(txns)+1)
	lines = append(lines, csvHeader)

	for _, tx := range txns {
		lines = append(lines, strings.Join([]string{
			tx.Date,
			quote(tx.Name),
			money.Format(tx.Amount),
			string(tx.Type),
			quote(tx.Memo),
			tx.FitID,
		}, ","))
	}

	return strings.Join(lines, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
