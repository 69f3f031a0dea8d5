package convert

import (
	"github.com/FACorreiaa/statement-converter/internal/domain/ofx"
	"github.com/FACorreiaa/statement-converter/internal/domain/tabular"
	"github.com/FACorreiaa/statement-converter/pkg/money"
)

// TransactionsFromTable maps a normalized extracted table onto the
// canonical transaction model. Columns are located by their classified
// kind; rows missing a date or an unparsable amount are dropped, matching
// how the CSV reader treats incomplete rows.
func TransactionsFromTable(t *tabular.TableData) []ofx.Transaction {
	kinds := tabular.ClassifyHeaders(t.Headers)
	dateCol := tabular.FirstOfKind(t.Headers, kinds, tabular.ColumnDate)
	descCol := tabular.FirstOfKind(t.Headers, kinds, tabular.ColumnDescription)
	amountCol := tabular.FirstOfKind(t.Headers, kinds, tabular.ColumnAmount)
	refCol := tabular.FirstOfKind(t.Headers, kinds, tabular.ColumnReference)

	if dateCol == "" || amountCol == "" {
		return nil
	}

	txns := make([]ofx.Transaction, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row[dateCol] == "" {
			continue
		}
		amount, err := money.ParseAmount(row[amountCol])
		if err != nil {
			continue
		}
		name := row[descCol]
		if name == "" {
			name = "Unknown"
		}
		txns = append(txns, ofx.Transaction{
			Date:   row[dateCol],
			Amount: amount,
			Type:   typeFromSign(amount),
			Name:   name,
			FitID:  row[refCol],
		})
	}
	return txns
}
