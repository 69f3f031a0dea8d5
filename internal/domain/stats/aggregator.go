// Package stats computes summary statistics over parsed transactions.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-converter/internal/domain/ofx"
)

// DateRange is the lexicographic min/max of the transaction dates. Because
// dates are normalized to YYYY-MM-DD, string ordering matches the
// chronological one. Both ends are empty for an empty input.
type DateRange struct {
	Start string
	End   string
}

// Summary holds the aggregate view of a transaction list.
type Summary struct {
	TotalCredits     decimal.Decimal // Sum of positive amounts
	TotalDebits      decimal.Decimal // Sum of absolute values of negative amounts
	NetChange        decimal.Decimal // TotalCredits - TotalDebits
	TransactionCount int
	DateRange        DateRange
}

// Summarize aggregates a transaction list. Empty input yields a zeroed
// summary with an empty date range, never an error.
func Summarize(txns []ofx.Transaction) Summary {
	summary := Summary{TransactionCount: len(txns)}

	for _, tx := range txns {
		switch tx.Amount.Sign() {
		case 1:
			summary.TotalCredits = summary.TotalCredits.Add(tx.Amount)
		case -1:
			summary.TotalDebits = summary.TotalDebits.Add(tx.Amount.Neg())
		}

		if tx.Date == "" {
			continue
		}
		if summary.DateRange.Start == "" || tx.Date < summary.DateRange.Start {
			summary.DateRange.Start = tx.Date
		}
		if summary.DateRange.End == "" || tx.Date > summary.DateRange.End {
			summary.DateRange.End = tx.Date
		}
	}

	summary.NetChange = summary.TotalCredits.Sub(summary.TotalDebits)
	return summary
}
