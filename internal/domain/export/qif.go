package export

import (
	"strings"

	"github.com/FACorreiaa/statement-converter/internal/domain/ofx"
	"github.com/FACorreiaa/statement-converter/pkg/money"
)

// QIF renders an account in Quicken Interchange Format. Transactions whose
// date never normalized to YYYY-MM-DD are skipped rather than emitted with a
// date Quicken would misread.
func QIF(acct ofx.Account) string {
	var b strings.Builder

	b.WriteString("!Type:" + qifType(acct.AccountType) + "\n")

	for _, tx := range acct.Transactions {
		date, ok := qifDate(tx.Date)
		if !ok {
			continue
		}
		b.WriteString("D" + date + "\n")
		b.WriteString("T" + money.Format(tx.Amount) + "\n")
		b.WriteString("P" + tx.Name + "\n")
		if tx.Memo != "" {
			b.WriteString("M" + tx.Memo + "\n")
		}
		if tx.CheckNum != "" {
			b.WriteString("N" + tx.CheckNum + "\n")
		}
		b.WriteString("^\n")
	}

	return b.String()
}

func qifType(kind ofx.AccountType) string {
	if kind == ofx.AccountCreditCard {
		return "CCard"
	}
	return "Bank"
}

// qifDate converts YYYY-MM-DD to the MM/DD/YYYY form Quicken expects.
func qifDate(isoDate string) (string, bool) {
	parts := strings.Split(isoDate, "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return parts[1] + "/" + parts[2] + "/" + parts[0], true
}
