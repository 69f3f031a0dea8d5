package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-converter/internal/domain/ofx"
	"github.com/FACorreiaa/statement-converter/internal/domain/tabular"
	"github.com/FACorreiaa/statement-converter/pkg/money"
)

// statementRow is a raw CSV statement row. The tags cover the common
// header wordings banks use; gocsv matches them against the (lowercased)
// header line, and empty aliases coalesce per field group.
type statementRow struct {
	Date       string `csv:"date"`
	TxnDate    string `csv:"transaction date"`
	PostedDate string `csv:"posting date"`

	Description string `csv:"description"`
	Payee       string `csv:"payee"`
	Merchant    string `csv:"merchant"`
	Details     string `csv:"details"`

	Amount string `csv:"amount"`
	Value  string `csv:"value"`

	Debit  string `csv:"debit"`
	Credit string `csv:"credit"`

	Memo      string `csv:"memo"`
	Reference string `csv:"reference"`
	CheckNum  string `csv:"check number"`
	Balance   string `csv:"balance"`
}

// readCSVStatement parses a CSV bank export into a synthetic account using
// the same canonical model as the OFX parser, so every serializer works on
// both inputs. Rows without a date or a usable amount are skipped.
func (s *Service) readCSVStatement(data []byte) (ofx.Account, error) {
	var rows []statementRow
	if err := gocsv.UnmarshalBytes(lowercaseHeader(stripBOM(data)), &rows); err != nil {
		return ofx.Account{}, fmt.Errorf("unmarshaling csv: %w", err)
	}

	txns := make([]ofx.Transaction, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		tx, ok := rowTransaction(row)
		if !ok {
			skipped++
			continue
		}
		txns = append(txns, tx)
	}
	if skipped > 0 {
		s.logger.Warn("skipped csv rows without date or amount", "skipped", skipped, "total", len(rows))
	}

	acct := s.syntheticAccount(txns)
	if bal := lastBalance(rows); bal != "" {
		if b, err := money.ParseAmount(bal); err == nil {
			acct.Balance = &b
		}
	}
	return acct, nil
}

func rowTransaction(row statementRow) (ofx.Transaction, bool) {
	date := coalesce(row.Date, row.TxnDate, row.PostedDate)
	if date == "" {
		return ofx.Transaction{}, false
	}

	raw := coalesce(row.Amount, row.Value)
	if raw == "" {
		// Double-entry layout: debits are positive columns, negate them.
		if row.Debit != "" {
			raw = "-" + strings.TrimPrefix(row.Debit, "-")
		} else if row.Credit != "" {
			raw = row.Credit
		}
	}
	if raw == "" {
		return ofx.Transaction{}, false
	}
	amount, err := money.ParseAmount(raw)
	if err != nil {
		return ofx.Transaction{}, false
	}

	return ofx.Transaction{
		Date:     tabular.NormalizeDate(date),
		Amount:   amount,
		Type:     typeFromSign(amount),
		Name:     coalesce(row.Description, row.Payee, row.Merchant, row.Details, row.Memo, "Unknown"),
		Memo:     row.Memo,
		FitID:    row.Reference,
		CheckNum: row.CheckNum,
	}, true
}

func typeFromSign(amount decimal.Decimal) ofx.TxnType {
	switch amount.Sign() {
	case 1:
		return ofx.TxnCredit
	case -1:
		return ofx.TxnDebit
	default:
		return ofx.TxnOther
	}
}

func lastBalance(rows []statementRow) string {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Balance != "" {
			return rows[i].Balance
		}
	}
	return ""
}

// lowercaseHeader lowercases the first line so gocsv's lowercase tags match
// headers regardless of the bank's capitalization.
func lowercaseHeader(data []byte) []byte {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return bytes.ToLower(data)
	}
	return append(bytes.ToLower(data[:idx]), data[idx:]...)
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
