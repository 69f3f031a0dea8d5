package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-converter/internal/domain/ofx"
	"github.com/FACorreiaa/statement-converter/pkg/config"
	"github.com/FACorreiaa/statement-converter/pkg/money"
)

// noonGMT is the fixed intraday timestamp appended to date-only postings.
// QBO consumers require a full DTPOSTED; noon keeps the transaction on the
// same calendar day in every US timezone.
const noonGMT = "120000[0:GMT]"

// QBOWriter renders accounts as SGML OFX 1.02 statements, the dialect
// QuickBooks Web Connect accepts. The financial institution identity comes
// from configuration so deployments can present their own FI registration.
type QBOWriter struct {
	cfg config.ExportConfig
	now func() time.Time
}

func NewQBOWriter(cfg config.ExportConfig) *QBOWriter {
	return &QBOWriter{cfg: cfg, now: time.Now}
}

// Serialize renders a single account with its transactions. Transactions
// without a FITID get a synthetic one derived from date, amount and position
// so QuickBooks deduplication still has a stable key.
func (w *QBOWriter) Serialize(acct ofx.Account) string {
	var b strings.Builder

	b.WriteString("OFXHEADER:100\n")
	b.WriteString("DATA:OFXSGML\n")
	b.WriteString("VERSION:102\n")
	b.WriteString("SECURITY:NONE\n")
	b.WriteString("ENCODING:USASCII\n")
	b.WriteString("CHARSET:1252\n")
	b.WriteString("COMPRESSION:NONE\n")
	b.WriteString("OLDFILEUID:NONE\n")
	b.WriteString("NEWFILEUID:NONE\n")
	b.WriteString("\n")

	b.WriteString("<OFX>\n")
	w.writeSignon(&b)
	b.WriteString("<BANKMSGSRSV1>\n")
	b.WriteString("<STMTTRNRS>\n")
	b.WriteString("<TRNUID>1\n")
	b.WriteString("<STATUS>\n<CODE>0\n<SEVERITY>INFO\n</STATUS>\n")
	b.WriteString("<STMTRS>\n")
	b.WriteString("<CURDEF>" + money.NormalizeCurrency(acct.Currency) + "\n")
	w.writeAccountFrom(&b, acct)
	w.writeTransactionList(&b, acct)
	w.writeLedgerBalance(&b, acct)
	b.WriteString("</STMTRS>\n")
	b.WriteString("</STMTTRNRS>\n")
	b.WriteString("</BANKMSGSRSV1>\n")
	b.WriteString("</OFX>\n")

	return b.String()
}

func (w *QBOWriter) writeSignon(b *strings.Builder) {
	b.WriteString("<SIGNONMSGSRSV1>\n")
	b.WriteString("<SONRS>\n")
	b.WriteString("<STATUS>\n<CODE>0\n<SEVERITY>INFO\n</STATUS>\n")
	b.WriteString("<DTSERVER>" + w.now().UTC().Format("20060102150405") + "[0:GMT]\n")
	b.WriteString("<LANGUAGE>ENG\n")
	b.WriteString("<FI>\n")
	b.WriteString("<ORG>" + w.cfg.FIOrg + "\n")
	b.WriteString("<FID>" + w.cfg.FIID + "\n")
	b.WriteString("</FI>\n")
	b.WriteString("</SONRS>\n")
	b.WriteString("</SIGNONMSGSRSV1>\n")
}

func (w *QBOWriter) writeAccountFrom(b *strings.Builder, acct ofx.Account) {
	bankID := acct.BankID
	if bankID == "" {
		bankID = w.cfg.BankID
	}
	b.WriteString("<BANKACCTFROM>\n")
	b.WriteString("<BANKID>" + bankID + "\n")
	b.WriteString("<ACCTID>" + acct.AccountID + "\n")
	b.WriteString("<ACCTTYPE>" + string(acct.AccountType) + "\n")
	b.WriteString("</BANKACCTFROM>\n")
}

func (w *QBOWriter) writeTransactionList(b *strings.Builder, acct ofx.Account) {
	start, end := transactionSpan(acct.Transactions)

	b.WriteString("<BANKTRANLIST>\n")
	b.WriteString("<DTSTART>" + posted(start) + "\n")
	b.WriteString("<DTEND>" + posted(end) + "\n")
	for i, tx := range acct.Transactions {
		b.WriteString("<STMTTRN>\n")
		b.WriteString("<TRNTYPE>" + string(tx.Type) + "\n")
		b.WriteString("<DTPOSTED>" + posted(tx.Date) + "\n")
		b.WriteString("<TRNAMT>" + money.Format(tx.Amount) + "\n")
		b.WriteString("<FITID>" + fitID(tx, i) + "\n")
		b.WriteString("<NAME>" + tx.Name + "\n")
		if tx.Memo != "" {
			b.WriteString("<MEMO>" + tx.Memo + "\n")
		}
		if tx.CheckNum != "" {
			b.WriteString("<CHECKNUM>" + tx.CheckNum + "\n")
		}
		b.WriteString("</STMTTRN>\n")
	}
	b.WriteString("</BANKTRANLIST>\n")
}

func (w *QBOWriter) writeLedgerBalance(b *strings.Builder, acct ofx.Account) {
	bal := "0.00"
	if acct.Balance != nil {
		bal = money.Format(*acct.Balance)
	}
	asOf := acct.BalanceDate
	if asOf == "" {
		asOf = w.now().UTC().Format("2006-01-02")
	}
	b.WriteString("<LEDGERBAL>\n")
	b.WriteString("<BALAMT>" + bal + "\n")
	b.WriteString("<DTASOF>" + posted(asOf) + "\n")
	b.WriteString("</LEDGERBAL>\n")
}

// posted turns an ISO date into an OFX timestamp by stripping hyphens and
// pinning the time of day to noon GMT. Dates that never normalized to ISO
// pass through with only the hyphens removed.
func posted(isoDate string) string {
	return strings.ReplaceAll(isoDate, "-", "") + noonGMT
}

func fitID(tx ofx.Transaction, index int) string {
	if tx.FitID != "" {
		return tx.FitID
	}
	return strings.ReplaceAll(tx.Date, "-", "") + tx.Amount.String() + strconv.Itoa(index)
}

func transactionSpan(txns []ofx.Transaction) (start, end string) {
	for _, tx := range txns {
		if tx.Date == "" {
			continue
		}
		if start == "" || tx.Date < start {
			start = tx.Date
		}
		if end == "" || tx.Date > end {
			end = tx.Date
		}
	}
	return start, end
}
