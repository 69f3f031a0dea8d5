package convert

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-converter/internal/domain/extract"
	"github.com/FACorreiaa/statement-converter/internal/domain/tabular"
	"github.com/FACorreiaa/statement-converter/pkg/config"
)

const sgmlStatement = `OFXHEADER:100
DATA:OFXSGML

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>021000021
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240301
<TRNAMT>-45.67
<FITID>TXN-1
<NAME>Grocery Store
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240302
<TRNAMT>1500.00
<FITID>TXN-2
<NAME>Payroll
</STMTTRN>
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

const csvStatement = `Date,Description,Amount,Balance
03/01/2024,Grocery Store,-45.67,954.33
03/02/2024,Payroll,"1,500.00","2,454.33"
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() *Service {
	cfg := config.ExportConfig{DefaultCurrency: "USD", FIOrg: "B1", FIID: "10898", BankID: "999999999"}
	return NewService(cfg, discardLogger())
}

func TestDetectInputKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected InputKind
	}{
		{"sgml header", "OFXHEADER:100\n<OFX>...", InputOFX},
		{"bare envelope", "<OFX><BANKMSGSRSV1>", InputOFX},
		{"xml prolog", `<?xml version="1.0"?><OFX></OFX>`, InputOFX},
		{"ofx prolog", `<?OFX OFXHEADER="200"?>`, InputOFX},
		{"leading whitespace", "\n  <?xml version=\"1.0\"?>", InputOFX},
		{"csv", "Date,Description,Amount\n2024-03-01,Coffee,-4.50", InputCSV},
		{"empty", "", InputCSV},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectInputKind([]byte(tc.input)))
		})
	}
}

func TestConvert_OFXToCSV(t *testing.T) {
	svc := newTestService()

	res, err := svc.Convert(context.Background(), []byte(sgmlStatement), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, InputOFX, res.Kind)
	require.Len(t, res.Accounts, 1)
	assert.Equal(t, 2, res.Summary.TransactionCount)
	assert.Equal(t, "1454.33", res.Summary.NetChange.StringFixed(2))

	lines := strings.Split(string(res.Output), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `2024-03-01,"Grocery Store",-45.67,DEBIT,"",TXN-1`, lines[1])
}

func TestConvert_OFXToQBO(t *testing.T) {
	svc := newTestService()

	res, err := svc.Convert(context.Background(), []byte(sgmlStatement), FormatQBO)
	require.NoError(t, err)

	out := string(res.Output)
	assert.True(t, strings.HasPrefix(out, "OFXHEADER:100\n"))
	assert.Contains(t, out, "<ACCTID>1234567890")
	assert.Contains(t, out, "<FITID>TXN-1")
}

func TestConvert_CSVStatement(t *testing.T) {
	svc := newTestService()

	res, err := svc.Convert(context.Background(), []byte(csvStatement), FormatQIF)
	require.NoError(t, err)

	assert.Equal(t, InputCSV, res.Kind)
	require.Len(t, res.Accounts, 1)
	acct := res.Accounts[0]
	require.Len(t, acct.Transactions, 2)
	assert.Equal(t, "2024-03-01", acct.Transactions[0].Date)
	assert.Equal(t, "-45.67", acct.Transactions[0].Amount.StringFixed(2))
	require.NotNil(t, acct.Balance)
	assert.Equal(t, "2454.33", acct.Balance.StringFixed(2))

	out := string(res.Output)
	assert.Contains(t, out, "!Type:Bank")
	assert.Contains(t, out, "D03/01/2024")
	assert.Contains(t, out, "PPayroll")
}

func TestConvert_CSVDoubleEntryColumns(t *testing.T) {
	svc := newTestService()
	input := "Date,Details,Debit,Credit\n2024-03-01,Groceries,45.67,\n2024-03-02,Salary,,1500.00\n"

	res, err := svc.Convert(context.Background(), []byte(input), FormatCSV)
	require.NoError(t, err)

	txns := res.Accounts[0].Transactions
	require.Len(t, txns, 2)
	assert.Equal(t, "-45.67", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "1500.00", txns[1].Amount.StringFixed(2))
}

func TestConvert_NoData(t *testing.T) {
	svc := newTestService()

	t.Run("empty csv", func(t *testing.T) {
		_, err := svc.Convert(context.Background(), []byte("Date,Description,Amount\n"), FormatCSV)
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("ofx without transactions", func(t *testing.T) {
		_, err := svc.Convert(context.Background(), []byte("OFXHEADER:100\n<OFX></OFX>"), FormatCSV)
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestConvert_UnknownFormat(t *testing.T) {
	svc := newTestService()

	_, err := svc.Convert(context.Background(), []byte(sgmlStatement), Format("pdf"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestConvertTable(t *testing.T) {
	svc := newTestService()
	table := &tabular.TableData{
		Headers: []string{"Date", "Description", "Amount"},
		Rows: []tabular.Row{
			{"Date": "03/01/2024", "Description": "Coffee", "Amount": "($4.50)"},
			{"Date": "03/02/2024", "Description": "Refund", "Amount": "$12.00"},
		},
		Confidence: 0.9,
	}

	res, err := svc.ConvertTable(table, FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(string(res.Output), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `2024-03-01,"Coffee",-4.50,DEBIT,"",`, lines[1])
	assert.Equal(t, `2024-03-02,"Refund",12.00,CREDIT,"",`, lines[2])
	// The input table is untouched.
	assert.Equal(t, "($4.50)", table.Rows[0]["Amount"])
}

func TestTransactionsFromTable_NoAmountColumn(t *testing.T) {
	table := &tabular.TableData{
		Headers: []string{"Date", "Description"},
		Rows:    []tabular.Row{{"Date": "2024-03-01", "Description": "Coffee"}},
	}

	assert.Nil(t, TransactionsFromTable(table))
}

func TestConvertPDF(t *testing.T) {
	t.Run("without extractor", func(t *testing.T) {
		_, err := newTestService().ConvertPDF(context.Background(), []byte("%PDF"), FormatCSV)
		assert.ErrorIs(t, err, ErrNoExtractor)
	})

	t.Run("end to end", func(t *testing.T) {
		layout := func(_ context.Context, _ []byte) ([]tabular.TextItem, error) {
			return []tabular.TextItem{
				{Text: "Date", X: 0, Y: 0, Width: 40},
				{Text: "Description", X: 100, Y: 0, Width: 80},
				{Text: "Amount", X: 220, Y: 0, Width: 50},
				{Text: "03/01/2024", X: 0, Y: 20, Width: 60},
				{Text: "Coffee", X: 100, Y: 20, Width: 40},
				{Text: "($4.50)", X: 220, Y: 20, Width: 40},
			}, nil
		}
		extractor := extract.NewService(config.ExtractConfig{QueueSize: 4}, layout, discardLogger())
		defer extractor.Close()

		svc := newTestService().WithExtractService(extractor)

		res, err := svc.ConvertPDF(context.Background(), []byte("%PDF"), FormatCSV)
		require.NoError(t, err)
		assert.Contains(t, string(res.Output), `2024-03-01,"Coffee",-4.50,DEBIT,"",`)
	})
}
