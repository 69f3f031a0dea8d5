// Package convert orchestrates statement conversion: it sniffs the input
// kind, parses it into the canonical account model and dispatches to the
// requested serializer.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/statement-converter/internal/domain/export"
	"github.com/FACorreiaa/statement-converter/internal/domain/extract"
	"github.com/FACorreiaa/statement-converter/internal/domain/ofx"
	"github.com/FACorreiaa/statement-converter/internal/domain/stats"
	"github.com/FACorreiaa/statement-converter/internal/domain/tabular"
	"github.com/FACorreiaa/statement-converter/pkg/config"
	"github.com/FACorreiaa/statement-converter/pkg/money"
)

// Format names an output serializer.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatQBO  Format = "qbo"
	FormatQIF  Format = "qif"
	FormatXLSX Format = "xlsx"
)

// InputKind is the detected kind of an uploaded statement.
type InputKind string

const (
	InputOFX InputKind = "ofx"
	InputCSV InputKind = "csv"
)

var (
	// ErrNoData means the input parsed but yielded no transactions.
	ErrNoData = errors.New("no transactions found in input")
	// ErrUnknownFormat means the requested output format is not supported.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrNoExtractor means a PDF conversion was requested without an
	// extraction service wired in.
	ErrNoExtractor = errors.New("no extraction service configured")
)

// Result is the outcome of a conversion: the canonical accounts, their
// aggregate statistics and the serialized output.
type Result struct {
	Kind     InputKind
	Accounts []ofx.Account
	Summary  stats.Summary
	Output   []byte
}

// Service orchestrates parsing and serialization.
type Service struct {
	cfg       config.ExportConfig
	qbo       *export.QBOWriter
	extractor *extract.Service // Optional: nil if PDF extraction not available
	logger    *slog.Logger
}

func NewService(cfg config.ExportConfig, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		qbo:    export.NewQBOWriter(cfg),
		logger: logger,
	}
}

// WithExtractService adds PDF table extraction support.
func (s *Service) WithExtractService(extractor *extract.Service) *Service {
	s.extractor = extractor
	return s
}

// DetectInputKind sniffs whether the payload is an OFX/QFX statement or a
// CSV export. OFX is recognized by its header or envelope markers; anything
// else is treated as CSV.
func DetectInputKind(data []byte) InputKind {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	switch {
	case bytes.Contains(head, []byte("OFXHEADER")),
		bytes.Contains(head, []byte("<OFX>")),
		bytes.HasPrefix(trimmed, []byte("<?xml")),
		bytes.HasPrefix(trimmed, []byte("<?OFX")):
		return InputOFX
	default:
		return InputCSV
	}
}

// Convert parses a statement payload and serializes it into the requested
// format.
func (s *Service) Convert(ctx context.Context, input []byte, format Format) (*Result, error) {
	kind := DetectInputKind(input)

	var accounts []ofx.Account
	switch kind {
	case InputOFX:
		data := ofx.Parse(string(input))
		accounts = data.Accounts
	case InputCSV:
		acct, err := s.readCSVStatement(input)
		if err != nil {
			return nil, fmt.Errorf("reading csv statement: %w", err)
		}
		accounts = []ofx.Account{acct}
	}

	all := flatten(accounts)
	if len(all) == 0 {
		s.logger.Warn("conversion produced no transactions", "kind", kind, "size", len(input))
		return nil, ErrNoData
	}

	out, err := s.serialize(accounts, all, format)
	if err != nil {
		return nil, err
	}

	s.logger.Info("converted statement",
		"kind", kind, "format", format,
		"accounts", len(accounts), "transactions", len(all))

	return &Result{
		Kind:     kind,
		Accounts: accounts,
		Summary:  stats.Summarize(all),
		Output:   out,
	}, nil
}

// ConvertTable serializes an already-extracted table. The table is
// financially normalized first, then mapped onto the canonical transaction
// model for the transaction-oriented formats. XLSX keeps the table shape
// as-is.
func (s *Service) ConvertTable(table *tabular.TableData, format Format) (*Result, error) {
	normalized := tabular.NormalizeFinancialData(table)

	if format == FormatXLSX {
		out, err := export.TableXLSX(normalized)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: InputCSV, Output: out}, nil
	}

	txns := TransactionsFromTable(normalized)
	if len(txns) == 0 {
		return nil, ErrNoData
	}
	acct := s.syntheticAccount(txns)
	accounts := []ofx.Account{acct}

	out, err := s.serialize(accounts, txns, format)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:     InputCSV,
		Accounts: accounts,
		Summary:  stats.Summarize(txns),
		Output:   out,
	}, nil
}

// ConvertPDF runs the extraction service on a PDF payload and serializes
// the extracted table. Requires WithExtractService.
func (s *Service) ConvertPDF(ctx context.Context, pdf []byte, format Format) (*Result, error) {
	if s.extractor == nil {
		return nil, ErrNoExtractor
	}
	table, err := s.extractor.Extract(ctx, pdf, extract.StrategySpatial, nil)
	if err != nil {
		return nil, fmt.Errorf("extracting table: %w", err)
	}
	return s.ConvertTable(table, format)
}

func (s *Service) serialize(accounts []ofx.Account, all []ofx.Transaction, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return []byte(export.TransactionsCSV(all)), nil
	case FormatQBO:
		if len(accounts) > 1 {
			s.logger.Warn("qbo export carries only the first account", "accounts", len(accounts))
		}
		return []byte(s.qbo.Serialize(accounts[0])), nil
	case FormatQIF:
		var b strings.Builder
		for _, acct := range accounts {
			b.WriteString(export.QIF(acct))
		}
		return []byte(b.String()), nil
	case FormatXLSX:
		return export.TableXLSX(transactionTable(all))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (s *Service) syntheticAccount(txns []ofx.Transaction) ofx.Account {
	return ofx.Account{
		AccountID:    "1",
		AccountType:  ofx.AccountChecking,
		Currency:     money.NormalizeCurrency(s.cfg.DefaultCurrency),
		Transactions: txns,
	}
}

func flatten(accounts []ofx.Account) []ofx.Transaction {
	var all []ofx.Transaction
	for _, acct := range accounts {
		all = append(all, acct.Transactions...)
	}
	return all
}

// transactionTable lays transactions out as a table mirroring the CSV
// serializer's columns, for spreadsheet export.
func transactionTable(txns []ofx.Transaction) *tabular.TableData {
	headers := []string{"Date", "Description", "Amount", "Type", "Memo", "Reference"}
	rows := make([]tabular.Row, 0, len(txns))
	for _, tx := range txns {
		rows = append(rows, tabular.Row{
			"Date":        tx.Date,
			"Description": tx.Name,
			"Amount":      money.Format(tx.Amount),
			"Type":        string(tx.Type),
			"Memo":        tx.Memo,
			"Reference":   tx.FitID,
		})
	}
	return &tabular.TableData{Headers: headers, Rows: rows, Confidence: 1}
}
