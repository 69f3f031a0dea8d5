// Package ofx parses OFX/QFX statement files, both the unclosed-tag SGML
// dialect (OFX 1.x) and the well-formed XML dialect (OFX 2.x), into a
// structured account/transaction model. Parsing never fails: malformed
// input produces empty or partial results, and unparseable fields are
// carried through unchanged rather than dropped.
package ofx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/statement-converter/pkg/money"
)

type dialect int

const (
	dialectSGML dialect = iota
	dialectXML
)

// knownTags is the full set of tags the parser reads. Extraction patterns
// are precompiled per dialect for each of them.
var knownTags = []string{
	"DTSERVER", "LANGUAGE",
	"DTPOSTED", "TRNTYPE", "TRNAMT", "FITID", "NAME", "PAYEE", "MEMO",
	"CHECKNUM", "REFNUM",
	"BANKID", "ACCTID", "ACCTTYPE", "CURDEF",
	"BALAMT", "DTASOF",
}

var (
	sgmlPatterns = make(map[string]*regexp.Regexp, len(knownTags))
	xmlPatterns  = make(map[string]*regexp.Regexp, len(knownTags))

	dateShape = regexp.MustCompile(`^\d{8}$`)
	tzSuffix  = regexp.MustCompile(`\[[^\]]*\]$`)
)

func init() {
	for _, tag := range knownTags {
		// SGML: value runs to the next tag or end of line.
		sgmlPatterns[tag] = regexp.MustCompile(`<` + tag + `>([^<\r\n]*)`)
		// XML: value runs to the explicit closing tag.
		xmlPatterns[tag] = regexp.MustCompile(`(?s)<` + tag + `>(.*?)</` + tag + `>`)
	}
}

// Parse reads raw OFX/QFX text and returns the structured statement data.
// It never returns an error: files with no recognizable accounts yield an
// empty Accounts slice, and the caller decides how to surface that.
func Parse(raw string) *Data {
	d := detectDialect(raw)

	data := &Data{
		ServerDate: parseDate(extractValue(raw, "DTSERVER", d)),
		Language:   extractValue(raw, "LANGUAGE", d),
	}

	for _, block := range scanBlocks(raw, "STMTRS") {
		if acct, ok := parseBankAccount(block, d); ok {
			data.Accounts = append(data.Accounts, acct)
		}
	}
	for _, block := range scanBlocks(raw, "CCSTMTRS") {
		if acct, ok := parseCardAccount(block, d); ok {
			data.Accounts = append(data.Accounts, acct)
		}
	}

	return data
}

// detectDialect checks for an XML processing instruction at the start of
// the content. Whichever dialect is detected governs extraction for the
// whole document; mixed-dialect files are not supported.
func detectDialect(content string) dialect {
	head := strings.ToLower(strings.TrimLeft(content, " \t\r\n\ufeff"))
	if strings.HasPrefix(head, "<?xml") || strings.HasPrefix(head, "<?ofx") {
		return dialectXML
	}
	return dialectSGML
}

// extractValue returns the first trimmed value of the tag within block, or
// the empty string when the tag is absent. Downstream logic treats empty
// string as "absent"; it never sees a nil.
func extractValue(block, tag string, d dialect) string {
	patterns := sgmlPatterns
	if d == dialectXML {
		patterns = xmlPatterns
	}
	re, ok := patterns[tag]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// parseDate converts an OFX timestamp (YYYYMMDD[HHMMSS][tz-bracket]) to
// YYYY-MM-DD. Malformed values come back unmodified: statement files in
// the wild carry dates this parser must not choke on.
func parseDate(raw string) string {
	if raw == "" {
		return raw
	}

	s := tzSuffix.ReplaceAllString(raw, "")
	if len(s) < 8 {
		return raw
	}

	head := s[:8]
	if !dateShape.MatchString(head) {
		return raw
	}

	year, _ := strconv.Atoi(head[:4])
	month, _ := strconv.Atoi(head[4:6])
	day, _ := strconv.Atoi(head[6:8])
	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return raw
	}

	return fmt.Sprintf("%s-%s-%s", head[:4], head[4:6], head[6:8])
}

// scanBlocks returns the inner text of every block opened by tag. A block
// runs from the opening tag to the first of: the matching closing tag, the
// next same-kind opening tag, any extra terminator, or end of input. OFX
// 1.x gives no nesting guarantees, so this sibling-or-EOF fallback is a
// deliberate heuristic, not an attempt at true nested parsing.
func scanBlocks(content, tag string, terminators ...string) []string {
	open := "<" + tag + ">"
	closing := "</" + tag + ">"
	stops := append([]string{open, closing}, terminators...)

	var blocks []string
	rest := content
	for {
		start := strings.Index(rest, open)
		if start < 0 {
			break
		}
		body := rest[start+len(open):]

		end := len(body)
		for _, stop := range stops {
			if idx := strings.Index(body, stop); idx >= 0 && idx < end {
				end = idx
			}
		}

		blocks = append(blocks, body[:end])

		rest = body[end:]
		if strings.HasPrefix(rest, closing) {
			rest = rest[len(closing):]
		}
	}
	return blocks
}

func parseBankAccount(block string, d dialect) (Account, bool) {
	acct := Account{
		BankID:      extractValue(block, "BANKID", d),
		AccountID:   extractValue(block, "ACCTID", d),
		AccountType: mapAccountType(extractValue(block, "ACCTTYPE", d)),
		Currency:    currencyOrDefault(extractValue(block, "CURDEF", d)),
	}
	// An account block without an account ID is noise, not an error.
	if acct.AccountID == "" {
		return acct, false
	}

	acct.Transactions = parseTransactions(block, d)
	parseLedgerBalance(&acct, block, d)
	return acct, true
}

func parseCardAccount(block string, d dialect) (Account, bool) {
	acct := Account{
		AccountID:   extractValue(block, "ACCTID", d),
		AccountType: AccountCreditCard,
		Currency:    currencyOrDefault(extractValue(block, "CURDEF", d)),
	}
	if acct.AccountID == "" {
		return acct, false
	}

	acct.Transactions = parseTransactions(block, d)
	parseLedgerBalance(&acct, block, d)
	return acct, true
}

func parseTransactions(block string, d dialect) []Transaction {
	var txns []Transaction
	for _, body := range scanBlocks(block, "STMTTRN", "</BANKTRANLIST>", "</CCSTMTTRNRS>") {
		if tx, ok := parseTransaction(body, d); ok {
			txns = append(txns, tx)
		}
	}
	return txns
}

func parseTransaction(block string, d dialect) (Transaction, bool) {
	tx := Transaction{
		Date:     parseDate(extractValue(block, "DTPOSTED", d)),
		FitID:    extractValue(block, "FITID", d),
		Memo:     extractValue(block, "MEMO", d),
		CheckNum: extractValue(block, "CHECKNUM", d),
		RefNum:   extractValue(block, "REFNUM", d),
	}

	// Keep only entries with at least one identifying field.
	if tx.FitID == "" && tx.Date == "" {
		return tx, false
	}

	tx.Amount = money.ParseAmountOrZero(extractValue(block, "TRNAMT", d))
	tx.Type = inferType(extractValue(block, "TRNTYPE", d), tx)
	tx.Name = coalesce(
		extractValue(block, "NAME", d),
		extractValue(block, "PAYEE", d),
		tx.Memo,
		"Unknown",
	)
	return tx, true
}

// inferType maps an explicit TRNTYPE code when present, else falls back to
// the sign of the amount. An explicit code wins even when it contradicts
// the sign.
func inferType(code string, tx Transaction) TxnType {
	switch strings.ToUpper(code) {
	case "CREDIT", "DEP", "INT":
		return TxnCredit
	case "DEBIT", "CHECK", "PAYMENT":
		return TxnDebit
	}

	switch tx.Amount.Sign() {
	case 1:
		return TxnCredit
	case -1:
		return TxnDebit
	default:
		return TxnOther
	}
}

func parseLedgerBalance(acct *Account, block string, d dialect) {
	ledgers := scanBlocks(block, "LEDGERBAL")
	if len(ledgers) == 0 {
		return
	}

	ledger := ledgers[0]
	if raw := extractValue(ledger, "BALAMT", d); raw != "" {
		if bal, err := money.ParseAmount(raw); err == nil {
			acct.Balance = &bal
		}
	}
	acct.BalanceDate = parseDate(extractValue(ledger, "DTASOF", d))
}

func mapAccountType(raw string) AccountType {
	switch strings.ToUpper(raw) {
	case "CHECKING":
		return AccountChecking
	case "SAVINGS":
		return AccountSavings
	default:
		return AccountOther
	}
}

func currencyOrDefault(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return money.DefaultCurrency
	}
	return code
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
