package ofx

import "github.com/shopspring/decimal"

// TxnType classifies a transaction as money in, money out, or neither.
type TxnType string

const (
	TxnCredit TxnType = "CREDIT"
	TxnDebit  TxnType = "DEBIT"
	TxnOther  TxnType = "OTHER"
)

// AccountType identifies the kind of statement an account came from.
type AccountType string

const (
	AccountChecking   AccountType = "CHECKING"
	AccountSavings    AccountType = "SAVINGS"
	AccountCreditCard AccountType = "CREDITCARD"
	AccountOther      AccountType = "OTHER"
)

// Transaction is one ledger entry parsed from a statement.
// Date is either canonical YYYY-MM-DD or the original source text when the
// source value could not be parsed. The sign of Amount is the source of
// truth for direction; Type is advisory when an explicit TRNTYPE overrode
// sign inference.
type Transaction struct {
	Date     string
	Amount   decimal.Decimal
	Type     TxnType
	Name     string
	Memo     string
	FitID    string
	CheckNum string
	RefNum   string
}

// Account is one bank or credit-card statement container.
// Transactions preserve source document order. Balance is nil when the
// statement carried no ledger balance block.
type Account struct {
	BankID       string
	AccountID    string
	AccountType  AccountType
	Currency     string
	Transactions []Transaction
	Balance      *decimal.Decimal
	BalanceDate  string
}

// Data is the top-level parse result. A single file may carry several
// accounts of different types, e.g. one bank and one credit-card statement.
type Data struct {
	Accounts   []Account
	ServerDate string
	Language   string
}
