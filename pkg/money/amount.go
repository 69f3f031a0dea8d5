// Package money provides precise amount parsing and formatting for the
// conversion pipeline. It uses shopspring/decimal for arithmetic and
// go-money for ISO-4217 currency metadata.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a statement carries no currency code.
const DefaultCurrency = "USD"

// NormalizeNumeric strips display noise from a numeric string: currency
// symbols, thousands commas, and accounting-style parentheses for negatives.
// "(1,234.56)" becomes "-1234.56". The input is returned trimmed but
// otherwise untouched when it carries none of these decorations.
func NormalizeNumeric(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSpace(s[1:len(s)-1])
	}
	return s
}

// ParseAmount parses a free-form amount string into a decimal value.
// It tolerates currency symbols, thousands separators and parenthesized
// negatives. Returns an error for values that are not numeric at all.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := NormalizeNumeric(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

// ParseAmountOrZero parses like ParseAmount but absorbs failures into a
// zero value. Statement files in the wild carry unparseable amounts; the
// pipeline prefers a zero-amount row over a dropped one.
func ParseAmountOrZero(raw string) decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders a decimal with exactly two fraction digits, the fixed
// precision every textual export format in this module uses.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NormalizeCurrency validates a currency code against ISO-4217 metadata and
// falls back to DefaultCurrency for unknown or empty codes.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	if gomoney.GetCurrency(code) == nil {
		return DefaultCurrency
	}
	return code
}
