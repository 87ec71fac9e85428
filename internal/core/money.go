// Package core holds the ledger domain types and the pure rules over them.
//
// Amounts are stored as signed float64 values; parsing goes through
// shopspring/decimal so that "0.1+0.2" style inputs sum without drift.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountTolerance is the tolerance used when comparing stored amounts.
const AmountTolerance = 1e-9

// NormalizeExpense returns -abs(raw). It is idempotent and applied at every
// boundary where an amount enters the ledger.
func NormalizeExpense(raw float64) float64 {
	return -math.Abs(raw)
}

// AmountsEqual compares two amounts within AmountTolerance.
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) <= AmountTolerance
}

// AddAmounts returns a+b summed in decimal, so 0.3+0.6 is exactly 0.9.
func AddAmounts(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

// ParseAmount parses a user-entered number. Both dot (12.34) and comma (12,34)
// decimal separators are accepted. The sign is preserved; callers normalize.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// ParseSumField parses inputs like "14.27+4.28+17.02": whitespace is removed,
// the string is split on '+' and every token summed. An empty string is 0.
// Any token that is not a number fails the whole field.
func ParseSumField(raw string) (float64, error) {
	s := strings.Join(strings.Fields(raw), "")
	if s == "" {
		return 0, nil
	}
	total := decimal.Zero
	for _, tok := range strings.Split(s, "+") {
		d, err := decimal.NewFromString(tok)
		if err != nil {
			return 0, ErrInvalidPayroll
		}
		total = total.Add(d)
	}
	f, _ := total.Float64()
	return f, nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
