package core

import (
	"math"
	"strings"
)

// TransactionFilter selects transactions by description substring, category
// substring and exact amount. The set criteria are OR-ed unless MatchAll is
// true. A filter with no criteria matches every transaction.
type TransactionFilter struct {
	Description string
	Category    string
	Amount      *float64
	MatchAll    bool
}

// Normalize trims the text criteria and turns the amount into the stored
// expense form, so searching 12.34 finds the -12.34 on record.
func (f TransactionFilter) Normalize() (TransactionFilter, error) {
	out := TransactionFilter{
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		MatchAll:    f.MatchAll,
	}
	if f.Amount != nil {
		if math.IsNaN(*f.Amount) || math.IsInf(*f.Amount, 0) {
			return TransactionFilter{}, Invalid("amount", ErrInvalidAmount)
		}
		amount := NormalizeExpense(*f.Amount)
		out.Amount = &amount
	}
	return out, nil
}

// IsEmpty reports whether no criterion is set.
func (f TransactionFilter) IsEmpty() bool {
	return f.Description == "" && f.Category == "" && f.Amount == nil
}
