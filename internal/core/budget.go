package core

import "math"

// TargetsTolerance is how far from 100 the three percentages may sum.
const TargetsTolerance = 1e-6

// BudgetLine is the planned/actual/remaining figure of one meta bucket.
type BudgetLine struct {
	Name      Meta    `json:"name"`
	Planned   float64 `json:"planned"`
	Actual    float64 `json:"actual"`
	Remaining float64 `json:"remaining"`
}

// ValidateTargets rejects percentages outside [0,100] or not summing to 100.
func ValidateTargets(t Targets) error {
	for _, v := range []float64{t.Needs, t.Wants, t.Savings} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			return Invalid("targets", ErrInvalidTarget)
		}
	}
	if math.Abs(t.Sum()-100) > TargetsTolerance {
		return Invalid("targets", ErrTargetsSum)
	}
	return nil
}

// PlanBudget returns one line per meta in Needs, Wants, Savings order.
// A nil income plans zero everywhere. Remaining is negative on overspend.
func PlanBudget(income *float64, t Targets, metaTotals map[Meta]float64) []BudgetLine {
	lines := make([]BudgetLine, 0, len(MetaAllowed))
	for _, m := range MetaAllowed {
		var planned float64
		if income != nil {
			planned = *income * (t.Percent(m) / 100.0)
		}
		actual := metaTotals[m]
		lines = append(lines, BudgetLine{
			Name:      m,
			Planned:   planned,
			Actual:    actual,
			Remaining: planned - actual,
		})
	}
	return lines
}
