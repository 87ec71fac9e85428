package core

import (
	"math"
	"sort"
	"strings"
)

// CategoryTotal is a per-category figure, net or spend depending on context.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// ChartSeries is a labels/values pair ready for a pie chart.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Aggregation holds the derived monthly figures for a set of transactions.
type Aggregation struct {
	NetByCategory   []CategoryTotal
	SpendByCategory []CategoryTotal
	MetaTotals      map[Meta]float64
	MonthTotal      float64
}

// categoryKey is the grouping key of a transaction category.
func categoryKey(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return string(Uncategorized)
	}
	return c
}

// MetaFor resolves the meta of a category through mapping. Missing or
// out-of-set values fall into Uncategorized.
func MetaFor(category string, mapping map[string]Meta) Meta {
	if m, ok := mapping[category]; ok && m.IsAllowed() {
		return m
	}
	return Uncategorized
}

// Aggregate computes net totals, spend magnitudes, meta totals and the month
// total. Callers pass transactions already restricted to the month bounds.
func Aggregate(txs []Transaction, mapping map[string]Meta) Aggregation {
	net := map[string]float64{}
	spend := map[string]float64{}
	for _, tx := range txs {
		key := categoryKey(tx.Category)
		net[key] += tx.Amount
		spend[key] += math.Max(0, -tx.Amount)
	}

	agg := Aggregation{
		MetaTotals: map[Meta]float64{Needs: 0, Wants: 0, Savings: 0, Uncategorized: 0},
	}
	for _, cat := range sortedCategories(net) {
		agg.NetByCategory = append(agg.NetByCategory, CategoryTotal{Category: cat, Amount: net[cat]})
		agg.MonthTotal += net[cat]
	}
	for _, cat := range sortedCategories(spend) {
		amt := spend[cat]
		agg.SpendByCategory = append(agg.SpendByCategory, CategoryTotal{Category: cat, Amount: amt})
		agg.MetaTotals[MetaFor(cat, mapping)] += amt
	}
	return agg
}

// sortedCategories orders keys by name with Uncategorized last.
func sortedCategories(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ui, uj := keys[i] == string(Uncategorized), keys[j] == string(Uncategorized)
		if ui != uj {
			return uj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// SpendTotal sums the spend magnitudes across all categories.
func (a Aggregation) SpendTotal() float64 {
	var total float64
	for _, c := range a.SpendByCategory {
		total += c.Amount
	}
	return total
}

// MetaSeries returns the non-zero meta totals in Needs, Wants, Savings,
// Uncategorized order.
func (a Aggregation) MetaSeries() ChartSeries {
	s := ChartSeries{Labels: []string{}, Values: []float64{}}
	for _, m := range append(append([]Meta{}, MetaAllowed...), Uncategorized) {
		if v := a.MetaTotals[m]; v > 0 {
			s.Labels = append(s.Labels, string(m))
			s.Values = append(s.Values, Round2(v))
		}
	}
	return s
}

// CategorySeries returns the non-zero spend magnitudes per category.
func (a Aggregation) CategorySeries() ChartSeries {
	s := ChartSeries{Labels: []string{}, Values: []float64{}}
	for _, c := range a.SpendByCategory {
		if c.Amount > 0 {
			s.Labels = append(s.Labels, c.Category)
			s.Values = append(s.Values, Round2(c.Amount))
		}
	}
	return s
}
