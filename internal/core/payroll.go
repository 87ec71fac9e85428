package core

import (
	"math"
	"strings"
	"time"
)

// PayrollSummary aggregates payroll entries over a period.
type PayrollSummary struct {
	Count int     `json:"count"`
	Gross float64 `json:"gross"`
	Tax   float64 `json:"tax"`
	K401  float64 `json:"k401"`
	HSA   float64 `json:"hsa"`
	ESPP  float64 `json:"espp"`
	Other float64 `json:"other"`
	Net   float64 `json:"net"`
}

// PayrollInput carries raw payroll form fields. Deduction fields accept the
// "a+b+c" sum syntax.
type PayrollInput struct {
	PayDate string
	Gross   string
	Tax     string
	K401    string
	HSA     string
	ESPP    string
	Other   string
	Notes   string
}

// Net is gross minus every deduction. It is derived and never stored.
func (e PayrollEntry) Net() float64 {
	return e.Gross - e.Tax - e.K401 - e.HSA - e.ESPP - e.Other
}

// Validate rejects entries without a pay date or with non-finite or negative
// fields. The first bad field in form order is reported.
func (e PayrollEntry) Validate() error {
	if e.PayDate.IsZero() {
		return Invalid("pay_date", ErrInvalidDate)
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"gross", e.Gross},
		{"tax", e.Tax},
		{"k401", e.K401},
		{"hsa", e.HSA},
		{"espp", e.ESPP},
		{"other", e.Other},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return Invalid(f.name, ErrInvalidPayroll)
		}
	}
	return nil
}

// Parse converts raw fields into an entry. Each numeric field goes through ParseSumField.
func (in PayrollInput) Parse() (PayrollEntry, error) {
	payDate, err := time.Parse("2006-01-02", strings.TrimSpace(in.PayDate))
	if err != nil {
		return PayrollEntry{}, Invalid("pay_date", ErrInvalidDate)
	}
	entry := PayrollEntry{PayDate: payDate, Notes: strings.TrimSpace(in.Notes)}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"gross", in.Gross, &entry.Gross},
		{"tax", in.Tax, &entry.Tax},
		{"k401", in.K401, &entry.K401},
		{"hsa", in.HSA, &entry.HSA},
		{"espp", in.ESPP, &entry.ESPP},
		{"other", in.Other, &entry.Other},
	}
	for _, f := range fields {
		v, err := ParseSumField(f.raw)
		if err != nil {
			return PayrollEntry{}, Invalid(f.name, err)
		}
		*f.dst = v
	}
	return entry, nil
}

// SummarizePayroll sums every field and the derived net across entries.
func SummarizePayroll(entries []PayrollEntry) PayrollSummary {
	var s PayrollSummary
	for _, e := range entries {
		s.Count++
		s.Gross += e.Gross
		s.Tax += e.Tax
		s.K401 += e.K401
		s.HSA += e.HSA
		s.ESPP += e.ESPP
		s.Other += e.Other
		s.Net += e.Net()
	}
	return s
}
