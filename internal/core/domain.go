package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Meta is the budget classification of a category.
type Meta string

const (
	Needs         Meta = "Needs"
	Wants         Meta = "Wants"
	Savings       Meta = "Savings"
	Uncategorized Meta = "Uncategorized"
)

// MetaAllowed is the closed set a category can be mapped to, in display order.
var MetaAllowed = []Meta{Needs, Wants, Savings}

// BucketStatus is the lifecycle state of a funding bucket.
type BucketStatus string

const (
	StatusFilling  BucketStatus = "filling"
	StatusReady    BucketStatus = "ready"
	StatusSpent    BucketStatus = "spent"
	StatusArchived BucketStatus = "archived"
)

// TimestampLayout is how ledger timestamps are stored and compared.
const TimestampLayout = "2006-01-02 15:04:05"

type (
	Transaction struct {
		ID          int64
		Date        time.Time
		Description string
		Amount      float64 // negative = expense
		Category    string
	}

	Subscription struct {
		ID         int64
		Name       string
		Category   string
		Amount     float64 // always <= 0 once normalized
		DayOfMonth int
		Active     bool
	}

	CategoryMapping struct {
		Category string
		Meta     Meta
	}

	Targets struct {
		Needs   float64
		Wants   float64
		Savings float64
	}

	Bucket struct {
		ID        int64
		Name      string
		Category  string
		Goal      float64
		Current   float64
		Status    BucketStatus
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	PayrollEntry struct {
		ID      int64
		PayDate time.Time
		Gross   float64
		Tax     float64
		K401    float64
		HSA     float64
		ESPP    float64
		Other   float64
		Notes   string
	}
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyCategory  = errors.New("empty category")
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidDay     = errors.New("invalid day")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidMeta    = errors.New("invalid meta")
	ErrTargetsSum     = errors.New("targets must sum to 100")
	ErrInvalidTarget  = errors.New("invalid target percentage")
	ErrInvalidGoal    = errors.New("goal must be greater than zero")
	ErrInvalidIncome  = errors.New("invalid income")
	ErrBucketClosed   = errors.New("bucket is spent or archived")
	ErrInvalidPayroll = errors.New("invalid payroll value")
)

// ValidationError reports rejected user input. Nothing is written when one is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError for field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFound wraps ErrNotFound with the entity and id.
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ParseMeta accepts one of Needs, Wants, Savings.
func ParseMeta(s string) (Meta, error) {
	s = strings.TrimSpace(s)
	for _, m := range MetaAllowed {
		if string(m) == s {
			return m, nil
		}
	}
	return "", Invalid("meta", ErrInvalidMeta)
}

// IsAllowed reports whether m belongs to the closed Needs/Wants/Savings set.
func (m Meta) IsAllowed() bool {
	for _, a := range MetaAllowed {
		if m == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the bucket no longer accepts contributions.
func (s BucketStatus) IsTerminal() bool {
	return s == StatusSpent || s == StatusArchived
}

// IsValid reports whether s is one of the four declared statuses.
func (s BucketStatus) IsValid() bool {
	switch s {
	case StatusFilling, StatusReady, StatusSpent, StatusArchived:
		return true
	}
	return false
}

// Validate checks a subscription after normalization.
func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if strings.TrimSpace(s.Category) == "" {
		return Invalid("category", ErrEmptyCategory)
	}
	if math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) {
		return Invalid("amount", ErrInvalidAmount)
	}
	if s.DayOfMonth < 1 || s.DayOfMonth > 31 {
		return Invalid("day_of_month", ErrInvalidDay)
	}
	return nil
}

// Sum returns needs + wants + savings.
func (t Targets) Sum() float64 {
	return t.Needs + t.Wants + t.Savings
}

// Percent returns the target percentage for m, 0 for Uncategorized.
func (t Targets) Percent(m Meta) float64 {
	switch m {
	case Needs:
		return t.Needs
	case Wants:
		return t.Wants
	case Savings:
		return t.Savings
	}
	return 0
}

// DefaultTargets is the 50/30/20 split seeded into a fresh store.
func DefaultTargets() Targets {
	return Targets{Needs: 50, Wants: 30, Savings: 20}
}
