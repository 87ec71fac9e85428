package core

import (
	"math"
	"strings"
	"time"
)

// BucketView is a bucket as presented: meta is resolved through the
// category mapping at read time and never stored on the bucket.
type BucketView struct {
	Bucket
	Meta        Meta
	ProgressPct float64
}

// BucketTotals sums goal and current of the open buckets per meta.
type BucketTotals struct {
	ByMeta  map[Meta]BucketSum
	Goal    float64
	Current float64
}

// BucketSum is the goal/current pair of a group of buckets.
type BucketSum struct {
	Goal    float64 `json:"goal"`
	Current float64 `json:"current"`
	Count   int     `json:"count"`
}

// NewBucket validates input and returns a bucket in filling with current=0.
func NewBucket(name, category string, goal float64, now time.Time) (Bucket, error) {
	b := Bucket{
		Name:      strings.TrimSpace(name),
		Category:  strings.TrimSpace(category),
		Goal:      goal,
		Current:   0,
		Status:    StatusFilling,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateBucketFields(b.Name, b.Category, goal); err != nil {
		return Bucket{}, err
	}
	return b, nil
}

func validateBucketFields(name, category string, goal float64) error {
	if name == "" {
		return Invalid("name", ErrEmptyName)
	}
	if category == "" {
		return Invalid("category", ErrEmptyCategory)
	}
	if math.IsNaN(goal) || math.IsInf(goal, 0) || goal <= 0 {
		return Invalid("goal", ErrInvalidGoal)
	}
	return nil
}

// Contribute adds amount to current and promotes the bucket to ready once the
// goal is reached. Spent and archived buckets reject contributions.
func (b Bucket) Contribute(amount float64, now time.Time) (Bucket, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return b, Invalid("amount", ErrInvalidAmount)
	}
	if b.Status.IsTerminal() {
		return b, Invalid("status", ErrBucketClosed)
	}
	b.Current = AddAmounts(b.Current, amount)
	b.promote()
	b.UpdatedAt = now
	return b, nil
}

// Edit replaces name, category and goal. The status is only ever moved
// forward to ready; raising the goal above current leaves a ready bucket ready.
func (b Bucket) Edit(name, category string, goal float64, now time.Time) (Bucket, error) {
	name, category = strings.TrimSpace(name), strings.TrimSpace(category)
	if err := validateBucketFields(name, category, goal); err != nil {
		return b, err
	}
	b.Name, b.Category, b.Goal = name, category, goal
	b.promote()
	b.UpdatedAt = now
	return b, nil
}

// Spend empties the bucket and archives it, whatever its status.
func (b Bucket) Spend(now time.Time) Bucket {
	b.Current = 0
	b.Status = StatusArchived
	b.UpdatedAt = now
	return b
}

// promote treats a current within AmountTolerance of the goal as reached.
func (b *Bucket) promote() {
	if !b.Status.IsTerminal() && b.Goal > 0 && b.Current >= b.Goal-AmountTolerance {
		b.Status = StatusReady
	}
}

// ProgressPct is min(100, round(current/goal*100, 2)), 0 when goal <= 0.
func (b Bucket) ProgressPct() float64 {
	if b.Goal <= 0 {
		return 0
	}
	return math.Min(100, Round2(b.Current/b.Goal*100))
}

// ViewBuckets attaches meta and progress to each bucket.
func ViewBuckets(buckets []Bucket, mapping map[string]Meta) []BucketView {
	views := make([]BucketView, 0, len(buckets))
	for _, b := range buckets {
		views = append(views, BucketView{
			Bucket:      b,
			Meta:        MetaFor(b.Category, mapping),
			ProgressPct: b.ProgressPct(),
		})
	}
	return views
}

// TotalBuckets sums the non-terminal buckets per meta.
func TotalBuckets(views []BucketView) BucketTotals {
	totals := BucketTotals{ByMeta: map[Meta]BucketSum{}}
	for _, v := range views {
		if v.Status.IsTerminal() {
			continue
		}
		sum := totals.ByMeta[v.Meta]
		sum.Goal += v.Goal
		sum.Current += v.Current
		sum.Count++
		totals.ByMeta[v.Meta] = sum
		totals.Goal += v.Goal
		totals.Current += v.Current
	}
	return totals
}
