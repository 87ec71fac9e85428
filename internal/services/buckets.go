package services

import (
	"context"
	"fmt"
	"strings"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// optionalMeta parses a meta passed alongside a bucket. Empty means "leave the
// mapping alone".
func optionalMeta(meta string) (core.Meta, bool, error) {
	if strings.TrimSpace(meta) == "" {
		return "", false, nil
	}
	m, err := core.ParseMeta(meta)
	if err != nil {
		return "", false, err
	}
	return m, true, nil
}

// CreateBucket opens a bucket in filling. A non-empty meta upserts the
// mapping of the bucket's category in the same transaction.
func (l *Ledger) CreateBucket(ctx context.Context, name, category string, goal float64, meta string) (core.Bucket, error) {
	b, err := core.NewBucket(name, category, goal, l.now())
	if err != nil {
		return core.Bucket{}, err
	}
	m, hasMeta, err := optionalMeta(meta)
	if err != nil {
		return core.Bucket{}, err
	}

	var created core.Bucket
	err = l.store.InTx(ctx, func(s storage.Store) error {
		if hasMeta {
			if err := s.UpsertCategoryMeta(ctx, b.Category, m); err != nil {
				return err
			}
		}
		created, err = s.CreateBucket(ctx, b)
		return err
	})
	if err != nil {
		return core.Bucket{}, fmt.Errorf("create bucket: %w", err)
	}

	l.logger.InfoContext(ctx, "Bucket created",
		log.FieldOperation, log.OpCreate,
		log.FieldBucketID, created.ID,
		"name", created.Name,
		"goal", created.Goal)
	l.publish(ctx, amqp.NewLedgerEvent(amqp.EventBucketUpdated, created.ID))
	return created, nil
}

// mutateBucket loads, transforms and saves a bucket inside one transaction.
func (l *Ledger) mutateBucket(ctx context.Context, id int64, fn func(core.Bucket) (core.Bucket, error)) (core.Bucket, error) {
	var out core.Bucket
	err := l.store.InTx(ctx, func(s storage.Store) error {
		b, err := s.GetBucket(ctx, id)
		if err != nil {
			return err
		}
		b, err = fn(b)
		if err != nil {
			return err
		}
		if err := s.UpdateBucket(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return core.Bucket{}, err
	}
	l.publish(ctx, amqp.NewLedgerEvent(amqp.EventBucketUpdated, out.ID))
	return out, nil
}

// ContributeBucket adds amount (> 0) and promotes to ready once the goal is met.
func (l *Ledger) ContributeBucket(ctx context.Context, id int64, amount float64) (core.Bucket, error) {
	b, err := l.mutateBucket(ctx, id, func(b core.Bucket) (core.Bucket, error) {
		return b.Contribute(amount, l.now())
	})
	if err != nil {
		return core.Bucket{}, fmt.Errorf("contribute to bucket: %w", err)
	}
	l.logger.InfoContext(ctx, "Bucket contribution",
		log.FieldBucketID, id,
		log.FieldAmount, amount,
		"current", b.Current,
		"status", b.Status)
	return b, nil
}

// SpendBucket empties and archives the bucket regardless of its status.
func (l *Ledger) SpendBucket(ctx context.Context, id int64) (core.Bucket, error) {
	b, err := l.mutateBucket(ctx, id, func(b core.Bucket) (core.Bucket, error) {
		return b.Spend(l.now()), nil
	})
	if err != nil {
		return core.Bucket{}, fmt.Errorf("spend bucket: %w", err)
	}
	l.logger.InfoContext(ctx, "Bucket spent", log.FieldBucketID, id)
	return b, nil
}

// EditBucket replaces name, category and goal. A non-empty meta upserts the
// mapping of the new category.
func (l *Ledger) EditBucket(ctx context.Context, id int64, name, category string, goal float64, meta string) (core.Bucket, error) {
	m, hasMeta, err := optionalMeta(meta)
	if err != nil {
		return core.Bucket{}, err
	}
	var out core.Bucket
	err = l.store.InTx(ctx, func(s storage.Store) error {
		b, err := s.GetBucket(ctx, id)
		if err != nil {
			return err
		}
		b, err = b.Edit(name, category, goal, l.now())
		if err != nil {
			return err
		}
		if hasMeta {
			if err := s.UpsertCategoryMeta(ctx, b.Category, m); err != nil {
				return err
			}
		}
		if err := s.UpdateBucket(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return core.Bucket{}, fmt.Errorf("edit bucket: %w", err)
	}
	l.logger.InfoContext(ctx, "Bucket edited", log.FieldOperation, log.OpUpdate, log.FieldBucketID, id, "status", out.Status)
	l.publish(ctx, amqp.NewLedgerEvent(amqp.EventBucketUpdated, id))
	return out, nil
}

// DeleteBucket removes the bucket unconditionally. Missing ids return false.
func (l *Ledger) DeleteBucket(ctx context.Context, id int64) (bool, error) {
	ok, err := l.store.DeleteBucket(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete bucket: %w", err)
	}
	if ok {
		l.logger.InfoContext(ctx, "Bucket deleted", log.FieldOperation, log.OpDelete, log.FieldBucketID, id)
		l.publish(ctx, amqp.NewLedgerEvent(amqp.EventBucketDeleted, id))
	}
	return ok, nil
}

// ListBuckets returns every bucket with meta and progress resolved.
func (l *Ledger) ListBuckets(ctx context.Context) ([]core.BucketView, error) {
	var (
		buckets []core.Bucket
		mapping map[string]core.Meta
	)
	err := l.store.InTx(ctx, func(s storage.Store) error {
		var err error
		if buckets, err = s.ListBuckets(ctx); err != nil {
			return err
		}
		mapping, err = s.CategoryMappings(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return core.ViewBuckets(buckets, mapping), nil
}
