package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// SubscriptionPrefix marks transactions materialized from a subscription.
const SubscriptionPrefix = "SUB: "

// ApplySubscriptions inserts one transaction per active subscription into
// month and returns how many were inserted. A subscription already present on
// its day (same description, category and amount) is skipped, so reapplying
// returns 0. The check and the insert share one transaction.
func (l *Ledger) ApplySubscriptions(ctx context.Context, month string) (int, error) {
	first, err := core.ParseMonth(month)
	if err != nil {
		return 0, err
	}

	var inserted []core.Transaction
	err = l.store.InTx(ctx, func(s storage.Store) error {
		subs, err := s.ListSubscriptions(ctx, true)
		if err != nil {
			return fmt.Errorf("get active subscriptions: %w", err)
		}

		l.logger.InfoContext(ctx, "Applying subscriptions",
			log.FieldMonth, month,
			"total_active", len(subs))

		for _, sub := range subs {
			day, err := core.ClampDay(sub.DayOfMonth, month)
			if err != nil {
				return err
			}
			date := time.Date(first.Year(), first.Month(), day, 12, 0, 0, 0, time.UTC)
			desc := SubscriptionPrefix + sub.Name
			amount := core.NormalizeExpense(sub.Amount)

			exists, err := s.TransactionExists(ctx, date, desc, sub.Category, amount)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			tx, err := s.CreateTransaction(ctx, core.Transaction{
				Date:        date,
				Description: desc,
				Amount:      amount,
				Category:    sub.Category,
			})
			if err != nil {
				return fmt.Errorf("materialize subscription %d: %w", sub.ID, err)
			}
			inserted = append(inserted, tx)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("apply subscriptions: %w", err)
	}

	l.logger.InfoContext(ctx, "Subscription application complete",
		log.FieldOperation, log.OpApply,
		log.FieldMonth, month,
		"inserted", len(inserted))

	for _, tx := range inserted {
		l.publish(ctx, amqp.NewLedgerEvent(amqp.EventTransactionCreated, tx.ID))
	}
	l.publish(ctx, amqp.NewSubscriptionsAppliedEvent(month, len(inserted)))
	return len(inserted), nil
}

func newSubscription(name, category string, amount float64, day int) (core.Subscription, error) {
	s := core.Subscription{
		Name:       strings.TrimSpace(name),
		Category:   strings.TrimSpace(category),
		Amount:     core.NormalizeExpense(amount),
		DayOfMonth: day,
		Active:     true,
	}
	if err := s.Validate(); err != nil {
		return core.Subscription{}, err
	}
	return s, nil
}

// AddSubscription creates an active subscription with a normalized amount.
func (l *Ledger) AddSubscription(ctx context.Context, name, category string, amount float64, day int) (core.Subscription, error) {
	s, err := newSubscription(name, category, amount, day)
	if err != nil {
		return core.Subscription{}, err
	}
	created, err := l.store.CreateSubscription(ctx, s)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}
	l.logger.InfoContext(ctx, "Subscription added",
		"id", created.ID,
		"name", created.Name,
		log.FieldAmount, created.Amount,
		"day_of_month", created.DayOfMonth)
	return created, nil
}

// UpdateSubscription edits name, category, amount and day. The active flag is kept.
func (l *Ledger) UpdateSubscription(ctx context.Context, id int64, name, category string, amount float64, day int) (core.Subscription, error) {
	s, err := newSubscription(name, category, amount, day)
	if err != nil {
		return core.Subscription{}, err
	}
	s.ID = id

	var updated core.Subscription
	err = l.store.InTx(ctx, func(st storage.Store) error {
		ok, err := st.UpdateSubscription(ctx, s)
		if err != nil {
			return err
		}
		if !ok {
			return core.NotFound("subscription", id)
		}
		updated, err = st.GetSubscription(ctx, id)
		return err
	})
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	return updated, nil
}

// ToggleSubscription flips the active flag. Missing ids return false.
func (l *Ledger) ToggleSubscription(ctx context.Context, id int64) (bool, error) {
	ok, err := l.store.ToggleSubscription(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	return ok, nil
}

// DeleteSubscription removes the template. Past materializations stay.
func (l *Ledger) DeleteSubscription(ctx context.Context, id int64) (bool, error) {
	ok, err := l.store.DeleteSubscription(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	return ok, nil
}

func (l *Ledger) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	subs, err := l.store.ListSubscriptions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}
