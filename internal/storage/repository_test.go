package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func at(s string) time.Time {
	t, err := time.ParseInLocation(core.TimestampLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMigrationsSeedTargets(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository error = %v", err)
	}
	defer repo.Close()

	targets, err := repo.GetTargets(context.Background())
	if err != nil {
		t.Fatalf("GetTargets error = %v", err)
	}
	if targets != core.DefaultTargets() {
		t.Fatalf("targets = %+v, want 50/30/20", targets)
	}

	// Running again is a no-op.
	if err := RunMigrations(dbPath); err != nil {
		t.Fatalf("second RunMigrations error = %v", err)
	}
	version, dirty, err := SchemaVersion(dbPath)
	if err != nil {
		t.Fatalf("SchemaVersion error = %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("version = %d dirty = %v", version, dirty)
	}
}

func TestTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	inputs := []core.Transaction{
		{Date: at("2099-01-31 23:59:59"), Description: "late", Amount: -1, Category: "Food"},
		{Date: at("2099-02-01 00:00:00"), Description: "first", Amount: -2, Category: "Food"},
		{Date: at("2099-02-10 12:00:00"), Description: "mid", Amount: 30, Category: "Gift"},
		{Date: at("2099-02-28 23:59:59"), Description: "last", Amount: -4, Category: "Rent"},
		{Date: at("2099-03-01 00:00:00"), Description: "next", Amount: -5, Category: "Rent"},
	}
	for _, in := range inputs {
		if _, err := repo.CreateTransaction(ctx, in); err != nil {
			t.Fatalf("CreateTransaction error = %v", err)
		}
	}

	start, end, _ := core.MonthBounds("2099-02")
	got, err := repo.ListTransactions(ctx, start, end)
	if err != nil {
		t.Fatalf("ListTransactions error = %v", err)
	}
	var descs []string
	for _, tx := range got {
		descs = append(descs, tx.Description)
	}
	want := []string{"last", "mid", "first"}
	if len(descs) != len(want) {
		t.Fatalf("got %v, want %v", descs, want)
	}
	for i := range want {
		if descs[i] != want[i] {
			t.Fatalf("got %v, want %v (newest first)", descs, want)
		}
	}

	deleted, err := repo.DeleteTransaction(ctx, got[0].ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteTransaction = %v, %v", deleted, err)
	}
	deleted, err = repo.DeleteTransaction(ctx, got[0].ID)
	if err != nil || deleted {
		t.Fatalf("second DeleteTransaction = %v, %v; want false, nil", deleted, err)
	}
	if _, err := repo.GetTransaction(ctx, got[0].ID); !core.IsNotFound(err) {
		t.Fatalf("GetTransaction after delete = %v, want not found", err)
	}
}

func TestTransactionExists(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		Date: at("2099-02-28 12:00:00"), Description: "SUB: Rent", Amount: -1000, Category: "Housing",
	}); err != nil {
		t.Fatalf("CreateTransaction error = %v", err)
	}

	tests := []struct {
		name     string
		day      time.Time
		desc     string
		category string
		amount   float64
		want     bool
	}{
		{"same day other time", at("2099-02-28 00:00:00"), "SUB: Rent", "Housing", -1000, true},
		{"amount within tolerance", at("2099-02-28 12:00:00"), "SUB: Rent", "Housing", -1000 + 1e-12, true},
		{"other day", at("2099-02-27 12:00:00"), "SUB: Rent", "Housing", -1000, false},
		{"other description", at("2099-02-28 12:00:00"), "SUB: Gym", "Housing", -1000, false},
		{"other category", at("2099-02-28 12:00:00"), "SUB: Rent", "Home", -1000, false},
		{"other amount", at("2099-02-28 12:00:00"), "SUB: Rent", "Housing", -999, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.TransactionExists(ctx, tt.day, tt.desc, tt.category, tt.amount)
			if err != nil {
				t.Fatalf("TransactionExists error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("TransactionExists = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	gym, err := repo.CreateSubscription(ctx, core.Subscription{Name: "Gym", Category: "Health", Amount: -40, DayOfMonth: 5, Active: true})
	if err != nil {
		t.Fatalf("CreateSubscription error = %v", err)
	}
	if _, err := repo.CreateSubscription(ctx, core.Subscription{Name: "Boxing", Category: "Health", Amount: -20, DayOfMonth: 9, Active: false}); err != nil {
		t.Fatalf("CreateSubscription error = %v", err)
	}

	all, err := repo.ListSubscriptions(ctx, false)
	if err != nil || len(all) != 2 || all[0].Name != "Boxing" {
		t.Fatalf("ListSubscriptions = %+v, %v", all, err)
	}
	active, err := repo.ListSubscriptions(ctx, true)
	if err != nil || len(active) != 1 || active[0].ID != gym.ID {
		t.Fatalf("active subscriptions = %+v, %v", active, err)
	}

	ok, err := repo.ToggleSubscription(ctx, gym.ID)
	if err != nil || !ok {
		t.Fatalf("ToggleSubscription = %v, %v", ok, err)
	}
	got, err := repo.GetSubscription(ctx, gym.ID)
	if err != nil || got.Active {
		t.Fatalf("after toggle = %+v, %v", got, err)
	}

	gym.Amount, gym.DayOfMonth = -45, 31
	if ok, err := repo.UpdateSubscription(ctx, gym); err != nil || !ok {
		t.Fatalf("UpdateSubscription = %v, %v", ok, err)
	}
	got, _ = repo.GetSubscription(ctx, gym.ID)
	if got.Amount != -45 || got.DayOfMonth != 31 || got.Active {
		t.Fatalf("after update = %+v", got)
	}

	if ok, _ := repo.ToggleSubscription(ctx, 999); ok {
		t.Fatal("toggle of missing subscription reported true")
	}
	if ok, _ := repo.DeleteSubscription(ctx, gym.ID); !ok {
		t.Fatal("DeleteSubscription reported false")
	}
	if _, err := repo.GetSubscription(ctx, gym.ID); !core.IsNotFound(err) {
		t.Fatalf("GetSubscription after delete = %v", err)
	}
}

func TestCategoryMetaIncomeTargets(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.UpsertCategoryMeta(ctx, "Food", core.Needs); err != nil {
		t.Fatalf("UpsertCategoryMeta error = %v", err)
	}
	if err := repo.UpsertCategoryMeta(ctx, "Food", core.Wants); err != nil {
		t.Fatalf("second UpsertCategoryMeta error = %v", err)
	}
	mapping, err := repo.CategoryMappings(ctx)
	if err != nil || len(mapping) != 1 || mapping["Food"] != core.Wants {
		t.Fatalf("CategoryMappings = %v, %v", mapping, err)
	}
	if ok, _ := repo.DeleteCategoryMeta(ctx, "Food"); !ok {
		t.Fatal("DeleteCategoryMeta reported false")
	}

	income, err := repo.GetIncome(ctx, "2099-02")
	if err != nil || income != nil {
		t.Fatalf("GetIncome without row = %v, %v", income, err)
	}
	_ = repo.SetIncome(ctx, "2099-02", 4000)
	_ = repo.SetIncome(ctx, "2099-02", 4200)
	income, err = repo.GetIncome(ctx, "2099-02")
	if err != nil || income == nil || *income != 4200 {
		t.Fatalf("GetIncome = %v, %v", income, err)
	}

	if err := repo.SetTargets(ctx, core.Targets{Needs: 40, Wants: 40, Savings: 20}); err != nil {
		t.Fatalf("SetTargets error = %v", err)
	}
	targets, _ := repo.GetTargets(ctx)
	if targets != (core.Targets{Needs: 40, Wants: 40, Savings: 20}) {
		t.Fatalf("targets = %+v", targets)
	}
}

func TestBucketsAndInTx(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := at("2099-01-05 08:00:00")

	nb, _ := core.NewBucket("Vacation", "Travel", 100, now)
	b, err := repo.CreateBucket(ctx, nb)
	if err != nil {
		t.Fatalf("CreateBucket error = %v", err)
	}
	if b.ID == 0 || b.Status != core.StatusFilling || !b.CreatedAt.Equal(now) {
		t.Fatalf("created bucket = %+v", b)
	}

	// A failing transaction leaves the row untouched.
	boom := errors.New("boom")
	err = repo.InTx(ctx, func(s Store) error {
		cur, err := s.GetBucket(ctx, b.ID)
		if err != nil {
			return err
		}
		cur, err = cur.Contribute(60, now)
		if err != nil {
			return err
		}
		if err := s.UpdateBucket(ctx, cur); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}
	got, _ := repo.GetBucket(ctx, b.ID)
	if got.Current != 0 {
		t.Fatalf("rolled back contribution persisted: %+v", got)
	}

	err = repo.InTx(ctx, func(s Store) error {
		cur, err := s.GetBucket(ctx, b.ID)
		if err != nil {
			return err
		}
		cur, err = cur.Contribute(100, now)
		if err != nil {
			return err
		}
		return s.UpdateBucket(ctx, cur)
	})
	if err != nil {
		t.Fatalf("InTx error = %v", err)
	}
	got, _ = repo.GetBucket(ctx, b.ID)
	if got.Current != 100 || got.Status != core.StatusReady {
		t.Fatalf("committed bucket = %+v", got)
	}

	if err := repo.UpdateBucket(ctx, core.Bucket{ID: 999, Name: "x", Category: "y", Goal: 1, Status: core.StatusFilling}); !core.IsNotFound(err) {
		t.Fatalf("UpdateBucket missing = %v, want not found", err)
	}
	list, _ := repo.ListBuckets(ctx)
	if len(list) != 1 {
		t.Fatalf("ListBuckets = %+v", list)
	}
	if ok, _ := repo.DeleteBucket(ctx, b.ID); !ok {
		t.Fatal("DeleteBucket reported false")
	}
	if _, err := repo.GetBucket(ctx, b.ID); !core.IsNotFound(err) {
		t.Fatalf("GetBucket after delete = %v", err)
	}
}

func TestPayroll(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, d := range []string{"2099-01-01", "2099-01-15", "2099-01-31", "2099-02-01"} {
		e, err := core.PayrollInput{PayDate: d, Gross: "1000", Tax: "100+50"}.Parse()
		if err != nil {
			t.Fatalf("Parse error = %v", err)
		}
		if _, err := repo.CreatePayrollEntry(ctx, e); err != nil {
			t.Fatalf("CreatePayrollEntry error = %v", err)
		}
	}
	start, end, _ := core.MonthBounds("2099-01")
	entries, err := repo.ListPayroll(ctx, start, end)
	if err != nil {
		t.Fatalf("ListPayroll error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries in January, want 3", len(entries))
	}
	if entries[0].PayDate.Format("2006-01-02") != "2099-01-31" || entries[0].Tax != 150 {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if ok, _ := repo.DeletePayrollEntry(ctx, entries[0].ID); !ok {
		t.Fatal("DeletePayrollEntry reported false")
	}
}

func TestSearchTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, tx := range []core.Transaction{
		{Date: at("2099-01-05 10:00:00"), Description: "Pizza 50% off", Amount: -12.5, Category: "Food"},
		{Date: at("2099-02-01 10:00:00"), Description: "coffee", Amount: -4, Category: "Food"},
		{Date: at("2099-02-03 10:00:00"), Description: "cinema", Amount: -12.5, Category: "Fun_Stuff"},
	} {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction error = %v", err)
		}
	}
	amount := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		filter core.TransactionFilter
		want   []string
	}{
		{"empty filter lists all", core.TransactionFilter{}, []string{"cinema", "coffee", "Pizza 50% off"}},
		{"empty filter all mode", core.TransactionFilter{MatchAll: true}, []string{"cinema", "coffee", "Pizza 50% off"}},
		{"or description", core.TransactionFilter{Description: "PIZZA"}, []string{"Pizza 50% off"}},
		{"or amount", core.TransactionFilter{Amount: amount(-12.5)}, []string{"cinema", "Pizza 50% off"}},
		{"or category or amount", core.TransactionFilter{Category: "fun", Amount: amount(-4)}, []string{"cinema", "coffee"}},
		{"and category and amount", core.TransactionFilter{Category: "food", Amount: amount(-12.5), MatchAll: true}, []string{"Pizza 50% off"}},
		{"and no match", core.TransactionFilter{Category: "fun", Description: "coffee", MatchAll: true}, nil},
		{"percent is literal", core.TransactionFilter{Description: "50%"}, []string{"Pizza 50% off"}},
		{"underscore is literal", core.TransactionFilter{Category: "n_s"}, []string{"cinema"}},
		{"underscore not wildcard", core.TransactionFilter{Category: "o_d"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := repo.SearchTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("SearchTransactions error = %v", err)
			}
			var got []string
			for _, tx := range txs {
				got = append(got, tx.Description)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
