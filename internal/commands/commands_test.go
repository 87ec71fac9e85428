package commands_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/commands"
	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/storage"
)

func testDB(t *testing.T) string {
	t.Helper()
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	return filepath.Join(t.TempDir(), "ledger.db")
}

// run executes ledgerctl in-process against db and returns its stdout.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// seed opens db directly so tests can create what the CLI cannot.
func seed(t *testing.T, db string, fn func(ctx context.Context, l *services.Ledger)) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(db)
	require.NoError(t, err)
	defer repo.Close()
	fn(context.Background(), services.NewLedger(repo, nil))
}

func TestTxAddAndList(t *testing.T) {
	db := testDB(t)

	out, err := run(t, db, "tx", "add",
		"--category", "Food", "--amount", "12.5", "--description", "lunch", "--date", "2099-02-14")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded transaction 1: Food -12.50 on 2099-02-14 00:00:00")

	out, err = run(t, db, "tx", "add",
		"--category", "Rent", "--amount", "-900", "--date", "2099-02-01 08:00:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Rent -900.00 on 2099-02-01 08:00:00")

	out, err = run(t, db, "tx", "list", "--month", "2099-02")
	require.NoError(t, err)
	assert.Contains(t, out, "lunch")
	assert.Contains(t, out, "-900.00")
	assert.Less(t, strings.Index(out, "lunch"), strings.Index(out, "Rent"),
		"newest transaction should be listed first")
}

func TestTxAddRejectsBadInput(t *testing.T) {
	db := testDB(t)

	_, err := run(t, db, "tx", "add", "--amount", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category")

	_, err = run(t, db, "tx", "add", "--category", "Food", "--amount", "3", "--date", "14/02/2099")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidDate))

	_, err = run(t, db, "tx", "add", "--category", "  ", "--amount", "3")
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestTxSearch(t *testing.T) {
	db := testDB(t)
	for _, args := range [][]string{
		{"--category", "Food", "--amount", "12.5", "--description", "pizza", "--date", "2099-02-10"},
		{"--category", "Food", "--amount", "4", "--description", "coffee", "--date", "2099-02-11"},
		{"--category", "Fun", "--amount", "12.5", "--description", "cinema", "--date", "2099-03-01"},
	} {
		_, err := run(t, db, append([]string{"tx", "add"}, args...)...)
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{"any of", []string{"--category", "fun", "--amount", "4"}, []string{"cinema", "coffee"}, []string{"pizza"}},
		{"all of", []string{"--category", "food", "--amount", "12,5", "--all"}, []string{"pizza"}, []string{"coffee", "cinema"}},
		{"description", []string{"--description", "COFF"}, []string{"coffee"}, []string{"pizza", "cinema"}},
		{"no criteria", nil, []string{"pizza", "coffee", "cinema"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, db, append([]string{"tx", "search"}, tt.args...)...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}

	_, err := run(t, db, "tx", "search", "--amount", "lots")
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))
}

func TestMonthDefaultsToCurrentUTCMonth(t *testing.T) {
	db := testDB(t)

	out, err := run(t, db, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, time.Now().UTC().Format("2006-01")+"  (prev ")
}

func TestSubsApplyIsIdempotent(t *testing.T) {
	db := testDB(t)
	seed(t, db, func(ctx context.Context, l *services.Ledger) {
		_, err := l.AddSubscription(ctx, "Rent", "Housing", 1000, 31)
		require.NoError(t, err)
	})

	out, err := run(t, db, "subs", "apply", "--month", "2099-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 1 subscription(s) for 2099-02")

	out, err = run(t, db, "subs", "apply", "--month", "2099-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 0 subscription(s) for 2099-02")

	out, err = run(t, db, "tx", "list", "--month", "2099-02")
	require.NoError(t, err)
	assert.Contains(t, out, "2099-02-28 12:00:00")
	assert.Contains(t, out, "SUB: Rent")

	out, err = run(t, db, "subs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Housing")

	_, err = run(t, db, "subs", "apply", "--month", "2099-2")
	assert.True(t, errors.Is(err, core.ErrInvalidMonth))
}

func TestBucketContributeAndSpend(t *testing.T) {
	db := testDB(t)
	seed(t, db, func(ctx context.Context, l *services.Ledger) {
		_, err := l.CreateBucket(ctx, "Trip", "Travel", 100, "Wants")
		require.NoError(t, err)
	})

	out, err := run(t, db, "bucket", "contribute", "1", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "60.00 of 100.00 (60.0%), filling")

	out, err = run(t, db, "bucket", "contribute", "1", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "ready")

	out, err = run(t, db, "bucket", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Trip")
	assert.Contains(t, out, "Wants")
	assert.Contains(t, out, "100.0%")

	out, err = run(t, db, "bucket", "spend", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "0.00 of 100.00 (0.0%), archived")

	_, err = run(t, db, "bucket", "contribute", "1", "5")
	assert.True(t, errors.Is(err, core.ErrBucketClosed))

	_, err = run(t, db, "bucket", "spend", "7")
	assert.True(t, core.IsNotFound(err))

	_, err = run(t, db, "bucket", "contribute", "1", "five")
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))

	_, err = run(t, db, "bucket", "contribute", "abc", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestSummary(t *testing.T) {
	db := testDB(t)
	seed(t, db, func(ctx context.Context, l *services.Ledger) {
		require.NoError(t, l.SetIncome(ctx, "2099-02", 4000))
		require.NoError(t, l.MapCategory(ctx, "Rent", "Needs"))
	})

	_, err := run(t, db, "tx", "add", "--category", "Rent", "--amount", "1500", "--date", "2099-02-01")
	require.NoError(t, err)

	out, err := run(t, db, "summary", "--month", "2099-02")
	require.NoError(t, err)
	assert.Contains(t, out, "2099-02")
	assert.Contains(t, out, "(prev 2099-01, next 2099-03)")
	assert.Contains(t, out, "4000.00")
	assert.Contains(t, out, "Needs (50%)")
	assert.Contains(t, out, "2000.00")
	assert.Contains(t, out, "500.00")

	out, err = run(t, db, "summary", "--month", "2099-07")
	require.NoError(t, err)
	assert.Contains(t, out, "not set")

	_, err = run(t, db, "summary", "--month", "July")
	assert.True(t, core.IsValidation(err))
}

func TestSheetsExportDryRun(t *testing.T) {
	db := testDB(t)

	_, err := run(t, db, "tx", "add", "--category", "Food", "--amount", "4", "--description", "coffee", "--date", "2099-02-03")
	require.NoError(t, err)
	_, err = run(t, db, "tx", "add", "--category", "Food", "--amount", "9", "--date", "2099-03-03")
	require.NoError(t, err)

	out, err := run(t, db, "sheets", "export", "--month", "2099-02", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "2099-02-03 00:00:00")
	assert.Contains(t, out, "coffee")
	assert.Contains(t, out, "Would export 1 transaction(s) for 2099-02")
}
