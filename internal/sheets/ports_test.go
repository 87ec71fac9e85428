package sheets

import (
	"testing"
	"time"

	"ledger/internal/core"
)

func TestRowColumnOrder(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	row := Row(core.Transaction{
		ID:          9,
		Date:        time.Date(2099, 2, 14, 19, 0, 0, 0, loc),
		Description: "dinner",
		Category:    "Fun",
		Amount:      -42.5,
	})

	want := []any{"2099-02-14 18:00:00", "dinner", "Fun", -42.5}
	if len(row) != len(want) {
		t.Fatalf("row = %v", row)
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
}
