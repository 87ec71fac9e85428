package core

import (
	"errors"
	"math"
	"testing"
)

func TestValidateTargets(t *testing.T) {
	tests := []struct {
		name    string
		targets Targets
		wantErr error
	}{
		{name: "40/40/20 accepted", targets: Targets{40, 40, 20}},
		{name: "50/30/20 accepted", targets: Targets{50, 30, 20}},
		{name: "within tolerance", targets: Targets{33.3333333, 33.3333333, 33.3333334}},
		{name: "40/40/25 rejected", targets: Targets{40, 40, 25}, wantErr: ErrTargetsSum},
		{name: "under 100 rejected", targets: Targets{10, 10, 10}, wantErr: ErrTargetsSum},
		{name: "negative rejected", targets: Targets{120, -10, -10}, wantErr: ErrInvalidTarget},
		{name: "NaN rejected", targets: Targets{math.NaN(), 50, 50}, wantErr: ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargets(tt.targets)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateTargets(%+v) error = %v", tt.targets, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) || !IsValidation(err) {
				t.Fatalf("ValidateTargets(%+v) = %v, want %v", tt.targets, err, tt.wantErr)
			}
		})
	}
}

func TestPlanBudget(t *testing.T) {
	income := 4000.0
	totals := map[Meta]float64{Needs: 2500, Wants: 300, Savings: 0, Uncategorized: 99}
	lines := PlanBudget(&income, Targets{50, 30, 20}, totals)

	want := []BudgetLine{
		{Name: Needs, Planned: 2000, Actual: 2500, Remaining: -500},
		{Name: Wants, Planned: 1200, Actual: 300, Remaining: 900},
		{Name: Savings, Planned: 800, Actual: 0, Remaining: 800},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, lines[i], want[i])
		}
	}
}

func TestPlanBudgetWithoutIncome(t *testing.T) {
	lines := PlanBudget(nil, DefaultTargets(), map[Meta]float64{Wants: 12})
	for _, l := range lines {
		if l.Planned != 0 {
			t.Fatalf("%s planned = %v, want 0 without income", l.Name, l.Planned)
		}
		if l.Remaining != -l.Actual {
			t.Fatalf("%s remaining = %v, want %v", l.Name, l.Remaining, -l.Actual)
		}
	}
	if lines[1].Actual != 12 {
		t.Fatalf("wants actual = %v, want 12", lines[1].Actual)
	}
}
