package engine

import (
	"context"
	"errors"
	"testing"

	"finsight-server/src/models"
)

func TestSuggestBudget(t *testing.T) {
	income := 5000.0
	expenses := map[string]float64{
		"housing":       1600,
		"food":          400,
		"entertainment": 350,
	}

	got := SuggestBudget(&income, expenses)

	want := map[string]float64{
		"housing":       1600, // spend above the 28% floor
		"food":          600,  // 12% floor above spend
		"transport":     750,
		"utilities":     250,
		"insurance":     250,
		"healthcare":    250,
		"entertainment": 250, // spend capped at 5%
		"shopping":      250, // no spend, cap applies
		"personal":      250,
		"savings":       1000,
		"emergency":     500,
		"investments":   500,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d: %v", len(got), len(want), got)
	}
	for category, amount := range want {
		if got[category] != amount {
			t.Errorf("%s = %v, want %v", category, got[category], amount)
		}
	}
}

func TestSuggestBudgetNilIncome(t *testing.T) {
	if got := SuggestBudget(nil, map[string]float64{"housing": 1600}); got != nil {
		t.Errorf("got %v, want nil without a detected income", got)
	}
}

func TestSuggestBudgetDiscretionaryBelowCap(t *testing.T) {
	income := 5000.0
	got := SuggestBudget(&income, map[string]float64{"entertainment": 120})
	if got["entertainment"] != 120 {
		t.Errorf("entertainment = %v, want actual spend 120", got["entertainment"])
	}
}

type fakeBudgetWriter struct {
	order []string
	rows  map[string]float64
	err   error
}

func (f *fakeBudgetWriter) UpsertBudgetCategory(_ context.Context, userID int64, category string, amount float64) (*models.BudgetCategory, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.order = append(f.order, category)
	if f.rows == nil {
		f.rows = make(map[string]float64)
	}
	f.rows[category] = amount
	return &models.BudgetCategory{
		ID:            int64(len(f.order)),
		UserID:        userID,
		Category:      category,
		MonthlyAmount: amount,
	}, nil
}

func TestPersistBudget(t *testing.T) {
	income := 5000.0
	budget := SuggestBudget(&income, map[string]float64{"housing": 1600})

	writer := &fakeBudgetWriter{}
	rows, err := PersistBudget(context.Background(), writer, 7, budget)
	if err != nil {
		t.Fatalf("PersistBudget: %v", err)
	}
	if len(rows) != len(BudgetCategoryOrder) {
		t.Fatalf("wrote %d rows, want %d", len(rows), len(BudgetCategoryOrder))
	}
	for i, category := range BudgetCategoryOrder {
		if writer.order[i] != category {
			t.Errorf("write %d = %s, want %s", i, writer.order[i], category)
		}
	}
	if writer.rows["housing"] != 1600 {
		t.Errorf("housing persisted as %v, want 1600", writer.rows["housing"])
	}

	// Re-running the same suggestion rewrites the same values.
	again := &fakeBudgetWriter{}
	if _, err := PersistBudget(context.Background(), again, 7, budget); err != nil {
		t.Fatalf("PersistBudget rerun: %v", err)
	}
	for category, amount := range writer.rows {
		if again.rows[category] != amount {
			t.Errorf("rerun %s = %v, want %v", category, again.rows[category], amount)
		}
	}
}

func TestPersistBudgetWriteError(t *testing.T) {
	income := 5000.0
	budget := SuggestBudget(&income, nil)

	wantErr := errors.New("connection reset")
	if _, err := PersistBudget(context.Background(), &fakeBudgetWriter{err: wantErr}, 7, budget); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
