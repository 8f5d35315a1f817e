package engine

import (
	"context"
	"math"

	"finsight-server/src/models"
)

// Budget percentage tables. Needs categories floor at detected spend, the
// discretionary ones cap at a fixed share of income, and the fixed lines
// are always a straight percentage of income.
var (
	needsPercentages = map[string]float64{
		"housing":    0.28,
		"food":       0.12,
		"transport":  0.15,
		"utilities":  0.05,
		"insurance":  0.05,
		"healthcare": 0.05,
	}

	discretionaryCaps = map[string]float64{
		"entertainment": 0.05,
		"shopping":      0.05,
		"personal":      0.05,
	}

	fixedAllocations = []struct {
		category string
		percent  float64
	}{
		{"savings", 0.20},
		{"emergency", 0.10},
		{"investments", 0.10},
	}
)

// BudgetCategoryOrder fixes the order suggested lines are produced and
// persisted in, so re-runs with unchanged inputs are byte-identical.
var BudgetCategoryOrder = []string{
	"housing", "food", "transport", "utilities", "insurance", "healthcare",
	"entertainment", "shopping", "personal",
	"savings", "emergency", "investments",
}

// SuggestBudget derives a per-category monthly budget from detected income
// and actual spend. Needs categories take max(actual spend, income share);
// discretionary categories take actual spend capped at their income share,
// or the cap itself when no spend was detected. All values are whole
// currency units. A nil income yields no suggestion.
func SuggestBudget(monthlyIncome *float64, expenses map[string]float64) map[string]float64 {
	if monthlyIncome == nil {
		return nil
	}
	income := *monthlyIncome

	budget := make(map[string]float64, len(BudgetCategoryOrder))
	for category, percent := range needsPercentages {
		budget[category] = math.Round(math.Max(expenses[category], income*percent))
	}
	for category, percent := range discretionaryCaps {
		limit := income * percent
		if spend, ok := expenses[category]; ok && spend > 0 {
			budget[category] = math.Round(math.Min(spend, limit))
		} else {
			budget[category] = math.Round(limit)
		}
	}
	for _, fixed := range fixedAllocations {
		budget[fixed.category] = math.Round(income * fixed.percent)
	}
	return budget
}

// PersistBudget upserts one BudgetCategory row per suggested line in the
// fixed category order. Safe to re-run: unchanged inputs rewrite the same
// values.
func PersistBudget(ctx context.Context, store BudgetWriter, userID int64, budget map[string]float64) ([]models.BudgetCategory, error) {
	var rows []models.BudgetCategory
	for _, category := range BudgetCategoryOrder {
		amount, ok := budget[category]
		if !ok {
			continue
		}
		row, err := store.UpsertBudgetCategory(ctx, userID, category, amount)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}
