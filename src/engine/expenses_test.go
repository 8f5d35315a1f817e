package engine

import (
	"testing"
	"time"

	"finsight-server/src/models"
)

var expenseNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func expense(amount float64, daysAgo int, name string) models.Transaction {
	return models.Transaction{
		Amount: amount,
		Date:   expenseNow.AddDate(0, 0, -daysAgo),
		Name:   name,
	}
}

func TestCategorizeExpenses(t *testing.T) {
	category := "Entertainment"
	transactions := []models.Transaction{
		expense(1200, 2, "Oakwood Rent Payment"),
		expense(150, 5, "Whole Foods Market"),
		expense(85, 9, "Shell Gas Station"),
		expense(60, 12, "City Power & Electric"),
		expense(45, 20, "Mystery Vendor 42"),
		{Amount: 15, Date: expenseNow.AddDate(0, 0, -7), Name: "subscription", Category: &category},
	}

	got := CategorizeExpenses(transactions, expenseNow)

	want := map[string]float64{
		"housing":       1200,
		"food":          150,
		"transport":     85,
		"utilities":     60,
		"entertainment": 15,
		"other":         45,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d: %v", len(got), len(want), got)
	}
	for cat, amount := range want {
		if got[cat] != amount {
			t.Errorf("%s = %v, want %v", cat, got[cat], amount)
		}
	}
}

func TestCategorizeExpensesPartition(t *testing.T) {
	transactions := []models.Transaction{
		expense(1200, 1, "Rent"),
		expense(90, 3, "Grocery Store"),
		expense(33, 6, "Parking Garage"),
		expense(18, 8, "no match at all"),
		expense(250, 10, "Gym Membership"),
	}

	got := CategorizeExpenses(transactions, expenseNow)

	var bucketed, total float64
	for _, amount := range got {
		bucketed += amount
	}
	for _, txn := range transactions {
		total += txn.Amount
	}
	if bucketed != total {
		t.Errorf("bucketed sum %v != transaction sum %v", bucketed, total)
	}
}

func TestCategorizeExpensesFilters(t *testing.T) {
	transactions := []models.Transaction{
		// Outside the 30 day window, then an income deposit; only the
		// grocery charge qualifies.
		expense(500, 40, "Rent"),
		{Amount: -2500, Date: expenseNow.AddDate(0, 0, -3), Name: "Direct Deposit"},
		expense(75, 4, "Grocery Store"),
	}

	got := CategorizeExpenses(transactions, expenseNow)
	if len(got) != 1 || got["food"] != 75 {
		t.Errorf("got %v, want only food=75", got)
	}
}

func TestCategorizeExpensesMerchantName(t *testing.T) {
	merchant := "Netflix"
	transactions := []models.Transaction{
		{Amount: 16, Date: expenseNow.AddDate(0, 0, -2), Name: "recurring charge", MerchantName: &merchant},
	}

	got := CategorizeExpenses(transactions, expenseNow)
	if got["entertainment"] != 16 {
		t.Errorf("entertainment = %v, want 16", got["entertainment"])
	}
}

func TestExpenseCategorySetIsClosed(t *testing.T) {
	known := make(map[string]bool, len(ExpenseCategories))
	for _, category := range ExpenseCategories {
		known[category] = true
	}
	for _, rule := range expenseRules {
		if !known[rule.category] {
			t.Errorf("rule category %q not in the fixed category set", rule.category)
		}
	}
	if !known[CategoryOther] {
		t.Error("catch-all category missing from the fixed category set")
	}

	transactions := []models.Transaction{
		expense(1200, 1, "Rent"),
		expense(50, 2, "totally unclassifiable"),
		expense(30, 3, "CVS Pharmacy"),
	}
	for category := range CategorizeExpenses(transactions, expenseNow) {
		if !known[category] {
			t.Errorf("categorization produced %q outside the fixed set", category)
		}
	}
}

func TestCategorizeExpensesDeterministic(t *testing.T) {
	transactions := []models.Transaction{
		expense(1200, 1, "Rent"),
		expense(90, 3, "Grocery Store"),
		expense(18, 8, "no match at all"),
	}
	first := CategorizeExpenses(transactions, expenseNow)
	for i := 0; i < 5; i++ {
		again := CategorizeExpenses(transactions, expenseNow)
		if len(again) != len(first) {
			t.Fatalf("run %d produced different categories", i)
		}
		for cat, amount := range first {
			if again[cat] != amount {
				t.Fatalf("run %d produced %s=%v, want %v", i, cat, again[cat], amount)
			}
		}
	}
}
