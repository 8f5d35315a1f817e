package engine

import (
	"math"
	"strings"
	"time"

	"finsight-server/src/models"
)

// ExpenseLookbackDays is the rolling window expense categorization reads.
const ExpenseLookbackDays = 30

// CategoryOther catches every expense no rule claims.
const CategoryOther = "other"

type expenseRule struct {
	category string
	keywords []string
}

// expenseRules is an ordered keyword table: rules are tried top to bottom
// against a transaction's category label and name, first match wins.
var expenseRules = []expenseRule{
	{"housing", []string{"rent", "mortgage", "apartment", "landlord", "hoa", "lease", "property"}},
	{"food", []string{"grocery", "groceries", "supermarket", "restaurant", "food", "coffee", "cafe", "dining", "doordash", "ubereats", "grubhub"}},
	{"transport", []string{"uber", "lyft", "gas", "fuel", "transit", "parking", "metro", "toll", "auto", "car payment"}},
	{"utilities", []string{"electric", "water", "internet", "phone", "cable", "utility", "utilities", "power", "sewer"}},
	{"insurance", []string{"insurance", "geico", "allstate", "premium"}},
	{"healthcare", []string{"pharmacy", "doctor", "medical", "dental", "health", "hospital", "clinic", "cvs", "walgreens"}},
	{"entertainment", []string{"netflix", "spotify", "hulu", "movie", "theater", "concert", "game", "steam", "entertainment"}},
	{"shopping", []string{"amazon", "target", "walmart", "mall", "clothing", "shopping", "store"}},
	{"personal", []string{"gym", "fitness", "salon", "barber", "spa", "haircut", "personal"}},
}

// ExpenseCategories is the full fixed category set, in suggestion order.
var ExpenseCategories = []string{
	"housing", "food", "transport", "utilities", "insurance",
	"healthcare", "entertainment", "shopping", "personal", CategoryOther,
}

// CategorizeExpenses buckets expense transactions (positive amounts, per the
// sign convention) from the last 30 days into the fixed category set and
// sums per bucket, rounded to whole units. The partition is total: every
// qualifying transaction lands in exactly one bucket. Only buckets with
// spend appear in the result.
func CategorizeExpenses(transactions []models.Transaction, now time.Time) map[string]float64 {
	cutoff := now.AddDate(0, 0, -ExpenseLookbackDays)
	totals := make(map[string]float64)

	for _, txn := range transactions {
		if txn.Amount <= 0 {
			continue
		}
		if txn.Date.Before(cutoff) || txn.Date.After(now) {
			continue
		}
		totals[categorizeTransaction(txn)] += txn.Amount
	}

	for category, total := range totals {
		totals[category] = math.Round(total)
	}
	return totals
}

func categorizeTransaction(txn models.Transaction) string {
	text := strings.ToLower(txn.Name)
	if txn.Category != nil {
		text += " " + strings.ToLower(*txn.Category)
	}
	if txn.MerchantName != nil {
		text += " " + strings.ToLower(*txn.MerchantName)
	}

	for _, rule := range expenseRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
