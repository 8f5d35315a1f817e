package models

import "time"

// FinancialContext is the derived profile snapshot for one user. It is
// recomputed on demand and never persisted; each detection run replaces the
// whole bundle. MonthlyIncome is nil when no confident income signal exists.
type FinancialContext struct {
	UserID           int64              `json:"user_id"`
	NetWorth         float64            `json:"net_worth"`
	TotalAssets      float64            `json:"total_assets"`
	TotalLiabilities float64            `json:"total_liabilities"`
	MonthlyIncome    *float64           `json:"monthly_income"`
	MonthlyExpenses  map[string]float64 `json:"monthly_expenses"`
	SuggestedBudget  map[string]float64 `json:"suggested_budget"`
	AccountBreakdown map[string]float64 `json:"account_breakdown"`
	ComputedAt       time.Time          `json:"computed_at"`
}
