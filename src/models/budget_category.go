package models

import "time"

// BudgetCategory is one monthly budget line, unique per (user, category).
type BudgetCategory struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Category      string    `json:"category"`
	MonthlyAmount float64   `json:"monthly_amount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
