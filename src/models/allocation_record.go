package models

import (
	"encoding/json"
	"time"
)

// AllocationRecord is an immutable audit row for one allocation decision on
// one goal. Corrections are made by writing a new record, never by editing
// an existing one.
type AllocationRecord struct {
	ID                string          `json:"id"`
	UserID            int64           `json:"user_id"`
	GoalID            int64           `json:"goal_id"`
	Amount            float64         `json:"amount"`
	CalculationMethod string          `json:"calculation_method"`
	AccountSnapshot   json.RawMessage `json:"account_snapshot"` // JSONB
	CreatedAt         time.Time       `json:"created_at"`
}
