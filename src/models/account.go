package models

import "time"

// Plaid account categories. Anything outside this set is bucketed by
// balance sign during aggregation.
const (
	AccountTypeDepository = "depository"
	AccountTypeCredit     = "credit"
	AccountTypeLoan       = "loan"
	AccountTypeInvestment = "investment"
)

type Account struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	ItemID         string    `json:"item_id"`
	AccountID      string    `json:"account_id"`
	Name           string    `json:"name"`
	OfficialName   string    `json:"official_name"`
	Mask           string    `json:"mask"`
	Type           string    `json:"type"`
	Subtype        string    `json:"subtype"`
	CurrentBalance float64   `json:"current_balance"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
