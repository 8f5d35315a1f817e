package models

import "time"

// Transaction keeps the Plaid sign convention: positive amounts are money
// leaving the account (expenses), negative amounts are money coming in
// (income). The sign is fixed at sync time and never flipped downstream.
type Transaction struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	AccountID    string    `json:"account_id"`
	Amount       float64   `json:"amount"`
	Name         string    `json:"name"`
	MerchantName *string   `json:"merchant_name"`
	Category     *string   `json:"category"`
	Date         time.Time `json:"date"`
	Pending      bool      `json:"pending"`
	CreatedAt    time.Time `json:"created_at"`
}
