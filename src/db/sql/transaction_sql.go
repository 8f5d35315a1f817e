package db

import (
	"context"
	"time"

	"finsight-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

func GetTransactionsInRange(ctx context.Context, pool *pgxpool.Pool, userID int64, from, to time.Time) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, account_id, amount, name, merchant_name, category, date, pending, created_at
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, id
	`

	rows, err := pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var transaction models.Transaction
		err := rows.Scan(&transaction.ID, &transaction.UserID, &transaction.AccountID, &transaction.Amount, &transaction.Name, &transaction.MerchantName, &transaction.Category, &transaction.Date, &transaction.Pending, &transaction.CreatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}

	return transactions, rows.Err()
}

// SaveTransactions upserts synced Plaid transactions. Amounts keep the
// Plaid sign convention exactly as delivered: positive out, negative in.
func SaveTransactions(ctx context.Context, pool *pgxpool.Pool, userID int64, transactions []plaid.Transaction) error {
	for _, txn := range transactions {
		query := `
			INSERT INTO transactions (id, user_id, account_id, amount, name, merchant_name, category, date, pending)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE
			SET amount = EXCLUDED.amount,
				name = EXCLUDED.name,
				merchant_name = EXCLUDED.merchant_name,
				category = EXCLUDED.category,
				date = EXCLUDED.date,
				pending = EXCLUDED.pending
		`

		var category *string
		if pfc := txn.GetPersonalFinanceCategory(); pfc.Primary != "" {
			primary := pfc.Primary
			category = &primary
		}

		date, err := time.Parse("2006-01-02", txn.GetDate())
		if err != nil {
			return err
		}

		merchant := txn.GetMerchantName()
		var merchantName *string
		if merchant != "" {
			merchantName = &merchant
		}

		_, err = pool.Exec(ctx, query,
			txn.GetTransactionId(), userID, txn.GetAccountId(), txn.GetAmount(),
			txn.GetName(), merchantName, category, date, txn.GetPending(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func DeleteTransactions(ctx context.Context, pool *pgxpool.Pool, userID int64, transactionIDs []string) error {
	query := `DELETE FROM transactions WHERE user_id = $1 AND id = ANY($2)`
	_, err := pool.Exec(ctx, query, userID, transactionIDs)
	return err
}
