package db

import (
	"context"

	"finsight-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

func GetActiveAccounts(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Account, error) {
	query := `
		SELECT id, user_id, item_id, account_id, name, official_name, mask, type, subtype, current_balance, active, created_at, updated_at
		FROM accounts
		WHERE user_id = $1 AND active = TRUE
		ORDER BY created_at, id
	`

	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(&account.ID, &account.UserID, &account.ItemID, &account.AccountID, &account.Name, &account.OfficialName, &account.Mask, &account.Type, &account.Subtype, &account.CurrentBalance, &account.Active, &account.CreatedAt, &account.UpdatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func UpsertAccount(ctx context.Context, pool *pgxpool.Pool, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, item_id, account_id, name, official_name, mask, type, subtype, current_balance, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			official_name = EXCLUDED.official_name,
			current_balance = EXCLUDED.current_balance,
			active = TRUE,
			updated_at = NOW()
	`
	_, err := pool.Exec(ctx, query,
		account.ID, account.UserID, account.ItemID, account.AccountID,
		account.Name, account.OfficialName, account.Mask,
		account.Type, account.Subtype, account.CurrentBalance,
	)
	return err
}

// SaveAccounts upserts the accounts returned by a Plaid balance fetch.
// Credit and loan balances arrive as magnitudes owed and are stored as-is.
func SaveAccounts(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID string, accounts []plaid.AccountBase) error {
	for _, acc := range accounts {
		balances := acc.GetBalances()
		account := models.Account{
			ID:             acc.GetAccountId(),
			UserID:         userID,
			ItemID:         itemID,
			AccountID:      acc.GetAccountId(),
			Name:           acc.GetName(),
			OfficialName:   acc.GetOfficialName(),
			Mask:           acc.GetMask(),
			Type:           string(acc.GetType()),
			Subtype:        string(acc.GetSubtype()),
			CurrentBalance: balances.GetCurrent(),
		}
		if err := UpsertAccount(ctx, pool, &account); err != nil {
			return err
		}
	}
	return nil
}

func DeactivateAccountsForItem(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID string) error {
	query := `UPDATE accounts SET active = FALSE, updated_at = NOW() WHERE user_id = $1 AND item_id = $2`
	_, err := pool.Exec(ctx, query, userID, itemID)
	return err
}
