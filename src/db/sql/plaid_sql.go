package db

import (
	"context"
	"fmt"

	"finsight-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

func SavePlaidItem(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID, accessToken, institutionName string) error {
	query := `
		INSERT INTO plaid_items (user_id, item_id, access_token, institution_name)
		VALUES ($1, $2, $3, $4)
	`
	_, err := pool.Exec(ctx, query, userID, itemID, accessToken, institutionName)
	return err
}

func GetPlaidItemsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.PlaidItem, error) {
	query := `SELECT id, user_id, access_token, item_id, institution_name, created_at FROM plaid_items WHERE user_id = $1`

	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.PlaidItem
	for rows.Next() {
		var item models.PlaidItem
		err := rows.Scan(&item.ID, &item.UserID, &item.AccessToken, &item.ItemID, &item.InstitutionName, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func GetPlaidItemAccessToken(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID string) (string, error) {
	query := `SELECT access_token FROM plaid_items WHERE user_id = $1 AND item_id = $2`
	var accessToken string
	err := pool.QueryRow(ctx, query, userID, itemID).Scan(&accessToken)
	if err != nil {
		return "", err
	}
	return accessToken, nil
}

func DeletePlaidItem(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID string) error {
	query := `DELETE FROM plaid_items WHERE user_id = $1 AND item_id = $2`
	cmd, err := pool.Exec(ctx, query, userID, itemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("plaid item not found")
	}
	return nil
}

func GetSyncCursor(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID string) (string, error) {
	query := `SELECT COALESCE(sync_cursor, '') FROM plaid_items WHERE user_id = $1 AND item_id = $2`
	var cursor string
	err := pool.QueryRow(ctx, query, userID, itemID).Scan(&cursor)
	if err != nil {
		return "", err
	}
	return cursor, nil
}

func SaveSyncCursor(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID, cursor string) error {
	query := `UPDATE plaid_items SET sync_cursor = $1 WHERE user_id = $2 AND item_id = $3`
	_, err := pool.Exec(ctx, query, cursor, userID, itemID)
	return err
}
