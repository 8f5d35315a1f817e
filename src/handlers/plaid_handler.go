package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	dbstore "finsight-server/src/db"
	db "finsight-server/src/db/sql"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

func CreateLinkToken(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		user := plaid.LinkTokenCreateRequestUser{
			ClientUserId: strconv.FormatInt(userID, 10),
		}
		request := plaid.NewLinkTokenCreateRequest(
			"Finsight",
			"en",
			[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		)
		request.SetUser(user)
		request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
		resp, _, err := plaidClient.PlaidApi.LinkTokenCreate(context.Background()).LinkTokenCreateRequest(*request).Execute()
		if err != nil {
			http.Error(w, "Failed to create link token", http.StatusInternalServerError)
			log.Printf("ERROR: Plaid link token creation failed for user %d: %v", userID, err)
			return
		}

		linkToken := resp.GetLinkToken()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(linkToken)
	}
}

func ExchangePublicToken(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			PublicToken string `json:"public_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode exchange public token request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		exchangePublicTokenReq := plaid.NewItemPublicTokenExchangeRequest(req.PublicToken)
		exchangePublicTokenResp, _, err := plaidClient.PlaidApi.ItemPublicTokenExchange(context.Background()).ItemPublicTokenExchangeRequest(
			*exchangePublicTokenReq,
		).Execute()

		if err != nil {
			http.Error(w, "Failed to exchange public token", http.StatusInternalServerError)
			log.Printf("ERROR: Plaid public token exchange failed for user %d: %v", userID, err)
			return
		}

		accessToken := exchangePublicTokenResp.GetAccessToken()
		itemID := exchangePublicTokenResp.GetItemId()

		// Fetch item details to get institution info
		institutionName := ""
		itemReq := plaid.NewItemGetRequest(accessToken)
		itemResp, _, err := plaidClient.PlaidApi.ItemGet(context.Background()).ItemGetRequest(*itemReq).Execute()
		if err != nil {
			log.Printf("ERROR: Failed to fetch item details for user %d: %v", userID, err)
			// Don't fail the flow, institution details are optional
		} else if name, ok := itemResp.GetItem().AdditionalProperties["institution_name"].(string); ok {
			institutionName = name
		}

		err = db.SavePlaidItem(r.Context(), pool, userID, itemID, accessToken, institutionName)
		if err != nil {
			http.Error(w, "Failed to save plaid item", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to save plaid item for user %d: %v", userID, err)
			return
		}

		log.Printf("INFO: Successfully exchanged public token and saved plaid item for user %d, item %s", userID, itemID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"item_id": itemID,
		})
	}
}

func GetPlaidItems(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		items, err := db.GetPlaidItemsForUser(r.Context(), pool, userID)
		if err != nil {
			http.Error(w, "Failed to retrieve plaid items", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get plaid items for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	}
}

// RemovePlaidItem unlinks one bank connection. The item's accounts are
// deactivated rather than deleted, so past transactions and allocation
// snapshots stay intact; they just stop counting toward the profile.
func RemovePlaidItem(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		itemID := chi.URLParam(r, "item_id")

		if err := db.DeletePlaidItem(r.Context(), pool, userID, itemID); err != nil {
			log.Printf("ERROR: Failed to remove plaid item %s for user %d: %v", itemID, userID, err)
			http.Error(w, "plaid item not found", http.StatusNotFound)
			return
		}
		if err := db.DeactivateAccountsForItem(r.Context(), pool, userID, itemID); err != nil {
			log.Printf("ERROR: Failed to deactivate accounts for item %s, user %d: %v", itemID, userID, err)
			http.Error(w, "failed to deactivate accounts", http.StatusInternalServerError)
			return
		}
		dbstore.DelProfileCache(profileCacheKey(userID))

		log.Printf("INFO: Removed plaid item %s for user %d", itemID, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SyncTransactions pulls fresh accounts and transactions for one linked item
// and persists them. The owner's cached profile is dropped so the next read
// recomputes against the fresh snapshot.
func SyncTransactions(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		itemID := chi.URLParam(r, "item_id")

		accessToken, err := db.GetPlaidItemAccessToken(r.Context(), pool, userID, itemID)
		if err != nil {
			http.Error(w, "Access token not found", http.StatusNotFound)
			log.Printf("ERROR: Failed to get access token for user %d, item %s: %v", userID, itemID, err)
			return
		}

		accountsReq := plaid.NewAccountsGetRequest(accessToken)
		accountsResp, _, err := plaidClient.PlaidApi.AccountsGet(context.Background()).AccountsGetRequest(*accountsReq).Execute()
		if err != nil {
			http.Error(w, "Failed to fetch accounts from Plaid", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to fetch accounts for user %d, item %s: %v", userID, itemID, err)
			return
		}

		err = db.SaveAccounts(r.Context(), pool, userID, itemID, accountsResp.GetAccounts())
		if err != nil {
			http.Error(w, "Failed to save accounts", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to save accounts for user %d: %v", userID, err)
			return
		}

		cursor, err := db.GetSyncCursor(r.Context(), pool, userID, itemID)
		if err != nil {
			http.Error(w, "Failed to retrieve sync cursor", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get sync cursor for item %s: %v", itemID, err)
			return
		}

		added, removed := 0, 0
		for {
			request := plaid.NewTransactionsSyncRequest(accessToken)
			if cursor != "" {
				request.SetCursor(cursor)
			}

			resp, _, err := plaidClient.PlaidApi.TransactionsSync(context.Background()).TransactionsSyncRequest(*request).Execute()
			if err != nil {
				http.Error(w, "Failed to fetch transactions", http.StatusInternalServerError)
				log.Printf("ERROR: Failed to sync transactions for user %d, item %s: %v", userID, itemID, err)
				return
			}

			if err := db.SaveTransactions(r.Context(), pool, userID, resp.GetAdded()); err != nil {
				http.Error(w, "Failed to save transactions", http.StatusInternalServerError)
				log.Printf("ERROR: Failed to save transactions for user %d: %v", userID, err)
				return
			}
			if err := db.SaveTransactions(r.Context(), pool, userID, resp.GetModified()); err != nil {
				http.Error(w, "Failed to save transactions", http.StatusInternalServerError)
				log.Printf("ERROR: Failed to save modified transactions for user %d: %v", userID, err)
				return
			}

			var removedIDs []string
			for _, txn := range resp.GetRemoved() {
				removedIDs = append(removedIDs, txn.GetTransactionId())
			}
			if len(removedIDs) > 0 {
				if err := db.DeleteTransactions(r.Context(), pool, userID, removedIDs); err != nil {
					http.Error(w, "Failed to remove transactions", http.StatusInternalServerError)
					log.Printf("ERROR: Failed to remove transactions for user %d: %v", userID, err)
					return
				}
			}

			added += len(resp.GetAdded()) + len(resp.GetModified())
			removed += len(removedIDs)
			cursor = resp.GetNextCursor()

			if !resp.GetHasMore() {
				break
			}
		}

		if err := db.SaveSyncCursor(r.Context(), pool, userID, itemID, cursor); err != nil {
			http.Error(w, "Failed to update sync cursor", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to update sync cursor for item %s: %v", itemID, err)
			return
		}

		// Synced data invalidates the owner's derived profile
		dbstore.DelProfileCache(profileCacheKey(userID))

		log.Printf("INFO: Synced item %s for user %d - %d upserted, %d removed", itemID, userID, added, removed)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{
			"upserted": added,
			"removed":  removed,
		})
	}
}
