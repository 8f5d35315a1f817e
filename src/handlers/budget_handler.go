package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	dbstore "finsight-server/src/db"
	db "finsight-server/src/db/sql"
	"finsight-server/src/engine"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SuggestBudget runs budget suggestion over the caller's current profile and
// upserts one budget line per category. Re-running with unchanged data
// rewrites the same values. When no income signal exists there is nothing to
// suggest and the caller must supply a budget manually.
func SuggestBudget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		store := dbstore.NewStore(pool)
		detector := engine.NewDetector(store)
		profile, err := detector.DetectProfile(r.Context(), userID, time.Now().UTC())
		if err != nil {
			log.Printf("ERROR: Failed to detect profile for budget suggestion - user %d: %v", userID, err)
			http.Error(w, "failed to detect profile", http.StatusInternalServerError)
			return
		}

		if profile.MonthlyIncome == nil {
			log.Printf("INFO: No income signal for user %d, no budget suggested", userID)
			http.Error(w, "no income detected; set a budget manually", http.StatusUnprocessableEntity)
			return
		}

		rows, err := engine.PersistBudget(r.Context(), store, userID, profile.SuggestedBudget)
		if err != nil {
			log.Printf("ERROR: Failed to persist suggested budget for user %d: %v", userID, err)
			http.Error(w, "failed to save budget", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Suggested budget saved for user %d - %d categories", userID, len(rows))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rows)
	}
}

func GetAllBudgetCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		categories, err := db.GetAllBudgetCategoriesForUser(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get budget categories for user %d: %v", userID, err)
			http.Error(w, "failed to get budget", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(categories)
	}
}
