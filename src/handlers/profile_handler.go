package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	dbstore "finsight-server/src/db"
	"finsight-server/src/engine"
	"finsight-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GetProfile recomputes the derived financial profile for the caller. The
// whole bundle is cached until a sync or allocation invalidates it; it is
// never partially updated.
func GetProfile(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		cacheKey := profileCacheKey(userID)

		if cached, found := dbstore.Cache.Get(cacheKey); found {
			if profile, ok := cached.(*models.FinancialContext); ok {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(profile)
				return
			}
		}

		detector := engine.NewDetector(dbstore.NewStore(pool))
		profile, err := detector.DetectProfile(r.Context(), userID, time.Now().UTC())
		if err != nil {
			log.Printf("ERROR: Failed to detect profile for user %d: %v", userID, err)
			http.Error(w, "failed to detect profile", http.StatusInternalServerError)
			return
		}

		dbstore.SetProfileCache(cacheKey, profile)

		log.Printf("INFO: Detected profile for user %d - net worth %.2f", userID, profile.NetWorth)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	}
}

func profileCacheKey(userID int64) string {
	return fmt.Sprintf("profile:%d", userID)
}
