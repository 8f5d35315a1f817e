package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	dbstore "finsight-server/src/db"

	"github.com/go-chi/chi/v5"
)

// ClearCache drops a whole cache registry. Useful after out-of-band data
// changes (manual SQL fixes, backfills) that the handlers can't see.
func ClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheName := chi.URLParam(r, "cache_name")

		switch cacheName {
		case "profiles":
			dbstore.ClearAllProfileCaches()
		case "goals":
			dbstore.ClearAllGoalCaches()
		default:
			http.Error(w, "unknown cache name", http.StatusBadRequest)
			return
		}

		log.Printf("INFO: Cleared %s cache", cacheName)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "cache cleared",
		})
	}
}
