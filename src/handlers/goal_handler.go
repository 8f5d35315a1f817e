package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	dbstore "finsight-server/src/db"
	db "finsight-server/src/db/sql"
	"finsight-server/src/engine"
	"finsight-server/src/events"
	"finsight-server/src/models"
	"finsight-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// allocationLocks serializes allocation runs per user: concurrent
// invocations for the same owner would race on the funds denominator.
var allocationLocks = util.NewUserLocks()

func CreateGoal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Name         string     `json:"name"`
			Description  *string    `json:"description"`
			TargetAmount float64    `json:"target_amount"`
			TargetDate   *time.Time `json:"target_date"`
			Priority     string     `json:"priority"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create goal request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !util.ValidateGoalName(req.Name) {
			http.Error(w, "goal name must be between 1 and 100 characters", http.StatusBadRequest)
			return
		}
		if req.Priority == "" {
			req.Priority = models.GoalPriorityMedium
		}
		if !util.ValidateGoalPriority(req.Priority) {
			http.Error(w, "priority must be low, medium or high", http.StatusBadRequest)
			return
		}
		if req.TargetAmount < 0 {
			http.Error(w, "target amount must be non-negative", http.StatusBadRequest)
			return
		}

		goal := &models.Goal{
			UserID:       userID,
			Name:         req.Name,
			Description:  req.Description,
			TargetAmount: req.TargetAmount,
			TargetDate:   req.TargetDate,
			Priority:     req.Priority,
		}
		created, err := db.CreateGoal(r.Context(), pool, goal)
		if err != nil {
			log.Printf("ERROR: Failed to create goal for user %d: %v", userID, err)
			http.Error(w, "failed to create goal", http.StatusInternalServerError)
			return
		}
		dbstore.DelGoalCache(goalsCacheKey(userID))

		log.Printf("INFO: Created goal id %d for user %d, priority %s", created.ID, userID, created.Priority)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllGoals(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		cacheKey := goalsCacheKey(userID)

		if cached, found := dbstore.Cache.Get(cacheKey); found {
			if goals, ok := cached.([]models.Goal); ok {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(goals)
				return
			}
		}

		goals, err := db.GetAllGoalsForUser(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get goals for user %d: %v", userID, err)
			http.Error(w, "failed to get goals", http.StatusInternalServerError)
			return
		}
		dbstore.SetGoalCache(cacheKey, goals)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(goals)
	}
}

func GetGoalByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, err := parseGoalID(r)
		if err != nil {
			http.Error(w, "invalid goal id", http.StatusBadRequest)
			return
		}

		goal, err := db.GetGoalByID(r.Context(), pool, userID, goalID)
		if err != nil {
			log.Printf("ERROR: Goal id %d not found for user %d: %v", goalID, userID, err)
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(goal)
	}
}

func UpdateGoal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, err := parseGoalID(r)
		if err != nil {
			http.Error(w, "invalid goal id", http.StatusBadRequest)
			return
		}

		var req struct {
			Name         string     `json:"name"`
			Description  *string    `json:"description"`
			TargetAmount float64    `json:"target_amount"`
			TargetDate   *time.Time `json:"target_date"`
			Priority     string     `json:"priority"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update goal request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !util.ValidateGoalName(req.Name) {
			http.Error(w, "goal name must be between 1 and 100 characters", http.StatusBadRequest)
			return
		}
		if !util.ValidateGoalPriority(req.Priority) {
			http.Error(w, "priority must be low, medium or high", http.StatusBadRequest)
			return
		}

		goal := &models.Goal{
			ID:           goalID,
			UserID:       userID,
			Name:         req.Name,
			Description:  req.Description,
			TargetAmount: req.TargetAmount,
			TargetDate:   req.TargetDate,
			Priority:     req.Priority,
		}
		updated, err := db.UpdateGoal(r.Context(), pool, goal)
		if err != nil {
			log.Printf("ERROR: Failed to update goal %d for user %d: %v", goalID, userID, err)
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		dbstore.DelGoalCache(goalsCacheKey(userID))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

// DeleteGoal soft-deletes: the goal drops out of listings and eligibility
// but its allocation history stays referenceable.
func DeleteGoal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, err := parseGoalID(r)
		if err != nil {
			http.Error(w, "invalid goal id", http.StatusBadRequest)
			return
		}

		if err := db.DeactivateGoal(r.Context(), pool, userID, goalID); err != nil {
			log.Printf("ERROR: Failed to delete goal %d for user %d: %v", goalID, userID, err)
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		dbstore.DelGoalCache(goalsCacheKey(userID))

		log.Printf("INFO: Deactivated goal %d for user %d", goalID, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// CalculateGoalTarget computes a target amount and timeframe for a stored
// goal against the caller's current profile. With ?preview=true nothing is
// written; otherwise the goal's target amount and date are updated.
func CalculateGoalTarget(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, err := parseGoalID(r)
		if err != nil {
			http.Error(w, "invalid goal id", http.StatusBadRequest)
			return
		}

		var req struct {
			GoalType string `json:"goal_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode goal target request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.GoalType == "" {
			req.GoalType = engine.GoalTypeSavings
		}

		if _, err := db.GetGoalByID(r.Context(), pool, userID, goalID); err != nil {
			log.Printf("ERROR: Goal id %d not found for user %d: %v", goalID, userID, err)
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}

		detector := engine.NewDetector(dbstore.NewStore(pool))
		profile, err := detector.DetectProfile(r.Context(), userID, time.Now().UTC())
		if err != nil {
			log.Printf("ERROR: Failed to detect profile for goal target - user %d: %v", userID, err)
			http.Error(w, "failed to detect profile", http.StatusInternalServerError)
			return
		}

		target := engine.CalculateGoalTarget(req.GoalType, profile)

		if r.URL.Query().Get("preview") != "true" {
			targetDate := time.Now().UTC().AddDate(0, 0, target.TimeframeMonths*30)
			if err := db.UpdateGoalTarget(r.Context(), pool, userID, goalID, target.TargetAmount, targetDate); err != nil {
				log.Printf("ERROR: Failed to update goal %d target for user %d: %v", goalID, userID, err)
				http.Error(w, "failed to update goal target", http.StatusInternalServerError)
				return
			}
			dbstore.DelGoalCache(goalsCacheKey(userID))
			log.Printf("INFO: Updated goal %d target for user %d - %.0f over %d months", goalID, userID, target.TargetAmount, target.TimeframeMonths)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(target)
	}
}

// GetGoalRecommendations ranks candidate goal types by confidence against
// the caller's current profile.
func GetGoalRecommendations(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		detector := engine.NewDetector(dbstore.NewStore(pool))
		profile, err := detector.DetectProfile(r.Context(), userID, time.Now().UTC())
		if err != nil {
			log.Printf("ERROR: Failed to detect profile for recommendations - user %d: %v", userID, err)
			http.Error(w, "failed to detect profile", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(engine.RecommendGoalTargets(profile))
	}
}

// AllocateToGoals runs one priority-proportional allocation over the
// requested goals. Available funds is an opaque figure from the caller's
// liquidity calculation; every run is a new allocation event.
func AllocateToGoals(pool *pgxpool.Pool, publisher events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			GoalIDs        []int64 `json:"goal_ids"`
			AvailableFunds float64 `json:"available_funds"`
			Atomic         bool    `json:"atomic"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode allocation request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		// One allocation in flight per user
		lock := allocationLocks.Get(userID)
		lock.Lock()
		defer lock.Unlock()

		accounts, err := db.GetActiveAccounts(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to load accounts for allocation snapshot - user %d: %v", userID, err)
			http.Error(w, "failed to load accounts", http.StatusInternalServerError)
			return
		}
		snapshot, err := json.Marshal(accountSnapshot(accounts))
		if err != nil {
			log.Printf("ERROR: Failed to marshal account snapshot for user %d: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		allocator := engine.NewAllocator(dbstore.NewStore(pool))
		result, err := allocator.Allocate(r.Context(), engine.AllocationInput{
			UserID:          userID,
			GoalIDs:         req.GoalIDs,
			AvailableFunds:  req.AvailableFunds,
			AccountSnapshot: snapshot,
			Atomic:          req.Atomic,
		})
		if err != nil {
			switch {
			case errors.Is(err, engine.ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, engine.ErrGoalsNotFound):
				http.Error(w, "no eligible goals found", http.StatusNotFound)
			case errors.Is(err, engine.ErrInsufficientFunds):
				http.Error(w, "allocations exceed available funds", http.StatusConflict)
			default:
				http.Error(w, "allocation failed", http.StatusInternalServerError)
			}
			log.Printf("ERROR: Allocation failed for user %d: %v", userID, err)
			return
		}

		dbstore.DelGoalCache(goalsCacheKey(userID))

		for _, record := range result.Records {
			event := events.AllocationRecorded{
				RecordID:          record.ID,
				UserID:            record.UserID,
				GoalID:            record.GoalID,
				Amount:            record.Amount,
				CalculationMethod: record.CalculationMethod,
				OccurredAt:        record.CreatedAt,
			}
			if err := publisher.Publish(event); err != nil {
				// Event delivery is best effort; the records are committed
				log.Printf("ERROR: Failed to publish allocation event for goal %d: %v", record.GoalID, err)
			}
		}

		log.Printf("INFO: Allocated %.2f across %d goals for user %d - %d records written",
			req.AvailableFunds, len(result.Allocations), userID, result.RecordsWritten)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(result)
	}
}

func GetAllocationHistory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, err := parseGoalID(r)
		if err != nil {
			http.Error(w, "invalid goal id", http.StatusBadRequest)
			return
		}

		records, err := db.GetAllocationsForGoal(r.Context(), pool, userID, goalID)
		if err != nil {
			log.Printf("ERROR: Failed to get allocation history for goal %d, user %d: %v", goalID, userID, err)
			http.Error(w, "failed to get allocation history", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}

type snapshotEntry struct {
	AccountID string  `json:"account_id"`
	Type      string  `json:"type"`
	Balance   float64 `json:"balance"`
}

// accountSnapshot captures the balances the allocation decision was made
// against, stored verbatim on every record.
func accountSnapshot(accounts []models.Account) map[string][]snapshotEntry {
	entries := make([]snapshotEntry, 0, len(accounts))
	for _, account := range accounts {
		entries = append(entries, snapshotEntry{
			AccountID: account.ID,
			Type:      account.Type,
			Balance:   account.CurrentBalance,
		})
	}
	return map[string][]snapshotEntry{"accounts": entries}
}

func parseGoalID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "goal_id")
	goalID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid goal id %q", raw)
	}
	return goalID, nil
}

func goalsCacheKey(userID int64) string {
	return fmt.Sprintf("goals:%d", userID)
}
