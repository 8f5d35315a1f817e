package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finsight-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MethodPriorityProportional tags AllocationRecords produced by the
// priority-weighted proportional split.
const MethodPriorityProportional = "priority_proportional"

// priorityWeights is the fixed priority-to-weight mapping.
var priorityWeights = map[string]int64{
	models.GoalPriorityHigh:   3,
	models.GoalPriorityMedium: 2,
	models.GoalPriorityLow:    1,
}

// AllocationInput is one allocation request. AvailableFunds is an opaque
// figure computed by the liquidity collaborator; AccountSnapshot is the
// account state the decision was made against, stored verbatim on every
// record for the audit trail. Atomic requests all-or-nothing persistence
// across goals instead of the default per-goal continue-on-error policy.
type AllocationInput struct {
	UserID          int64
	GoalIDs         []int64
	AvailableFunds  float64
	AccountSnapshot json.RawMessage
	Atomic          bool
}

// AllocationResult reports one allocation run: the amount assigned per
// eligible goal (zero amounts included), any per-goal write failures, and
// how many records were actually written.
type AllocationResult struct {
	Allocations    map[int64]float64 `json:"allocations"`
	AvailableFunds float64           `json:"available_funds"`
	Method         string            `json:"method"`
	RecordsWritten int               `json:"records_written"`
	Failures       map[int64]string  `json:"failures,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`

	// Records holds the audit rows that were actually committed, for
	// callers that publish or inspect them. Not part of the response body.
	Records []*models.AllocationRecord `json:"-"`
}

// Allocator distributes available funds across active goals by priority and
// persists the decisions as an append-only ledger. It does not serialize
// concurrent runs for the same user; the caller must hold the per-user lock.
type Allocator struct {
	store GoalStore
}

func NewAllocator(store GoalStore) *Allocator {
	return &Allocator{store: store}
}

// Allocate splits in.AvailableFunds across the requested goals
// proportionally to priority weight (high=3, medium=2, low=1), rounding each
// share down to whole units and handing the remainder to the
// highest-priority goal (first in input order on ties). Every goal receiving
// a positive amount gets one AllocationRecord and a matching current_amount
// increment, written together per goal.
//
// Each invocation is a new allocation event, not an idempotent upsert:
// re-running the same inputs appends new records and advances progress
// again. Callers own not allocating the same funds twice.
func (a *Allocator) Allocate(ctx context.Context, in AllocationInput) (*AllocationResult, error) {
	if len(in.GoalIDs) == 0 {
		return nil, fmt.Errorf("%w: empty goal id list", ErrInvalidInput)
	}
	if in.AvailableFunds < 0 {
		return nil, fmt.Errorf("%w: negative available funds", ErrInvalidInput)
	}

	goals, err := a.store.ActiveGoalsByIDs(ctx, in.UserID, in.GoalIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve goals: %w", err)
	}
	eligible := orderByRequest(goals, in.GoalIDs)
	if len(eligible) == 0 {
		return nil, ErrGoalsNotFound
	}
	// An atomic run is all-or-nothing across the request itself: any id
	// that fails to resolve rejects the whole request before computation.
	// Non-atomic runs skip ineligible ids and fund the rest.
	if in.Atomic && len(eligible) != countUniqueIDs(in.GoalIDs) {
		return nil, ErrGoalsNotFound
	}

	amounts, err := splitByPriority(eligible, in.AvailableFunds)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snapshot := in.AccountSnapshot
	if snapshot == nil {
		snapshot = json.RawMessage(`{}`)
	}

	result := &AllocationResult{
		Allocations:    make(map[int64]float64, len(eligible)),
		AvailableFunds: in.AvailableFunds,
		Method:         MethodPriorityProportional,
		Timestamp:      now,
	}

	var records []*models.AllocationRecord
	for i, goal := range eligible {
		result.Allocations[goal.ID] = amounts[i]
		if amounts[i] <= 0 {
			continue
		}
		records = append(records, &models.AllocationRecord{
			ID:                uuid.New().String(),
			UserID:            in.UserID,
			GoalID:            goal.ID,
			Amount:            amounts[i],
			CalculationMethod: MethodPriorityProportional,
			AccountSnapshot:   snapshot,
			CreatedAt:         now,
		})
	}

	if in.Atomic {
		if err := a.store.ApplyAllocationBatch(ctx, records); err != nil {
			return nil, fmt.Errorf("apply allocation batch: %w", err)
		}
		result.RecordsWritten = len(records)
		result.Records = records
		return result, nil
	}

	// Continue-on-error: one goal's write failure must not abort the
	// remaining goals' record/update pairs.
	for _, record := range records {
		if err := a.store.ApplyAllocation(ctx, record); err != nil {
			if result.Failures == nil {
				result.Failures = make(map[int64]string)
			}
			result.Failures[record.GoalID] = err.Error()
			continue
		}
		result.RecordsWritten++
		result.Records = append(result.Records, record)
	}
	return result, nil
}

func countUniqueIDs(goalIDs []int64) int {
	seen := make(map[int64]struct{}, len(goalIDs))
	for _, id := range goalIDs {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// orderByRequest reorders resolved goals to match the requested id order,
// which fixes the remainder tie-break deterministically.
func orderByRequest(goals []models.Goal, goalIDs []int64) []models.Goal {
	byID := make(map[int64]models.Goal, len(goals))
	for _, goal := range goals {
		byID[goal.ID] = goal
	}
	ordered := make([]models.Goal, 0, len(goals))
	for _, id := range goalIDs {
		if goal, ok := byID[id]; ok {
			ordered = append(ordered, goal)
			delete(byID, id)
		}
	}
	return ordered
}

// splitByPriority computes the whole-unit proportional split. The sum of
// the returned amounts never exceeds the available funds; a violation means
// a logic defect and aborts with ErrInsufficientFunds before any write.
func splitByPriority(goals []models.Goal, availableFunds float64) ([]float64, error) {
	funds := decimal.NewFromFloat(availableFunds)
	wholeFunds := funds.Floor()

	var totalWeight int64
	for _, goal := range goals {
		totalWeight += goalWeight(goal)
	}

	shares := make([]decimal.Decimal, len(goals))
	allocated := decimal.Zero
	for i, goal := range goals {
		shares[i] = funds.
			Mul(decimal.NewFromInt(goalWeight(goal))).
			Div(decimal.NewFromInt(totalWeight)).
			Floor()
		allocated = allocated.Add(shares[i])
	}

	// Rounding remainder goes to the highest-priority goal, first in
	// request order among ties.
	remainder := wholeFunds.Sub(allocated)
	if remainder.IsPositive() {
		top := 0
		for i := range goals {
			if goalWeight(goals[i]) > goalWeight(goals[top]) {
				top = i
			}
		}
		shares[top] = shares[top].Add(remainder)
		allocated = allocated.Add(remainder)
	}

	if allocated.GreaterThan(funds) {
		return nil, fmt.Errorf("%w: computed %s against %s available",
			ErrInsufficientFunds, allocated.String(), funds.String())
	}

	amounts := make([]float64, len(shares))
	for i, share := range shares {
		amounts[i] = share.InexactFloat64()
	}
	return amounts, nil
}

func goalWeight(goal models.Goal) int64 {
	if weight, ok := priorityWeights[goal.Priority]; ok {
		return weight
	}
	return priorityWeights[models.GoalPriorityLow]
}
