package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"finsight-server/src/models"
)

// fakeGoalStore mimics the transactional goal store in memory. failOn makes
// single-goal writes fail; batchErr fails the whole batch path.
type fakeGoalStore struct {
	goals    map[int64]models.Goal
	applied  []*models.AllocationRecord
	failOn   map[int64]error
	batchErr error
	listErr  error
}

func (f *fakeGoalStore) ActiveGoalsByIDs(_ context.Context, userID int64, goalIDs []int64) ([]models.Goal, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Goal
	for _, id := range goalIDs {
		goal, ok := f.goals[id]
		if ok && goal.UserID == userID && goal.Active {
			out = append(out, goal)
		}
	}
	return out, nil
}

func (f *fakeGoalStore) ApplyAllocation(_ context.Context, record *models.AllocationRecord) error {
	if err := f.failOn[record.GoalID]; err != nil {
		return err
	}
	goal := f.goals[record.GoalID]
	goal.CurrentAmount += record.Amount
	f.goals[record.GoalID] = goal
	f.applied = append(f.applied, record)
	return nil
}

func (f *fakeGoalStore) ApplyAllocationBatch(_ context.Context, records []*models.AllocationRecord) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	for _, record := range records {
		if err := f.ApplyAllocation(context.Background(), record); err != nil {
			return err
		}
	}
	return nil
}

func threeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: map[int64]models.Goal{
		1: {ID: 1, UserID: 7, Priority: models.GoalPriorityHigh, Active: true},
		2: {ID: 2, UserID: 7, Priority: models.GoalPriorityMedium, Active: true},
		3: {ID: 3, UserID: 7, Priority: models.GoalPriorityLow, Active: true},
	}}
}

func TestAllocateProportionalSplit(t *testing.T) {
	store := threeGoalStore()
	result, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 2, 3},
		AvailableFunds: 600,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	want := map[int64]float64{1: 300, 2: 200, 3: 100}
	for id, amount := range want {
		if result.Allocations[id] != amount {
			t.Errorf("goal %d = %v, want %v", id, result.Allocations[id], amount)
		}
	}
	if result.RecordsWritten != 3 {
		t.Errorf("RecordsWritten = %d, want 3", result.RecordsWritten)
	}
	if result.Method != MethodPriorityProportional {
		t.Errorf("Method = %q, want %q", result.Method, MethodPriorityProportional)
	}
	if store.goals[1].CurrentAmount != 300 {
		t.Errorf("goal 1 progress = %v, want 300", store.goals[1].CurrentAmount)
	}
}

func TestAllocateRemainderToHighestPriority(t *testing.T) {
	result, err := NewAllocator(threeGoalStore()).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 2, 3},
		AvailableFunds: 601,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	want := map[int64]float64{1: 301, 2: 200, 3: 100}
	for id, amount := range want {
		if result.Allocations[id] != amount {
			t.Errorf("goal %d = %v, want %v", id, result.Allocations[id], amount)
		}
	}
}

func TestAllocateRemainderTieBreaksByRequestOrder(t *testing.T) {
	store := &fakeGoalStore{goals: map[int64]models.Goal{
		4: {ID: 4, UserID: 7, Priority: models.GoalPriorityHigh, Active: true},
		5: {ID: 5, UserID: 7, Priority: models.GoalPriorityHigh, Active: true},
	}}
	result, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{4, 5},
		AvailableFunds: 101,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if result.Allocations[4] != 51 || result.Allocations[5] != 50 {
		t.Errorf("got %v/%v, want the first requested goal to take the remainder (51/50)",
			result.Allocations[4], result.Allocations[5])
	}
}

func TestAllocateFractionalFunds(t *testing.T) {
	result, err := NewAllocator(threeGoalStore()).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 2, 3},
		AvailableFunds: 100.75,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	var total float64
	for _, amount := range result.Allocations {
		if amount != float64(int64(amount)) {
			t.Errorf("non-whole allocation %v", amount)
		}
		total += amount
	}
	if total > result.AvailableFunds {
		t.Errorf("allocated %v out of %v available", total, result.AvailableFunds)
	}
	if total != 100 {
		t.Errorf("allocated %v, want 100 (whole units only)", total)
	}
}

func TestAllocateZeroFunds(t *testing.T) {
	store := threeGoalStore()
	result, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 2, 3},
		AvailableFunds: 0,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for id, amount := range result.Allocations {
		if amount != 0 {
			t.Errorf("goal %d = %v, want 0", id, amount)
		}
	}
	if result.RecordsWritten != 0 || len(store.applied) != 0 {
		t.Errorf("wrote %d records on zero funds", len(store.applied))
	}
}

func TestAllocateInvalidInput(t *testing.T) {
	allocator := NewAllocator(threeGoalStore())

	if _, err := allocator.Allocate(context.Background(), AllocationInput{UserID: 7, AvailableFunds: 100}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty goal ids: err = %v, want ErrInvalidInput", err)
	}
	if _, err := allocator.Allocate(context.Background(), AllocationInput{UserID: 7, GoalIDs: []int64{1}, AvailableFunds: -5}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative funds: err = %v, want ErrInvalidInput", err)
	}
}

func TestAllocateNoEligibleGoals(t *testing.T) {
	store := threeGoalStore()
	inactive := store.goals[3]
	inactive.Active = false
	store.goals[3] = inactive

	// Unknown id, another user's goal, and an inactive goal.
	store.goals[9] = models.Goal{ID: 9, UserID: 8, Priority: models.GoalPriorityHigh, Active: true}

	if _, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{3, 9, 42},
		AvailableFunds: 100,
	}); !errors.Is(err, ErrGoalsNotFound) {
		t.Errorf("err = %v, want ErrGoalsNotFound", err)
	}
}

func TestAllocateSkipsIneligibleGoals(t *testing.T) {
	store := threeGoalStore()
	result, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 42},
		AvailableFunds: 100,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if result.Allocations[1] != 100 {
		t.Errorf("goal 1 = %v, want the full 100", result.Allocations[1])
	}
	if _, ok := result.Allocations[42]; ok {
		t.Error("unknown goal appeared in allocations")
	}
}

func TestAllocateAtomicRejectsIneligibleGoals(t *testing.T) {
	store := threeGoalStore()
	store.goals[9] = models.Goal{ID: 9, UserID: 8, Priority: models.GoalPriorityHigh, Active: true}

	_, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 9},
		AvailableFunds: 100,
		Atomic:         true,
	})
	if !errors.Is(err, ErrGoalsNotFound) {
		t.Fatalf("err = %v, want ErrGoalsNotFound", err)
	}
	if len(store.applied) != 0 {
		t.Errorf("atomic request with an unowned goal wrote %d records", len(store.applied))
	}
	if store.goals[1].CurrentAmount != 0 {
		t.Errorf("goal 1 advanced to %v on a rejected request", store.goals[1].CurrentAmount)
	}
}

func TestAllocateAtomicToleratesDuplicateIDs(t *testing.T) {
	store := threeGoalStore()
	result, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 2, 1},
		AvailableFunds: 100,
		Atomic:         true,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(result.Allocations) != 2 {
		t.Errorf("got %d allocations, want 2 (duplicate id counted once)", len(result.Allocations))
	}
}

func TestAllocatePartialFailure(t *testing.T) {
	store := threeGoalStore()
	store.failOn = map[int64]error{2: errors.New("deadlock detected")}

	result, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 2, 3},
		AvailableFunds: 600,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if result.RecordsWritten != 2 {
		t.Errorf("RecordsWritten = %d, want 2", result.RecordsWritten)
	}
	if result.Failures[2] == "" {
		t.Error("missing failure entry for goal 2")
	}
	if store.goals[1].CurrentAmount != 300 || store.goals[3].CurrentAmount != 100 {
		t.Errorf("surviving goals not updated: %v / %v",
			store.goals[1].CurrentAmount, store.goals[3].CurrentAmount)
	}
	if store.goals[2].CurrentAmount != 0 {
		t.Errorf("failed goal advanced to %v", store.goals[2].CurrentAmount)
	}
}

func TestAllocateAtomicFailureWritesNothing(t *testing.T) {
	store := threeGoalStore()
	store.batchErr = errors.New("serialization failure")

	_, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:         7,
		GoalIDs:        []int64{1, 2, 3},
		AvailableFunds: 600,
		Atomic:         true,
	})
	if err == nil {
		t.Fatal("expected the batch error to surface")
	}
	if len(store.applied) != 0 {
		t.Errorf("atomic failure left %d records behind", len(store.applied))
	}
}

func TestAllocateRecordContents(t *testing.T) {
	store := threeGoalStore()
	snapshot := json.RawMessage(`{"accounts":[{"id":"a1","balance":1200}]}`)

	result, err := NewAllocator(store).Allocate(context.Background(), AllocationInput{
		UserID:          7,
		GoalIDs:         []int64{1, 2, 3},
		AvailableFunds:  600,
		AccountSnapshot: snapshot,
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(result.Records))
	}

	seen := make(map[string]bool)
	for _, record := range store.applied {
		if record.ID == "" || seen[record.ID] {
			t.Errorf("record id %q not unique", record.ID)
		}
		seen[record.ID] = true
		if record.UserID != 7 {
			t.Errorf("record user = %d, want 7", record.UserID)
		}
		if record.CalculationMethod != MethodPriorityProportional {
			t.Errorf("record method = %q", record.CalculationMethod)
		}
		if string(record.AccountSnapshot) != string(snapshot) {
			t.Errorf("record snapshot = %s", record.AccountSnapshot)
		}
		if record.Amount != result.Allocations[record.GoalID] {
			t.Errorf("record amount %v != allocation %v for goal %d",
				record.Amount, result.Allocations[record.GoalID], record.GoalID)
		}
	}
}

func TestAllocateSumNeverExceedsFunds(t *testing.T) {
	for _, funds := range []float64{1, 5, 99.99, 100, 601, 1234.56, 99999} {
		result, err := NewAllocator(threeGoalStore()).Allocate(context.Background(), AllocationInput{
			UserID:         7,
			GoalIDs:        []int64{1, 2, 3},
			AvailableFunds: funds,
		})
		if err != nil {
			t.Fatalf("funds %v: %v", funds, err)
		}
		var total float64
		for _, amount := range result.Allocations {
			total += amount
		}
		if total > funds {
			t.Errorf("funds %v: allocated %v", funds, total)
		}
	}
}
