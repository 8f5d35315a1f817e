package events

import "time"

// AllocationRecorded is emitted after an allocation record has been
// committed, for downstream consumers (dashboards, notifications).
type AllocationRecorded struct {
	RecordID          string    `json:"record_id"`
	UserID            int64     `json:"user_id"`
	GoalID            int64     `json:"goal_id"`
	Amount            float64   `json:"amount"`
	CalculationMethod string    `json:"calculation_method"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Publisher delivers events to whatever destination it was configured
// with at construction time.
type Publisher interface {
	Publish(event any) error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(event any) error { return nil }
