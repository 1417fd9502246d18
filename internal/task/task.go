// Package task implements the generic asynchronous task engine (C3): a
// bounded worker pool that runs submitted work units with progress
// reporting, cooperative cancellation, and a bounded in-memory retention
// window.
package task

import "time"

// Type identifies the kind of work a task performs.
type Type string

const (
	TypeMigration  Type = "MIGRATION"
	TypeSync       Type = "SYNC"
	TypeCleanup    Type = "CLEANUP"
	TypeExport     Type = "EXPORT"
	TypeImport     Type = "IMPORT"
	TypeStatistics Type = "STATISTICS"
	TypeCompare    Type = "COMPARE"
)

// State is a point in the task state machine. PENDING -> RUNNING ->
// {COMPLETED|FAILED|CANCELLED}; the three latter states are terminal.
type State string

const (
	StatePending   State = "PENDING"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
	StateCancelled State = "CANCELLED"
)

// IsTerminal reports whether s is a final state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Task is the server-managed record of one unit of asynchronous work. Its
// fields beyond ID/Type/CreatedAt are mutated only by the engine holding
// the task's own lock.
type Task struct {
	ID        string
	Type      Type
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	State             State
	ProgressPercent   int
	ProgressMessage   string
	Result            interface{}
	Err               *ErrorPayload
	CancelRequested   bool
}

// ErrorPayload is the task's FAILED-state error detail.
type ErrorPayload struct {
	Code    string            `json:"error_code"`
	Message string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// Snapshot is an immutable copy of a Task safe to hand to callers outside
// the engine's lock.
type Snapshot struct {
	ID              string        `json:"id"`
	Type            Type          `json:"type"`
	State           State         `json:"state"`
	CreatedAt       time.Time     `json:"created_at"`
	StartedAt       time.Time     `json:"started_at,omitempty"`
	EndedAt         time.Time     `json:"ended_at,omitempty"`
	ProgressPercent int           `json:"progress_percent"`
	ProgressMessage string        `json:"progress_message,omitempty"`
	Result          interface{}   `json:"result,omitempty"`
	Error           *ErrorPayload `json:"error,omitempty"`
}

func (t *Task) snapshot() Snapshot {
	return Snapshot{
		ID:              t.ID,
		Type:            t.Type,
		State:           t.State,
		CreatedAt:       t.CreatedAt,
		StartedAt:       t.StartedAt,
		EndedAt:         t.EndedAt,
		ProgressPercent: t.ProgressPercent,
		ProgressMessage: t.ProgressMessage,
		Result:          t.Result,
		Error:           t.Err,
	}
}
