package model

import (
	"encoding/json"
	"strings"
)

// Known task statuses reported by the scheduler. Any other value is passed through.
const (
	StatusStart     = "start"
	StatusScheduled = "scheduled"
	StatusRunning   = "running"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusDisabled  = "disabled"

	// StatusUnknown is substituted when a record carries no status at all.
	StatusUnknown = "unknown"
)

// TaskRecord is one job execution/definition as returned by GET /api/jobs.
//
// Every field is optional on the wire; missing or null values decode to the zero value.
type TaskRecord struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	TaskType       string          `json:"task_type"`
	Cron           string          `json:"cron,omitempty"`
	Status         string          `json:"status,omitempty"`
	LastRun        string          `json:"last_run,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Message        string          `json:"message,omitempty"`
	ExecutionCount int64           `json:"execution_count"`
}

// Executions clamps the execution count to a non-negative value.
func (t TaskRecord) Executions() int64 {
	if t.ExecutionCount < 0 {
		return 0
	}
	return t.ExecutionCount
}

// VisibleMessage is the trimmed message, or "" when blank.
func (t TaskRecord) VisibleMessage() string {
	return strings.TrimSpace(t.Message)
}
