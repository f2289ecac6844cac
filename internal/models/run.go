package models

import "time"

// RunStatus is the lifecycle of a persisted Production Run, distinct
// from ProductionResult.Status: a run can be queued or running before
// an orchestrator result even exists.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ProductionRun is the ambient, persisted record of one end-to-end
// submission: its concept, budget, status, and eventual result. It
// exists independently of the in-memory orchestration types so a
// submission survives process restarts between enqueue and pickup.
type ProductionRun struct {
	RunID       string             `json:"run_id"`
	Concept     string             `json:"concept"`
	TotalBudget float64            `json:"total_budget"`
	Status      RunStatus          `json:"status"`
	Result      *ProductionResult  `json:"result,omitempty"`
	EDL         *EDL               `json:"edl,omitempty"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
