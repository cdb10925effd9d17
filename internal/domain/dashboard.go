package domain

import "time"

// Implicit single-step review defaults, shown when a post needs approval
// through the boolean rule path rather than an explicit workflow
const (
	ImplicitStepName  = "Single-step review"
	ImplicitStepOrder = 1
)

// DashboardRow a projected, reconciled view of one pending assignment
// for display to an approver
type DashboardRow struct {
	PostID           uint64     `json:"post_id"`
	Title            string     `json:"title"`
	AuthorID         string     `json:"author_id"`
	OwnerID          string     `json:"owner_id"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	WorkflowID       *uint64    `json:"workflow_id,omitempty"`
	CurrentStepID    *uint64    `json:"current_step_id,omitempty"`
	StepName         string     `json:"step_name"`
	StepOrder        int        `json:"step_order"`
	AssignmentStatus string     `json:"assignment_status"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
