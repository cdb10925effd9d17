package domain

import "time"

// Assignment statuses
const (
	AssignmentStatusDraft            = "draft"
	AssignmentStatusPending          = "pending"
	AssignmentStatusInReview         = "in_review"
	AssignmentStatusApproved         = "approved"
	AssignmentStatusRejected         = "rejected"
	AssignmentStatusChangesRequested = "changes_requested"
)

// Decision an approver's verdict on the current step
type Decision string

// Decisions
const (
	DecisionApprove        Decision = "approve"
	DecisionReject         Decision = "reject"
	DecisionRequestChanges Decision = "request_changes"
)

// Valid reports whether the decision is one of the three known verdicts
func (d Decision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionRequestChanges:
		return true
	}
	return false
}

// History action vocabulary, fixed independently of the decision enum so the
// audit UI never tracks internal renames
const (
	HistoryActionSubmitted         = "submitted"
	HistoryActionApproved          = "approved"
	HistoryActionRejected          = "rejected"
	HistoryActionRevisionRequested = "revision_requested"
	HistoryActionResubmitted       = "resubmitted"
)

// HistoryAction maps a decision to its ledger action label
func (d Decision) HistoryAction() string {
	switch d {
	case DecisionApprove:
		return HistoryActionApproved
	case DecisionReject:
		return HistoryActionRejected
	case DecisionRequestChanges:
		return HistoryActionRevisionRequested
	}
	return ""
}

// IsTerminalStatus reports whether a status permits no further transitions
func IsTerminalStatus(status string) bool {
	return status == AssignmentStatusApproved || status == AssignmentStatusRejected
}

// StepHistoryEntry one transition in the assignment's denormalized history
type StepHistoryEntry struct {
	StepID    *uint64   `json:"step_id,omitempty"`
	Status    string    `json:"status"`
	ActorID   string    `json:"actor_id,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// PostApprovalAssignment binds one post to one workflow and its current step.
// current_step_id is null iff the assignment is terminal. The version column
// backs the compare-and-swap used when two approvers race on the same step.
type PostApprovalAssignment struct {
	ID            uint64             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID        uint64             `gorm:"column:post_id;uniqueIndex" json:"post_id"`
	WorkflowID    uint64             `gorm:"column:workflow_id;index" json:"workflow_id"`
	CurrentStepID *uint64            `gorm:"column:current_step_id;index" json:"current_step_id"`
	Status        string             `gorm:"column:status;size:32;default:pending;index" json:"status"`
	StepHistory   []StepHistoryEntry `gorm:"column:step_history;type:json;serializer:json" json:"step_history"`
	Version       uint64             `gorm:"column:version;default:0" json:"-"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PostApprovalAssignment) TableName() string { return "post_approval_assignments" }

// ActionDetails structured free-text attached to a ledger entry.
// Only written when at least one field is present.
type ActionDetails struct {
	Comment string `json:"comment,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Empty reports whether there is nothing worth persisting
func (d ActionDetails) Empty() bool {
	return d.Comment == "" && d.Reason == ""
}

// ApprovalHistoryEntry immutable ledger row for one state transition.
// Rows are only ever inserted, never updated or deleted.
type ApprovalHistoryEntry struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID         uint64         `gorm:"column:post_id;index" json:"post_id"`
	Action         string         `gorm:"column:action;size:32" json:"action"`
	ActorID        string         `gorm:"column:actor_id;size:64" json:"actor_id"`
	PreviousStatus string         `gorm:"column:previous_status;size:32" json:"previous_status"`
	NewStatus      string         `gorm:"column:new_status;size:32" json:"new_status"`
	WorkflowStepID *uint64        `gorm:"column:workflow_step_id" json:"workflow_step_id,omitempty"`
	ActionDetails  *ActionDetails `gorm:"column:action_details;type:json;serializer:json" json:"action_details,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ApprovalHistoryEntry) TableName() string { return "approval_history_entries" }

// DecisionRequest payload for a single advance call
type DecisionRequest struct {
	Decision Decision `json:"decision" binding:"required"`
	Comment  string   `json:"comment"`
	Reason   string   `json:"reason"`
}

// BulkDecisionRequest payload for a bulk advance call
type BulkDecisionRequest struct {
	PostIDs  []uint64 `json:"post_ids" binding:"required"`
	Decision Decision `json:"decision" binding:"required"`
	Comment  string   `json:"comment"`
	Reason   string   `json:"reason"`
}

// BulkFailure one post that failed inside a bulk decision
type BulkFailure struct {
	PostID uint64 `json:"post_id"`
	Error  string `json:"error"`
}

// BulkResult exhaustive partition of a bulk decision's outcome:
// len(Succeeded) + len(Failed) always equals the number of requested posts
type BulkResult struct {
	Succeeded []uint64      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// EnsureAssignmentRequest payload for binding a post into review
type EnsureAssignmentRequest struct {
	WorkflowID *uint64 `json:"workflow_id"`
}
