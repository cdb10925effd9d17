package domain

import "time"

// Workflow scope values
const (
	WorkflowScopeGlobal      = "global"
	WorkflowScopeTeam        = "team"
	WorkflowScopeDepartment  = "department"
	WorkflowScopeContentType = "content_type"
)

// Approver types
const (
	ApproverTypeUser = "user"
	ApproverTypeRole = "role"
	ApproverTypeTeam = "team"
)

// DefaultWorkflowName name given to the lazily bootstrapped single-step workflow
const DefaultWorkflowName = "Default Approval Workflow"

// DefaultApproverRef sentinel approver for the bootstrapped default step,
// resolved to the post owner by the notification layer
const DefaultApproverRef = "owner"

// ApprovalWorkflow an ordered set of approval steps applicable to a class of posts.
// DefaultMarker is non-null only for the bootstrapped default workflow; the
// unique index on (owner_id, default_marker) makes concurrent bootstrap
// converge on a single row.
type ApprovalWorkflow struct {
	ID            uint64                 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID       string                 `gorm:"column:owner_id;size:64;index;uniqueIndex:uq_workflow_owner_default" json:"owner_id"`
	Name          string                 `gorm:"column:name;size:255" json:"name"`
	Scope         string                 `gorm:"column:scope;size:32;default:global" json:"scope"`
	ScopeFilters  map[string]interface{} `gorm:"column:scope_filters;type:json;serializer:json" json:"scope_filters,omitempty"`
	IsActive      bool                   `gorm:"column:is_active;default:true" json:"is_active"`
	DefaultMarker *string                `gorm:"column:default_marker;size:16;uniqueIndex:uq_workflow_owner_default" json:"-"`
	Steps         []ApprovalWorkflowStep `gorm:"foreignKey:WorkflowID" json:"steps"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ApprovalWorkflow) TableName() string { return "approval_workflows" }

// ApprovalWorkflowStep a single gate in a workflow.
// step_order is unique within a workflow; ties are rejected at creation.
type ApprovalWorkflowStep struct {
	ID                     uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorkflowID             uint64    `gorm:"column:workflow_id;index;uniqueIndex:uq_step_workflow_order" json:"workflow_id"`
	StepOrder              int       `gorm:"column:step_order;uniqueIndex:uq_step_workflow_order" json:"step_order"`
	StepName               string    `gorm:"column:step_name;size:255" json:"step_name"`
	ApproverType           string    `gorm:"column:approver_type;size:16;default:user" json:"approver_type"`
	ApproverRef            string    `gorm:"column:approver_ref;size:64;index" json:"approver_ref"`
	MinApprovals           int       `gorm:"column:min_approvals;default:1" json:"min_approvals"`
	IsOptional             bool      `gorm:"column:is_optional;default:false" json:"is_optional"`
	SLAHours               *int      `gorm:"column:sla_hours" json:"sla_hours,omitempty"`
	AutoEscalateAfterHours *int      `gorm:"column:auto_escalate_after_hours" json:"auto_escalate_after_hours,omitempty"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ApprovalWorkflowStep) TableName() string { return "approval_workflow_steps" }

// FirstStep returns the step with the lowest step_order, or nil for an empty workflow
func (w *ApprovalWorkflow) FirstStep() *ApprovalWorkflowStep {
	var first *ApprovalWorkflowStep
	for i := range w.Steps {
		if first == nil || w.Steps[i].StepOrder < first.StepOrder {
			first = &w.Steps[i]
		}
	}
	return first
}

// StepByID returns the step with the given id, or nil
func (w *ApprovalWorkflow) StepByID(stepID uint64) *ApprovalWorkflowStep {
	for i := range w.Steps {
		if w.Steps[i].ID == stepID {
			return &w.Steps[i]
		}
	}
	return nil
}

// NextStepAfter returns the step with the smallest step_order strictly greater
// than the given order, or nil when the given step is the last gate
func (w *ApprovalWorkflow) NextStepAfter(order int) *ApprovalWorkflowStep {
	var next *ApprovalWorkflowStep
	for i := range w.Steps {
		if w.Steps[i].StepOrder <= order {
			continue
		}
		if next == nil || w.Steps[i].StepOrder < next.StepOrder {
			next = &w.Steps[i]
		}
	}
	return next
}

// CreateWorkflowRequest payload for creating a workflow with its steps
type CreateWorkflowRequest struct {
	Name         string                      `json:"name" binding:"required"`
	Scope        string                      `json:"scope"`
	ScopeFilters map[string]interface{}      `json:"scope_filters"`
	Steps        []CreateWorkflowStepRequest `json:"steps" binding:"required"`
}

// CreateWorkflowStepRequest one step in a workflow creation payload
type CreateWorkflowStepRequest struct {
	StepOrder              int    `json:"step_order" binding:"required"`
	StepName               string `json:"step_name" binding:"required"`
	ApproverType           string `json:"approver_type"`
	ApproverRef            string `json:"approver_ref" binding:"required"`
	MinApprovals           int    `json:"min_approvals"`
	IsOptional             bool   `json:"is_optional"`
	SLAHours               *int   `json:"sla_hours"`
	AutoEscalateAfterHours *int   `json:"auto_escalate_after_hours"`
}
