package service

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/internal/repository"
	"github.com/publora/publora-backend/pkg/cache"
	pkglogger "github.com/publora/publora-backend/pkg/logger"
	"gorm.io/gorm"
)

var approvalDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "approval_decisions_total",
		Help: "Total number of approval decisions processed",
	},
	[]string{"decision", "outcome"},
)

// DecisionInput optional free text accompanying a decision
type DecisionInput struct {
	Comment string
	Reason  string
}

// ApprovalService the assignment engine: binds posts to workflows and
// advances them through the review state machine
type ApprovalService interface {
	EnsureAssignment(postID uint64, ownerID string, workflowID *uint64) (*domain.PostApprovalAssignment, error)
	Advance(postID uint64, actorID string, decision domain.Decision, input DecisionInput) (*domain.PostApprovalAssignment, error)
	BulkAdvance(postIDs []uint64, actorID string, decision domain.Decision, input DecisionInput) *domain.BulkResult
	Resubmit(postID uint64, actorID string) (*domain.PostApprovalAssignment, error)
	GetAssignment(postID uint64) (*domain.PostApprovalAssignment, error)
	GetHistory(postID uint64) ([]*domain.ApprovalHistoryEntry, error)
}

type approvalService struct {
	assignments repository.AssignmentRepository
	history     repository.ApprovalHistoryRepository
	workflows   WorkflowService
	notifier    NotificationService
	cache       cache.Service
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	assignments repository.AssignmentRepository,
	history repository.ApprovalHistoryRepository,
	workflows WorkflowService,
	notifier NotificationService,
	cacheService cache.Service,
) ApprovalService {
	return &approvalService{
		assignments: assignments,
		history:     history,
		workflows:   workflows,
		notifier:    notifier,
		cache:       cacheService,
	}
}

// effect is a side effect requested by a state transition. Effects are
// collected by the pure transition step and performed only after the
// assignment row is committed; none of them can fail the transition.
type effect struct {
	notifyStep       *domain.ApprovalWorkflowStep // notify this step's approvers
	notificationType string
	historyEntry     *domain.ApprovalHistoryEntry // append to the decision ledger
}

// transition the computed outcome of one decision against one assignment
type transition struct {
	status        string
	currentStepID *uint64
	effects       []effect
}

// computeTransition applies the decision table. Pure: no I/O; the caller
// commits the new state and performs the returned effects afterwards.
func computeTransition(
	assignment *domain.PostApprovalAssignment,
	workflow *domain.ApprovalWorkflow,
	actorID string,
	decision domain.Decision,
	input DecisionInput,
) (*transition, error) {
	if !decision.Valid() {
		return nil, common.ErrInvalidDecision
	}
	if domain.IsTerminalStatus(assignment.Status) {
		return nil, common.ErrAssignmentFinalized
	}
	if assignment.CurrentStepID == nil {
		return nil, common.ErrAssignmentFinalized
	}

	currentStep := workflow.StepByID(*assignment.CurrentStepID)
	if currentStep == nil {
		return nil, common.ErrWorkflowUnavailable
	}

	t := &transition{}
	var details *domain.ActionDetails
	if d := (domain.ActionDetails{Comment: input.Comment, Reason: input.Reason}); !d.Empty() {
		details = &d
	}

	switch decision {
	case domain.DecisionApprove:
		if next := workflow.NextStepAfter(currentStep.StepOrder); next != nil {
			t.status = domain.AssignmentStatusInReview
			t.currentStepID = &next.ID
			t.effects = append(t.effects, effect{
				notifyStep:       next,
				notificationType: domain.NotificationTypeStepAdvanced,
			})
		} else {
			t.status = domain.AssignmentStatusApproved
			t.currentStepID = nil
		}
	case domain.DecisionReject:
		t.status = domain.AssignmentStatusRejected
		t.currentStepID = nil
	case domain.DecisionRequestChanges:
		// the step pointer stays put so the ledger shows where review stalled;
		// Resubmit rewinds to the first step
		t.status = domain.AssignmentStatusChangesRequested
		t.currentStepID = assignment.CurrentStepID
	}

	t.effects = append(t.effects, effect{
		historyEntry: &domain.ApprovalHistoryEntry{
			PostID:         assignment.PostID,
			Action:         decision.HistoryAction(),
			ActorID:        actorID,
			PreviousStatus: assignment.Status,
			NewStatus:      t.status,
			WorkflowStepID: assignment.CurrentStepID,
			ActionDetails:  details,
		},
	})
	return t, nil
}

// stepRecipients resolves who to notify for a step. For user steps that is
// the approver directly; role and team references are forwarded as-is and
// expanded by the delivery layer, which owns group membership.
func stepRecipients(step *domain.ApprovalWorkflowStep) []string {
	if step == nil || step.ApproverRef == "" {
		return nil
	}
	return []string{step.ApproverRef}
}

// EnsureAssignment binds a post to a workflow exactly once. Repeat calls
// return the existing assignment untouched.
func (s *approvalService) EnsureAssignment(postID uint64, ownerID string, workflowID *uint64) (*domain.PostApprovalAssignment, error) {
	existing, err := s.assignments.FindByPostID(postID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	workflow, err := s.workflows.ResolveWorkflow(ownerID, workflowID)
	if err != nil {
		return nil, err
	}
	firstStep := workflow.FirstStep()
	if firstStep == nil {
		return nil, common.ErrWorkflowUnavailable
	}

	assignment := &domain.PostApprovalAssignment{
		PostID:        postID,
		WorkflowID:    workflow.ID,
		CurrentStepID: &firstStep.ID,
		Status:        domain.AssignmentStatusPending,
		StepHistory: []domain.StepHistoryEntry{
			{StepID: &firstStep.ID, Status: domain.AssignmentStatusPending, StartedAt: time.Now()},
		},
	}

	if err := s.assignments.Create(assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race; the other caller's assignment is the one
			return s.assignments.FindByPostID(postID)
		}
		return nil, err
	}

	s.recordHistory(&domain.ApprovalHistoryEntry{
		PostID:         postID,
		Action:         domain.HistoryActionSubmitted,
		ActorID:        ownerID,
		PreviousStatus: domain.AssignmentStatusDraft,
		NewStatus:      domain.AssignmentStatusPending,
		WorkflowStepID: &firstStep.ID,
	})
	s.notifyStep(postID, firstStep, domain.NotificationTypeApprovalRequested)
	s.invalidateDashboards(firstStep)

	return assignment, nil
}

// Advance applies one decision to a post's assignment. The assignment row is
// the source of truth and is committed first; ledger and notification writes
// run after it and are best-effort. One retry on a version conflict.
func (s *approvalService) Advance(postID uint64, actorID string, decision domain.Decision, input DecisionInput) (*domain.PostApprovalAssignment, error) {
	if !decision.Valid() {
		return nil, common.ErrInvalidDecision
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		assignment, err := s.advanceOnce(postID, actorID, decision, input)
		if err == nil {
			approvalDecisionsTotal.WithLabelValues(string(decision), "ok").Inc()
			return assignment, nil
		}
		lastErr = err
		if !errors.Is(err, common.ErrConcurrentModification) {
			break
		}
		// conflicting writer won the CAS; re-read and retry once
	}
	approvalDecisionsTotal.WithLabelValues(string(decision), "error").Inc()
	return nil, lastErr
}

func (s *approvalService) advanceOnce(postID uint64, actorID string, decision domain.Decision, input DecisionInput) (*domain.PostApprovalAssignment, error) {
	assignment, err := s.assignments.FindByPostID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrAssignmentNotFound
		}
		return nil, err
	}

	workflow, err := s.workflows.GetWorkflow(assignment.WorkflowID)
	if err != nil {
		return nil, err
	}

	t, err := computeTransition(assignment, workflow, actorID, decision, input)
	if err != nil {
		return nil, err
	}

	expectedVersion := assignment.Version
	previousStatus := assignment.Status
	notifiedSteps := collectNotifySteps(t)

	assignment.Status = t.status
	assignment.CurrentStepID = t.currentStepID
	assignment.StepHistory = append(assignment.StepHistory, domain.StepHistoryEntry{
		StepID:    t.currentStepID,
		Status:    t.status,
		ActorID:   actorID,
		StartedAt: time.Now(),
	})

	if err := s.assignments.UpdateTransition(assignment, expectedVersion); err != nil {
		return nil, err
	}

	// transition committed; everything below is best-effort
	for _, e := range t.effects {
		if e.historyEntry != nil {
			s.recordHistory(e.historyEntry)
		}
		if e.notifyStep != nil {
			s.notifyStep(postID, e.notifyStep, e.notificationType)
		}
	}
	s.invalidateDashboards(notifiedSteps...)

	pkglogger.GetLogger().Info().
		Uint64("post_id", postID).
		Str("actor_id", actorID).
		Str("decision", string(decision)).
		Str("from", previousStatus).
		Str("to", assignment.Status).
		Msg("approval transition")

	return assignment, nil
}

func collectNotifySteps(t *transition) []*domain.ApprovalWorkflowStep {
	var steps []*domain.ApprovalWorkflowStep
	for _, e := range t.effects {
		if e.notifyStep != nil {
			steps = append(steps, e.notifyStep)
		}
	}
	return steps
}

// BulkAdvance applies one decision to many posts independently. A failing
// post never aborts the rest; the result partition is exhaustive.
func (s *approvalService) BulkAdvance(postIDs []uint64, actorID string, decision domain.Decision, input DecisionInput) *domain.BulkResult {
	result := &domain.BulkResult{
		Succeeded: make([]uint64, 0, len(postIDs)),
		Failed:    make([]domain.BulkFailure, 0),
	}

	for _, postID := range postIDs {
		if _, err := s.Advance(postID, actorID, decision, input); err != nil {
			result.Failed = append(result.Failed, domain.BulkFailure{
				PostID: postID,
				Error:  err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, postID)
	}
	return result
}

// Resubmit moves a changes_requested assignment back to pending at the first
// step, so every approver re-reviews the revised content.
func (s *approvalService) Resubmit(postID uint64, actorID string) (*domain.PostApprovalAssignment, error) {
	assignment, err := s.assignments.FindByPostID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.Status != domain.AssignmentStatusChangesRequested {
		return nil, common.ErrNotAwaitingResubmit
	}

	workflow, err := s.workflows.GetWorkflow(assignment.WorkflowID)
	if err != nil {
		return nil, err
	}
	firstStep := workflow.FirstStep()
	if firstStep == nil {
		return nil, common.ErrWorkflowUnavailable
	}

	expectedVersion := assignment.Version
	previousStatus := assignment.Status

	assignment.Status = domain.AssignmentStatusPending
	assignment.CurrentStepID = &firstStep.ID
	assignment.StepHistory = append(assignment.StepHistory, domain.StepHistoryEntry{
		StepID:    &firstStep.ID,
		Status:    domain.AssignmentStatusPending,
		ActorID:   actorID,
		StartedAt: time.Now(),
	})

	if err := s.assignments.UpdateTransition(assignment, expectedVersion); err != nil {
		return nil, err
	}

	s.recordHistory(&domain.ApprovalHistoryEntry{
		PostID:         postID,
		Action:         domain.HistoryActionResubmitted,
		ActorID:        actorID,
		PreviousStatus: previousStatus,
		NewStatus:      domain.AssignmentStatusPending,
		WorkflowStepID: &firstStep.ID,
	})
	s.notifyStep(postID, firstStep, domain.NotificationTypeApprovalRequested)
	s.invalidateDashboards(firstStep)

	return assignment, nil
}

// GetAssignment returns a post's assignment
func (s *approvalService) GetAssignment(postID uint64) (*domain.PostApprovalAssignment, error) {
	assignment, err := s.assignments.FindByPostID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// GetHistory returns the post's decision ledger, newest first
func (s *approvalService) GetHistory(postID uint64) ([]*domain.ApprovalHistoryEntry, error) {
	return s.history.ListByPostID(postID)
}

// recordHistory appends to the decision ledger. Failures are logged and
// swallowed; the ledger is an audit trail, not a consistency gate.
func (s *approvalService) recordHistory(entry *domain.ApprovalHistoryEntry) {
	if s.history == nil {
		return
	}
	if err := s.history.Create(entry); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Uint64("post_id", entry.PostID).
			Str("action", entry.Action).
			Msg("approval history write failed")
	}
}

// notifyStep enqueues a notification for a step's approvers, best-effort
func (s *approvalService) notifyStep(postID uint64, step *domain.ApprovalWorkflowStep, notificationType string) {
	if s.notifier == nil || step == nil {
		return
	}
	recipients := stepRecipients(step)
	if len(recipients) == 0 {
		return
	}
	payload := map[string]interface{}{
		"post_id":    postID,
		"step_id":    step.ID,
		"step_name":  step.StepName,
		"step_order": step.StepOrder,
	}
	if err := s.notifier.Queue(postID, recipients, notificationType, payload, nil); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Uint64("post_id", postID).
			Uint64("step_id", step.ID).
			Msg("approval notification enqueue failed")
	}
}

func (s *approvalService) invalidateDashboards(steps ...*domain.ApprovalWorkflowStep) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	ctx := context.Background()
	for _, step := range steps {
		if step == nil || step.ApproverRef == "" {
			continue
		}
		_ = s.cache.InvalidateDashboard(ctx, step.ApproverRef)
	}
}
