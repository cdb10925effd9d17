package service

import (
	"testing"

	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func threeStepWorkflow() *domain.ApprovalWorkflow {
	return &domain.ApprovalWorkflow{
		ID:       7,
		OwnerID:  "owner1",
		Name:     "Editorial Review",
		IsActive: true,
		Steps: []domain.ApprovalWorkflowStep{
			{ID: 11, WorkflowID: 7, StepOrder: 1, StepName: "Copy review", ApproverType: domain.ApproverTypeUser, ApproverRef: "alice"},
			{ID: 12, WorkflowID: 7, StepOrder: 2, StepName: "Brand review", ApproverType: domain.ApproverTypeUser, ApproverRef: "bob"},
			{ID: 13, WorkflowID: 7, StepOrder: 3, StepName: "Legal review", ApproverType: domain.ApproverTypeUser, ApproverRef: "carol"},
		},
	}
}

func stepPtr(id uint64) *uint64 { return &id }

// --- EnsureAssignment ---

func TestEnsureAssignment_IdempotentOnRepeat(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, nil, workflows, nil, nil)

	existing := &domain.PostApprovalAssignment{
		ID: 1, PostID: 100, WorkflowID: 7,
		CurrentStepID: stepPtr(11),
		Status:        domain.AssignmentStatusPending,
	}
	assignments.On("FindByPostID", uint64(100)).Return(existing, nil)

	// no Create expectation: a second write would fail the test
	got, err := svc.EnsureAssignment(100, "owner1", nil)

	assert.NoError(t, err)
	assert.Same(t, existing, got)

	again, err := svc.EnsureAssignment(100, "owner1", nil)
	assert.NoError(t, err)
	assert.Same(t, existing, again)

	assignments.AssertExpectations(t)
	workflows.AssertNotCalled(t, "ResolveWorkflow", mock.Anything, mock.Anything)
}

func TestEnsureAssignment_BindsFirstStep(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	history := new(mockHistoryRepo)
	workflows := new(mockWorkflowService)
	notifier := new(mockNotifier)
	svc := NewApprovalService(assignments, history, workflows, notifier, nil)

	wf := threeStepWorkflow()
	assignments.On("FindByPostID", uint64(100)).Return(nil, gorm.ErrRecordNotFound)
	workflows.On("ResolveWorkflow", "owner1", (*uint64)(nil)).Return(wf, nil)
	assignments.On("Create", mock.Anything).Return(nil)
	history.On("Create", mock.Anything).Return(nil)
	notifier.On("Queue", uint64(100), []string{"alice"}, domain.NotificationTypeApprovalRequested, mock.Anything, []string(nil)).Return(nil)

	got, err := svc.EnsureAssignment(100, "owner1", nil)

	assert.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusPending, got.Status)
	assert.Equal(t, uint64(11), *got.CurrentStepID)
	assert.Len(t, got.StepHistory, 1)
	assert.Equal(t, domain.AssignmentStatusPending, got.StepHistory[0].Status)
	assignments.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestEnsureAssignment_ZeroStepWorkflow(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, nil, workflows, nil, nil)

	empty := &domain.ApprovalWorkflow{ID: 9, OwnerID: "owner1", IsActive: true}
	assignments.On("FindByPostID", uint64(100)).Return(nil, gorm.ErrRecordNotFound)
	workflows.On("ResolveWorkflow", "owner1", (*uint64)(nil)).Return(empty, nil)

	_, err := svc.EnsureAssignment(100, "owner1", nil)
	assert.ErrorIs(t, err, common.ErrWorkflowUnavailable)
}

func TestEnsureAssignment_LostCreateRaceReturnsWinner(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	history := new(mockHistoryRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, history, workflows, nil, nil)

	wf := threeStepWorkflow()
	winner := &domain.PostApprovalAssignment{ID: 2, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(11), Status: domain.AssignmentStatusPending}

	assignments.On("FindByPostID", uint64(100)).Return(nil, gorm.ErrRecordNotFound).Once()
	workflows.On("ResolveWorkflow", "owner1", (*uint64)(nil)).Return(wf, nil)
	assignments.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey)
	assignments.On("FindByPostID", uint64(100)).Return(winner, nil).Once()

	got, err := svc.EnsureAssignment(100, "owner1", nil)
	assert.NoError(t, err)
	assert.Same(t, winner, got)
	history.AssertNotCalled(t, "Create", mock.Anything)
}

// --- Advance ---

func TestAdvance_ThreeStepApproveChain(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	history := new(mockHistoryRepo)
	workflows := new(mockWorkflowService)
	notifier := new(mockNotifier)
	svc := NewApprovalService(assignments, history, workflows, notifier, nil)

	wf := threeStepWorkflow()
	workflows.On("GetWorkflow", uint64(7)).Return(wf, nil)
	history.On("Create", mock.Anything).Return(nil)
	notifier.On("Queue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	assignments.On("UpdateTransition", mock.Anything, mock.Anything).Return(nil)

	states := []*domain.PostApprovalAssignment{
		{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(11), Status: domain.AssignmentStatusPending, Version: 0},
		{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(12), Status: domain.AssignmentStatusInReview, Version: 1},
		{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(13), Status: domain.AssignmentStatusInReview, Version: 2},
	}
	for _, st := range states {
		assignments.On("FindByPostID", uint64(100)).Return(st, nil).Once()
	}

	// step 1 approved: pending -> in_review at step 2
	got, err := svc.Advance(100, "alice", domain.DecisionApprove, DecisionInput{})
	assert.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusInReview, got.Status)
	assert.Equal(t, uint64(12), *got.CurrentStepID)

	// step 2 approved: in_review at step 3
	got, err = svc.Advance(100, "bob", domain.DecisionApprove, DecisionInput{})
	assert.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusInReview, got.Status)
	assert.Equal(t, uint64(13), *got.CurrentStepID)

	// final step approved: terminal, step pointer cleared
	got, err = svc.Advance(100, "carol", domain.DecisionApprove, DecisionInput{})
	assert.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusApproved, got.Status)
	assert.Nil(t, got.CurrentStepID)

	assignments.AssertExpectations(t)
}

func TestAdvance_RejectTerminatesAtAnyStep(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	history := new(mockHistoryRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, history, workflows, nil, nil)

	wf := threeStepWorkflow()
	workflows.On("GetWorkflow", uint64(7)).Return(wf, nil)
	history.On("Create", mock.Anything).Return(nil)
	assignments.On("UpdateTransition", mock.Anything, mock.Anything).Return(nil)

	// rejected at the middle step; remaining steps are skipped
	current := &domain.PostApprovalAssignment{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(12), Status: domain.AssignmentStatusInReview}
	assignments.On("FindByPostID", uint64(100)).Return(current, nil)

	got, err := svc.Advance(100, "bob", domain.DecisionReject, DecisionInput{Reason: "off-brand"})
	assert.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusRejected, got.Status)
	assert.Nil(t, got.CurrentStepID)
}

func TestAdvance_RequestChangesKeepsStepPointer(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	history := new(mockHistoryRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, history, workflows, nil, nil)

	wf := threeStepWorkflow()
	workflows.On("GetWorkflow", uint64(7)).Return(wf, nil)
	history.On("Create", mock.Anything).Return(nil)
	assignments.On("UpdateTransition", mock.Anything, mock.Anything).Return(nil)

	current := &domain.PostApprovalAssignment{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(12), Status: domain.AssignmentStatusInReview}
	assignments.On("FindByPostID", uint64(100)).Return(current, nil)

	got, err := svc.Advance(100, "bob", domain.DecisionRequestChanges, DecisionInput{Comment: "tighten the copy"})
	assert.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusChangesRequested, got.Status)
	assert.Equal(t, uint64(12), *got.CurrentStepID)
}

func TestAdvance_NotAssigned(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, nil, workflows, nil, nil)

	assignments.On("FindByPostID", uint64(100)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Advance(100, "alice", domain.DecisionApprove, DecisionInput{})
	assert.ErrorIs(t, err, common.ErrAssignmentNotFound)
}

func TestAdvance_InvalidDecision(t *testing.T) {
	svc := NewApprovalService(new(mockAssignmentRepo), nil, new(mockWorkflowService), nil, nil)

	_, err := svc.Advance(100, "alice", domain.Decision("maybe"), DecisionInput{})
	assert.ErrorIs(t, err, common.ErrInvalidDecision)
}

func TestAdvance_TerminalAssignment(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, nil, workflows, nil, nil)

	wf := threeStepWorkflow()
	workflows.On("GetWorkflow", uint64(7)).Return(wf, nil)
	done := &domain.PostApprovalAssignment{ID: 1, PostID: 100, WorkflowID: 7, Status: domain.AssignmentStatusApproved}
	assignments.On("FindByPostID", uint64(100)).Return(done, nil)

	_, err := svc.Advance(100, "alice", domain.DecisionApprove, DecisionInput{})
	assert.ErrorIs(t, err, common.ErrAssignmentFinalized)
}

func TestAdvance_RetriesOnceOnVersionConflict(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	history := new(mockHistoryRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, history, workflows, nil, nil)

	wf := threeStepWorkflow()
	workflows.On("GetWorkflow", uint64(7)).Return(wf, nil)
	history.On("Create", mock.Anything).Return(nil)

	first := &domain.PostApprovalAssignment{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(11), Status: domain.AssignmentStatusPending, Version: 0}
	second := &domain.PostApprovalAssignment{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(11), Status: domain.AssignmentStatusPending, Version: 1}
	assignments.On("FindByPostID", uint64(100)).Return(first, nil).Once()
	assignments.On("FindByPostID", uint64(100)).Return(second, nil).Once()
	assignments.On("UpdateTransition", mock.Anything, uint64(0)).Return(common.ErrConcurrentModification).Once()
	assignments.On("UpdateTransition", mock.Anything, uint64(1)).Return(nil).Once()

	got, err := svc.Advance(100, "alice", domain.DecisionApprove, DecisionInput{})
	assert.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusInReview, got.Status)
	assignments.AssertExpectations(t)
}

// --- BulkAdvance ---

func TestBulkAdvance_PartialFailureIsExhaustive(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	history := new(mockHistoryRepo)
	workflows := new(mockWorkflowService)
	svc := NewApprovalService(assignments, history, workflows, nil, nil)

	wf := threeStepWorkflow()
	workflows.On("GetWorkflow", uint64(7)).Return(wf, nil)
	history.On("Create", mock.Anything).Return(nil)
	assignments.On("UpdateTransition", mock.Anything, mock.Anything).Return(nil)

	a := &domain.PostApprovalAssignment{ID: 1, PostID: 1, WorkflowID: 7, CurrentStepID: stepPtr(13), Status: domain.AssignmentStatusInReview}
	c := &domain.PostApprovalAssignment{ID: 3, PostID: 3, WorkflowID: 7, CurrentStepID: stepPtr(13), Status: domain.AssignmentStatusInReview}
	assignments.On("FindByPostID", uint64(1)).Return(a, nil)
	assignments.On("FindByPostID", uint64(2)).Return(nil, gorm.ErrRecordNotFound)
	assignments.On("FindByPostID", uint64(3)).Return(c, nil)

	result := svc.BulkAdvance([]uint64{1, 2, 3}, "carol", domain.DecisionApprove, DecisionInput{})

	assert.Equal(t, []uint64{1, 3}, result.Succeeded)
	assert.Len(t, result.Failed, 1)
	assert.Equal(t, uint64(2), result.Failed[0].PostID)
	assert.Equal(t, common.ErrAssignmentNotFound.Error(), result.Failed[0].Error)
	assert.Equal(t, 3, len(result.Succeeded)+len(result.Failed))
}

// --- Resubmit ---

func TestResubmit_RewindsToFirstStep(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	history := new(mockHistoryRepo)
	workflows := new(mockWorkflowService)
	notifier := new(mockNotifier)
	svc := NewApprovalService(assignments, history, workflows, notifier, nil)

	wf := threeStepWorkflow()
	workflows.On("GetWorkflow", uint64(7)).Return(wf, nil)
	history.On("Create", mock.Anything).Return(nil)
	notifier.On("Queue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	assignments.On("UpdateTransition", mock.Anything, mock.Anything).Return(nil)

	returned := &domain.PostApprovalAssignment{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(12), Status: domain.AssignmentStatusChangesRequested}
	assignments.On("FindByPostID", uint64(100)).Return(returned, nil)

	got, err := svc.Resubmit(100, "author1")
	assert.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusPending, got.Status)
	assert.Equal(t, uint64(11), *got.CurrentStepID)
}

func TestResubmit_RequiresChangesRequested(t *testing.T) {
	assignments := new(mockAssignmentRepo)
	svc := NewApprovalService(assignments, nil, new(mockWorkflowService), nil, nil)

	pending := &domain.PostApprovalAssignment{ID: 1, PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(11), Status: domain.AssignmentStatusPending}
	assignments.On("FindByPostID", uint64(100)).Return(pending, nil)

	_, err := svc.Resubmit(100, "author1")
	assert.ErrorIs(t, err, common.ErrNotAwaitingResubmit)
}

// --- transition core ---

func TestComputeTransition_HistoryActionVocabulary(t *testing.T) {
	assert.Equal(t, domain.HistoryActionApproved, domain.DecisionApprove.HistoryAction())
	assert.Equal(t, domain.HistoryActionRejected, domain.DecisionReject.HistoryAction())
	assert.Equal(t, domain.HistoryActionRevisionRequested, domain.DecisionRequestChanges.HistoryAction())
}

func TestComputeTransition_OmitsEmptyActionDetails(t *testing.T) {
	wf := threeStepWorkflow()
	assignment := &domain.PostApprovalAssignment{PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(11), Status: domain.AssignmentStatusPending}

	tr, err := computeTransition(assignment, wf, "alice", domain.DecisionApprove, DecisionInput{})
	assert.NoError(t, err)

	var entry *domain.ApprovalHistoryEntry
	for _, e := range tr.effects {
		if e.historyEntry != nil {
			entry = e.historyEntry
		}
	}
	if assert.NotNil(t, entry) {
		assert.Nil(t, entry.ActionDetails)
	}
}

func TestComputeTransition_KeepsCommentAndReasonTogether(t *testing.T) {
	wf := threeStepWorkflow()
	assignment := &domain.PostApprovalAssignment{PostID: 100, WorkflowID: 7, CurrentStepID: stepPtr(11), Status: domain.AssignmentStatusPending}

	tr, err := computeTransition(assignment, wf, "alice", domain.DecisionReject, DecisionInput{Comment: "typo", Reason: "quality"})
	assert.NoError(t, err)

	var entry *domain.ApprovalHistoryEntry
	for _, e := range tr.effects {
		if e.historyEntry != nil {
			entry = e.historyEntry
		}
	}
	if assert.NotNil(t, entry) && assert.NotNil(t, entry.ActionDetails) {
		assert.Equal(t, "typo", entry.ActionDetails.Comment)
		assert.Equal(t, "quality", entry.ActionDetails.Reason)
	}
}
