package service

import (
	"testing"

	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestResolveWorkflow_ByID(t *testing.T) {
	repo := new(mockWorkflowRepo)
	svc := NewWorkflowService(repo, nil)

	wf := threeStepWorkflow()
	repo.On("FindByID", uint64(7)).Return(wf, nil)

	id := uint64(7)
	got, err := svc.ResolveWorkflow("owner1", &id)
	assert.NoError(t, err)
	assert.Same(t, wf, got)
}

func TestResolveWorkflow_InactiveByID(t *testing.T) {
	repo := new(mockWorkflowRepo)
	svc := NewWorkflowService(repo, nil)

	wf := threeStepWorkflow()
	wf.IsActive = false
	repo.On("FindByID", uint64(7)).Return(wf, nil)

	id := uint64(7)
	_, err := svc.ResolveWorkflow("owner1", &id)
	assert.ErrorIs(t, err, common.ErrWorkflowNotFound)
}

func TestResolveWorkflow_LatestActiveForOwner(t *testing.T) {
	repo := new(mockWorkflowRepo)
	svc := NewWorkflowService(repo, nil)

	wf := threeStepWorkflow()
	repo.On("FindLatestActiveByOwner", "owner1").Return(wf, nil)

	got, err := svc.ResolveWorkflow("owner1", nil)
	assert.NoError(t, err)
	assert.Same(t, wf, got)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestResolveWorkflow_BootstrapsDefault(t *testing.T) {
	repo := new(mockWorkflowRepo)
	svc := NewWorkflowService(repo, nil)

	repo.On("FindLatestActiveByOwner", "owner1").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything).Return(nil)

	got, err := svc.ResolveWorkflow("owner1", nil)
	assert.NoError(t, err)
	assert.Equal(t, domain.DefaultWorkflowName, got.Name)
	assert.True(t, got.IsActive)
	assert.NotNil(t, got.DefaultMarker)
	if assert.Len(t, got.Steps, 1) {
		assert.Equal(t, 1, got.Steps[0].StepOrder)
		assert.Equal(t, domain.ApproverTypeUser, got.Steps[0].ApproverType)
		assert.Equal(t, domain.DefaultApproverRef, got.Steps[0].ApproverRef)
	}
}

func TestResolveWorkflow_BootstrapLosesRaceAndRereads(t *testing.T) {
	repo := new(mockWorkflowRepo)
	svc := NewWorkflowService(repo, nil)

	winner := threeStepWorkflow()
	repo.On("FindLatestActiveByOwner", "owner1").Return(nil, gorm.ErrRecordNotFound).Once()
	repo.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey)
	repo.On("FindLatestActiveByOwner", "owner1").Return(winner, nil).Once()

	got, err := svc.ResolveWorkflow("owner1", nil)
	assert.NoError(t, err)
	assert.Same(t, winner, got)
	repo.AssertExpectations(t)
}

func TestCreateWorkflow_RejectsStepOrderTies(t *testing.T) {
	svc := NewWorkflowService(new(mockWorkflowRepo), nil)

	_, err := svc.CreateWorkflow("owner1", &domain.CreateWorkflowRequest{
		Name: "Dup",
		Steps: []domain.CreateWorkflowStepRequest{
			{StepOrder: 1, StepName: "A", ApproverRef: "alice"},
			{StepOrder: 1, StepName: "B", ApproverRef: "bob"},
		},
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCreateWorkflow_RejectsEmptySteps(t *testing.T) {
	svc := NewWorkflowService(new(mockWorkflowRepo), nil)

	_, err := svc.CreateWorkflow("owner1", &domain.CreateWorkflowRequest{Name: "Empty"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCreateWorkflow_RejectsUnknownScope(t *testing.T) {
	svc := NewWorkflowService(new(mockWorkflowRepo), nil)

	_, err := svc.CreateWorkflow("owner1", &domain.CreateWorkflowRequest{
		Name:  "Bad scope",
		Scope: "galaxy",
		Steps: []domain.CreateWorkflowStepRequest{
			{StepOrder: 1, StepName: "A", ApproverRef: "alice"},
		},
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCreateWorkflow_DefaultsApproverTypeAndMinApprovals(t *testing.T) {
	repo := new(mockWorkflowRepo)
	svc := NewWorkflowService(repo, nil)

	repo.On("Create", mock.Anything).Return(nil)

	got, err := svc.CreateWorkflow("owner1", &domain.CreateWorkflowRequest{
		Name: "Editorial",
		Steps: []domain.CreateWorkflowStepRequest{
			{StepOrder: 1, StepName: "Copy", ApproverRef: "alice"},
			{StepOrder: 5, StepName: "Legal", ApproverRef: "carol", MinApprovals: 2},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.ApproverTypeUser, got.Steps[0].ApproverType)
	assert.Equal(t, 1, got.Steps[0].MinApprovals)
	assert.Equal(t, 2, got.Steps[1].MinApprovals)
}

func TestDeactivateWorkflow_OwnershipCheck(t *testing.T) {
	repo := new(mockWorkflowRepo)
	svc := NewWorkflowService(repo, nil)

	wf := threeStepWorkflow()
	repo.On("FindByID", uint64(7)).Return(wf, nil)

	err := svc.DeactivateWorkflow("intruder", 7)
	assert.ErrorIs(t, err, common.ErrForbidden)
	repo.AssertNotCalled(t, "Deactivate", mock.Anything)
}
