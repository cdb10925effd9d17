package service

import (
	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock AssignmentRepository ---

type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) Create(assignment *domain.PostApprovalAssignment) error {
	return m.Called(assignment).Error(0)
}

func (m *mockAssignmentRepo) FindByPostID(postID uint64) (*domain.PostApprovalAssignment, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostApprovalAssignment), args.Error(1)
}

func (m *mockAssignmentRepo) UpdateTransition(assignment *domain.PostApprovalAssignment, expectedVersion uint64) error {
	return m.Called(assignment, expectedVersion).Error(0)
}

func (m *mockAssignmentRepo) FindOpenByStepIDs(stepIDs []uint64) ([]*domain.PostApprovalAssignment, error) {
	args := m.Called(stepIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PostApprovalAssignment), args.Error(1)
}

func (m *mockAssignmentRepo) FindOpen() ([]*domain.PostApprovalAssignment, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PostApprovalAssignment), args.Error(1)
}

// --- Mock ApprovalHistoryRepository ---

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Create(entry *domain.ApprovalHistoryEntry) error {
	return m.Called(entry).Error(0)
}

func (m *mockHistoryRepo) ListByPostID(postID uint64) ([]*domain.ApprovalHistoryEntry, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalHistoryEntry), args.Error(1)
}

// --- Mock WorkflowService ---

type mockWorkflowService struct {
	mock.Mock
}

func (m *mockWorkflowService) ResolveWorkflow(ownerID string, workflowID *uint64) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ownerID, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

func (m *mockWorkflowService) CreateWorkflow(ownerID string, req *domain.CreateWorkflowRequest) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

func (m *mockWorkflowService) ListWorkflows(ownerID string, page, limit int) ([]*domain.ApprovalWorkflow, *common.Meta, error) {
	args := m.Called(ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*domain.ApprovalWorkflow), args.Get(1).(*common.Meta), args.Error(2)
}

func (m *mockWorkflowService) DeactivateWorkflow(ownerID string, workflowID uint64) error {
	return m.Called(ownerID, workflowID).Error(0)
}

func (m *mockWorkflowService) GetWorkflow(workflowID uint64) (*domain.ApprovalWorkflow, error) {
	args := m.Called(workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

// --- Mock NotificationService ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Queue(postID uint64, recipientIDs []string, notificationType string, payload map[string]interface{}, channels []string) error {
	return m.Called(postID, recipientIDs, notificationType, payload, channels).Error(0)
}

func (m *mockNotifier) GetList(recipientID string, page, limit int) (*domain.NotificationListResponse, error) {
	args := m.Called(recipientID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationListResponse), args.Error(1)
}

func (m *mockNotifier) GetUnreadCount(recipientID string) (int64, error) {
	args := m.Called(recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotifier) MarkAsRead(recipientID string, notificationID uint64) error {
	return m.Called(recipientID, notificationID).Error(0)
}

func (m *mockNotifier) MarkAllAsRead(recipientID string) error {
	return m.Called(recipientID).Error(0)
}

// --- Mock WorkflowRepository ---

type mockWorkflowRepo struct {
	mock.Mock
}

func (m *mockWorkflowRepo) Create(workflow *domain.ApprovalWorkflow) error {
	return m.Called(workflow).Error(0)
}

func (m *mockWorkflowRepo) FindByID(id uint64) (*domain.ApprovalWorkflow, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

func (m *mockWorkflowRepo) FindLatestActiveByOwner(ownerID string) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

func (m *mockWorkflowRepo) ListByOwner(ownerID string, page, limit int) ([]*domain.ApprovalWorkflow, int64, error) {
	args := m.Called(ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.ApprovalWorkflow), args.Get(1).(int64), args.Error(2)
}

func (m *mockWorkflowRepo) Deactivate(id uint64) error {
	return m.Called(id).Error(0)
}

func (m *mockWorkflowRepo) FindStepIDsByApprover(approverRef string) ([]uint64, error) {
	args := m.Called(approverRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

func (m *mockWorkflowRepo) FindStepsByIDs(ids []uint64) ([]domain.ApprovalWorkflowStep, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalWorkflowStep), args.Error(1)
}

// --- Mock PostRepository ---

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(post *domain.Post) error {
	return m.Called(post).Error(0)
}

func (m *mockPostRepo) FindByID(id uint64) (*domain.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepo) FindByIDs(ids []uint64) ([]*domain.Post, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *mockPostRepo) ListByOwner(ownerID string, page, limit int) ([]*domain.Post, int64, error) {
	args := m.Called(ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(int64), args.Error(2)
}

func (m *mockPostRepo) Update(post *domain.Post) error {
	return m.Called(post).Error(0)
}

func (m *mockPostRepo) Delete(id uint64) error {
	return m.Called(id).Error(0)
}

func (m *mockPostRepo) SetRequiresApproval(id uint64, requires bool) error {
	return m.Called(id, requires).Error(0)
}

func (m *mockPostRepo) FindAwaitingImplicitReview() ([]*domain.Post, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

// --- Mock RevisionRepository ---

type mockRevisionRepo struct {
	mock.Mock
}

func (m *mockRevisionRepo) Create(revision *domain.PostRevision) error {
	return m.Called(revision).Error(0)
}

func (m *mockRevisionRepo) FindByPostID(postID uint64) ([]*domain.PostRevision, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PostRevision), args.Error(1)
}

func (m *mockRevisionRepo) FindByID(id uint64) (*domain.PostRevision, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostRevision), args.Error(1)
}

func (m *mockRevisionRepo) NextRevisionNumber(postID uint64) (uint, error) {
	args := m.Called(postID)
	return args.Get(0).(uint), args.Error(1)
}
