package repository

import (
	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"gorm.io/gorm"
)

// AssignmentRepository post approval assignment data access
type AssignmentRepository interface {
	Create(assignment *domain.PostApprovalAssignment) error
	FindByPostID(postID uint64) (*domain.PostApprovalAssignment, error)
	UpdateTransition(assignment *domain.PostApprovalAssignment, expectedVersion uint64) error
	FindOpenByStepIDs(stepIDs []uint64) ([]*domain.PostApprovalAssignment, error)
	FindOpen() ([]*domain.PostApprovalAssignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// Create inserts the assignment. The unique index on post_id surfaces
// gorm.ErrDuplicatedKey when another caller assigned the post first.
func (r *assignmentRepository) Create(assignment *domain.PostApprovalAssignment) error {
	return r.db.Create(assignment).Error
}

func (r *assignmentRepository) FindByPostID(postID uint64) (*domain.PostApprovalAssignment, error) {
	var assignment domain.PostApprovalAssignment
	err := r.db.Where("post_id = ?", postID).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// UpdateTransition applies a state transition with a version guard.
// Zero rows affected means another writer got there first.
func (r *assignmentRepository) UpdateTransition(assignment *domain.PostApprovalAssignment, expectedVersion uint64) error {
	res := r.db.Model(&domain.PostApprovalAssignment{}).
		Where("id = ? AND version = ?", assignment.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":          assignment.Status,
			"current_step_id": assignment.CurrentStepID,
			"step_history":    assignment.StepHistory,
			"version":         expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrConcurrentModification
	}
	assignment.Version = expectedVersion + 1
	return nil
}

var openStatuses = []string{
	domain.AssignmentStatusPending,
	domain.AssignmentStatusInReview,
	domain.AssignmentStatusChangesRequested,
}

func (r *assignmentRepository) FindOpenByStepIDs(stepIDs []uint64) ([]*domain.PostApprovalAssignment, error) {
	if len(stepIDs) == 0 {
		return nil, nil
	}
	var assignments []*domain.PostApprovalAssignment
	err := r.db.Where("current_step_id IN ? AND status IN ?", stepIDs, openStatuses).
		Order("updated_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindOpen() ([]*domain.PostApprovalAssignment, error) {
	var assignments []*domain.PostApprovalAssignment
	err := r.db.Where("status IN ?", openStatuses).
		Order("updated_at DESC").
		Find(&assignments).Error
	return assignments, err
}
