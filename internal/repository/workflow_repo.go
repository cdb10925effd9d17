package repository

import (
	"github.com/publora/publora-backend/internal/domain"
	"gorm.io/gorm"
)

// WorkflowRepository approval workflow data access
type WorkflowRepository interface {
	Create(workflow *domain.ApprovalWorkflow) error
	FindByID(id uint64) (*domain.ApprovalWorkflow, error)
	FindLatestActiveByOwner(ownerID string) (*domain.ApprovalWorkflow, error)
	ListByOwner(ownerID string, page, limit int) ([]*domain.ApprovalWorkflow, int64, error)
	Deactivate(id uint64) error
	FindStepIDsByApprover(approverRef string) ([]uint64, error)
	FindStepsByIDs(ids []uint64) ([]domain.ApprovalWorkflowStep, error)
}

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

// Create inserts the workflow and its steps in one transaction.
// The unique index on (owner_id, default_marker) surfaces
// gorm.ErrDuplicatedKey when two callers bootstrap the default concurrently.
func (r *workflowRepository) Create(workflow *domain.ApprovalWorkflow) error {
	return r.db.Create(workflow).Error
}

func (r *workflowRepository) FindByID(id uint64) (*domain.ApprovalWorkflow, error) {
	var workflow domain.ApprovalWorkflow
	err := r.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order ASC")
	}).Where("id = ?", id).First(&workflow).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) FindLatestActiveByOwner(ownerID string) (*domain.ApprovalWorkflow, error) {
	var workflow domain.ApprovalWorkflow
	err := r.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order ASC")
	}).Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at DESC, id DESC").
		First(&workflow).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) ListByOwner(ownerID string, page, limit int) ([]*domain.ApprovalWorkflow, int64, error) {
	var workflows []*domain.ApprovalWorkflow
	var total int64

	query := r.db.Model(&domain.ApprovalWorkflow{}).Where("owner_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := r.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order ASC")
	}).Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&workflows).Error
	if err != nil {
		return nil, 0, err
	}
	return workflows, total, nil
}

func (r *workflowRepository) Deactivate(id uint64) error {
	return r.db.Model(&domain.ApprovalWorkflow{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// FindStepIDsByApprover returns ids of every step directly assigned to the viewer
func (r *workflowRepository) FindStepIDsByApprover(approverRef string) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&domain.ApprovalWorkflowStep{}).
		Where("approver_ref = ?", approverRef).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *workflowRepository) FindStepsByIDs(ids []uint64) ([]domain.ApprovalWorkflowStep, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var steps []domain.ApprovalWorkflowStep
	err := r.db.Where("id IN ?", ids).Find(&steps).Error
	return steps, err
}
