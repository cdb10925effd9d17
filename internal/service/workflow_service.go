package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/internal/repository"
	"github.com/publora/publora-backend/pkg/cache"
	pkglogger "github.com/publora/publora-backend/pkg/logger"
	"gorm.io/gorm"
)

// WorkflowService resolves and manages approval workflows
type WorkflowService interface {
	ResolveWorkflow(ownerID string, workflowID *uint64) (*domain.ApprovalWorkflow, error)
	CreateWorkflow(ownerID string, req *domain.CreateWorkflowRequest) (*domain.ApprovalWorkflow, error)
	ListWorkflows(ownerID string, page, limit int) ([]*domain.ApprovalWorkflow, *common.Meta, error)
	DeactivateWorkflow(ownerID string, workflowID uint64) error
	GetWorkflow(workflowID uint64) (*domain.ApprovalWorkflow, error)
}

type workflowService struct {
	repo  repository.WorkflowRepository
	cache cache.Service
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(repo repository.WorkflowRepository, cacheService cache.Service) WorkflowService {
	return &workflowService{repo: repo, cache: cacheService}
}

// ResolveWorkflow returns the exact workflow when an id is given, otherwise
// the owner's most recently created active workflow. Owners without any
// active workflow get a single-step default bootstrapped on first touch.
func (s *workflowService) ResolveWorkflow(ownerID string, workflowID *uint64) (*domain.ApprovalWorkflow, error) {
	if workflowID != nil {
		workflow, err := s.GetWorkflow(*workflowID)
		if err != nil {
			return nil, err
		}
		if !workflow.IsActive {
			return nil, common.ErrWorkflowNotFound
		}
		return workflow, nil
	}

	workflow, err := s.repo.FindLatestActiveByOwner(ownerID)
	if err == nil {
		return workflow, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.bootstrapDefault(ownerID)
}

// bootstrapDefault lazily creates the owner's single-step default workflow.
// Idempotent under concurrent callers: the unique (owner_id, default_marker)
// index rejects the loser, who then re-reads the winner's row.
func (s *workflowService) bootstrapDefault(ownerID string) (*domain.ApprovalWorkflow, error) {
	marker := "default"
	workflow := &domain.ApprovalWorkflow{
		OwnerID:       ownerID,
		Name:          domain.DefaultWorkflowName,
		Scope:         domain.WorkflowScopeGlobal,
		IsActive:      true,
		DefaultMarker: &marker,
		Steps: []domain.ApprovalWorkflowStep{
			{
				StepOrder:    1,
				StepName:     "Review",
				ApproverType: domain.ApproverTypeUser,
				ApproverRef:  domain.DefaultApproverRef,
				MinApprovals: 1,
			},
		},
	}

	err := s.repo.Create(workflow)
	if err == nil {
		pkglogger.GetLogger().Info().
			Str("owner_id", ownerID).
			Uint64("workflow_id", workflow.ID).
			Msg("default approval workflow bootstrapped")
		return workflow, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// someone else bootstrapped it first; re-read
		return s.repo.FindLatestActiveByOwner(ownerID)
	}
	return nil, err
}

// GetWorkflow fetches a workflow with its ordered steps, cache-first
func (s *workflowService) GetWorkflow(workflowID uint64) (*domain.ApprovalWorkflow, error) {
	ctx := context.Background()

	if s.cache != nil && s.cache.IsAvailable() {
		if data, err := s.cache.GetWorkflow(ctx, workflowID); err == nil {
			var cached domain.ApprovalWorkflow
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	workflow, err := s.repo.FindByID(workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrWorkflowNotFound
		}
		return nil, err
	}

	if s.cache != nil && s.cache.IsAvailable() {
		if err := s.cache.SetWorkflow(ctx, workflowID, workflow); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Uint64("workflow_id", workflowID).Msg("workflow cache write failed")
		}
	}
	return workflow, nil
}

// CreateWorkflow validates and persists a workflow with its steps
func (s *workflowService) CreateWorkflow(ownerID string, req *domain.CreateWorkflowRequest) (*domain.ApprovalWorkflow, error) {
	if len(req.Steps) == 0 {
		return nil, fmt.Errorf("%w: workflow needs at least one step", common.ErrInvalidInput)
	}

	scope := req.Scope
	if scope == "" {
		scope = domain.WorkflowScopeGlobal
	}
	switch scope {
	case domain.WorkflowScopeGlobal, domain.WorkflowScopeTeam, domain.WorkflowScopeDepartment, domain.WorkflowScopeContentType:
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", common.ErrInvalidInput, scope)
	}

	steps := make([]domain.ApprovalWorkflowStep, 0, len(req.Steps))
	lastOrder := 0
	for i, stepReq := range req.Steps {
		// step_order must be strictly increasing; ties are forbidden
		if stepReq.StepOrder <= lastOrder {
			return nil, fmt.Errorf("%w: step %d has non-increasing step_order %d", common.ErrInvalidInput, i+1, stepReq.StepOrder)
		}
		lastOrder = stepReq.StepOrder

		approverType := stepReq.ApproverType
		if approverType == "" {
			approverType = domain.ApproverTypeUser
		}
		switch approverType {
		case domain.ApproverTypeUser, domain.ApproverTypeRole, domain.ApproverTypeTeam:
		default:
			return nil, fmt.Errorf("%w: unknown approver type %q", common.ErrInvalidInput, approverType)
		}

		minApprovals := stepReq.MinApprovals
		if minApprovals < 1 {
			minApprovals = 1
		}

		steps = append(steps, domain.ApprovalWorkflowStep{
			StepOrder:              stepReq.StepOrder,
			StepName:               stepReq.StepName,
			ApproverType:           approverType,
			ApproverRef:            stepReq.ApproverRef,
			MinApprovals:           minApprovals,
			IsOptional:             stepReq.IsOptional,
			SLAHours:               stepReq.SLAHours,
			AutoEscalateAfterHours: stepReq.AutoEscalateAfterHours,
		})
	}

	workflow := &domain.ApprovalWorkflow{
		OwnerID:      ownerID,
		Name:         req.Name,
		Scope:        scope,
		ScopeFilters: req.ScopeFilters,
		IsActive:     true,
		Steps:        steps,
	}
	if err := s.repo.Create(workflow); err != nil {
		return nil, err
	}

	if s.cache != nil && s.cache.IsAvailable() {
		_ = s.cache.InvalidateOwnerWorkflow(context.Background(), ownerID)
	}
	return workflow, nil
}

// ListWorkflows returns the owner's workflows, newest first
func (s *workflowService) ListWorkflows(ownerID string, page, limit int) ([]*domain.ApprovalWorkflow, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	workflows, total, err := s.repo.ListByOwner(ownerID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return workflows, meta, nil
}

// DeactivateWorkflow turns a workflow off after ownership check.
// Existing assignments keep their step pointers; only new resolution stops.
func (s *workflowService) DeactivateWorkflow(ownerID string, workflowID uint64) error {
	workflow, err := s.repo.FindByID(workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrWorkflowNotFound
		}
		return err
	}
	if workflow.OwnerID != ownerID {
		return common.ErrForbidden
	}
	if err := s.repo.Deactivate(workflowID); err != nil {
		return err
	}
	if s.cache != nil && s.cache.IsAvailable() {
		_ = s.cache.InvalidateWorkflow(context.Background(), workflowID)
	}
	return nil
}
