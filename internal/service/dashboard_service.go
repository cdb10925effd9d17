package service

import (
	"context"
	"encoding/json"

	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/internal/repository"
	"github.com/publora/publora-backend/pkg/cache"
	pkglogger "github.com/publora/publora-backend/pkg/logger"
)

// DashboardService projects pending assignments into an approver's queue
type DashboardService interface {
	GetDashboard(viewerID string) ([]*domain.DashboardRow, error)
}

type dashboardService struct {
	workflows   repository.WorkflowRepository
	assignments repository.AssignmentRepository
	posts       repository.PostRepository
	cache       cache.Service
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	workflows repository.WorkflowRepository,
	assignments repository.AssignmentRepository,
	posts repository.PostRepository,
	cacheService cache.Service,
) DashboardService {
	return &dashboardService{
		workflows:   workflows,
		assignments: assignments,
		posts:       posts,
		cache:       cacheService,
	}
}

// GetDashboard returns the viewer's review queue. Viewers mapped to workflow
// steps see assignments sitting on their steps; viewers not mapped to any
// step see all open assignments (the legacy implicit-review case). Posts flagged by
// approval rules but never bound to a workflow are reconciled in with
// single-step display defaults, so both entry paths render uniformly.
func (s *dashboardService) GetDashboard(viewerID string) ([]*domain.DashboardRow, error) {
	ctx := context.Background()

	if s.cache != nil && s.cache.IsAvailable() {
		if data, err := s.cache.GetDashboard(ctx, viewerID); err == nil {
			var cached []*domain.DashboardRow
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	stepIDs, err := s.workflows.FindStepIDsByApprover(viewerID)
	if err != nil {
		return nil, err
	}

	var assignments []*domain.PostApprovalAssignment
	if len(stepIDs) > 0 {
		assignments, err = s.assignments.FindOpenByStepIDs(stepIDs)
	} else {
		assignments, err = s.assignments.FindOpen()
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.buildRows(assignments)
	if err != nil {
		return nil, err
	}

	implicitRows, err := s.buildImplicitRows()
	if err != nil {
		return nil, err
	}
	rows = append(rows, implicitRows...)

	if s.cache != nil && s.cache.IsAvailable() {
		if err := s.cache.SetDashboard(ctx, viewerID, rows); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("viewer_id", viewerID).Msg("dashboard cache write failed")
		}
	}
	return rows, nil
}

// buildRows projects workflow-bound assignments
func (s *dashboardService) buildRows(assignments []*domain.PostApprovalAssignment) ([]*domain.DashboardRow, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	postIDs := make([]uint64, 0, len(assignments))
	stepIDSet := make(map[uint64]struct{})
	for _, a := range assignments {
		postIDs = append(postIDs, a.PostID)
		if a.CurrentStepID != nil {
			stepIDSet[*a.CurrentStepID] = struct{}{}
		}
	}

	posts, err := s.posts.FindByIDs(postIDs)
	if err != nil {
		return nil, err
	}
	postByID := make(map[uint64]*domain.Post, len(posts))
	for _, p := range posts {
		postByID[p.ID] = p
	}

	stepIDs := make([]uint64, 0, len(stepIDSet))
	for id := range stepIDSet {
		stepIDs = append(stepIDs, id)
	}
	steps, err := s.workflows.FindStepsByIDs(stepIDs)
	if err != nil {
		return nil, err
	}
	stepByID := make(map[uint64]domain.ApprovalWorkflowStep, len(steps))
	for _, st := range steps {
		stepByID[st.ID] = st
	}

	rows := make([]*domain.DashboardRow, 0, len(assignments))
	for _, a := range assignments {
		post := postByID[a.PostID]
		if post == nil {
			// assignment outlived its post; nothing to show
			continue
		}

		workflowID := a.WorkflowID
		row := &domain.DashboardRow{
			PostID:           a.PostID,
			Title:            post.Title,
			AuthorID:         post.AuthorID,
			OwnerID:          post.OwnerID,
			ScheduledAt:      post.ScheduledAt,
			WorkflowID:       &workflowID,
			CurrentStepID:    a.CurrentStepID,
			StepName:         domain.ImplicitStepName,
			StepOrder:        domain.ImplicitStepOrder,
			AssignmentStatus: a.Status,
			UpdatedAt:        a.UpdatedAt,
		}
		if a.CurrentStepID != nil {
			if step, ok := stepByID[*a.CurrentStepID]; ok {
				row.StepName = step.StepName
				row.StepOrder = step.StepOrder
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildImplicitRows synthesizes rows for posts flagged by approval rules
// that never entered the workflow engine
func (s *dashboardService) buildImplicitRows() ([]*domain.DashboardRow, error) {
	posts, err := s.posts.FindAwaitingImplicitReview()
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.DashboardRow, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, &domain.DashboardRow{
			PostID:           post.ID,
			Title:            post.Title,
			AuthorID:         post.AuthorID,
			OwnerID:          post.OwnerID,
			ScheduledAt:      post.ScheduledAt,
			StepName:         domain.ImplicitStepName,
			StepOrder:        domain.ImplicitStepOrder,
			AssignmentStatus: domain.AssignmentStatusPending,
			UpdatedAt:        post.UpdatedAt,
		})
	}
	return rows, nil
}
