package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/domain"
	"github.com/publora/publora-backend/internal/middleware"
	"github.com/publora/publora-backend/internal/service"
	"github.com/publora/publora-backend/pkg/ginutil"
)

// ApprovalHandler handles HTTP requests for the approval workflow
type ApprovalHandler struct {
	approvals service.ApprovalService
	dashboard service.DashboardService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(approvals service.ApprovalService, dashboard service.DashboardService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals, dashboard: dashboard}
}

// EnsureAssignment godoc
// @Summary      Submit a post for approval
// @Description  Binds the post to its owner's active workflow. Repeat calls return the existing assignment unchanged.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                             true   "Post ID"
// @Param        request  body  domain.EnsureAssignmentRequest  false  "Optional explicit workflow"
// @Success      200  {object}  common.APIResponse{data=domain.PostApprovalAssignment}
// @Failure      400  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id}/approval [post]
func (h *ApprovalHandler) EnsureAssignment(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	var req domain.EnsureAssignmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, 400, "Invalid request body", err)
			return
		}
	}

	ownerID := middleware.GetUserID(c)
	data, err := h.approvals.EnsureAssignment(postID, ownerID, req.WorkflowID)
	if errors.Is(err, common.ErrWorkflowNotFound) {
		common.ErrorResponse(c, 404, "Workflow not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to submit post for approval", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// GetAssignment godoc
// @Summary      Get a post's approval assignment
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostApprovalAssignment}
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id}/approval [get]
func (h *ApprovalHandler) GetAssignment(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	data, err := h.approvals.GetAssignment(postID)
	if errors.Is(err, common.ErrAssignmentNotFound) {
		common.ErrorResponse(c, 404, "Post is not under review", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch assignment", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// Decide godoc
// @Summary      Record an approval decision
// @Description  Applies approve, reject or request_changes to the post's current step.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                     true  "Post ID"
// @Param        request  body  domain.DecisionRequest  true  "Decision payload"
// @Success      200  {object}  common.APIResponse{data=domain.PostApprovalAssignment}
// @Failure      400  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Failure      422  {object}  common.APIResponse
// @Router       /posts/{id}/approval/decision [post]
func (h *ApprovalHandler) Decide(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	var req domain.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	actorID := middleware.GetUserID(c)
	data, err := h.approvals.Advance(postID, actorID, req.Decision, service.DecisionInput{
		Comment: req.Comment,
		Reason:  req.Reason,
	})
	if err != nil {
		h.decisionError(c, err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// BulkDecide godoc
// @Summary      Record one decision across many posts
// @Description  Applies the decision to each post independently and reports which posts succeeded and which failed.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.BulkDecisionRequest  true  "Bulk decision payload"
// @Success      200  {object}  common.APIResponse{data=domain.BulkResult}
// @Failure      400  {object}  common.APIResponse
// @Router       /approvals/bulk-decision [post]
func (h *ApprovalHandler) BulkDecide(c *gin.Context) {
	var req domain.BulkDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}
	if len(req.PostIDs) == 0 {
		common.ErrorResponse(c, 400, "post_ids must not be empty", nil)
		return
	}
	if !req.Decision.Valid() {
		common.ErrorResponse(c, 422, "Unknown decision", common.ErrInvalidDecision)
		return
	}

	actorID := middleware.GetUserID(c)
	result := h.approvals.BulkAdvance(req.PostIDs, actorID, req.Decision, service.DecisionInput{
		Comment: req.Comment,
		Reason:  req.Reason,
	})

	common.SuccessResponse(c, result, nil)
}

// Resubmit godoc
// @Summary      Resubmit a post after changes were requested
// @Description  Rewinds the assignment to the first step so review starts over.
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.PostApprovalAssignment}
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/approval/resubmit [post]
func (h *ApprovalHandler) Resubmit(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	actorID := middleware.GetUserID(c)
	data, err := h.approvals.Resubmit(postID, actorID)
	if errors.Is(err, common.ErrAssignmentNotFound) {
		common.ErrorResponse(c, 404, "Post is not under review", err)
		return
	}
	if errors.Is(err, common.ErrNotAwaitingResubmit) {
		common.ErrorResponse(c, 409, "Post is not awaiting changes", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to resubmit post", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// GetHistory godoc
// @Summary      Get a post's decision ledger
// @Description  Returns every recorded decision for the post, newest first.
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=[]domain.ApprovalHistoryEntry}
// @Failure      400  {object}  common.APIResponse
// @Router       /posts/{id}/approval/history [get]
func (h *ApprovalHandler) GetHistory(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	data, err := h.approvals.GetHistory(postID)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch approval history", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// Dashboard godoc
// @Summary      Pending approvals dashboard
// @Description  Lists open review items visible to the caller, including rule-flagged posts that have no assignment yet.
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse{data=[]domain.DashboardRow}
// @Failure      500  {object}  common.APIResponse
// @Router       /approvals/dashboard [get]
func (h *ApprovalHandler) Dashboard(c *gin.Context) {
	viewerID := middleware.GetUserID(c)

	data, err := h.dashboard.GetDashboard(viewerID)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to build dashboard", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// decisionError maps single-decision failures onto HTTP statuses
func (h *ApprovalHandler) decisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrAssignmentNotFound):
		common.ErrorResponse(c, 404, "Post is not under review", err)
	case errors.Is(err, common.ErrInvalidDecision):
		common.ErrorResponse(c, 422, "Unknown decision", err)
	case errors.Is(err, common.ErrAssignmentFinalized):
		common.ErrorResponse(c, 409, "Assignment already finalized", err)
	case errors.Is(err, common.ErrConcurrentModification):
		common.ErrorResponse(c, 409, "Assignment was modified concurrently, retry", err)
	case errors.Is(err, common.ErrWorkflowUnavailable):
		common.ErrorResponse(c, 500, "Workflow definition unavailable", err)
	default:
		common.ErrorResponse(c, 500, "Failed to record decision", err)
	}
}
