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

// WorkflowHandler handles HTTP requests for approval workflows
type WorkflowHandler struct {
	service service.WorkflowService
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(service service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// ListWorkflows godoc
// @Summary      List the caller's workflows
// @Tags         workflows
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number"       default(1)
// @Param        limit  query  int  false  "Items per page"    default(20)
// @Success      200  {object}  common.APIResponse{data=[]domain.ApprovalWorkflow}
// @Failure      500  {object}  common.APIResponse
// @Router       /workflows [get]
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	data, meta, err := h.service.ListWorkflows(ownerID, page, limit)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch workflows", err)
		return
	}

	common.SuccessResponse(c, data, meta)
}

// GetWorkflow godoc
// @Summary      Get a workflow with its ordered steps
// @Tags         workflows
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Workflow ID"
// @Success      200  {object}  common.APIResponse{data=domain.ApprovalWorkflow}
// @Failure      404  {object}  common.APIResponse
// @Router       /workflows/{id} [get]
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid workflow ID", err)
		return
	}

	data, err := h.service.GetWorkflow(id)
	if errors.Is(err, common.ErrWorkflowNotFound) {
		common.ErrorResponse(c, 404, "Workflow not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch workflow", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// CreateWorkflow godoc
// @Summary      Create a workflow
// @Description  Steps must carry strictly increasing step orders.
// @Tags         workflows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.CreateWorkflowRequest  true  "Workflow definition"
// @Success      201  {object}  common.APIResponse{data=domain.ApprovalWorkflow}
// @Failure      400  {object}  common.APIResponse
// @Router       /workflows [post]
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	var req domain.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	ownerID := middleware.GetUserID(c)
	data, err := h.service.CreateWorkflow(ownerID, &req)
	if errors.Is(err, common.ErrInvalidInput) {
		common.ErrorResponse(c, 400, "Invalid workflow definition", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to create workflow", err)
		return
	}

	c.JSON(201, common.APIResponse{Data: data})
}

// DeactivateWorkflow godoc
// @Summary      Deactivate a workflow
// @Description  Existing assignments keep their bound workflow; only new submissions stop using it.
// @Tags         workflows
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Workflow ID"
// @Success      204  "No Content"
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /workflows/{id} [delete]
func (h *WorkflowHandler) DeactivateWorkflow(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid workflow ID", err)
		return
	}

	ownerID := middleware.GetUserID(c)
	err = h.service.DeactivateWorkflow(ownerID, id)
	if errors.Is(err, common.ErrWorkflowNotFound) {
		common.ErrorResponse(c, 404, "Workflow not found", err)
		return
	}
	if errors.Is(err, common.ErrForbidden) {
		common.ErrorResponse(c, 403, "Not your workflow", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to deactivate workflow", err)
		return
	}

	c.Status(204)
}
