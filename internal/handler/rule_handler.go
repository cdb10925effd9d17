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

// RuleHandler handles HTTP requests for approval rules
type RuleHandler struct {
	service service.RuleService
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(service service.RuleService) *RuleHandler {
	return &RuleHandler{service: service}
}

// ListRules godoc
// @Summary      List the caller's approval rules
// @Tags         rules
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse{data=[]domain.ApprovalRule}
// @Failure      500  {object}  common.APIResponse
// @Router       /rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	data, err := h.service.ListRules(ownerID)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch rules", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// CreateRule godoc
// @Summary      Create an approval rule
// @Description  Posts matching the rule's condition are flagged as requiring approval.
// @Tags         rules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.ApprovalRule  true  "Rule definition"
// @Success      201  {object}  common.APIResponse{data=domain.ApprovalRule}
// @Failure      400  {object}  common.APIResponse
// @Router       /rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var rule domain.ApprovalRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	ownerID := middleware.GetUserID(c)
	if err := h.service.CreateRule(ownerID, &rule); err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			common.ErrorResponse(c, 400, "Invalid rule condition", err)
			return
		}
		common.ErrorResponse(c, 500, "Failed to create rule", err)
		return
	}

	c.JSON(201, common.APIResponse{Data: rule})
}

// DeleteRule godoc
// @Summary      Delete an approval rule
// @Tags         rules
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Rule ID"
// @Success      204  "No Content"
// @Failure      404  {object}  common.APIResponse
// @Router       /rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid rule ID", err)
		return
	}

	ownerID := middleware.GetUserID(c)
	err = h.service.DeleteRule(ownerID, id)
	if errors.Is(err, common.ErrNotFound) {
		common.ErrorResponse(c, 404, "Rule not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to delete rule", err)
		return
	}

	c.Status(204)
}
