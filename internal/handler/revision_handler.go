package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/middleware"
	"github.com/publora/publora-backend/internal/service"
	"github.com/publora/publora-backend/pkg/ginutil"
)

// RevisionHandler handles HTTP requests for post revision history
type RevisionHandler struct {
	revisions service.RevisionService
	posts     service.PostService
}

// NewRevisionHandler creates a new RevisionHandler
func NewRevisionHandler(revisions service.RevisionService, posts service.PostService) *RevisionHandler {
	return &RevisionHandler{revisions: revisions, posts: posts}
}

// ListRevisions godoc
// @Summary      List a post's revisions
// @Description  Returns revisions newest first, each with a short human-readable summary.
// @Tags         revisions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=[]domain.RevisionListItem}
// @Failure      400  {object}  common.APIResponse
// @Router       /posts/{id}/revisions [get]
func (h *RevisionHandler) ListRevisions(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	data, err := h.revisions.ListRevisions(postID)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch revisions", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// RestoreRevision godoc
// @Summary      Restore a post to an earlier revision
// @Description  Overwrites the post with the revision's snapshot and records the restore as a new revision.
// @Tags         revisions
// @Produce      json
// @Security     BearerAuth
// @Param        id           path  int  true  "Post ID"
// @Param        revision_id  path  int  true  "Revision ID"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id}/revisions/{revision_id}/restore [post]
func (h *RevisionHandler) RestoreRevision(c *gin.Context) {
	postID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}
	revisionID, err := ginutil.ParamUint64(c, "revision_id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid revision ID", err)
		return
	}

	actorID := middleware.GetUserID(c)
	data, err := h.posts.RestoreToRevision(postID, revisionID, actorID)
	if errors.Is(err, common.ErrRevisionNotFound) {
		common.ErrorResponse(c, 404, "Revision not found", err)
		return
	}
	if errors.Is(err, common.ErrPostNotFound) {
		common.ErrorResponse(c, 404, "Post not found", err)
		return
	}
	if errors.Is(err, common.ErrForbidden) {
		common.ErrorResponse(c, 403, "Not allowed to restore this post", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to restore revision", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}
