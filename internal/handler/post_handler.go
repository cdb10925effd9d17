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

// PostHandler handles HTTP requests for posts
type PostHandler struct {
	service service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// ListPosts godoc
// @Summary      List the caller's posts
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number"     default(1)
// @Param        limit  query  int  false  "Items per page"  default(20)
// @Success      200  {object}  common.APIResponse{data=[]domain.Post}
// @Failure      500  {object}  common.APIResponse
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	data, meta, err := h.service.ListPosts(ownerID, page, limit)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch posts", err)
		return
	}

	common.SuccessResponse(c, data, meta)
}

// GetPost godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	data, err := h.service.GetPost(id)
	if errors.Is(err, common.ErrPostNotFound) {
		common.ErrorResponse(c, 404, "Post not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to fetch post", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a draft, records its first revision, and applies the owner's approval rules.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  domain.CreatePostRequest  true  "Post payload"
// @Success      201  {object}  common.APIResponse{data=domain.Post}
// @Failure      400  {object}  common.APIResponse
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	userID := middleware.GetUserID(c)
	data, err := h.service.CreatePost(userID, userID, &req)
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to create post", err)
		return
	}

	c.JSON(201, common.APIResponse{Data: data})
}

// UpdatePost godoc
// @Summary      Update a post
// @Description  Applies a partial update and records the previous content as a revision.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                       true  "Post ID"
// @Param        request  body  domain.UpdatePostRequest  true  "Fields to update"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	var req domain.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	actorID := middleware.GetUserID(c)
	data, err := h.service.UpdatePost(id, actorID, &req)
	if errors.Is(err, common.ErrPostNotFound) {
		common.ErrorResponse(c, 404, "Post not found", err)
		return
	}
	if errors.Is(err, common.ErrForbidden) {
		common.ErrorResponse(c, 403, "Not allowed to edit this post", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to update post", err)
		return
	}

	common.SuccessResponse(c, data, nil)
}

// DeletePost godoc
// @Summary      Delete a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      204  "No Content"
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, 400, "Invalid post ID", err)
		return
	}

	actorID := middleware.GetUserID(c)
	err = h.service.DeletePost(id, actorID)
	if errors.Is(err, common.ErrPostNotFound) {
		common.ErrorResponse(c, 404, "Post not found", err)
		return
	}
	if errors.Is(err, common.ErrForbidden) {
		common.ErrorResponse(c, 403, "Not allowed to delete this post", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, 500, "Failed to delete post", err)
		return
	}

	c.Status(204)
}
