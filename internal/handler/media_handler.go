package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/publora/publora-backend/internal/common"
	"github.com/publora/publora-backend/internal/service"
)

// MediaHandler handles post attachment uploads
type MediaHandler struct {
	service *service.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(service *service.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// Upload godoc
// @Summary      Upload a media attachment
// @Description  Stores an image or video and returns the storage key to reference from a post.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Attachment (max 25MB)"
// @Success      201  {object}  common.APIResponse{data=storage.UploadResult}
// @Failure      400  {object}  common.APIResponse
// @Failure      500  {object}  common.APIResponse
// @Router       /media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, 400, "Missing file field", err)
		return
	}

	result, err := h.service.Upload(c.Request.Context(), file)
	if err != nil {
		common.ErrorResponse(c, 400, "Upload rejected", err)
		return
	}

	c.JSON(201, common.APIResponse{Data: result})
}
