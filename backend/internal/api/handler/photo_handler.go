package handler

import (
	"github.com/gin-gonic/gin"

	"campus-events/backend/internal/service"
	"campus-events/backend/pkg/response"
)

// PhotoHandler 活动照片 HTTP 处理器
type PhotoHandler struct {
	photoSvc service.PhotoService
}

// NewPhotoHandler 创建 PhotoHandler
func NewPhotoHandler(photoSvc service.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoSvc: photoSvc}
}

// ListPhotos 活动照片
// GET /api/v1/events/:id/photos
func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	list, err := h.photoSvc.List(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// AddPhoto 上传照片（multipart 字段 file、caption）
// POST /api/v1/events/:id/photos
func (h *PhotoHandler) AddPhoto(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	caption := c.PostForm("caption")
	if len(caption) > 255 {
		response.BadRequest(c, 10001, "caption 不能超过 255 字符")
		return
	}

	f, filename, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer f.Close()

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	photo, err := h.photoSvc.Add(c.Request.Context(), eventID, f, filename, caption, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, photo)
}

// DeletePhoto 删除照片
// DELETE /api/v1/events/:id/photos/:photo_id
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}
	photoID, ok := pathID(c, "photo_id", service.ErrPhotoNotFound)
	if !ok {
		return
	}

	if err := h.photoSvc.Delete(c.Request.Context(), eventID, photoID, callerID, role); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}
