package handler

import (
	"github.com/gin-gonic/gin"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/service"
	"campus-events/backend/pkg/response"
)

// ClubHandler 社团模块 HTTP 处理器
type ClubHandler struct {
	clubSvc service.ClubService
}

// NewClubHandler 创建 ClubHandler
func NewClubHandler(clubSvc service.ClubService) *ClubHandler {
	return &ClubHandler{clubSvc: clubSvc}
}

// ListClubs 社团列表
// GET /api/v1/clubs
func (h *ClubHandler) ListClubs(c *gin.Context) {
	var req dto.ClubListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	clubs, total, err := h.clubSvc.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, clubs, total, req.GetPage(), req.GetPageSize())
}

// GetClub 社团详情
// GET /api/v1/clubs/:id
func (h *ClubHandler) GetClub(c *gin.Context) {
	clubID, ok := pathID(c, "id", service.ErrClubNotFound)
	if !ok {
		return
	}

	club, err := h.clubSvc.Get(c.Request.Context(), clubID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, club)
}

// CreateClub 创建社团
// POST /api/v1/clubs
func (h *ClubHandler) CreateClub(c *gin.Context) {
	var req dto.CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	club, err := h.clubSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, club)
}

// UpdateClub 更新社团
// PUT /api/v1/clubs/:id
func (h *ClubHandler) UpdateClub(c *gin.Context) {
	var req dto.UpdateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	clubID, ok := pathID(c, "id", service.ErrClubNotFound)
	if !ok {
		return
	}

	club, err := h.clubSvc.Update(c.Request.Context(), clubID, &req, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, club)
}

// UploadLogo 上传社团 Logo
// POST /api/v1/clubs/:id/logo
func (h *ClubHandler) UploadLogo(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	f, filename, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer f.Close()

	clubID, ok := pathID(c, "id", service.ErrClubNotFound)
	if !ok {
		return
	}

	club, err := h.clubSvc.UploadLogo(c.Request.Context(), clubID, f, filename, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, club)
}

// DeleteClub 删除社团
// DELETE /api/v1/clubs/:id
func (h *ClubHandler) DeleteClub(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	clubID, ok := pathID(c, "id", service.ErrClubNotFound)
	if !ok {
		return
	}

	if err := h.clubSvc.Delete(c.Request.Context(), clubID, callerID, role); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}
