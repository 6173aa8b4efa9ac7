package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/service"
	"campus-events/backend/pkg/response"
)

// ParticipationHandler 报名 / 签到 / 评分 HTTP 处理器
type ParticipationHandler struct {
	partSvc service.ParticipationService
}

// NewParticipationHandler 创建 ParticipationHandler
func NewParticipationHandler(partSvc service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{partSvc: partSvc}
}

// Register 报名活动
// POST /api/v1/events/:id/registration
func (h *ParticipationHandler) Register(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	reg, err := h.partSvc.Register(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, reg)
}

// Unregister 取消报名
// DELETE /api/v1/events/:id/registration
func (h *ParticipationHandler) Unregister(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	if err := h.partSvc.Unregister(c.Request.Context(), eventID, userID); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// QRCheckIn 扫码签到，重复签到返回首次签到时间
// GET|POST /api/v1/events/:id/qr-check-in
func (h *ParticipationHandler) QRCheckIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	result, err := h.partSvc.CheckInSelf(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	writeCheckIn(c, result)
}

// CheckIn 组织者为参与者签到
// POST /api/v1/events/:id/check-in
func (h *ParticipationHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	result, err := h.partSvc.CheckInByOrganizer(c.Request.Context(), eventID, &req, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	writeCheckIn(c, result)
}

// CheckInQR 签到二维码 PNG
// GET /api/v1/events/:id/check-in/qr
func (h *ParticipationHandler) CheckInQR(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	png, err := h.partSvc.CheckInQR(c.Request.Context(), eventID, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// Rate 评分
// POST /api/v1/events/:id/rating
func (h *ParticipationHandler) Rate(c *gin.Context) {
	var req dto.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	rating, err := h.partSvc.Rate(c.Request.Context(), eventID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, rating)
}

// Ratings 活动评分列表
// GET /api/v1/events/:id/ratings
func (h *ParticipationHandler) Ratings(c *gin.Context) {
	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	result, err := h.partSvc.Ratings(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Roster 参与者名单
// GET /api/v1/events/:id/participants
func (h *ParticipationHandler) Roster(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	list, err := h.partSvc.Roster(c.Request.Context(), eventID, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// MyEvents 我报名的活动
// GET /api/v1/users/me/events
func (h *ParticipationHandler) MyEvents(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.partSvc.MyEvents(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

func writeCheckIn(c *gin.Context, result *dto.CheckInResponse) {
	if result.AlreadyCheckedIn {
		response.OKMessage(c, "已签到", result)
		return
	}
	response.OK(c, result)
}
