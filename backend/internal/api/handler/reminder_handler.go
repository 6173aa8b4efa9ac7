package handler

import (
	"github.com/gin-gonic/gin"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/service"
	"campus-events/backend/pkg/response"
)

// ReminderHandler 活动提醒 HTTP 处理器
type ReminderHandler struct {
	reminderSvc service.ReminderService
}

// NewReminderHandler 创建 ReminderHandler
func NewReminderHandler(reminderSvc service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderSvc: reminderSvc}
}

// SetReminder 设置或修改提醒时间
// PUT /api/v1/events/:id/reminder
func (h *ReminderHandler) SetReminder(c *gin.Context) {
	var req dto.SetReminderRequest
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

	reminder, err := h.reminderSvc.Set(c.Request.Context(), eventID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, reminder)
}

// DeleteReminder 取消提醒
// DELETE /api/v1/events/:id/reminder
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	if err := h.reminderSvc.Delete(c.Request.Context(), eventID, userID); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListMine 我的提醒
// GET /api/v1/reminders
func (h *ReminderHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.reminderSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
