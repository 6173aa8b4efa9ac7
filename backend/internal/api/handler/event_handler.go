package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/service"
	"campus-events/backend/pkg/response"
)

const icsContentType = "text/calendar; charset=utf-8"

// EventHandler 活动模块 HTTP 处理器
type EventHandler struct {
	eventSvc service.EventService
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// SearchEvents 搜索活动
// GET /api/v1/events?q=&category=&state=&from=&to=&club_id=
func (h *EventHandler) SearchEvents(c *gin.Context) {
	var req dto.EventSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	events, total, err := h.eventSvc.Search(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, events, total, req.GetPage(), req.GetPageSize())
}

// GetEvent 活动详情，登录用户附带 viewer 状态
// GET /api/v1/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	viewerID, viewerRole := viewer(c)

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	event, err := h.eventSvc.Get(c.Request.Context(), eventID, viewerID, viewerRole)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, event)
}

// CreateEvent 创建活动
// POST /api/v1/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	event, err := h.eventSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateEvent 更新活动
// PUT /api/v1/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req dto.UpdateEventRequest
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

	event, err := h.eventSvc.Update(c.Request.Context(), eventID, &req, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, event)
}

// UploadPoster 上传活动海报
// POST /api/v1/events/:id/poster
func (h *EventHandler) UploadPoster(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
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

	event, err := h.eventSvc.UploadPoster(c.Request.Context(), eventID, f, filename, callerID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteEvent 删除活动及其报名、签到、评分、照片与提醒
// DELETE /api/v1/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	eventID, ok := pathID(c, "id", service.ErrEventNotFound)
	if !ok {
		return
	}

	if err := h.eventSvc.Delete(c.Request.Context(), eventID, callerID, role); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// Categories 活动分类
// GET /api/v1/events/categories
func (h *EventHandler) Categories(c *gin.Context) {
	result, err := h.eventSvc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Calendar 日历 JSON
// GET /api/v1/events/calendar?from=&to=
func (h *EventHandler) Calendar(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	items, err := h.eventSvc.CalendarFeed(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// CalendarICS 全部活动的 iCalendar 订阅
// GET /api/v1/events/calendar.ics
func (h *EventHandler) CalendarICS(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	data, err := h.eventSvc.CalendarICS(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	writeICS(c, "events.ics", data)
}

// MyCalendarICS 当前用户已报名活动的 iCalendar
// GET /api/v1/users/me/events.ics
func (h *EventHandler) MyCalendarICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.eventSvc.MyCalendarICS(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	writeICS(c, "my-events.ics", data)
}

// OrganizerEvents 当前组织者创建的活动
// GET /api/v1/organizer/events
func (h *EventHandler) OrganizerEvents(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	events, total, err := h.eventSvc.OrganizerEvents(c.Request.Context(), callerID, &page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, events, total, page.GetPage(), page.GetPageSize())
}

func writeICS(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, icsContentType, data)
}
