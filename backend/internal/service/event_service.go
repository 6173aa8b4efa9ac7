package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"campus-events/backend/config"
	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/model"
	"campus-events/backend/internal/repository"
	"campus-events/backend/pkg/calendar"
	"campus-events/backend/pkg/clock"
	pkgerrors "campus-events/backend/pkg/errors"
	"campus-events/backend/pkg/imageproc"
	"campus-events/backend/pkg/storage"
)

// EventService 活动业务接口
type EventService interface {
	Create(ctx context.Context, req *dto.CreateEventRequest, callerID, callerRole string) (*dto.EventDetailResponse, error)
	// Get viewerID 为空表示匿名访问
	Get(ctx context.Context, id, viewerID, viewerRole string) (*dto.EventDetailResponse, error)
	Search(ctx context.Context, req *dto.EventSearchRequest) ([]dto.EventResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateEventRequest, callerID, callerRole string) (*dto.EventDetailResponse, error)
	UploadPoster(ctx context.Context, id string, r io.Reader, filename, callerID, callerRole string) (*dto.EventDetailResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
	Categories(ctx context.Context) (*dto.CategoriesResponse, error)
	CalendarFeed(ctx context.Context, req *dto.CalendarRequest) ([]dto.CalendarItem, error)
	CalendarICS(ctx context.Context, req *dto.CalendarRequest) ([]byte, error)
	MyCalendarICS(ctx context.Context, userID string) ([]byte, error)
	OrganizerEvents(ctx context.Context, callerID string, req *dto.PaginationRequest) ([]dto.EventResponse, int64, error)
}

type eventService struct {
	cfg    *config.Config
	repo   *repository.Repository
	store  storage.Storage
	clock  clock.Clock
	logger *zap.Logger
}

// NewEventService 创建 EventService 实例
func NewEventService(cfg *config.Config, repo *repository.Repository, store storage.Storage, clk clock.Clock, logger *zap.Logger) EventService {
	return &eventService{cfg: cfg, repo: repo, store: store, clock: clk, logger: logger}
}

func (s *eventService) getEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.String("event_id", id), zap.Error(err))
		return nil, err
	}
	return event, nil
}

func (s *eventService) eventURL(id string) string {
	return fmt.Sprintf("%s/api/v1/events/%s", strings.TrimRight(s.cfg.Server.BaseURL, "/"), id)
}

// validateTimes 校验 start < end；checkPast 为 true 时要求 start 不早于 now
func validateTimes(start, end, now time.Time, checkPast bool) error {
	if !start.Before(end) {
		return ErrEventTimeOrder
	}
	if checkPast && start.Before(now) {
		return ErrEventStartInPast
	}
	return nil
}

func (s *eventService) ensureClub(ctx context.Context, clubID string) error {
	if _, err := s.repo.Club.GetByID(ctx, clubID); err != nil {
		if repository.IsNotFound(err) {
			return ErrClubNotFound
		}
		return err
	}
	return nil
}

// ────────────────────── Create ──────────────────────

func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest, callerID, callerRole string) (*dto.EventDetailResponse, error) {
	if !isAdmin(callerRole) && callerRole != model.RoleOrganizer {
		return nil, ErrNoPermission
	}
	if !model.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	now := s.clock.Now()
	if err := validateTimes(req.StartTime, req.EndTime, now, true); err != nil {
		return nil, err
	}
	if err := s.ensureClub(ctx, req.ClubID); err != nil {
		return nil, err
	}

	event := &model.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Location:    strings.TrimSpace(req.Location),
		Category:    req.Category,
		Capacity:    req.Capacity,
		ClubID:      req.ClubID,
		OrganizerID: callerID,
	}
	event.Version = 1
	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("活动已创建", zap.String("event_id", event.ID), zap.String("organizer", callerID))
	return s.Get(ctx, event.ID, callerID, callerRole)
}

// ────────────────────── Get ──────────────────────

func (s *eventService) Get(ctx context.Context, id, viewerID, viewerRole string) (*dto.EventDetailResponse, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	registered, err := s.repo.Registration.CountByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	attended, err := s.repo.Attendance.CountByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	avg, ratingCount, err := s.repo.Rating.Average(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.EventDetailResponse{
		EventResponse:   toEventResponse(event, now, registered),
		Organizer:       toUserBrief(event.Organizer),
		AttendanceCount: attended,
		AverageRating:   avg,
		RatingCount:     ratingCount,
	}
	if event.Capacity != nil {
		left := int64(*event.Capacity) - registered
		if left < 0 {
			left = 0
		}
		resp.SpotsLeft = &left
	}

	if viewerID != "" {
		viewer, err := s.viewerState(ctx, event, viewerID, viewerRole, now, registered)
		if err != nil {
			return nil, err
		}
		resp.Viewer = viewer
	}
	return resp, nil
}

func (s *eventService) viewerState(ctx context.Context, event *model.Event, userID, role string, now time.Time, registered int64) (*dto.ViewerState, error) {
	v := &dto.ViewerState{CanManage: canManageEvent(userID, role, event)}

	if _, err := s.repo.Registration.Get(ctx, userID, event.ID); err == nil {
		v.IsRegistered = true
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.repo.Attendance.Get(ctx, userID, event.ID); err == nil {
		v.HasAttended = true
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	if rating, err := s.repo.Rating.Get(ctx, userID, event.ID); err == nil {
		score := rating.Score
		v.MyRating = &score
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	v.CanRegister = !v.IsRegistered && !event.Started(now) && !event.IsFull(registered)
	v.CanRate = v.HasAttended && event.Ended(now)
	return v, nil
}

// ────────────────────── Search ──────────────────────

func (s *eventService) Search(ctx context.Context, req *dto.EventSearchRequest) ([]dto.EventResponse, int64, error) {
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, 0, ErrInvalidQueryRange
	}
	now := s.clock.Now()

	events, total, err := s.repo.Event.Search(ctx, repository.EventFilter{
		Query:    req.Query,
		Category: req.Category,
		State:    model.EventState(req.State),
		Now:      now,
		From:     req.From,
		To:       req.To,
		ClubID:   req.ClubID,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("搜索活动失败", zap.Error(err))
		return nil, 0, err
	}

	list, err := s.withCounts(ctx, events, now)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *eventService) withCounts(ctx context.Context, events []model.Event, now time.Time) ([]dto.EventResponse, error) {
	counts, err := s.repo.Registration.CountByEvents(ctx, eventIDs(events))
	if err != nil {
		return nil, err
	}
	list := make([]dto.EventResponse, len(events))
	for i := range events {
		list[i] = toEventResponse(&events[i], now, counts[events[i].ID])
	}
	return list, nil
}

// ────────────────────── Update ──────────────────────

func (s *eventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest, callerID, callerRole string) (*dto.EventDetailResponse, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return nil, ErrNoPermission
	}
	if req.Version != nil && *req.Version != event.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	startChanged := false
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartTime != nil && !req.StartTime.Equal(event.StartTime) {
		event.StartTime = req.StartTime.UTC()
		startChanged = true
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime.UTC()
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Category != nil {
		if !model.ValidCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		event.Category = *req.Category
	}
	switch {
	case req.ClearCapacity:
		event.Capacity = nil
	case req.Capacity != nil:
		if *req.Capacity < 1 {
			return nil, ErrInvalidCapacity
		}
		event.Capacity = req.Capacity
	}
	if req.ClubID != nil && *req.ClubID != event.ClubID {
		if err := s.ensureClub(ctx, *req.ClubID); err != nil {
			return nil, err
		}
		event.ClubID = *req.ClubID
		event.Club = nil
	}

	if err := validateTimes(event.StartTime, event.EndTime, s.clock.Now(), startChanged); err != nil {
		return nil, err
	}

	if err := s.repo.Event.Update(ctx, event); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新活动失败", zap.Error(err))
		}
		return nil, err
	}
	return s.Get(ctx, event.ID, callerID, callerRole)
}

func (s *eventService) UploadPoster(ctx context.Context, id string, r io.Reader, filename, callerID, callerRole string) (*dto.EventDetailResponse, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return nil, ErrNoPermission
	}

	url, key, err := uploadImage(ctx, s.store, "posters", r, filename, imageproc.MaxPoster)
	if err != nil {
		return nil, err
	}

	oldKey := event.PosterKey
	event.PosterURL = url
	event.PosterKey = key
	if err := s.repo.Event.Update(ctx, event); err != nil {
		removeObject(ctx, s.store, key, s.logger)
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新活动海报失败", zap.Error(err))
		}
		return nil, err
	}
	removeObject(ctx, s.store, oldKey, s.logger)

	return s.Get(ctx, event.ID, callerID, callerRole)
}

// ────────────────────── Delete ──────────────────────

// Delete 在同一事务内依次删除提醒、照片、评分、签到、报名与活动本身
// 存储中的海报与照片文件在提交后尽力删除
func (s *eventService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return ErrNoPermission
	}

	var keys []string
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		photos, err := tx.Photo.ListByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		for _, p := range photos {
			keys = append(keys, p.StorageKey)
		}

		if err := tx.Reminder.DeleteByEvent(ctx, event.ID); err != nil {
			return err
		}
		if err := tx.Photo.DeleteByEvent(ctx, event.ID); err != nil {
			return err
		}
		if err := tx.Rating.DeleteByEvent(ctx, event.ID); err != nil {
			return err
		}
		if err := tx.Attendance.DeleteByEvent(ctx, event.ID); err != nil {
			return err
		}
		if err := tx.Registration.DeleteByEvent(ctx, event.ID); err != nil {
			return err
		}
		return tx.Event.Delete(ctx, event.ID)
	})
	if err != nil {
		s.logger.Error("删除活动失败", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}

	removeObject(ctx, s.store, event.PosterKey, s.logger)
	for _, k := range keys {
		removeObject(ctx, s.store, k, s.logger)
	}

	s.logger.Info("活动已删除", zap.String("event_id", event.ID), zap.String("operator", callerID))
	return nil
}

// ────────────────────── Categories / Calendar ──────────────────────

func (s *eventService) Categories(ctx context.Context) (*dto.CategoriesResponse, error) {
	inUse, err := s.repo.Event.DistinctCategories(ctx)
	if err != nil {
		s.logger.Error("查询活动分类失败", zap.Error(err))
		return nil, err
	}
	if inUse == nil {
		inUse = []string{}
	}
	return &dto.CategoriesResponse{All: model.EventCategories, InUse: inUse}, nil
}

func (s *eventService) calendarEvents(ctx context.Context, req *dto.CalendarRequest) ([]model.Event, error) {
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, ErrInvalidQueryRange
	}
	events, _, err := s.repo.Event.Search(ctx, repository.EventFilter{
		From: req.From,
		To:   req.To,
	}, 0, 0)
	if err != nil {
		s.logger.Error("查询日历活动失败", zap.Error(err))
		return nil, err
	}
	return events, nil
}

func (s *eventService) CalendarFeed(ctx context.Context, req *dto.CalendarRequest) ([]dto.CalendarItem, error) {
	events, err := s.calendarEvents(ctx, req)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CalendarItem, len(events))
	for i, ev := range events {
		items[i] = dto.CalendarItem{
			ID:    ev.ID,
			Title: ev.Title,
			Start: ev.StartTime,
			End:   ev.EndTime,
			URL:   s.eventURL(ev.ID),
		}
	}
	return items, nil
}

func (s *eventService) toEntries(events []model.Event) []calendar.Entry {
	entries := make([]calendar.Entry, len(events))
	for i, ev := range events {
		entries[i] = calendar.Entry{
			ID:          ev.ID,
			Title:       ev.Title,
			Description: ev.Description,
			Location:    ev.Location,
			Start:       ev.StartTime,
			End:         ev.EndTime,
			URL:         s.eventURL(ev.ID),
		}
	}
	return entries
}

func (s *eventService) CalendarICS(ctx context.Context, req *dto.CalendarRequest) ([]byte, error) {
	events, err := s.calendarEvents(ctx, req)
	if err != nil {
		return nil, err
	}
	return calendar.BuildICS("Campus Events", s.toEntries(events), s.clock.Now())
}

func (s *eventService) MyCalendarICS(ctx context.Context, userID string) ([]byte, error) {
	regs, err := s.repo.Registration.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户报名失败", zap.Error(err))
		return nil, err
	}
	events := make([]model.Event, 0, len(regs))
	for _, reg := range regs {
		if reg.Event != nil {
			events = append(events, *reg.Event)
		}
	}
	return calendar.BuildICS("My Campus Events", s.toEntries(events), s.clock.Now())
}

// ────────────────────── Organizer ──────────────────────

func (s *eventService) OrganizerEvents(ctx context.Context, callerID string, req *dto.PaginationRequest) ([]dto.EventResponse, int64, error) {
	events, total, err := s.repo.Event.Search(ctx, repository.EventFilter{OrganizerID: callerID}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询组织者活动失败", zap.Error(err))
		return nil, 0, err
	}
	list, err := s.withCounts(ctx, events, s.clock.Now())
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
