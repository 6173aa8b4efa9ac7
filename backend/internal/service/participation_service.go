package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"campus-events/backend/config"
	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/model"
	"campus-events/backend/internal/repository"
	"campus-events/backend/pkg/clock"
	"campus-events/backend/pkg/qrcode"
)

// ParticipationService 报名、签到与评分业务接口
type ParticipationService interface {
	Register(ctx context.Context, eventID, userID string) (*dto.RegistrationResponse, error)
	Unregister(ctx context.Context, eventID, userID string) error
	// CheckInSelf 参与者扫码签到
	CheckInSelf(ctx context.Context, eventID, userID string) (*dto.CheckInResponse, error)
	CheckInByOrganizer(ctx context.Context, eventID string, req *dto.CheckInRequest, callerID, callerRole string) (*dto.CheckInResponse, error)
	Rate(ctx context.Context, eventID, userID string, req *dto.RateRequest) (*dto.RatingResponse, error)
	Roster(ctx context.Context, eventID, callerID, callerRole string) ([]dto.RosterEntryResponse, error)
	MyEvents(ctx context.Context, userID string) ([]dto.MyEventResponse, error)
	Ratings(ctx context.Context, eventID string) (*dto.RatingListResponse, error)
	// CheckInQR 生成签到二维码 PNG
	CheckInQR(ctx context.Context, eventID, callerID, callerRole string) ([]byte, error)
}

type participationService struct {
	cfg    *config.Config
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewParticipationService 创建 ParticipationService 实例
func NewParticipationService(cfg *config.Config, repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ParticipationService {
	return &participationService{cfg: cfg, repo: repo, clock: clk, logger: logger}
}

func (s *participationService) getEvent(ctx context.Context, repo *repository.Repository, id string, forUpdate bool) (*model.Event, error) {
	var (
		event *model.Event
		err   error
	)
	if forUpdate {
		event, err = repo.Event.GetByIDForUpdate(ctx, id)
	} else {
		event, err = repo.Event.GetByID(ctx, id)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.String("event_id", id), zap.Error(err))
		return nil, err
	}
	return event, nil
}

// ────────────────────── 报名 ──────────────────────

// Register 在事务内锁定活动行后检查容量，避免并发超报
func (s *participationService) Register(ctx context.Context, eventID, userID string) (*dto.RegistrationResponse, error) {
	var reg *model.Registration
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		event, err := s.getEvent(ctx, tx, eventID, true)
		if err != nil {
			return err
		}

		if _, err := tx.Registration.Get(ctx, userID, event.ID); err == nil {
			return ErrAlreadyRegistered
		} else if !repository.IsNotFound(err) {
			return err
		}

		now := s.clock.Now()
		if event.Started(now) {
			return ErrRegistrationClosed
		}

		count, err := tx.Registration.CountByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if event.IsFull(count) {
			return ErrEventFull
		}

		reg = &model.Registration{UserID: userID, EventID: event.ID, RegisteredAt: now}
		if err := tx.Registration.Create(ctx, reg); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		if _, ok := asAppError(err); !ok {
			s.logger.Error("报名失败", zap.String("event_id", eventID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("报名成功", zap.String("event_id", eventID), zap.String("user_id", userID))
	return &dto.RegistrationResponse{EventID: reg.EventID, UserID: reg.UserID, RegisteredAt: reg.RegisteredAt}, nil
}

// Unregister 取消报名，同时移除该活动的提醒
func (s *participationService) Unregister(ctx context.Context, eventID, userID string) error {
	event, err := s.getEvent(ctx, s.repo, eventID, false)
	if err != nil {
		return err
	}

	if _, err := s.repo.Registration.Get(ctx, userID, event.ID); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotRegistered
		}
		return err
	}
	if event.Started(s.clock.Now()) {
		return ErrEventStarted
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Registration.Delete(ctx, userID, event.ID); err != nil {
			if repository.IsNotFound(err) {
				return ErrNotRegistered
			}
			return err
		}
		if err := tx.Reminder.Delete(ctx, userID, event.ID); err != nil && !repository.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		if _, ok := asAppError(err); !ok {
			s.logger.Error("取消报名失败", zap.String("event_id", event.ID), zap.Error(err))
		}
		return err
	}
	return nil
}

// ────────────────────── 签到 ──────────────────────

func (s *participationService) CheckInSelf(ctx context.Context, eventID, userID string) (*dto.CheckInResponse, error) {
	event, err := s.getEvent(ctx, s.repo, eventID, false)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, event, userID)
}

func (s *participationService) CheckInByOrganizer(ctx context.Context, eventID string, req *dto.CheckInRequest, callerID, callerRole string) (*dto.CheckInResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	username := strings.TrimSpace(req.Username)
	if (userID == "") == (username == "") {
		return nil, ErrCheckInTarget
	}

	event, err := s.getEvent(ctx, s.repo, eventID, false)
	if err != nil {
		return nil, err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return nil, ErrNoPermission
	}

	var user *model.User
	if userID != "" {
		user, err = s.repo.User.GetByID(ctx, userID)
	} else {
		user, err = s.repo.User.GetByUsername(ctx, username)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}

	return s.checkIn(ctx, event, user.ID)
}

// checkIn 要求已报名；重复签到视为成功并返回首次签到时间
func (s *participationService) checkIn(ctx context.Context, event *model.Event, userID string) (*dto.CheckInResponse, error) {
	if _, err := s.repo.Registration.Get(ctx, userID, event.ID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	if existing, err := s.repo.Attendance.Get(ctx, userID, event.ID); err == nil {
		return &dto.CheckInResponse{EventID: event.ID, UserID: userID, CheckedInAt: existing.CheckedInAt, AlreadyCheckedIn: true}, nil
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	att := &model.Attendance{UserID: userID, EventID: event.ID, CheckedInAt: s.clock.Now()}
	if err := s.repo.Attendance.Create(ctx, att); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			existing, gerr := s.repo.Attendance.Get(ctx, userID, event.ID)
			if gerr != nil {
				return nil, gerr
			}
			return &dto.CheckInResponse{EventID: event.ID, UserID: userID, CheckedInAt: existing.CheckedInAt, AlreadyCheckedIn: true}, nil
		}
		s.logger.Error("签到失败", zap.String("event_id", event.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("签到成功", zap.String("event_id", event.ID), zap.String("user_id", userID))
	return &dto.CheckInResponse{EventID: event.ID, UserID: userID, CheckedInAt: att.CheckedInAt}, nil
}

// ────────────────────── 评分 ──────────────────────

// Rate 活动结束后已签到的参与者可评分，重复评分覆盖旧值
func (s *participationService) Rate(ctx context.Context, eventID, userID string, req *dto.RateRequest) (*dto.RatingResponse, error) {
	if req.Score < model.MinScore || req.Score > model.MaxScore {
		return nil, ErrInvalidScore
	}

	event, err := s.getEvent(ctx, s.repo, eventID, false)
	if err != nil {
		return nil, err
	}
	if !event.Ended(s.clock.Now()) {
		return nil, ErrEventNotEnded
	}
	if _, err := s.repo.Attendance.Get(ctx, userID, event.ID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotAttended
		}
		return nil, err
	}

	rating := &model.Rating{
		UserID:   userID,
		EventID:  event.ID,
		Score:    req.Score,
		Feedback: strings.TrimSpace(req.Feedback),
	}
	if err := s.repo.Rating.Upsert(ctx, rating); err != nil {
		s.logger.Error("保存评分失败", zap.String("event_id", event.ID), zap.Error(err))
		return nil, err
	}

	return &dto.RatingResponse{Score: rating.Score, Feedback: rating.Feedback, UpdatedAt: rating.UpdatedAt}, nil
}

func (s *participationService) Ratings(ctx context.Context, eventID string) (*dto.RatingListResponse, error) {
	event, err := s.getEvent(ctx, s.repo, eventID, false)
	if err != nil {
		return nil, err
	}
	ratings, err := s.repo.Rating.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	avg, count, err := s.repo.Rating.Average(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	list := make([]dto.RatingResponse, len(ratings))
	for i, r := range ratings {
		list[i] = dto.RatingResponse{
			User:      toUserBrief(r.User),
			Score:     r.Score,
			Feedback:  r.Feedback,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return &dto.RatingListResponse{Average: avg, Count: count, List: list}, nil
}

// ────────────────────── 名单 / 我的活动 ──────────────────────

func (s *participationService) Roster(ctx context.Context, eventID, callerID, callerRole string) ([]dto.RosterEntryResponse, error) {
	event, err := s.getEvent(ctx, s.repo, eventID, false)
	if err != nil {
		return nil, err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return nil, ErrNoPermission
	}

	rows, err := s.repo.Registration.Roster(ctx, event.ID)
	if err != nil {
		s.logger.Error("查询参与者名单失败", zap.String("event_id", event.ID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.RosterEntryResponse, len(rows))
	for i := range rows {
		row := &rows[i]
		list[i] = dto.RosterEntryResponse{
			UserID:       row.UserID,
			Username:     row.Username,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Email:        row.Email,
			RegisteredAt: row.RegisteredAt,
			Attended:     row.Attended(),
			CheckedInAt:  row.CheckedInAt,
		}
	}
	return list, nil
}

func (s *participationService) MyEvents(ctx context.Context, userID string) ([]dto.MyEventResponse, error) {
	regs, err := s.repo.Registration.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询我的活动失败", zap.Error(err))
		return nil, err
	}
	attended, err := s.repo.Attendance.EventIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	scores, err := s.repo.Rating.ScoresByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.EventID)
	}
	counts, err := s.repo.Registration.CountByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	list := make([]dto.MyEventResponse, 0, len(regs))
	for _, reg := range regs {
		if reg.Event == nil {
			continue
		}
		item := dto.MyEventResponse{
			Event:        toEventResponse(reg.Event, now, counts[reg.EventID]),
			RegisteredAt: reg.RegisteredAt,
			Attended:     attended[reg.EventID],
		}
		if score, ok := scores[reg.EventID]; ok {
			item.MyRating = &score
		}
		item.CanRate = item.Attended && reg.Event.Ended(now)
		list = append(list, item)
	}
	return list, nil
}

// ────────────────────── 二维码 ──────────────────────

func (s *participationService) CheckInQR(ctx context.Context, eventID, callerID, callerRole string) ([]byte, error) {
	event, err := s.getEvent(ctx, s.repo, eventID, false)
	if err != nil {
		return nil, err
	}
	if !canManageEvent(callerID, callerRole, event) {
		return nil, ErrNoPermission
	}
	return qrcode.PNG(qrcode.CheckInURL(s.cfg.Server.BaseURL, event.ID), qrcode.DefaultSize)
}
