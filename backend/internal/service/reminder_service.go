package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"campus-events/backend/config"
	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/model"
	"campus-events/backend/internal/repository"
	"campus-events/backend/pkg/clock"
	"campus-events/backend/pkg/mailer"
)

// ReminderService 活动提醒业务接口
type ReminderService interface {
	Set(ctx context.Context, eventID, userID string, req *dto.SetReminderRequest) (*dto.ReminderResponse, error)
	Delete(ctx context.Context, eventID, userID string) error
	ListMine(ctx context.Context, userID string) ([]dto.ReminderResponse, error)
	// DispatchDue 发送 now 时刻已到期的提醒邮件，返回成功发送的数量
	DispatchDue(ctx context.Context, now time.Time) (int, error)
}

type reminderService struct {
	cfg    *config.Config
	repo   *repository.Repository
	mail   mailer.Mailer
	clock  clock.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewReminderService 创建 ReminderService 实例
// mail 为 nil 时仅保存提醒，不发送
func NewReminderService(cfg *config.Config, repo *repository.Repository, mail mailer.Mailer, clk clock.Clock, loc *time.Location, logger *zap.Logger) ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &reminderService{cfg: cfg, repo: repo, mail: mail, clock: clk, loc: loc, logger: logger}
}

func toReminderResponse(r *model.Reminder) dto.ReminderResponse {
	resp := dto.ReminderResponse{
		ID:       r.ID,
		EventID:  r.EventID,
		RemindAt: r.RemindAt,
		SentAt:   r.SentAt,
	}
	if r.Event != nil {
		start := r.Event.StartTime
		resp.EventTitle = r.Event.Title
		resp.EventStart = &start
	}
	return resp
}

// Set 仅已报名用户可设置，要求 now < remind_at < 活动开始；同一活动重复设置覆盖旧值
func (s *reminderService) Set(ctx context.Context, eventID, userID string, req *dto.SetReminderRequest) (*dto.ReminderResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Registration.Get(ctx, userID, event.ID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	remindAt := req.RemindAt.UTC()
	if !s.clock.Now().Before(remindAt) || !remindAt.Before(event.StartTime) {
		return nil, ErrReminderTime
	}

	reminder := &model.Reminder{UserID: userID, EventID: event.ID, RemindAt: remindAt}
	if err := s.repo.Reminder.Upsert(ctx, reminder); err != nil {
		s.logger.Error("保存提醒失败", zap.String("event_id", event.ID), zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.Reminder.Get(ctx, userID, event.ID)
	if err != nil {
		return nil, err
	}
	saved.Event = event
	resp := toReminderResponse(saved)
	return &resp, nil
}

func (s *reminderService) Delete(ctx context.Context, eventID, userID string) error {
	if err := s.repo.Reminder.Delete(ctx, userID, eventID); err != nil {
		if repository.IsNotFound(err) {
			return ErrReminderNotFound
		}
		s.logger.Error("删除提醒失败", zap.String("event_id", eventID), zap.Error(err))
		return err
	}
	return nil
}

func (s *reminderService) ListMine(ctx context.Context, userID string) ([]dto.ReminderResponse, error) {
	reminders, err := s.repo.Reminder.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询提醒失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.ReminderResponse, len(reminders))
	for i := range reminders {
		list[i] = toReminderResponse(&reminders[i])
	}
	return list, nil
}

// ────────────────────── 发送 ──────────────────────

func (s *reminderService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	if s.mail == nil {
		return 0, nil
	}

	due, err := s.repo.Reminder.ListDue(ctx, now, s.cfg.Reminder.MaxAttempts, s.cfg.Reminder.BatchSize)
	if err != nil {
		s.logger.Error("查询到期提醒失败", zap.Error(err))
		return 0, err
	}

	sent := 0
	for i := range due {
		r := &due[i]
		if r.User == nil || r.Event == nil {
			continue
		}
		if err := s.mail.Send(ctx, s.compose(r)); err != nil {
			s.fail(ctx, r, now, err)
			continue
		}
		if err := s.repo.Reminder.MarkSent(ctx, r.ID, now); err != nil {
			s.logger.Error("标记提醒已发送失败", zap.String("reminder_id", r.ID), zap.Error(err))
			continue
		}
		sent++
	}

	if sent > 0 {
		s.logger.Info("提醒邮件已发送", zap.Int("count", sent))
	}
	return sent, nil
}

// fail 记录失败并按指数退避顺延，失败行不再占据队首
func (s *reminderService) fail(ctx context.Context, r *model.Reminder, now time.Time, sendErr error) {
	attempts := r.Attempts + 1
	retryAt := now.Add(s.cfg.Reminder.RetryBackoff << (attempts - 1))
	if err := s.repo.Reminder.MarkFailed(ctx, r.ID, sendErr.Error(), retryAt); err != nil {
		s.logger.Error("记录提醒失败次数失败", zap.String("reminder_id", r.ID), zap.Error(err))
		return
	}
	if attempts >= s.cfg.Reminder.MaxAttempts {
		s.logger.Warn("提醒多次发送失败，已放弃",
			zap.String("reminder_id", r.ID),
			zap.String("to", r.User.Email),
			zap.Int("attempts", attempts),
			zap.Error(sendErr),
		)
		return
	}
	s.logger.Warn("发送提醒邮件失败，稍后重试",
		zap.String("reminder_id", r.ID),
		zap.String("to", r.User.Email),
		zap.Int("attempts", attempts),
		zap.Time("retry_at", retryAt),
		zap.Error(sendErr),
	)
}

func (s *reminderService) compose(r *model.Reminder) mailer.Message {
	ev := r.Event
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", r.User.FullName())
	fmt.Fprintf(&b, "This is a reminder for \"%s\".\n\n", ev.Title)
	fmt.Fprintf(&b, "When:  %s - %s\n", ev.StartTime.In(s.loc).Format("2006-01-02 15:04"), ev.EndTime.In(s.loc).Format("15:04 MST"))
	fmt.Fprintf(&b, "Where: %s\n\n", ev.Location)
	fmt.Fprintf(&b, "%s/api/v1/events/%s\n", strings.TrimRight(s.cfg.Server.BaseURL, "/"), ev.ID)

	return mailer.Message{
		To:      r.User.Email,
		Subject: "Reminder: " + ev.Title,
		Body:    b.String(),
	}
}
