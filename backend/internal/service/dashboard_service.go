package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/repository"
	"campus-events/backend/pkg/clock"
)

const (
	dashboardRecentEvents        = 5
	dashboardRecentRegistrations = 10
	dashboardUpcomingEvents      = 5
	dashboardRecommended         = 3
	dashboardRecommendWindow     = 7 * 24 * time.Hour
)

// DashboardService 仪表盘业务接口
type DashboardService interface {
	Admin(ctx context.Context) (*dto.AdminDashboard, error)
	Organizer(ctx context.Context, userID string) (*dto.OrganizerDashboard, error)
	Student(ctx context.Context, userID string) (*dto.StudentDashboard, error)
}

type dashboardService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, clock: clk, logger: logger}
}

// Admin 全站用户、社团与活动统计
func (s *dashboardService) Admin(ctx context.Context) (*dto.AdminDashboard, error) {
	now := s.clock.Now()

	byRole, err := s.repo.User.CountByRole(ctx)
	if err != nil {
		s.logger.Error("统计用户失败", zap.Error(err))
		return nil, err
	}
	var totalUsers int64
	for _, n := range byRole {
		totalUsers += n
	}

	clubs, err := s.repo.Club.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.Event.Stats(ctx, now, "")
	if err != nil {
		s.logger.Error("统计活动失败", zap.Error(err))
		return nil, err
	}

	recent, err := s.repo.Event.ListRecent(ctx, dashboardRecentEvents)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.Registration.CountByEvents(ctx, eventIDs(recent))
	if err != nil {
		return nil, err
	}
	recentList := make([]dto.EventResponse, len(recent))
	for i := range recent {
		recentList[i] = toEventResponse(&recent[i], now, counts[recent[i].ID])
	}

	return &dto.AdminDashboard{
		TotalUsers:   totalUsers,
		UsersByRole:  byRole,
		ClubCount:    clubs,
		EventStats:   stats,
		RecentEvents: recentList,
	}, nil
}

// Organizer 本人负责的社团、本人活动统计及最近报名
func (s *dashboardService) Organizer(ctx context.Context, userID string) (*dto.OrganizerDashboard, error) {
	clubs, _, err := s.repo.Club.List(ctx, repository.ClubFilter{OwnerID: userID}, 0, 0)
	if err != nil {
		s.logger.Error("查询负责社团失败", zap.Error(err))
		return nil, err
	}
	clubList := make([]dto.ClubResponse, len(clubs))
	for i := range clubs {
		clubList[i] = toClubResponse(&clubs[i].Club, clubs[i].EventCount)
	}

	stats, err := s.repo.Event.Stats(ctx, s.clock.Now(), userID)
	if err != nil {
		s.logger.Error("统计活动失败", zap.Error(err))
		return nil, err
	}

	recent, err := s.repo.Registration.RecentForOrganizer(ctx, userID, dashboardRecentRegistrations)
	if err != nil {
		return nil, err
	}
	regs := make([]dto.RecentRegistrationResponse, len(recent))
	for i, r := range recent {
		regs[i] = dto.RecentRegistrationResponse{
			EventID:      r.EventID,
			EventTitle:   r.EventTitle,
			UserID:       r.UserID,
			Username:     r.Username,
			RegisteredAt: r.RegisteredAt,
		}
	}

	return &dto.OrganizerDashboard{Clubs: clubList, EventStats: stats, RecentRegistrations: regs}, nil
}

// Student 即将参加的活动、参与统计及未来 7 天内的推荐活动
func (s *dashboardService) Student(ctx context.Context, userID string) (*dto.StudentDashboard, error) {
	now := s.clock.Now()

	regs, err := s.repo.Registration.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询报名失败", zap.Error(err))
		return nil, err
	}
	attended, err := s.repo.Attendance.EventIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.EventID)
	}

	recommended, err := s.repo.Event.ListUnregisteredBetween(ctx, userID, now, now.Add(dashboardRecommendWindow), dashboardRecommended)
	if err != nil {
		return nil, err
	}
	ids = append(ids, eventIDs(recommended)...)

	counts, err := s.repo.Registration.CountByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	var (
		stats    dto.StudentStats
		upcoming = make([]dto.EventResponse, 0, dashboardUpcomingEvents)
	)
	// ListByUser 按开始时间升序
	for _, reg := range regs {
		if reg.Event == nil {
			continue
		}
		stats.Registered++
		if attended[reg.EventID] {
			stats.Attended++
		}
		switch {
		case !reg.Event.Started(now):
			stats.Upcoming++
			if len(upcoming) < dashboardUpcomingEvents {
				upcoming = append(upcoming, toEventResponse(reg.Event, now, counts[reg.EventID]))
			}
		case reg.Event.Ended(now):
			stats.Past++
		}
	}

	recList := make([]dto.EventResponse, len(recommended))
	for i := range recommended {
		recList[i] = toEventResponse(&recommended[i], now, counts[recommended[i].ID])
	}

	return &dto.StudentDashboard{UpcomingEvents: upcoming, Stats: stats, Recommended: recList}, nil
}
