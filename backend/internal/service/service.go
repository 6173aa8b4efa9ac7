package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-events/backend/config"
	"campus-events/backend/internal/repository"
	"campus-events/backend/pkg/clock"
	"campus-events/backend/pkg/jwt"
	"campus-events/backend/pkg/mailer"
	"campus-events/backend/pkg/redis"
	"campus-events/backend/pkg/storage"
)

// TokenBlacklist JWT 黑名单，Access Token 与 Refresh Token 共用
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth          AuthService
	User          UserService
	Club          ClubService
	Event         EventService
	Participation ParticipationService
	Export        ExportService
	Photo         PhotoService
	Reminder      ReminderService
	Dashboard     DashboardService
}

// NewService 创建 Service 聚合
// rdb、mail 为 nil 时对应功能降级
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	store storage.Storage,
	mail mailer.Mailer,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	var blacklist TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	loc := cfg.Server.Location()

	return &Service{
		Auth:          NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:          NewUserService(repo, store, logger),
		Club:          NewClubService(repo, store, logger),
		Event:         NewEventService(cfg, repo, store, clk, logger),
		Participation: NewParticipationService(cfg, repo, clk, logger),
		Export:        NewExportService(repo, clk, loc, logger),
		Photo:         NewPhotoService(repo, store, logger),
		Reminder:      NewReminderService(cfg, repo, mail, clk, loc, logger),
		Dashboard:     NewDashboardService(repo, clk, logger),
	}
}
