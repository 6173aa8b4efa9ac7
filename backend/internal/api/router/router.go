package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-events/backend/config"
	"campus-events/backend/internal/api/handler"
	"campus-events/backend/internal/api/middleware"
	"campus-events/backend/internal/model"
	"campus-events/backend/pkg/jwt"
	"campus-events/backend/pkg/redis"
)

// 认证接口限流：每个 IP 每分钟 10 次
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadMB << 20))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db, rdb))

	// ── 本地存储静态文件 ──
	if cfg.Storage.Driver == "local" {
		r.Static(cfg.Storage.PublicPrefix, cfg.Storage.LocalDir)
	}

	requireAuth := middleware.JWTAuth(jwtMgr, rdb, logger)
	optionalAuth := middleware.OptionalJWTAuth(jwtMgr, rdb, logger)
	limiter := middleware.RateLimit(rdb, authRateLimit, authRateWindow)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)
	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleOrganizer)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", limiter, h.Auth.Register)
			auth.POST("/login", limiter, h.Auth.Login)
			auth.POST("/refresh", limiter, h.Auth.RefreshToken)
		}

		// 公开浏览（可选认证）
		public := v1.Group("")
		public.Use(optionalAuth)
		{
			public.GET("/clubs", h.Club.ListClubs)
			public.GET("/clubs/:id", h.Club.GetClub)

			public.GET("/events", h.Event.SearchEvents)
			public.GET("/events/categories", h.Event.Categories)
			public.GET("/events/calendar", h.Event.Calendar)
			public.GET("/events/calendar.ics", h.Event.CalendarICS)
			public.GET("/events/:id", h.Event.GetEvent)
			public.GET("/events/:id/ratings", h.Participation.Ratings)
			public.GET("/events/:id/photos", h.Photo.ListPhotos)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(requireAuth)
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetProfile)
				users.PUT("/me", h.User.UpdateProfile)
				users.POST("/me/avatar", h.User.UploadAvatar)
				users.GET("/me/events", h.Participation.MyEvents)
				users.GET("/me/events.ics", h.Event.MyCalendarICS)
				users.GET("", adminOnly, h.User.ListUsers)
				users.PUT("/:id/role", adminOnly, h.User.ChangeRole)
			}

			// 社团模块（更新 / 删除由 Service 层校验 admin 或创建者）
			clubs := authorized.Group("/clubs")
			{
				clubs.POST("", staff, h.Club.CreateClub)
				clubs.PUT("/:id", h.Club.UpdateClub)
				clubs.DELETE("/:id", h.Club.DeleteClub)
				clubs.POST("/:id/logo", h.Club.UploadLogo)
			}

			// 活动模块（管理操作由 Service 层校验 admin 或活动组织者）
			events := authorized.Group("/events")
			{
				events.POST("", staff, h.Event.CreateEvent)
				events.PUT("/:id", h.Event.UpdateEvent)
				events.DELETE("/:id", h.Event.DeleteEvent)
				events.POST("/:id/poster", h.Event.UploadPoster)

				events.POST("/:id/registration", h.Participation.Register)
				events.DELETE("/:id/registration", h.Participation.Unregister)
				events.GET("/:id/qr-check-in", h.Participation.QRCheckIn)
				events.POST("/:id/qr-check-in", h.Participation.QRCheckIn)
				events.POST("/:id/rating", h.Participation.Rate)

				events.GET("/:id/check-in/qr", h.Participation.CheckInQR)
				events.POST("/:id/check-in", h.Participation.CheckIn)
				events.GET("/:id/participants", h.Participation.Roster)
				events.GET("/:id/participants/export", h.Export.ExportParticipants)

				events.POST("/:id/photos", h.Photo.AddPhoto)
				events.DELETE("/:id/photos/:photo_id", h.Photo.DeletePhoto)

				events.PUT("/:id/reminder", h.Reminder.SetReminder)
				events.DELETE("/:id/reminder", h.Reminder.DeleteReminder)
			}

			authorized.GET("/reminders", h.Reminder.ListMine)
			authorized.GET("/organizer/events", staff, h.Event.OrganizerEvents)

			// 仪表盘
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/admin", adminOnly, h.Dashboard.Admin)
				dashboard.GET("/organizer", staff, h.Dashboard.Organizer)
				dashboard.GET("/student", h.Dashboard.Student)
			}
		}
	}

	return r, nil
}

// healthCheck 探测数据库与 Redis；Redis 未启用时不影响整体状态
func healthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "db": "ok", "redis": "disabled"}

		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["db"] = "unreachable"
			}
		}
		if rdb != nil {
			body["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				body["redis"] = "unreachable"
			}
		}

		c.JSON(status, body)
	}
}
