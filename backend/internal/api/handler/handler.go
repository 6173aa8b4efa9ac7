package handler

import (
	"campus-events/backend/config"
	"campus-events/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth          *AuthHandler
	User          *UserHandler
	Club          *ClubHandler
	Event         *EventHandler
	Participation *ParticipationHandler
	Export        *ExportHandler
	Photo         *PhotoHandler
	Reminder      *ReminderHandler
	Dashboard     *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth, cfg),
		User:          NewUserHandler(svc.User),
		Club:          NewClubHandler(svc.Club),
		Event:         NewEventHandler(svc.Event),
		Participation: NewParticipationHandler(svc.Participation),
		Export:        NewExportHandler(svc.Export),
		Photo:         NewPhotoHandler(svc.Photo),
		Reminder:      NewReminderHandler(svc.Reminder),
		Dashboard:     NewDashboardHandler(svc.Dashboard),
	}
}
