package notification

import (
	"database/sql"

	"go.uber.org/zap"

	"vendly/internal/notification/controller"
	"vendly/internal/notification/dispatcher"
	notifrepo "vendly/internal/notification/repository"
	"vendly/internal/notification/service"
)

func NewModule(db *sql.DB, logger *zap.Logger) (*controller.NotificationController, *dispatcher.Dispatcher) {
	repo := notifrepo.NewMySQLNotificationRepository(db)
	svc := service.NewNotificationService(repo, logger)
	disp := dispatcher.NewDispatcher(repo, logger)

	return controller.NewNotificationController(svc, logger), disp
}
