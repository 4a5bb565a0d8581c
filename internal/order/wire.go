package order

import (
	"database/sql"

	"go.uber.org/zap"

	"vendly/internal/catalog"
	"vendly/internal/config"
	"vendly/internal/order/controller"
	orderrepo "vendly/internal/order/repository"
	"vendly/internal/order/service"
	"vendly/internal/outbox"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) (*controller.OrderController, *service.LifecycleService) {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	outboxRepo := outbox.NewMySQLRepository(db)
	catalogRepo := catalog.NewMySQLRepository(db)

	lifecycle := service.NewLifecycleService(
		db,
		orderRepo,
		outboxRepo,
		catalogRepo,
		logger,
		cfg.Order.TxTimeout,
	)

	return controller.NewOrderController(lifecycle, logger), lifecycle
}
