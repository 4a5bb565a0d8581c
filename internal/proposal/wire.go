package proposal

import (
	"database/sql"

	"go.uber.org/zap"

	"vendly/internal/catalog"
	"vendly/internal/config"
	"vendly/internal/outbox"
	"vendly/internal/proposal/controller"
	proposalrepo "vendly/internal/proposal/repository"
	"vendly/internal/proposal/service"
)

func NewModule(db *sql.DB, cfg *config.Config, lifecycle service.OrderLifecycle, logger *zap.Logger) *controller.ProposalController {
	proposalRepo := proposalrepo.NewMySQLProposalRepository(db)
	outboxRepo := outbox.NewMySQLRepository(db)
	catalogRepo := catalog.NewMySQLRepository(db)

	engine := service.NewProposalService(
		db,
		proposalRepo,
		lifecycle,
		outboxRepo,
		catalogRepo,
		logger,
		cfg.Order.TxTimeout,
	)

	return controller.NewProposalController(engine, logger)
}
