package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vendly/internal/commons"
	"vendly/internal/config"
	"vendly/internal/domain"
	"vendly/internal/events"
	"vendly/internal/infrastructure/logger"
	"vendly/internal/infrastructure/mysql"
	"vendly/internal/messaging"
	"vendly/internal/migration"
	notification "vendly/internal/notification/wire"
	"vendly/internal/order"
	"vendly/internal/outbox"
	"vendly/internal/proposal"
	proposalrepo "vendly/internal/proposal/repository"
	"vendly/internal/server"
)

func main() {
	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = commons.LoadConfig(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if err := mysql.ApplyMigrations(db, cfg.Database.MigrationsDir, zapLogger); err != nil {
		zapLogger.Fatal("applying schema migrations", zap.Error(err))
	}

	bus := events.NewBus()

	orderCtrl, lifecycle := order.NewModule(db, cfg, zapLogger)
	proposalCtrl := proposal.NewModule(db, cfg, lifecycle, zapLogger)
	notificationCtrl, dispatcher := notification.NewModule(db, zapLogger)
	migrator := migration.NewMigrator(db, zapLogger)
	migrationCtrl := migration.NewController(migrator, zapLogger)

	announcer := messaging.NewProposalAnnouncer(
		proposalrepo.NewMySQLProposalRepository(db),
		messaging.NewMessenger(db),
		zapLogger,
	)

	relay := outbox.NewRelay(
		outbox.NewMySQLRepository(db),
		[]outbox.Handler{
			dispatcher,
			announcer,
			outbox.HandlerFunc(func(_ context.Context, _ outbox.Event, intent outbox.Intent) error {
				bus.Publish(events.OrderEvent{
					OrderID:   intent.OrderID,
					Action:    intent.Action,
					OldStatus: domain.Status(intent.OldStatus),
					NewStatus: domain.Status(intent.NewStatus),
					Actor:     domain.Role(intent.ActorRole),
					ActorID:   intent.ActorID,
					At:        time.Now().UTC(),
				})
				return nil
			}),
		},
		zapLogger,
		cfg.Outbox.PollInterval,
		cfg.Outbox.BatchSize,
		cfg.Outbox.MaxAttempts,
		cfg.Outbox.Workers,
	)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	go relay.Run(relayCtx)

	router := server.NewRouter(orderCtrl, proposalCtrl, notificationCtrl, migrationCtrl, zapLogger)
	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")
	stopRelay()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
