package migration

import (
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Controller exposes the backfill as a manual admin operation; it is
// invoked by an operator, never scheduled.
type Controller struct {
	migrator *Migrator
	logger   *zap.Logger
}

func NewController(migrator *Migrator, logger *zap.Logger) *Controller {
	return &Controller{migrator: migrator, logger: logger}
}

func (c *Controller) Run(w http.ResponseWriter, r *http.Request) {
	report := c.migrator.Run(r.Context())

	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		c.logger.Error("failed to encode migration report", zap.Error(err))
	}
}
