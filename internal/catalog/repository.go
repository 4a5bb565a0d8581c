// Package catalog reads the externally-owned services table. The core
// only consumes it for service_name denormalization and proposal defaults.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"vendly/internal/errors"
)

type Service struct {
	ID           string
	Title        string
	Price        decimal.Decimal
	DeliveryTime string
}

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*Service, error) {
	query := `SELECT id, title, price, delivery_time FROM services WHERE id = ?`

	var svc Service
	err := r.db.QueryRowContext(ctx, query, id).Scan(&svc.ID, &svc.Title, &svc.Price, &svc.DeliveryTime)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("service with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying service by id: %w", err)
	}
	return &svc, nil
}
