package repository

import (
	"context"
	"database/sql"
	"fmt"

	"vendly/internal/domain"
	"vendly/internal/errors"
)

const orderColumns = `
	id, client_id, vendor_id, service_id, service_name, status,
	total_amount, advance_amount, remaining_amount,
	paid_advance, paid_remaining, payment_stage, proposal_id,
	delivery_message, delivery_file_url, created_at, updated_at
`

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, client_id, vendor_id, service_id, service_name, status,
			total_amount, advance_amount, remaining_amount,
			paid_advance, paid_remaining, payment_stage, proposal_id,
			delivery_message, delivery_file_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var deliveryMessage, deliveryFileURL *string
	if order.Delivery != nil {
		deliveryMessage = &order.Delivery.Message
		deliveryFileURL = &order.Delivery.FileURL
	}

	_, err := tx.ExecContext(ctx, query,
		order.ID, order.ClientID, order.VendorID, order.ServiceID, order.ServiceName, order.Status,
		order.TotalAmount, order.AdvanceAmount, order.RemainingAmount,
		order.PaidAdvance, order.PaidRemaining, order.PaymentStage, order.ProposalID,
		deliveryMessage, deliveryFileURL, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT` + orderColumns + `FROM orders WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// FindByIDForUpdate locks the order row for the duration of the caller's
// transaction.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error) {
	query := `SELECT` + orderColumns + `FROM orders WHERE id = ? FOR UPDATE`
	return r.scanOne(tx.QueryRowContext(ctx, query, id), id)
}

// Update writes every mutable field, total_amount included since
// proposal acceptance reprices the order; only id and created_at
// stay fixed.
func (r *MySQLOrderRepository) Update(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `
		UPDATE orders SET
			service_name = ?, status = ?,
			total_amount = ?, advance_amount = ?, remaining_amount = ?,
			paid_advance = ?, paid_remaining = ?, payment_stage = ?, proposal_id = ?,
			delivery_message = ?, delivery_file_url = ?, updated_at = ?
		WHERE id = ?
	`

	var deliveryMessage, deliveryFileURL *string
	if order.Delivery != nil {
		deliveryMessage = &order.Delivery.Message
		deliveryFileURL = &order.Delivery.FileURL
	}

	result, err := tx.ExecContext(ctx, query,
		order.ServiceName, order.Status,
		order.TotalAmount, order.AdvanceAmount, order.RemainingAmount,
		order.PaidAdvance, order.PaidRemaining, order.PaymentStage, order.ProposalID,
		deliveryMessage, deliveryFileURL, order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", order.ID))
	}
	return nil
}

func (r *MySQLOrderRepository) ListForUser(ctx context.Context, userID string, role domain.Role) ([]domain.Order, error) {
	column := "client_id"
	if role == domain.RoleVendor {
		column = "vendor_id"
	}

	query := `SELECT` + orderColumns + `FROM orders WHERE ` + column + ` = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying orders for user: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// UpdateServiceName backfills the denormalized service name outside any
// lifecycle transaction; best-effort at read time.
func (r *MySQLOrderRepository) UpdateServiceName(ctx context.Context, id, name string) error {
	query := `UPDATE orders SET service_name = ? WHERE id = ? AND service_name = ''`
	if _, err := r.db.ExecContext(ctx, query, name, id); err != nil {
		return fmt.Errorf("backfilling order service name: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *MySQLOrderRepository) scanOne(row scannable, id string) (*domain.Order, error) {
	order, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}
	return order, nil
}

func (r *MySQLOrderRepository) scanRow(row scannable) (*domain.Order, error) {
	var order domain.Order
	var deliveryMessage, deliveryFileURL *string

	err := row.Scan(
		&order.ID, &order.ClientID, &order.VendorID, &order.ServiceID, &order.ServiceName, &order.Status,
		&order.TotalAmount, &order.AdvanceAmount, &order.RemainingAmount,
		&order.PaidAdvance, &order.PaidRemaining, &order.PaymentStage, &order.ProposalID,
		&deliveryMessage, &deliveryFileURL, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deliveryMessage != nil || deliveryFileURL != nil {
		order.Delivery = &domain.Delivery{}
		if deliveryMessage != nil {
			order.Delivery.Message = *deliveryMessage
		}
		if deliveryFileURL != nil {
			order.Delivery.FileURL = *deliveryFileURL
		}
	}
	return &order, nil
}
