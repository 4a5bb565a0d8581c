package repository

import (
	"context"
	"database/sql"
	"fmt"

	"vendly/internal/domain"
	"vendly/internal/errors"
)

const proposalColumns = `
	id, vendor_id, client_id, service_id, service_name, conversation_id,
	order_id, title, description, price, delivery_time, created_at
`

type MySQLProposalRepository struct {
	db *sql.DB
}

func NewMySQLProposalRepository(db *sql.DB) *MySQLProposalRepository {
	return &MySQLProposalRepository{db: db}
}

func (r *MySQLProposalRepository) Insert(ctx context.Context, tx *sql.Tx, p *domain.Proposal) error {
	query := `
		INSERT INTO proposals (
			id, vendor_id, client_id, service_id, service_name, conversation_id,
			order_id, title, description, price, delivery_time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		p.ID, p.VendorID, p.ClientID, p.ServiceID, p.ServiceName, p.ConversationID,
		p.OrderID, p.Title, p.Description, p.Price, p.DeliveryTime, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting proposal: %w", err)
	}
	return nil
}

func (r *MySQLProposalRepository) FindByID(ctx context.Context, id string) (*domain.Proposal, error) {
	query := `SELECT` + proposalColumns + `FROM proposals WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *MySQLProposalRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Proposal, error) {
	query := `SELECT` + proposalColumns + `FROM proposals WHERE id = ? FOR UPDATE`
	return r.scanOne(tx.QueryRowContext(ctx, query, id), id)
}

// LinkOrder back-references the order created by accepting an order-less
// proposal; the proposal is otherwise immutable.
func (r *MySQLProposalRepository) LinkOrder(ctx context.Context, tx *sql.Tx, proposalID, orderID string) error {
	query := `UPDATE proposals SET order_id = ? WHERE id = ? AND order_id IS NULL`
	result, err := tx.ExecContext(ctx, query, orderID, proposalID)
	if err != nil {
		return fmt.Errorf("linking proposal to order: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("proposal %s is already linked to an order", proposalID))
	}
	return nil
}

func (r *MySQLProposalRepository) ListForConversation(ctx context.Context, conversationID string) ([]domain.Proposal, error) {
	query := `SELECT` + proposalColumns + `FROM proposals WHERE conversation_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying proposals for conversation: %w", err)
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		var p domain.Proposal
		if err := rows.Scan(
			&p.ID, &p.VendorID, &p.ClientID, &p.ServiceID, &p.ServiceName, &p.ConversationID,
			&p.OrderID, &p.Title, &p.Description, &p.Price, &p.DeliveryTime, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (r *MySQLProposalRepository) scanOne(row *sql.Row, id string) (*domain.Proposal, error) {
	var p domain.Proposal
	err := row.Scan(
		&p.ID, &p.VendorID, &p.ClientID, &p.ServiceID, &p.ServiceName, &p.ConversationID,
		&p.OrderID, &p.Title, &p.Description, &p.Price, &p.DeliveryTime, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("proposal with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying proposal by id: %w", err)
	}
	return &p, nil
}
