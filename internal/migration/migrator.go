// Package migration back-fills the two-stage payment fields on orders
// created before the advance/remaining model existed.
package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendly/internal/domain"
	"vendly/internal/payment"
)

// Report accumulates the batch outcome. The scan is not transactional: a
// failure partway leaves earlier orders migrated, and the per-order
// idempotence guard makes re-running safe.
type Report struct {
	Success  bool   `json:"success"`
	Migrated int    `json:"migrated"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

type Migrator struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMigrator(db *sql.DB, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

type legacyOrder struct {
	id            string
	status        string
	paymentStatus *string
	total         decimal.Decimal
	advance       decimal.NullDecimal
	remaining     decimal.NullDecimal
}

// Run scans every order once. Orders already carrying both staged
// amounts are counted as skipped; the rest get the 30/70 split and paid
// flags inferred from the legacy status fields. The batch aborts on the
// first unrecoverable write failure, returning the counts so far.
func (m *Migrator) Run(ctx context.Context) Report {
	orders, err := m.scan(ctx)
	if err != nil {
		m.logger.Error("migration scan failed", zap.Error(err))
		return Report{Error: err.Error()}
	}

	report := Report{}
	for _, o := range orders {
		if o.advance.Valid && o.remaining.Valid {
			report.Skipped++
			continue
		}

		paidAdvance, paidRemaining := inferPaid(o.status, o.paymentStatus)
		staging := payment.Stage(o.total, paidAdvance, paidRemaining)

		if err := m.write(ctx, o.id, staging, paidAdvance, paidRemaining); err != nil {
			m.logger.Error("migration write failed",
				zap.String("orderId", o.id),
				zap.Int("migrated", report.Migrated),
				zap.Error(err))
			report.Error = err.Error()
			return report
		}
		report.Migrated++
	}

	report.Success = true
	m.logger.Info("two-stage payment migration finished",
		zap.Int("migrated", report.Migrated),
		zap.Int("skipped", report.Skipped))
	return report
}

// inferPaid maps legacy fields onto the two settlement booleans: a paid
// payment_status or a completed order means fully paid; an order already
// in progress or delivered had its advance paid; anything else paid
// nothing.
func inferPaid(status string, paymentStatus *string) (paidAdvance, paidRemaining bool) {
	if (paymentStatus != nil && *paymentStatus == "paid") || status == string(domain.StatusCompleted) {
		return true, true
	}
	if status == string(domain.StatusInProgress) || status == string(domain.StatusDelivered) {
		return true, false
	}
	return false, false
}

func (m *Migrator) scan(ctx context.Context) ([]legacyOrder, error) {
	query := `
		SELECT id, status, payment_status, total_amount, advance_amount, remaining_amount
		FROM orders
	`
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}
	defer rows.Close()

	var orders []legacyOrder
	for rows.Next() {
		var o legacyOrder
		if err := rows.Scan(&o.id, &o.status, &o.paymentStatus, &o.total, &o.advance, &o.remaining); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (m *Migrator) write(ctx context.Context, id string, staging payment.Staging, paidAdvance, paidRemaining bool) error {
	query := `
		UPDATE orders SET
			advance_amount = ?, remaining_amount = ?,
			paid_advance = ?, paid_remaining = ?, payment_stage = ?
		WHERE id = ?
	`
	_, err := m.db.ExecContext(ctx, query,
		staging.Advance, staging.Remaining,
		paidAdvance, paidRemaining, staging.Stage,
		id,
	)
	if err != nil {
		return fmt.Errorf("writing staged amounts: %w", err)
	}
	return nil
}
