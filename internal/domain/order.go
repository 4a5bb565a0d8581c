package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNew                      Status = "new"
	StatusProposalSent             Status = "proposal_sent"
	StatusAwaitingPayment          Status = "awaiting_payment"
	StatusInProgress               Status = "in_progress"
	StatusDelivered                Status = "delivered"
	StatusAwaitingRemainingPayment Status = "awaiting_remaining_payment"
	StatusCompleted                Status = "completed"
	StatusCancelled                Status = "cancelled"
)

type PaymentStage string

const (
	StagePendingAdvance PaymentStage = "PENDING_ADVANCE"
	StageInProgress     PaymentStage = "IN_PROGRESS"
	StagePaidFull       PaymentStage = "PAID_FULL"
)

type Role string

const (
	RoleClient Role = "client"
	RoleVendor Role = "vendor"
)

// Delivery is the vendor's declaration that contracted work is complete.
type Delivery struct {
	Message string
	FileURL string
}

type Order struct {
	ID              string
	ClientID        string
	VendorID        string
	ServiceID       string
	ServiceName     string
	Status          Status
	TotalAmount     decimal.Decimal
	AdvanceAmount   decimal.NullDecimal
	RemainingAmount decimal.NullDecimal
	PaidAdvance     bool
	PaidRemaining   bool
	PaymentStage    PaymentStage
	ProposalID      *string
	Delivery        *Delivery
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the order admits no further status mutation.
func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// Staged reports whether the advance/remaining split has been populated.
// Once staged, the amounts are never recomputed from the total.
func (o *Order) Staged() bool {
	return o.AdvanceAmount.Valid && o.RemainingAmount.Valid
}

// StageFor derives the payment stage from the two settlement booleans.
// The stored payment_stage column is always recomputed through this
// function before a write, so it cannot drift from the booleans.
func StageFor(paidAdvance, paidRemaining bool) PaymentStage {
	switch {
	case paidAdvance && paidRemaining:
		return StagePaidFull
	case paidAdvance:
		return StageInProgress
	default:
		return StagePendingAdvance
	}
}
