package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proposal is a vendor-authored price/scope offer, optionally tied to an
// existing order request. Immutable after creation.
type Proposal struct {
	ID             string
	VendorID       string
	ClientID       string
	ServiceID      string
	ServiceName    string
	ConversationID string
	OrderID        *string
	Title          string
	Description    string
	Price          decimal.Decimal
	DeliveryTime   string
	CreatedAt      time.Time
}
