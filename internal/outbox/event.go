// Package outbox persists transition intents in the same transaction as
// the order write, so notification and bus side effects survive a crash
// between the status update and its fan-out.
package outbox

import "time"

const (
	EventOrderRequested   = "order.requested"
	EventOrderCreated     = "order.created"
	EventOrderCancelled   = "order.cancelled"
	EventProposalSent     = "proposal.sent"
	EventProposalAccepted = "proposal.accepted"
	EventProposalRejected = "proposal.rejected"
	EventAdvancePaid      = "payment.advance_paid"
	EventRemainingPaid    = "payment.remaining_paid"
	EventWorkDelivered    = "delivery.submitted"
	EventDeliveryAccepted = "delivery.accepted"
)

const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

type Event struct {
	ID          string
	OrderID     *string
	Type        string
	Payload     []byte
	Status      string
	Attempts    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// Intent is the JSON payload of an outbox event: everything a side-effect
// handler needs to act without re-reading the order.
type Intent struct {
	OrderID        string `json:"order_id,omitempty"`
	ProposalID     string `json:"proposal_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	ServiceName    string `json:"service_name,omitempty"`
	Action         string `json:"action,omitempty"`
	OldStatus      string `json:"old_status,omitempty"`
	NewStatus      string `json:"new_status,omitempty"`
	ActorRole      string `json:"actor_role"`
	ActorID        string `json:"actor_id"`
	ClientID       string `json:"client_id"`
	VendorID       string `json:"vendor_id"`
}
