package domain

import "time"

type NotificationType string

const (
	NotificationNewOrder         NotificationType = "new_order"
	NotificationNewRequest       NotificationType = "new_request"
	NotificationProposalSent     NotificationType = "proposal_sent"
	NotificationProposalAccepted NotificationType = "proposal_accepted"
	NotificationProposalRejected NotificationType = "proposal_rejected"
	NotificationAdvancePaid      NotificationType = "advance_paid"
	NotificationRemainingPaid    NotificationType = "remaining_paid"
	NotificationPaymentReceived  NotificationType = "payment_received"
	NotificationPaymentFailed    NotificationType = "payment_failed"
	NotificationPaymentPending   NotificationType = "payment_pending"
	NotificationWorkDelivered    NotificationType = "work_delivered"
	NotificationDeliveryAccepted NotificationType = "delivery_accepted"
	NotificationOrderCancelled   NotificationType = "order_cancelled"
	NotificationMessage          NotificationType = "message"
)

type Notification struct {
	ID             string
	UserID         string
	Type           NotificationType
	Title          string
	Message        string
	Link           string
	OrderID        *string
	ConversationID *string
	ProposalID     *string
	MessageID      *string
	Read           bool
	CreatedAt      time.Time
}
