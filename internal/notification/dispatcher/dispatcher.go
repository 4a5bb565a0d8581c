package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendly/internal/domain"
	"vendly/internal/outbox"
)

type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
}

// Dispatcher turns lifecycle/proposal events into notification records
// addressed to the counterpart actor: vendor actions notify the client
// and client actions notify the vendor. It runs from the outbox relay,
// so a failed insert is retried there and never reaches the lifecycle
// caller.
type Dispatcher struct {
	repo   NotificationRepository
	logger *zap.Logger
}

func NewDispatcher(repo NotificationRepository, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, logger: logger}
}

type template struct {
	notificationType domain.NotificationType
	title            string
	message          func(serviceName string) string
}

func serviceLabel(serviceName string) string {
	if serviceName == "" {
		return "your order"
	}
	return fmt.Sprintf("%q", serviceName)
}

var templates = map[string]template{
	outbox.EventOrderRequested: {
		notificationType: domain.NotificationNewRequest,
		title:            "New service request",
		message: func(s string) string {
			return fmt.Sprintf("You have a new request for %s.", serviceLabel(s))
		},
	},
	outbox.EventOrderCreated: {
		notificationType: domain.NotificationNewOrder,
		title:            "New order",
		message: func(s string) string {
			return fmt.Sprintf("Your proposal for %s was accepted and an order was created.", serviceLabel(s))
		},
	},
	outbox.EventOrderCancelled: {
		notificationType: domain.NotificationOrderCancelled,
		title:            "Order cancelled",
		message: func(s string) string {
			return fmt.Sprintf("The order for %s was cancelled.", serviceLabel(s))
		},
	},
	outbox.EventProposalSent: {
		notificationType: domain.NotificationProposalSent,
		title:            "New proposal",
		message: func(s string) string {
			return fmt.Sprintf("You received a proposal for %s.", serviceLabel(s))
		},
	},
	outbox.EventProposalAccepted: {
		notificationType: domain.NotificationProposalAccepted,
		title:            "Proposal accepted",
		message: func(s string) string {
			return fmt.Sprintf("Your proposal for %s was accepted.", serviceLabel(s))
		},
	},
	outbox.EventProposalRejected: {
		notificationType: domain.NotificationProposalRejected,
		title:            "Proposal declined",
		message: func(s string) string {
			return fmt.Sprintf("Your proposal for %s was declined.", serviceLabel(s))
		},
	},
	outbox.EventAdvancePaid: {
		notificationType: domain.NotificationAdvancePaid,
		title:            "Advance payment received",
		message: func(s string) string {
			return fmt.Sprintf("The advance payment for %s has been made. You can start working.", serviceLabel(s))
		},
	},
	outbox.EventRemainingPaid: {
		notificationType: domain.NotificationRemainingPaid,
		title:            "Final payment received",
		message: func(s string) string {
			return fmt.Sprintf("The remaining payment for %s has been made. The order is complete.", serviceLabel(s))
		},
	},
	outbox.EventWorkDelivered: {
		notificationType: domain.NotificationWorkDelivered,
		title:            "Work delivered",
		message: func(s string) string {
			return fmt.Sprintf("The vendor delivered the work for %s. Review and accept it.", serviceLabel(s))
		},
	},
	outbox.EventDeliveryAccepted: {
		notificationType: domain.NotificationDeliveryAccepted,
		title:            "Delivery accepted",
		message: func(s string) string {
			return fmt.Sprintf("The client accepted your delivery for %s.", serviceLabel(s))
		},
	},
}

// Handle implements outbox.Handler.
func (d *Dispatcher) Handle(ctx context.Context, evt outbox.Event, intent outbox.Intent) error {
	tpl, ok := templates[evt.Type]
	if !ok {
		d.logger.Warn("no notification template for event type", zap.String("eventType", evt.Type))
		return nil
	}

	recipient := intent.VendorID
	if domain.Role(intent.ActorRole) == domain.RoleVendor {
		recipient = intent.ClientID
	}
	if recipient == "" {
		d.logger.Warn("event has no counterpart recipient", zap.String("eventId", evt.ID))
		return nil
	}

	// The id is derived from the event, so a replayed event collides on
	// the primary key instead of inserting a duplicate row.
	n := &domain.Notification{
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte("notification:"+evt.ID)).String(),
		UserID:    recipient,
		Type:      tpl.notificationType,
		Title:     tpl.title,
		Message:   tpl.message(intent.ServiceName),
		CreatedAt: time.Now().UTC(),
	}
	if intent.OrderID != "" {
		n.OrderID = &intent.OrderID
	}
	if intent.ConversationID != "" {
		n.ConversationID = &intent.ConversationID
	}
	if intent.ProposalID != "" {
		n.ProposalID = &intent.ProposalID
	}

	if err := d.repo.Insert(ctx, n); err != nil {
		return err
	}

	d.logger.Debug("notification dispatched",
		zap.String("notificationId", n.ID),
		zap.String("userId", recipient),
		zap.String("type", string(n.Type)))
	return nil
}
