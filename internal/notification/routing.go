// Package notification synthesizes notification records from lifecycle
// events and resolves their role-aware navigation targets.
package notification

import (
	"vendly/internal/domain"
)

// Resolve answers "where should clicking this notification navigate" for
// the viewing role. Precedence: an explicit link on the notification
// always wins; otherwise a per-type rule against role-prefixed paths;
// otherwise correlation-field fallbacks ending at the role's dashboard.
func Resolve(n *domain.Notification, role domain.Role) string {
	if n.Link != "" {
		return n.Link
	}

	prefix := "/" + string(role)

	switch n.Type {
	case domain.NotificationMessage,
		domain.NotificationProposalSent,
		domain.NotificationProposalAccepted,
		domain.NotificationProposalRejected:
		if n.ConversationID != nil {
			return conversationTarget(prefix, n)
		}

	case domain.NotificationAdvancePaid,
		domain.NotificationRemainingPaid,
		domain.NotificationPaymentReceived,
		domain.NotificationPaymentFailed,
		domain.NotificationPaymentPending:
		if role == domain.RoleVendor {
			return prefix + "/earnings"
		}
		if n.OrderID != nil {
			return prefix + "/orders/payment/" + *n.OrderID
		}
		return prefix + "/payments"

	case domain.NotificationNewOrder,
		domain.NotificationNewRequest,
		domain.NotificationWorkDelivered,
		domain.NotificationDeliveryAccepted,
		domain.NotificationOrderCancelled:
		return prefix + "/orders"
	}

	// Unknown type, or a conversation type with no conversation.
	if n.OrderID != nil {
		return prefix + "/orders"
	}
	if n.ConversationID != nil {
		return conversationTarget(prefix, n)
	}
	return prefix + "/dashboard"
}

// conversationTarget deep-links into the conversation, focusing the
// specific message or proposal when one is correlated.
func conversationTarget(prefix string, n *domain.Notification) string {
	target := prefix + "/messages/" + *n.ConversationID
	if n.MessageID != nil {
		return target + "?focus=" + *n.MessageID
	}
	if n.ProposalID != nil {
		return target + "?proposal=" + *n.ProposalID
	}
	return target
}
