package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vendly/internal/domain"
)

func strptr(s string) *string { return &s }

func TestResolve_ExplicitLinkWins(t *testing.T) {
	n := &domain.Notification{
		Type:    domain.NotificationAdvancePaid,
		Link:    "/custom/path",
		OrderID: strptr("order-1"),
	}

	assert.Equal(t, "/custom/path", Resolve(n, domain.RoleVendor))
	assert.Equal(t, "/custom/path", Resolve(n, domain.RoleClient))
}

func TestResolve_PaymentTypes(t *testing.T) {
	tests := []struct {
		name string
		n    *domain.Notification
		role domain.Role
		want string
	}{
		{
			name: "advance paid routes vendors to earnings",
			n:    &domain.Notification{Type: domain.NotificationAdvancePaid, OrderID: strptr("order-1")},
			role: domain.RoleVendor,
			want: "/vendor/earnings",
		},
		{
			name: "advance paid routes clients to the order payment page",
			n:    &domain.Notification{Type: domain.NotificationAdvancePaid, OrderID: strptr("order-1")},
			role: domain.RoleClient,
			want: "/client/orders/payment/order-1",
		},
		{
			name: "payment without correlated order falls back to payments",
			n:    &domain.Notification{Type: domain.NotificationPaymentFailed},
			role: domain.RoleClient,
			want: "/client/payments",
		},
		{
			name: "remaining paid behaves like advance paid",
			n:    &domain.Notification{Type: domain.NotificationRemainingPaid, OrderID: strptr("order-2")},
			role: domain.RoleVendor,
			want: "/vendor/earnings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.n, tt.role))
		})
	}
}

func TestResolve_ConversationTypes(t *testing.T) {
	tests := []struct {
		name string
		n    *domain.Notification
		role domain.Role
		want string
	}{
		{
			name: "message focuses the correlated message",
			n: &domain.Notification{
				Type:           domain.NotificationMessage,
				ConversationID: strptr("conv-1"),
				MessageID:      strptr("msg-9"),
			},
			role: domain.RoleClient,
			want: "/client/messages/conv-1?focus=msg-9",
		},
		{
			name: "proposal sent deep-links the proposal",
			n: &domain.Notification{
				Type:           domain.NotificationProposalSent,
				ConversationID: strptr("conv-1"),
				ProposalID:     strptr("prop-3"),
			},
			role: domain.RoleClient,
			want: "/client/messages/conv-1?proposal=prop-3",
		},
		{
			name: "message focus beats proposal when both correlate",
			n: &domain.Notification{
				Type:           domain.NotificationMessage,
				ConversationID: strptr("conv-1"),
				MessageID:      strptr("msg-9"),
				ProposalID:     strptr("prop-3"),
			},
			role: domain.RoleVendor,
			want: "/vendor/messages/conv-1?focus=msg-9",
		},
		{
			name: "bare conversation",
			n: &domain.Notification{
				Type:           domain.NotificationProposalAccepted,
				ConversationID: strptr("conv-2"),
			},
			role: domain.RoleVendor,
			want: "/vendor/messages/conv-2",
		},
		{
			name: "conversation type without conversation falls back on the order",
			n: &domain.Notification{
				Type:    domain.NotificationProposalAccepted,
				OrderID: strptr("order-1"),
			},
			role: domain.RoleVendor,
			want: "/vendor/orders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.n, tt.role))
		})
	}
}

func TestResolve_OrderTypes(t *testing.T) {
	for _, typ := range []domain.NotificationType{
		domain.NotificationNewOrder,
		domain.NotificationNewRequest,
		domain.NotificationWorkDelivered,
		domain.NotificationDeliveryAccepted,
		domain.NotificationOrderCancelled,
	} {
		n := &domain.Notification{Type: typ}
		assert.Equal(t, "/client/orders", Resolve(n, domain.RoleClient), "type %s", typ)
		assert.Equal(t, "/vendor/orders", Resolve(n, domain.RoleVendor), "type %s", typ)
	}
}

func TestResolve_UnknownTypeFallbacks(t *testing.T) {
	assert.Equal(t, "/client/orders",
		Resolve(&domain.Notification{Type: "mystery", OrderID: strptr("order-1")}, domain.RoleClient))

	assert.Equal(t, "/vendor/messages/conv-1",
		Resolve(&domain.Notification{Type: "mystery", ConversationID: strptr("conv-1")}, domain.RoleVendor))

	assert.Equal(t, "/client/dashboard",
		Resolve(&domain.Notification{Type: "mystery"}, domain.RoleClient))
}
