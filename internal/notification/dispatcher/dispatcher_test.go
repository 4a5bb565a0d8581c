package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vendly/internal/domain"
	"vendly/internal/outbox"
)

type mockNotificationRepository struct {
	inserted []*domain.Notification
	err      error
}

func (m *mockNotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, n)
	return nil
}

func testIntent(actorRole string) outbox.Intent {
	return outbox.Intent{
		OrderID:     "order-1",
		ServiceName: "Logo design",
		ActorRole:   actorRole,
		ActorID:     "actor-1",
		ClientID:    "client-1",
		VendorID:    "vendor-1",
	}
}

func TestHandle_VendorActionNotifiesClient(t *testing.T) {
	repo := &mockNotificationRepository{}
	d := NewDispatcher(repo, zap.NewNop())

	err := d.Handle(context.Background(),
		outbox.Event{ID: "evt-1", Type: outbox.EventWorkDelivered},
		testIntent(string(domain.RoleVendor)))

	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	n := repo.inserted[0]
	assert.Equal(t, "client-1", n.UserID)
	assert.Equal(t, domain.NotificationWorkDelivered, n.Type)
	require.NotNil(t, n.OrderID)
	assert.Equal(t, "order-1", *n.OrderID)
	assert.Contains(t, n.Message, `"Logo design"`)
}

func TestHandle_ClientActionNotifiesVendor(t *testing.T) {
	repo := &mockNotificationRepository{}
	d := NewDispatcher(repo, zap.NewNop())

	err := d.Handle(context.Background(),
		outbox.Event{ID: "evt-1", Type: outbox.EventAdvancePaid},
		testIntent(string(domain.RoleClient)))

	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "vendor-1", repo.inserted[0].UserID)
	assert.Equal(t, domain.NotificationAdvancePaid, repo.inserted[0].Type)
}

func TestHandle_CarriesCorrelationFields(t *testing.T) {
	repo := &mockNotificationRepository{}
	d := NewDispatcher(repo, zap.NewNop())

	intent := testIntent(string(domain.RoleVendor))
	intent.ProposalID = "prop-1"
	intent.ConversationID = "conv-1"

	err := d.Handle(context.Background(),
		outbox.Event{ID: "evt-1", Type: outbox.EventProposalSent}, intent)

	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	n := repo.inserted[0]
	require.NotNil(t, n.ProposalID)
	assert.Equal(t, "prop-1", *n.ProposalID)
	require.NotNil(t, n.ConversationID)
	assert.Equal(t, "conv-1", *n.ConversationID)
}

func TestHandle_UnknownEventTypeIsDropped(t *testing.T) {
	repo := &mockNotificationRepository{}
	d := NewDispatcher(repo, zap.NewNop())

	err := d.Handle(context.Background(),
		outbox.Event{ID: "evt-1", Type: "order.vaporized"},
		testIntent(string(domain.RoleClient)))

	require.NoError(t, err)
	assert.Empty(t, repo.inserted)
}

func TestHandle_MissingRecipientIsDropped(t *testing.T) {
	repo := &mockNotificationRepository{}
	d := NewDispatcher(repo, zap.NewNop())

	intent := testIntent(string(domain.RoleVendor))
	intent.ClientID = ""

	err := d.Handle(context.Background(),
		outbox.Event{ID: "evt-1", Type: outbox.EventWorkDelivered}, intent)

	require.NoError(t, err)
	assert.Empty(t, repo.inserted)
}

func TestHandle_RedeliveredEventKeepsTheSameNotificationID(t *testing.T) {
	repo := &mockNotificationRepository{}
	d := NewDispatcher(repo, zap.NewNop())

	evt := outbox.Event{ID: "evt-1", Type: outbox.EventWorkDelivered}
	intent := testIntent(string(domain.RoleVendor))

	require.NoError(t, d.Handle(context.Background(), evt, intent))
	require.NoError(t, d.Handle(context.Background(), evt, intent))

	require.Len(t, repo.inserted, 2)
	assert.NotEmpty(t, repo.inserted[0].ID)
	assert.Equal(t, repo.inserted[0].ID, repo.inserted[1].ID)
}

func TestHandle_InsertFailurePropagates(t *testing.T) {
	repo := &mockNotificationRepository{err: assert.AnError}
	d := NewDispatcher(repo, zap.NewNop())

	err := d.Handle(context.Background(),
		outbox.Event{ID: "evt-1", Type: outbox.EventWorkDelivered},
		testIntent(string(domain.RoleVendor)))

	assert.Error(t, err)
}

func TestHandle_EmptyServiceNameFallsBackToGenericLabel(t *testing.T) {
	repo := &mockNotificationRepository{}
	d := NewDispatcher(repo, zap.NewNop())

	intent := testIntent(string(domain.RoleClient))
	intent.ServiceName = ""

	err := d.Handle(context.Background(),
		outbox.Event{ID: "evt-1", Type: outbox.EventRemainingPaid}, intent)

	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	assert.Contains(t, repo.inserted[0].Message, "your order")
}
