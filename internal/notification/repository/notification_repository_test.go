package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendly/internal/domain"
	apperrors "vendly/internal/errors"
	"vendly/internal/testutil"
)

func newNotification(userID string) *domain.Notification {
	orderID := uuid.New().String()
	return &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      domain.NotificationWorkDelivered,
		Title:     "Work delivered",
		Message:   `The vendor delivered the work for "Logo design". Review and accept it.`,
		OrderID:   &orderID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestNotificationRepository_InsertAndListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLNotificationRepository(db)
	userID := uuid.New().String()

	first := newNotification(userID)
	second := newNotification(userID)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	other := newNotification(uuid.New().String())
	for _, n := range []*domain.Notification{first, second, other} {
		require.NoError(t, repo.Insert(context.Background(), n))
	}

	notifications, err := repo.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	// Newest first.
	assert.Equal(t, second.ID, notifications[0].ID)
	assert.Equal(t, first.ID, notifications[1].ID)
	require.NotNil(t, notifications[0].OrderID)
}

func TestNotificationRepository_InsertIgnoresDuplicateID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLNotificationRepository(db)
	userID := uuid.New().String()
	n := newNotification(userID)

	require.NoError(t, repo.Insert(context.Background(), n))
	require.NoError(t, repo.Insert(context.Background(), n))

	notifications, err := repo.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}

func TestNotificationRepository_CountUnreadAndMarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLNotificationRepository(db)
	userID := uuid.New().String()

	first := newNotification(userID)
	second := newNotification(userID)
	require.NoError(t, repo.Insert(context.Background(), first))
	require.NoError(t, repo.Insert(context.Background(), second))

	count, err := repo.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.MarkRead(context.Background(), first.ID, userID))

	count, err = repo.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ids, err := repo.ListUnreadIDs(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ids)
}

func TestNotificationRepository_MarkReadIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLNotificationRepository(db)
	userID := uuid.New().String()
	n := newNotification(userID)
	require.NoError(t, repo.Insert(context.Background(), n))

	require.NoError(t, repo.MarkRead(context.Background(), n.ID, userID))
	require.NoError(t, repo.MarkRead(context.Background(), n.ID, userID))
}

func TestNotificationRepository_MarkReadScopedToRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLNotificationRepository(db)
	n := newNotification(uuid.New().String())
	require.NoError(t, repo.Insert(context.Background(), n))

	err := repo.MarkRead(context.Background(), n.ID, uuid.New().String())
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	found, err := repo.FindByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.False(t, found.Read)
}

func TestNotificationRepository_MarkReadMissingRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLNotificationRepository(db)

	err := repo.MarkRead(context.Background(), uuid.New().String(), uuid.New().String())
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
