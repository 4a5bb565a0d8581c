package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendly/internal/domain"
	apperrors "vendly/internal/errors"
	"vendly/internal/testutil"
)

func newOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:           uuid.New().String(),
		ClientID:     uuid.New().String(),
		VendorID:     uuid.New().String(),
		ServiceID:    uuid.New().String(),
		ServiceName:  "Logo design",
		Status:       domain.StatusNew,
		TotalAmount:  decimal.RequireFromString("800.00"),
		PaymentStage: domain.StagePendingAdvance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func insertOrder(t *testing.T, db *sql.DB, repo *MySQLOrderRepository, order *domain.Order) {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), tx, order))
	require.NoError(t, tx.Commit())
}

func TestOrderRepository_InsertAndFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	order := newOrder()
	insertOrder(t, db, repo, order)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, domain.StatusNew, found.Status)
	assert.True(t, found.TotalAmount.Equal(order.TotalAmount))
	assert.False(t, found.Staged())
	assert.Nil(t, found.Delivery)
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New().String())
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderRepository_UpdatePersistsStagingAndDelivery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	order := newOrder()
	insertOrder(t, db, repo, order)

	order.Status = domain.StatusDelivered
	order.AdvanceAmount = decimal.NewNullDecimal(decimal.RequireFromString("240.00"))
	order.RemainingAmount = decimal.NewNullDecimal(decimal.RequireFromString("560.00"))
	order.PaidAdvance = true
	order.PaymentStage = domain.StageInProgress
	order.Delivery = &domain.Delivery{Message: "done", FileURL: "https://files/final.zip"}
	order.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), tx, order))
	require.NoError(t, tx.Commit())

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, found.Status)
	require.True(t, found.Staged())
	assert.True(t, found.AdvanceAmount.Decimal.Equal(decimal.RequireFromString("240.00")))
	assert.True(t, found.RemainingAmount.Decimal.Equal(decimal.RequireFromString("560.00")))
	assert.True(t, found.PaidAdvance)
	assert.Equal(t, domain.StageInProgress, found.PaymentStage)
	require.NotNil(t, found.Delivery)
	assert.Equal(t, "done", found.Delivery.Message)
	assert.Equal(t, "https://files/final.zip", found.Delivery.FileURL)
}

func TestOrderRepository_UpdateRepricesTotalAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	order := newOrder()
	order.TotalAmount = decimal.Zero
	insertOrder(t, db, repo, order)

	// Accepting a proposal prices the order from the proposal amount.
	order.TotalAmount = decimal.RequireFromString("499.00")
	order.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), tx, order))
	require.NoError(t, tx.Commit())

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("499.00")))
}

func TestOrderRepository_UpdateMissingRowIsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	order := newOrder()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.Update(context.Background(), tx, order)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderRepository_ListForUserFiltersByRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	first := newOrder()
	second := newOrder()
	second.ClientID = first.ClientID
	third := newOrder()
	third.VendorID = first.VendorID
	for _, o := range []*domain.Order{first, second, third} {
		insertOrder(t, db, repo, o)
	}

	asClient, err := repo.ListForUser(context.Background(), first.ClientID, domain.RoleClient)
	require.NoError(t, err)
	assert.Len(t, asClient, 2)

	asVendor, err := repo.ListForUser(context.Background(), first.VendorID, domain.RoleVendor)
	require.NoError(t, err)
	assert.Len(t, asVendor, 2)

	none, err := repo.ListForUser(context.Background(), first.ClientID, domain.RoleVendor)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderRepository_UpdateServiceNameOnlyFillsEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLOrderRepository(db)
	order := newOrder()
	order.ServiceName = ""
	insertOrder(t, db, repo, order)

	require.NoError(t, repo.UpdateServiceName(context.Background(), order.ID, "Logo design"))
	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Logo design", found.ServiceName)

	// A second backfill must not overwrite the populated name.
	require.NoError(t, repo.UpdateServiceName(context.Background(), order.ID, "Something else"))
	found, err = repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Logo design", found.ServiceName)
}
