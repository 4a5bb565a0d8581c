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

func newProposal() *domain.Proposal {
	return &domain.Proposal{
		ID:             uuid.New().String(),
		VendorID:       uuid.New().String(),
		ClientID:       uuid.New().String(),
		ServiceID:      uuid.New().String(),
		ServiceName:    "Logo design",
		ConversationID: uuid.New().String(),
		Title:          "Logo package",
		Description:    "Three concepts, two revisions",
		Price:          decimal.RequireFromString("499.00"),
		DeliveryTime:   "5 days",
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func insertProposal(t *testing.T, db *sql.DB, repo *MySQLProposalRepository, p *domain.Proposal) {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), tx, p))
	require.NoError(t, tx.Commit())
}

func TestProposalRepository_InsertAndFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLProposalRepository(db)
	p := newProposal()
	insertProposal(t, db, repo, p)

	found, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, found.Title)
	assert.True(t, found.Price.Equal(p.Price))
	assert.Nil(t, found.OrderID)
}

func TestProposalRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLProposalRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New().String())
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestProposalRepository_LinkOrderOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLProposalRepository(db)
	p := newProposal()
	insertProposal(t, db, repo, p)

	orderID := uuid.New().String()
	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.LinkOrder(context.Background(), tx, p.ID, orderID))
	require.NoError(t, tx.Commit())

	found, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, found.OrderID)
	assert.Equal(t, orderID, *found.OrderID)

	// Relinking an already-linked proposal must conflict.
	tx, err = db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	err = repo.LinkOrder(context.Background(), tx, p.ID, uuid.New().String())
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestProposalRepository_ListForConversation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	repo := NewMySQLProposalRepository(db)
	first := newProposal()
	second := newProposal()
	second.ConversationID = first.ConversationID
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	other := newProposal()
	for _, p := range []*domain.Proposal{first, second, other} {
		insertProposal(t, db, repo, p)
	}

	proposals, err := repo.ListForConversation(context.Background(), first.ConversationID)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Equal(t, first.ID, proposals[0].ID)
	assert.Equal(t, second.ID, proposals[1].ID)
}
