package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendly/internal/catalog"
	"vendly/internal/domain"
	"vendly/internal/errors"
	"vendly/internal/outbox"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProposalRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, p *domain.Proposal) error
	FindByID(ctx context.Context, id string) (*domain.Proposal, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Proposal, error)
	LinkOrder(ctx context.Context, tx *sql.Tx, proposalID, orderID string) error
	ListForConversation(ctx context.Context, conversationID string) ([]domain.Proposal, error)
}

type OrderLifecycle interface {
	SendProposalInTx(ctx context.Context, tx *sql.Tx, orderID string, actor domain.Actor, proposal *domain.Proposal) error
	AcceptProposalInTx(ctx context.Context, tx *sql.Tx, orderID string, actor domain.Actor, proposal *domain.Proposal) (*domain.Order, error)
	CreateFromProposalInTx(ctx context.Context, tx *sql.Tx, actor domain.Actor, proposal *domain.Proposal) (*domain.Order, error)
}

type OutboxRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, eventType string, orderID *string, intent outbox.Intent) error
}

type ServiceCatalog interface {
	FindByID(ctx context.Context, id string) (*catalog.Service, error)
}

// ProposalService creates priced proposals and drives the order lifecycle
// on the acceptance path.
type ProposalService struct {
	db           TransactionManager
	proposalRepo ProposalRepository
	lifecycle    OrderLifecycle
	outboxRepo   OutboxRepository
	catalog      ServiceCatalog
	logger       *zap.Logger
	txTimeout    time.Duration
}

func NewProposalService(
	db TransactionManager,
	proposalRepo ProposalRepository,
	lifecycle OrderLifecycle,
	outboxRepo OutboxRepository,
	svcCatalog ServiceCatalog,
	logger *zap.Logger,
	txTimeout time.Duration,
) *ProposalService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &ProposalService{
		db:           db,
		proposalRepo: proposalRepo,
		lifecycle:    lifecycle,
		outboxRepo:   outboxRepo,
		catalog:      svcCatalog,
		logger:       logger,
		txTimeout:    txTimeout,
	}
}

type CreateInput struct {
	ClientID       string
	ServiceID      string
	ConversationID string
	OrderID        *string
	Title          string
	Description    string
	Price          decimal.Decimal
	DeliveryTime   string
}

// Create validates and persists a proposal; when tied to an order it
// drives the vendor-sends-proposal transition in the same transaction.
// The chat message referencing the proposal is emitted from the relayed
// outbox event, so its failure never rolls back proposal creation.
func (s *ProposalService) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Proposal, error) {
	if actor.Role != domain.RoleVendor {
		return nil, errors.NewInvalidTransitionError("", "send_proposal", string(actor.Role))
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	serviceName := ""
	if svc, err := s.catalog.FindByID(ctx, in.ServiceID); err == nil {
		serviceName = svc.Title
	}

	proposal := &domain.Proposal{
		ID:             uuid.New().String(),
		VendorID:       actor.ID,
		ClientID:       in.ClientID,
		ServiceID:      in.ServiceID,
		ServiceName:    serviceName,
		ConversationID: in.ConversationID,
		OrderID:        in.OrderID,
		Title:          in.Title,
		Description:    in.Description,
		Price:          in.Price,
		DeliveryTime:   in.DeliveryTime,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.inTx(ctx, func(txCtx context.Context, tx *sql.Tx) error {
		if err := s.proposalRepo.Insert(txCtx, tx, proposal); err != nil {
			return err
		}
		if in.OrderID != nil {
			return s.lifecycle.SendProposalInTx(txCtx, tx, *in.OrderID, actor, proposal)
		}
		// Order-less proposal: nothing to transition, but the client still
		// hears about it through the outbox.
		return s.outboxRepo.Insert(txCtx, tx, outbox.EventProposalSent, nil, s.intentFor(proposal, actor))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("proposal created",
		zap.String("proposalId", proposal.ID),
		zap.String("vendorId", actor.ID),
		zap.String("price", proposal.Price.String()))
	return proposal, nil
}

// Accept drives the client acceptance path. For a proposal tied to an
// order it applies the accept transition; for an order-less proposal it
// creates the order in awaiting_payment and links it, atomically.
func (s *ProposalService) Accept(ctx context.Context, proposalID string, actor domain.Actor) (*domain.Order, error) {
	var order *domain.Order
	err := s.inTx(ctx, func(txCtx context.Context, tx *sql.Tx) error {
		proposal, err := s.proposalRepo.FindByIDForUpdate(txCtx, tx, proposalID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleClient || actor.ID != proposal.ClientID {
			return errors.NewNotFoundError(fmt.Sprintf("proposal with id %s not found", proposalID))
		}

		if proposal.OrderID != nil {
			order, err = s.lifecycle.AcceptProposalInTx(txCtx, tx, *proposal.OrderID, actor, proposal)
			return err
		}

		order, err = s.lifecycle.CreateFromProposalInTx(txCtx, tx, actor, proposal)
		if err != nil {
			return err
		}
		return s.proposalRepo.LinkOrder(txCtx, tx, proposal.ID, order.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("proposal accepted",
		zap.String("proposalId", proposalID),
		zap.String("orderId", order.ID))
	return order, nil
}

// Reject leaves any linked order untouched; the vendor is notified
// through the outbox.
func (s *ProposalService) Reject(ctx context.Context, proposalID string, actor domain.Actor) error {
	err := s.inTx(ctx, func(txCtx context.Context, tx *sql.Tx) error {
		proposal, err := s.proposalRepo.FindByIDForUpdate(txCtx, tx, proposalID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleClient || actor.ID != proposal.ClientID {
			return errors.NewNotFoundError(fmt.Sprintf("proposal with id %s not found", proposalID))
		}
		return s.outboxRepo.Insert(txCtx, tx, outbox.EventProposalRejected, proposal.OrderID, s.intentFor(proposal, actor))
	})
	if err != nil {
		return err
	}

	s.logger.Info("proposal rejected", zap.String("proposalId", proposalID))
	return nil
}

func (s *ProposalService) Get(ctx context.Context, id string) (*domain.Proposal, error) {
	return s.proposalRepo.FindByID(ctx, id)
}

func (s *ProposalService) ListForConversation(ctx context.Context, conversationID string) ([]domain.Proposal, error) {
	return s.proposalRepo.ListForConversation(ctx, conversationID)
}

func (s *ProposalService) intentFor(proposal *domain.Proposal, actor domain.Actor) outbox.Intent {
	intent := outbox.Intent{
		ProposalID:     proposal.ID,
		ConversationID: proposal.ConversationID,
		ServiceName:    proposal.ServiceName,
		ActorRole:      string(actor.Role),
		ActorID:        actor.ID,
		ClientID:       proposal.ClientID,
		VendorID:       proposal.VendorID,
	}
	if proposal.OrderID != nil {
		intent.OrderID = *proposal.OrderID
	}
	return intent
}

func validateCreate(in CreateInput) error {
	var details []errors.ValidationDetail
	if in.ClientID == "" {
		details = append(details, errors.ValidationDetail{Field: "clientId", Message: "clientId is required"})
	}
	if in.Title == "" {
		details = append(details, errors.ValidationDetail{Field: "title", Message: "title is required"})
	}
	if in.DeliveryTime == "" {
		details = append(details, errors.ValidationDetail{Field: "deliveryTime", Message: "deliveryTime is required"})
	}
	if !in.Price.IsPositive() {
		details = append(details, errors.ValidationDetail{Field: "price", Message: "price must be positive"})
	}
	if len(details) > 0 {
		return errors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (s *ProposalService) inTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return errors.NewInternalError("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := fn(txCtx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Error(err))
		return errors.NewInternalError("committing transaction", err)
	}
	return nil
}
