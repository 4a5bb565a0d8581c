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
	"vendly/internal/payment"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error)
	Update(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	ListForUser(ctx context.Context, userID string, role domain.Role) ([]domain.Order, error)
	UpdateServiceName(ctx context.Context, id, name string) error
}

type OutboxRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, eventType string, orderID *string, intent outbox.Intent) error
}

type ServiceCatalog interface {
	FindByID(ctx context.Context, id string) (*catalog.Service, error)
}

// LifecycleService validates and applies order status transitions. Every
// accepted transition updates the order and writes its outbox intent in
// one transaction; side effects fan out from the relay afterwards.
type LifecycleService struct {
	db         TransactionManager
	orderRepo  OrderRepository
	outboxRepo OutboxRepository
	catalog    ServiceCatalog
	logger     *zap.Logger
	txTimeout  time.Duration
}

func NewLifecycleService(
	db TransactionManager,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	svcCatalog ServiceCatalog,
	logger *zap.Logger,
	txTimeout time.Duration,
) *LifecycleService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &LifecycleService{
		db:         db,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		catalog:    svcCatalog,
		logger:     logger,
		txTimeout:  txTimeout,
	}
}

type RequestInput struct {
	VendorID  string
	ServiceID string
}

// Request creates a new order from a client's initial service request.
// The total is priced later, at proposal acceptance; the service name is
// denormalized from the catalog when reachable and backfilled on read
// otherwise.
func (s *LifecycleService) Request(ctx context.Context, actor domain.Actor, in RequestInput) (*domain.Order, error) {
	if actor.Role != domain.RoleClient {
		return nil, errors.NewInvalidTransitionError("", string(ActionRequestService), string(actor.Role))
	}
	if in.VendorID == "" || in.ServiceID == "" {
		details := []errors.ValidationDetail{}
		if in.VendorID == "" {
			details = append(details, errors.ValidationDetail{Field: "vendorId", Message: "vendorId is required"})
		}
		if in.ServiceID == "" {
			details = append(details, errors.ValidationDetail{Field: "serviceId", Message: "serviceId is required"})
		}
		return nil, errors.NewValidationError("validation failed", details...)
	}

	serviceName := ""
	if svc, err := s.catalog.FindByID(ctx, in.ServiceID); err == nil {
		serviceName = svc.Title
	} else {
		s.logger.Warn("service name lookup failed, deferring backfill",
			zap.String("serviceId", in.ServiceID), zap.Error(err))
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:           uuid.New().String(),
		ClientID:     actor.ID,
		VendorID:     in.VendorID,
		ServiceID:    in.ServiceID,
		ServiceName:  serviceName,
		Status:       domain.StatusNew,
		TotalAmount:  decimal.Zero,
		PaymentStage: domain.StageFor(false, false),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.inTx(ctx, func(txCtx context.Context, tx *sql.Tx) error {
		if err := s.orderRepo.Insert(txCtx, tx, order); err != nil {
			return err
		}
		return s.outboxRepo.Insert(txCtx, tx, outbox.EventOrderRequested, &order.ID, s.intentFor(order, ActionRequestService, "", actor))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order requested",
		zap.String("orderId", order.ID),
		zap.String("clientId", actor.ID),
		zap.String("serviceId", in.ServiceID))
	return order, nil
}

// Get reads one order, visible only to its two parties, backfilling the
// denormalized service name when it is still empty.
func (s *LifecycleService) Get(ctx context.Context, id string, actor domain.Actor) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(order, actor); err != nil {
		return nil, err
	}

	if order.ServiceName == "" {
		if svc, err := s.catalog.FindByID(ctx, order.ServiceID); err == nil {
			order.ServiceName = svc.Title
			if err := s.orderRepo.UpdateServiceName(ctx, order.ID, svc.Title); err != nil {
				s.logger.Warn("service name backfill failed", zap.String("orderId", order.ID), zap.Error(err))
			}
		}
	}
	return order, nil
}

func (s *LifecycleService) ListForUser(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	return s.orderRepo.ListForUser(ctx, actor.ID, actor.Role)
}

// Cancel is one-way and unconditional from the pre-work states; it never
// reverses settled payments.
func (s *LifecycleService) Cancel(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error) {
	return s.applyOwningTx(ctx, orderID, actor, ActionCancel, nil)
}

// PayAdvance settles the advance stage (settlement itself is simulated)
// and moves the order into progress.
func (s *LifecycleService) PayAdvance(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error) {
	return s.applyOwningTx(ctx, orderID, actor, ActionPayAdvance, func(order *domain.Order) error {
		if !order.Staged() {
			staging := payment.Stage(order.TotalAmount, order.PaidAdvance, order.PaidRemaining)
			order.AdvanceAmount = decimal.NewNullDecimal(staging.Advance)
			order.RemainingAmount = decimal.NewNullDecimal(staging.Remaining)
		}
		if !order.AdvanceAmount.Decimal.IsPositive() {
			return errors.NewConflictError("order has no advance amount to pay")
		}
		order.PaidAdvance = true
		return nil
	})
}

// Deliver records the vendor's work delivery; rejected with
// PaymentRequired until the advance has settled.
func (s *LifecycleService) Deliver(ctx context.Context, orderID string, actor domain.Actor, delivery domain.Delivery) (*domain.Order, error) {
	return s.applyOwningTx(ctx, orderID, actor, ActionDeliver, func(order *domain.Order) error {
		order.Delivery = &domain.Delivery{Message: delivery.Message, FileURL: delivery.FileURL}
		return nil
	})
}

func (s *LifecycleService) AcceptDelivery(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error) {
	return s.applyOwningTx(ctx, orderID, actor, ActionAcceptDelivery, nil)
}

// PayRemaining settles the remaining stage and completes the order.
func (s *LifecycleService) PayRemaining(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error) {
	return s.applyOwningTx(ctx, orderID, actor, ActionPayRemaining, func(order *domain.Order) error {
		order.PaidRemaining = true
		return nil
	})
}

// SendProposalInTx drives the vendor-sends-proposal transition inside the
// proposal engine's transaction, so the proposal insert and the order
// transition commit together.
func (s *LifecycleService) SendProposalInTx(ctx context.Context, tx *sql.Tx, orderID string, actor domain.Actor, proposal *domain.Proposal) error {
	order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if err := s.authorize(order, actor); err != nil {
		return err
	}
	return s.apply(ctx, tx, order, ActionSendProposal, actor, proposal, func(o *domain.Order) error {
		o.ProposalID = &proposal.ID
		return nil
	})
}

// AcceptProposalInTx prices the order from the accepted proposal, stages
// the advance/remaining split, and moves it to awaiting_payment.
func (s *LifecycleService) AcceptProposalInTx(ctx context.Context, tx *sql.Tx, orderID string, actor domain.Actor, proposal *domain.Proposal) (*domain.Order, error) {
	order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(order, actor); err != nil {
		return nil, err
	}
	err = s.apply(ctx, tx, order, ActionAcceptProposal, actor, proposal, func(o *domain.Order) error {
		o.TotalAmount = proposal.Price
		o.ProposalID = &proposal.ID
		if !o.Staged() {
			staging := payment.Stage(o.TotalAmount, o.PaidAdvance, o.PaidRemaining)
			o.AdvanceAmount = decimal.NewNullDecimal(staging.Advance)
			o.RemainingAmount = decimal.NewNullDecimal(staging.Remaining)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateFromProposalInTx materializes an order for an accepted order-less
// proposal: it is born in awaiting_payment, priced and staged from the
// proposal, in the same transaction that links the proposal to it.
func (s *LifecycleService) CreateFromProposalInTx(ctx context.Context, tx *sql.Tx, actor domain.Actor, proposal *domain.Proposal) (*domain.Order, error) {
	if actor.Role != domain.RoleClient || actor.ID != proposal.ClientID {
		return nil, errors.NewInvalidTransitionError("", string(ActionAcceptProposal), string(actor.Role))
	}

	staging := payment.Stage(proposal.Price, false, false)
	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		ClientID:        proposal.ClientID,
		VendorID:        proposal.VendorID,
		ServiceID:       proposal.ServiceID,
		ServiceName:     proposal.ServiceName,
		Status:          domain.StatusAwaitingPayment,
		TotalAmount:     proposal.Price,
		AdvanceAmount:   decimal.NewNullDecimal(staging.Advance),
		RemainingAmount: decimal.NewNullDecimal(staging.Remaining),
		PaymentStage:    staging.Stage,
		ProposalID:      &proposal.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Insert(ctx, tx, order); err != nil {
		return nil, err
	}
	intent := s.intentFor(order, ActionAcceptProposal, string(domain.StatusAwaitingPayment), actor)
	intent.ProposalID = proposal.ID
	intent.ConversationID = proposal.ConversationID
	if err := s.outboxRepo.Insert(ctx, tx, outbox.EventOrderCreated, &order.ID, intent); err != nil {
		return nil, err
	}
	return order, nil
}

// applyOwningTx runs one transition in its own transaction.
func (s *LifecycleService) applyOwningTx(
	ctx context.Context,
	orderID string,
	actor domain.Actor,
	action Action,
	mutate func(*domain.Order) error,
) (*domain.Order, error) {
	var order *domain.Order
	err := s.inTx(ctx, func(txCtx context.Context, tx *sql.Tx) error {
		var err error
		order, err = s.orderRepo.FindByIDForUpdate(txCtx, tx, orderID)
		if err != nil {
			return err
		}
		if err := s.authorize(order, actor); err != nil {
			return err
		}
		return s.apply(txCtx, tx, order, action, actor, nil, mutate)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order transition applied",
		zap.String("orderId", order.ID),
		zap.String("action", string(action)),
		zap.String("status", string(order.Status)),
		zap.String("actorRole", string(actor.Role)))
	return order, nil
}

// apply validates the edge and guards, mutates, stamps, persists, and
// stores the outbox intent. The caller owns the transaction.
func (s *LifecycleService) apply(
	ctx context.Context,
	tx *sql.Tx,
	order *domain.Order,
	action Action,
	actor domain.Actor,
	proposal *domain.Proposal,
	mutate func(*domain.Order) error,
) error {
	to, err := nextStatus(order.Status, action, actor)
	if err != nil {
		return err
	}
	if action == ActionDeliver && !order.PaidAdvance {
		return errors.NewPaymentRequiredError("delivery requires the advance payment to be settled")
	}

	oldStatus := order.Status
	if mutate != nil {
		if err := mutate(order); err != nil {
			return err
		}
	}
	order.Status = to
	order.PaymentStage = domain.StageFor(order.PaidAdvance, order.PaidRemaining)
	order.UpdatedAt = time.Now().UTC()

	if err := s.orderRepo.Update(ctx, tx, order); err != nil {
		return err
	}

	intent := s.intentFor(order, action, string(oldStatus), actor)
	if proposal != nil {
		intent.ProposalID = proposal.ID
		intent.ConversationID = proposal.ConversationID
	}
	return s.outboxRepo.Insert(ctx, tx, eventTypes[action], &order.ID, intent)
}

// authorize hides orders from anyone but their two parties.
func (s *LifecycleService) authorize(order *domain.Order, actor domain.Actor) error {
	switch actor.Role {
	case domain.RoleClient:
		if order.ClientID == actor.ID {
			return nil
		}
	case domain.RoleVendor:
		if order.VendorID == actor.ID {
			return nil
		}
	}
	return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", order.ID))
}

func (s *LifecycleService) intentFor(order *domain.Order, action Action, oldStatus string, actor domain.Actor) outbox.Intent {
	return outbox.Intent{
		OrderID:     order.ID,
		ServiceName: order.ServiceName,
		Action:      string(action),
		OldStatus:   oldStatus,
		NewStatus:   string(order.Status),
		ActorRole:   string(actor.Role),
		ActorID:     actor.ID,
		ClientID:    order.ClientID,
		VendorID:    order.VendorID,
	}
}

func (s *LifecycleService) inTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return errors.NewInternalError("beginning transaction", err)
	}
	// MySQL ignores rollback if already committed.
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
