package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendly/internal/domain"
	apperrors "vendly/internal/errors"
	"vendly/internal/identity"
	"vendly/internal/proposal/service"
)

type ProposalEngine interface {
	Create(ctx context.Context, actor domain.Actor, in service.CreateInput) (*domain.Proposal, error)
	Accept(ctx context.Context, proposalID string, actor domain.Actor) (*domain.Order, error)
	Reject(ctx context.Context, proposalID string, actor domain.Actor) error
	Get(ctx context.Context, id string) (*domain.Proposal, error)
	ListForConversation(ctx context.Context, conversationID string) ([]domain.Proposal, error)
}

type ProposalController struct {
	engine ProposalEngine
	logger *zap.Logger
}

func NewProposalController(engine ProposalEngine, logger *zap.Logger) *ProposalController {
	return &ProposalController{engine: engine, logger: logger}
}

type createProposalBody struct {
	ClientID       string          `json:"clientId"`
	ServiceID      string          `json:"serviceId"`
	ConversationID string          `json:"conversationId"`
	OrderID        *string         `json:"orderId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	DeliveryTime   string          `json:"deliveryTime"`
}

type proposalResponse struct {
	ID             string    `json:"id"`
	VendorID       string    `json:"vendorId"`
	ClientID       string    `json:"clientId"`
	ServiceID      string    `json:"serviceId"`
	ServiceName    string    `json:"serviceName,omitempty"`
	ConversationID string    `json:"conversationId"`
	OrderID        *string   `json:"orderId,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Price          string    `json:"price"`
	DeliveryTime   string    `json:"deliveryTime"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toProposalResponse(p *domain.Proposal) proposalResponse {
	return proposalResponse{
		ID:             p.ID,
		VendorID:       p.VendorID,
		ClientID:       p.ClientID,
		ServiceID:      p.ServiceID,
		ServiceName:    p.ServiceName,
		ConversationID: p.ConversationID,
		OrderID:        p.OrderID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price.StringFixed(2),
		DeliveryTime:   p.DeliveryTime,
		CreatedAt:      p.CreatedAt,
	}
}

func (c *ProposalController) Create(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	var body createProposalBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	proposal, err := c.engine.Create(r.Context(), actor, service.CreateInput{
		ClientID:       body.ClientID,
		ServiceID:      body.ServiceID,
		ConversationID: body.ConversationID,
		OrderID:        body.OrderID,
		Title:          body.Title,
		Description:    body.Description,
		Price:          body.Price,
		DeliveryTime:   body.DeliveryTime,
	})
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, http.StatusCreated, toProposalResponse(proposal))
}

func (c *ProposalController) Get(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	proposal, err := c.engine.Get(r.Context(), chi.URLParam(r, "proposalId"))
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, http.StatusOK, toProposalResponse(proposal))
}

func (c *ProposalController) List(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "conversationId query parameter is required", nil)
		return
	}

	proposals, err := c.engine.ListForConversation(r.Context(), conversationID)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	resp := make([]proposalResponse, len(proposals))
	for i := range proposals {
		resp[i] = toProposalResponse(&proposals[i])
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *ProposalController) Accept(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	order, err := c.engine.Accept(r.Context(), chi.URLParam(r, "proposalId"), actor)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]string{
		"orderId": order.ID,
		"status":  string(order.Status),
	})
}

func (c *ProposalController) Reject(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	if err := c.engine.Reject(r.Context(), chi.URLParam(r, "proposalId"), actor); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ProposalController) trace() (string, *zap.Logger) {
	traceID := uuid.New().String()
	return traceID, c.logger.With(zap.String("traceId", traceID))
}

func (c *ProposalController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}
	if _, ok := apperrors.IsInvalidTransitionError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

type errorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

func (c *ProposalController) writeError(w http.ResponseWriter, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	c.writeJSON(w, status, errorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *ProposalController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
