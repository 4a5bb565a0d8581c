package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendly/internal/domain"
	apperrors "vendly/internal/errors"
	"vendly/internal/identity"
	"vendly/internal/order/service"
)

type OrderLifecycle interface {
	Request(ctx context.Context, actor domain.Actor, in service.RequestInput) (*domain.Order, error)
	Get(ctx context.Context, id string, actor domain.Actor) (*domain.Order, error)
	ListForUser(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	Cancel(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error)
	PayAdvance(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error)
	Deliver(ctx context.Context, orderID string, actor domain.Actor, delivery domain.Delivery) (*domain.Order, error)
	AcceptDelivery(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error)
	PayRemaining(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error)
}

type OrderController struct {
	lifecycle OrderLifecycle
	logger    *zap.Logger
}

func NewOrderController(lifecycle OrderLifecycle, logger *zap.Logger) *OrderController {
	return &OrderController{lifecycle: lifecycle, logger: logger}
}

type requestOrderBody struct {
	VendorID  string `json:"vendorId"`
	ServiceID string `json:"serviceId"`
}

type deliverBody struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
}

type deliveryResponse struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
}

type orderResponse struct {
	ID              string            `json:"id"`
	ClientID        string            `json:"clientId"`
	VendorID        string            `json:"vendorId"`
	ServiceID       string            `json:"serviceId"`
	ServiceName     string            `json:"serviceName,omitempty"`
	Status          string            `json:"status"`
	TotalAmount     string            `json:"totalAmount"`
	AdvanceAmount   *string           `json:"advanceAmount,omitempty"`
	RemainingAmount *string           `json:"remainingAmount,omitempty"`
	PaidAdvance     bool              `json:"paidAdvance"`
	PaidRemaining   bool              `json:"paidRemaining"`
	PaymentStage    string            `json:"paymentStage"`
	ProposalID      *string           `json:"proposalId,omitempty"`
	Delivery        *deliveryResponse `json:"delivery,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		ClientID:      o.ClientID,
		VendorID:      o.VendorID,
		ServiceID:     o.ServiceID,
		ServiceName:   o.ServiceName,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount.StringFixed(2),
		PaidAdvance:   o.PaidAdvance,
		PaidRemaining: o.PaidRemaining,
		PaymentStage:  string(o.PaymentStage),
		ProposalID:    o.ProposalID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.AdvanceAmount.Valid {
		advance := o.AdvanceAmount.Decimal.StringFixed(2)
		resp.AdvanceAmount = &advance
	}
	if o.RemainingAmount.Valid {
		remaining := o.RemainingAmount.Decimal.StringFixed(2)
		resp.RemainingAmount = &remaining
	}
	if o.Delivery != nil {
		resp.Delivery = &deliveryResponse{Message: o.Delivery.Message, FileURL: o.Delivery.FileURL}
	}
	return resp
}

func (c *OrderController) Request(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	var body requestOrderBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	order, err := c.lifecycle.Request(r.Context(), actor, service.RequestInput{
		VendorID:  body.VendorID,
		ServiceID: body.ServiceID,
	})
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	c.withOrder(w, r, func(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error) {
		return c.lifecycle.Get(ctx, orderID, actor)
	}, http.StatusOK)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	orders, err := c.lifecycle.ListForUser(r.Context(), actor)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.withOrder(w, r, c.lifecycle.Cancel, http.StatusOK)
}

func (c *OrderController) PayAdvance(w http.ResponseWriter, r *http.Request) {
	c.withOrder(w, r, c.lifecycle.PayAdvance, http.StatusOK)
}

func (c *OrderController) Deliver(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	var body deliverBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	order, err := c.lifecycle.Deliver(r.Context(), chi.URLParam(r, "orderId"), actor, domain.Delivery{
		Message: body.Message,
		FileURL: body.FileURL,
	})
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (c *OrderController) AcceptDelivery(w http.ResponseWriter, r *http.Request) {
	c.withOrder(w, r, c.lifecycle.AcceptDelivery, http.StatusOK)
}

func (c *OrderController) PayRemaining(w http.ResponseWriter, r *http.Request) {
	c.withOrder(w, r, c.lifecycle.PayRemaining, http.StatusOK)
}

func (c *OrderController) withOrder(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error),
	status int,
) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	order, err := op(r.Context(), chi.URLParam(r, "orderId"), actor)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, status, toOrderResponse(order))
}

func (c *OrderController) trace() (string, *zap.Logger) {
	traceID := uuid.New().String()
	return traceID, c.logger.With(zap.String("traceId", traceID))
}

func (c *OrderController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
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
	if _, ok := apperrors.IsPaymentRequiredError(err); ok {
		c.writeError(w, traceID, http.StatusPaymentRequired, "PAYMENT_REQUIRED", err.Error(), nil)
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

func (c *OrderController) writeError(w http.ResponseWriter, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	c.writeJSON(w, status, errorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
