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
)

type NotificationService interface {
	ListForUser(ctx context.Context, actor domain.Actor) ([]domain.Notification, error)
	CountUnread(ctx context.Context, actor domain.Actor) (int, error)
	MarkRead(ctx context.Context, id string, actor domain.Actor) error
	MarkAllRead(ctx context.Context, actor domain.Actor) (int, error)
	Route(ctx context.Context, id string, actor domain.Actor) (string, error)
}

type NotificationController struct {
	service NotificationService
	logger  *zap.Logger
}

func NewNotificationController(service NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{service: service, logger: logger}
}

type notificationResponse struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message,omitempty"`
	Link           string    `json:"link,omitempty"`
	OrderID        *string   `json:"orderId,omitempty"`
	ConversationID *string   `json:"conversationId,omitempty"`
	ProposalID     *string   `json:"proposalId,omitempty"`
	MessageID      *string   `json:"messageId,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	notifications, err := c.service.ListForUser(r.Context(), actor)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	resp := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = notificationResponse{
			ID:             n.ID,
			Type:           string(n.Type),
			Title:          n.Title,
			Message:        n.Message,
			Link:           n.Link,
			OrderID:        n.OrderID,
			ConversationID: n.ConversationID,
			ProposalID:     n.ProposalID,
			MessageID:      n.MessageID,
			Read:           n.Read,
			CreatedAt:      n.CreatedAt,
		}
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *NotificationController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	count, err := c.service.CountUnread(r.Context(), actor)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	if err := c.service.MarkRead(r.Context(), chi.URLParam(r, "notificationId"), actor); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	marked, err := c.service.MarkAllRead(r.Context(), actor)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

// Route resolves where clicking the notification should navigate for the
// calling user's role.
func (c *NotificationController) Route(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace()

	actor, err := identity.FromRequest(r)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	target, err := c.service.Route(r.Context(), chi.URLParam(r, "notificationId"), actor)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]string{"target": target})
}

func (c *NotificationController) trace() (string, *zap.Logger) {
	traceID := uuid.New().String()
	return traceID, c.logger.With(zap.String("traceId", traceID))
}

func (c *NotificationController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
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

func (c *NotificationController) writeError(w http.ResponseWriter, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	c.writeJSON(w, status, errorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *NotificationController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
