package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vendly/internal/domain"
	"vendly/internal/errors"
	"vendly/internal/notification"
)

type NotificationRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Notification, error)
	ListUnreadIDs(ctx context.Context, userID string) ([]string, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type NotificationService struct {
	repo   NotificationRepository
	logger *zap.Logger
}

func NewNotificationService(repo NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

func (s *NotificationService) ListForUser(ctx context.Context, actor domain.Actor) ([]domain.Notification, error) {
	return s.repo.ListForUser(ctx, actor.ID)
}

func (s *NotificationService) CountUnread(ctx context.Context, actor domain.Actor) (int, error) {
	return s.repo.CountUnread(ctx, actor.ID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string, actor domain.Actor) error {
	return s.repo.MarkRead(ctx, id, actor.ID)
}

// MarkAllRead flips every currently-unread notification, each row
// independently; a failure partway leaves the earlier rows read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Actor) (int, error) {
	ids, err := s.repo.ListUnreadIDs(ctx, actor.ID)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, id := range ids {
		if err := s.repo.MarkRead(ctx, id, actor.ID); err != nil {
			s.logger.Warn("mark-all-read stopped",
				zap.String("notificationId", id),
				zap.Int("marked", marked),
				zap.Error(err))
			return marked, err
		}
		marked++
	}
	return marked, nil
}

// Route resolves the deep-link target of one of the actor's notifications.
func (s *NotificationService) Route(ctx context.Context, id string, actor domain.Actor) (string, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if n.UserID != actor.ID {
		return "", errors.NewNotFoundError(fmt.Sprintf("notification with id %s not found", id))
	}
	return notification.Resolve(n, actor.Role), nil
}
