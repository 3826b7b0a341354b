package service

import (
	"context"
	"fmt"

	"github.com/pmpulse/status-engine/internal/domain"
	"github.com/pmpulse/status-engine/internal/repository"
	"go.uber.org/zap"
)

const defaultFeedLimit = 50

// NotificationService exposes the read side of the notification store: a
// user's feed and the seen-flag flip, which is the only mutation allowed
// after creation.
type NotificationService struct {
	notifications repository.NotificationRepository
	categories    repository.CategoryRepository
	logger        *zap.Logger
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	categories repository.CategoryRepository,
	logger *zap.Logger,
) (*NotificationService, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NotificationService{
		notifications: notifications,
		categories:    categories,
		logger:        logger,
	}, nil
}

// ListForUser returns the user's notification feed, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]repository.UserFeedItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	return s.notifications.ListForUser(ctx, userID, limit)
}

// MarkAsRead flips the seen flag on the user's logs for the given
// notifications and reports how many rows changed. IDs the user has no log
// for are ignored rather than rejected.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID string, notificationIDs []string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if len(notificationIDs) == 0 {
		return 0, fmt.Errorf("%w: at least one notification id is required", domain.ErrValidation)
	}

	updated, err := s.notifications.MarkSeen(ctx, userID, notificationIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications seen: %w", err)
	}
	return updated, nil
}

// Categories lists the seeded notification categories.
func (s *NotificationService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}
