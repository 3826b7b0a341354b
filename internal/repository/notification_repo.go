package repository

import (
	"context"
	"time"

	"github.com/pmpulse/status-engine/internal/domain"
	"gorm.io/gorm"
)

// UserFeedItem is one row of a user's notification feed, joined with the
// category message and origin entity names for display.
type UserFeedItem struct {
	NotificationID string    `gorm:"column:notification_id"`
	ProjectID      string    `gorm:"column:project_id"`
	ProjectName    string    `gorm:"column:project_name"`
	MilestoneID    *string   `gorm:"column:milestone_id"`
	MilestoneName  *string   `gorm:"column:milestone_name"`
	Message        string    `gorm:"column:message"`
	IsSeen         bool      `gorm:"column:is_seen"`
	DateCreated    time.Time `gorm:"column:date_created"`
}

// NotificationRepository persists confirmed notifications and their
// per-recipient logs.
type NotificationRepository interface {
	// CreateWithLogs writes the notification and all recipient logs in a
	// single transaction; either everything lands or nothing does.
	CreateWithLogs(ctx context.Context, n *domain.Notification, logs []domain.NotificationLog) error
	ListForUser(ctx context.Context, userID string, limit int) ([]UserFeedItem, error)
	MarkSeen(ctx context.Context, userID string, notificationIDs []string) (int64, error)
}

type GormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

func (r *GormNotificationRepo) CreateWithLogs(ctx context.Context, n *domain.Notification, logs []domain.NotificationLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notificationModelFromDomain(n)).Error; err != nil {
			return err
		}
		for i := range logs {
			if err := tx.Create(logModelFromDomain(&logs[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormNotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]UserFeedItem, error) {
	if limit <= 0 {
		limit = 50
	}

	var items []UserFeedItem
	err := r.db.WithContext(ctx).
		Table("notification_logs").
		Select(`notification_logs.notification_id,
			notifications.project_id,
			projects.name AS project_name,
			notifications.milestone_id,
			project_milestones.name AS milestone_name,
			notification_categories.message,
			notification_logs.is_seen,
			notifications.date_created`).
		Joins("JOIN notifications ON notifications.id = notification_logs.notification_id").
		Joins("JOIN notification_categories ON notification_categories.id = notifications.category_id").
		Joins("JOIN projects ON projects.id = notifications.project_id").
		Joins("LEFT JOIN project_milestones ON project_milestones.id = notifications.milestone_id").
		Where("notification_logs.user_id = ?", userID).
		Order("notifications.date_created DESC").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormNotificationRepo) MarkSeen(ctx context.Context, userID string, notificationIDs []string) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&NotificationLogModel{}).
		Where("user_id = ? AND notification_id IN ?", userID, notificationIDs).
		Update("is_seen", true)
	return result.RowsAffected, result.Error
}
