package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pmpulse/status-engine/internal/domain"
	"github.com/pmpulse/status-engine/internal/observability"
	"github.com/pmpulse/status-engine/internal/push"
	"github.com/pmpulse/status-engine/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultGraceMonths = 2
	defaultStaleAfter  = 60 * 24 * time.Hour
)

// Notifier handles check fires: it re-validates the triggering condition
// against live state and, only if it still holds, persists a notification
// with per-recipient logs and pushes a live update to each recipient.
type Notifier struct {
	projects      repository.ProjectRepository
	milestones    repository.MilestoneRepository
	categories    repository.CategoryRepository
	notifications repository.NotificationRepository
	pusher        push.Pusher
	metrics       *observability.Metrics
	logger        *zap.Logger
	graceMonths   int
	staleAfter    time.Duration
	now           func() time.Time
}

func NewNotifier(
	projects repository.ProjectRepository,
	milestones repository.MilestoneRepository,
	categories repository.CategoryRepository,
	notifications repository.NotificationRepository,
	pusher push.Pusher,
	graceMonths int,
	staleAfter time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*Notifier, error) {
	if projects == nil {
		return nil, fmt.Errorf("project repository is required")
	}
	if milestones == nil {
		return nil, fmt.Errorf("milestone repository is required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if pusher == nil {
		return nil, fmt.Errorf("pusher is required")
	}
	if graceMonths <= 0 {
		graceMonths = defaultGraceMonths
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Notifier{
		projects:      projects,
		milestones:    milestones,
		categories:    categories,
		notifications: notifications,
		pusher:        pusher,
		metrics:       metrics,
		logger:        logger,
		graceMonths:   graceMonths,
		staleAfter:    staleAfter,
		now:           time.Now,
	}, nil
}

// OnFire is the callback registered with the scheduling engine. Any failure
// here is contained to this fire: it is logged and the fire is dropped,
// never surfaced to the engine or other pending checks.
func (n *Notifier) OnFire(ctx context.Context, origin domain.Origin, categoryID string) {
	category, err := n.categories.GetByID(ctx, categoryID)
	if err != nil {
		// Categories are seeded reference data; a missing one is an anomaly
		// worth logging, not a crash.
		n.logger.Warn("check fired for unresolvable category",
			zap.String("categoryId", categoryID),
			zap.Error(err),
		)
		n.metrics.IncCheckFire("unknown", observability.FireOutcomeDropped)
		return
	}

	project, err := n.projects.GetByID(ctx, origin.ProjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted between scheduling and firing. Normal lifecycle.
			n.metrics.IncCheckFire(category.Name, observability.FireOutcomeEntityMissing)
			return
		}
		n.logger.Error("failed to load project for check fire",
			zap.String("projectId", origin.ProjectID),
			zap.String("category", category.Name),
			zap.Error(err),
		)
		n.metrics.IncCheckFire(category.Name, observability.FireOutcomeDropped)
		return
	}

	var milestone *domain.Milestone
	if origin.Kind == domain.OriginMilestone {
		milestone, err = n.milestones.GetByID(ctx, origin.MilestoneID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				n.metrics.IncCheckFire(category.Name, observability.FireOutcomeEntityMissing)
				return
			}
			n.logger.Error("failed to load milestone for check fire",
				zap.String("milestoneId", origin.MilestoneID),
				zap.String("category", category.Name),
				zap.Error(err),
			)
			n.metrics.IncCheckFire(category.Name, observability.FireOutcomeDropped)
			return
		}
	}

	if !n.conditionHolds(category.Name, project, milestone) {
		// The condition resolved itself before the check fired. This is the
		// normal defense against stale fires; nothing to do.
		n.metrics.IncCheckFire(category.Name, observability.FireOutcomeSuppressed)
		return
	}

	creator, err := n.projects.GetRoleMember(ctx, project.ID, domain.RoleCreator)
	if err != nil {
		// Every project must have a creator member; failing to resolve one
		// is a data-integrity fault. The fire is dropped, not retried.
		n.logger.Error("no creator member resolvable for project",
			zap.String("projectId", project.ID),
			zap.String("category", category.Name),
			zap.Error(err),
		)
		n.metrics.IncCheckFire(category.Name, observability.FireOutcomeDropped)
		return
	}

	lead, err := n.projects.GetRoleMember(ctx, project.ID, domain.RoleProjectLead)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		n.logger.Warn("failed to resolve project lead, notifying creator only",
			zap.String("projectId", project.ID),
			zap.Error(err),
		)
		lead = nil
	}

	createdAt := n.now()
	notification := &domain.Notification{
		ID:          uuid.NewString(),
		CategoryID:  category.ID,
		ProjectID:   project.ID,
		DateCreated: createdAt,
	}
	if milestone != nil {
		notification.MilestoneID = &milestone.ID
	}

	recipients := []string{creator.UserID}
	if lead != nil {
		recipients = append(recipients, lead.UserID)
	}

	logs := make([]domain.NotificationLog, 0, len(recipients))
	for _, userID := range recipients {
		logs = append(logs, domain.NotificationLog{
			NotificationID: notification.ID,
			UserID:         userID,
			IsSeen:         false,
			DateCreated:    createdAt,
		})
	}

	if err := n.notifications.CreateWithLogs(ctx, notification, logs); err != nil {
		n.logger.Error("failed to persist notification",
			zap.String("projectId", project.ID),
			zap.String("category", category.Name),
			zap.Error(err),
		)
		n.metrics.IncCheckFire(category.Name, observability.FireOutcomeDropped)
		return
	}

	n.metrics.IncCheckFire(category.Name, observability.FireOutcomeNotified)
	n.metrics.IncNotificationCreated(category.Name)

	payload := push.UserNotification{
		ID:          notification.ID,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Message:     category.Message,
		IsSeen:      false,
		DateCreated: createdAt,
	}
	if milestone != nil {
		payload.MilestoneID = &milestone.ID
		payload.MilestoneName = &milestone.Name
	}

	// The rows above are the durable record; live delivery is best-effort
	// and a failed push is logged and counted, nothing more.
	for _, userID := range recipients {
		if err := n.pusher.PushToUser(ctx, userID, payload); err != nil {
			n.logger.Warn("live push failed",
				zap.String("userId", userID),
				zap.String("notificationId", notification.ID),
				zap.Error(err),
			)
			n.metrics.IncPushFailure()
		}
	}
}

func (n *Notifier) conditionHolds(categoryName string, project *domain.Project, milestone *domain.Milestone) bool {
	now := n.now()

	switch categoryName {
	case domain.CategoryProjectCompletionOverdue:
		return domain.ProjectCompletionOverdue(project, now)
	case domain.CategoryProjectStale:
		return domain.ProjectStale(project, now, n.staleAfter)
	case domain.CategoryMilestoneCompletionOverdue:
		return milestone != nil && domain.MilestoneCompletionOverdue(milestone, now)
	case domain.CategoryMilestonePaymentOverdue:
		return milestone != nil && domain.MilestonePaymentOverdue(milestone, now, n.graceMonths)
	}

	n.logger.Warn("no re-validation rule for category", zap.String("category", categoryName))
	return false
}
