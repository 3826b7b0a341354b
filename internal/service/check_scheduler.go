package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pmpulse/status-engine/internal/domain"
	"github.com/pmpulse/status-engine/internal/observability"
	"github.com/pmpulse/status-engine/internal/repository"
	"github.com/pmpulse/status-engine/internal/scheduler"
	"go.uber.org/zap"
)

// CheckScheduler is the entry point mutation paths use to keep deferred
// status checks in sync with domain state. It computes nothing about
// business rules itself: ensure replaces any pending check for the same
// (origin, category) key, cancel removes pending checks wholesale.
type CheckScheduler struct {
	engine      *scheduler.Engine
	categories  repository.CategoryRepository
	notifier    *Notifier
	metrics     *observability.Metrics
	logger      *zap.Logger
	graceMonths int
	staleAfter  time.Duration
}

func NewCheckScheduler(
	engine *scheduler.Engine,
	categories repository.CategoryRepository,
	notifier *Notifier,
	graceMonths int,
	staleAfter time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*CheckScheduler, error) {
	if engine == nil {
		return nil, fmt.Errorf("scheduling engine is required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
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

	return &CheckScheduler{
		engine:      engine,
		categories:  categories,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
		graceMonths: graceMonths,
		staleAfter:  staleAfter,
	}, nil
}

// EnsureCheck registers a one-shot check for (origin, category) at fireAt,
// replacing any pending check for the same key. A past fireAt fires at the
// next opportunity; no clamping to now is applied. Safe to call redundantly.
func (s *CheckScheduler) EnsureCheck(origin domain.Origin, category *domain.Category, fireAt time.Time) error {
	if category == nil {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}

	if err := s.engine.Schedule(origin, category.ID, fireAt, s.notifier.OnFire); err != nil {
		return fmt.Errorf("failed to register %s check: %w", category.Name, err)
	}

	s.metrics.IncCheckScheduled(category.Name)
	s.logger.Debug("status check registered",
		zap.String("originId", origin.ID()),
		zap.String("category", category.Name),
		zap.Time("fireAt", fireAt),
	)
	return nil
}

// QueueMilestoneCompletionCheck (re)schedules the completion-overdue check
// for a milestone at its projected end date.
func (s *CheckScheduler) QueueMilestoneCompletionCheck(ctx context.Context, m *domain.Milestone) error {
	category, err := s.categories.GetByName(ctx, domain.CategoryMilestoneCompletionOverdue)
	if err != nil {
		return fmt.Errorf("failed to resolve category %s: %w", domain.CategoryMilestoneCompletionOverdue, err)
	}
	return s.EnsureCheck(domain.NewMilestoneOrigin(m.ProjectID, m.ID), category, m.DateProjectedEnd)
}

// QueueMilestonePaymentCheck (re)schedules the payment-overdue check for a
// milestone at its actual end date plus the grace period. A milestone with
// no actual end date has no payment deadline yet; the call is a no-op.
func (s *CheckScheduler) QueueMilestonePaymentCheck(ctx context.Context, m *domain.Milestone) error {
	if m.DateActualEnd == nil {
		return nil
	}

	category, err := s.categories.GetByName(ctx, domain.CategoryMilestonePaymentOverdue)
	if err != nil {
		return fmt.Errorf("failed to resolve category %s: %w", domain.CategoryMilestonePaymentOverdue, err)
	}

	fireAt := m.DateActualEnd.AddDate(0, s.graceMonths, 0)
	return s.EnsureCheck(domain.NewMilestoneOrigin(m.ProjectID, m.ID), category, fireAt)
}

// QueueProjectCompletionCheck (re)schedules the completion-overdue check for
// a project at its projected end date.
func (s *CheckScheduler) QueueProjectCompletionCheck(ctx context.Context, p *domain.Project) error {
	category, err := s.categories.GetByName(ctx, domain.CategoryProjectCompletionOverdue)
	if err != nil {
		return fmt.Errorf("failed to resolve category %s: %w", domain.CategoryProjectCompletionOverdue, err)
	}
	return s.EnsureCheck(domain.NewProjectOrigin(p.ID), category, p.DateProjectedEnd)
}

// QueueProjectStaleCheck (re)schedules the staleness check for a project at
// its last-updated timestamp plus the staleness threshold.
func (s *CheckScheduler) QueueProjectStaleCheck(ctx context.Context, p *domain.Project) error {
	category, err := s.categories.GetByName(ctx, domain.CategoryProjectStale)
	if err != nil {
		return fmt.Errorf("failed to resolve category %s: %w", domain.CategoryProjectStale, err)
	}
	return s.EnsureCheck(domain.NewProjectOrigin(p.ID), category, p.DateUpdated.Add(s.staleAfter))
}

// CancelMilestoneChecks removes all pending checks for a milestone. Callers
// must await this before deleting the milestone's rows so a fire cannot
// observe a half-deleted entity.
func (s *CheckScheduler) CancelMilestoneChecks(ctx context.Context, milestoneID string) error {
	categoryIDs, err := s.categoryIDs(ctx,
		domain.CategoryMilestoneCompletionOverdue,
		domain.CategoryMilestonePaymentOverdue,
	)
	if err != nil {
		return err
	}

	canceled := s.engine.CancelAll([]string{milestoneID}, categoryIDs)
	s.metrics.AddChecksCanceled(canceled)
	return nil
}

// CancelProjectChecks removes all pending checks for a project and all of
// its milestones, in one pass. Same ordering contract as milestone
// cancellation: await before row removal.
func (s *CheckScheduler) CancelProjectChecks(ctx context.Context, projectID string, milestoneIDs []string) error {
	categoryIDs, err := s.categoryIDs(ctx, domain.CategoryNames()...)
	if err != nil {
		return err
	}

	originIDs := append([]string{projectID}, milestoneIDs...)
	canceled := s.engine.CancelAll(originIDs, categoryIDs)
	s.metrics.AddChecksCanceled(canceled)

	s.logger.Info("canceled pending checks for project",
		zap.String("projectId", projectID),
		zap.Int("canceled", canceled),
	)
	return nil
}

// PendingChecks reports the number of checks currently registered.
func (s *CheckScheduler) PendingChecks() int {
	return s.engine.Pending()
}

func (s *CheckScheduler) categoryIDs(ctx context.Context, names ...string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		category, err := s.categories.GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category %s: %w", name, err)
		}
		ids = append(ids, category.ID)
	}
	return ids, nil
}
