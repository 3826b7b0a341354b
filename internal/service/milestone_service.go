package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pmpulse/status-engine/internal/domain"
	"github.com/pmpulse/status-engine/internal/repository"
	"go.uber.org/zap"
)

// MilestoneProgress summarizes how far a project's milestones have come.
// PercentComplete sums the payment percentages of completed milestones.
type MilestoneProgress struct {
	Total           int `json:"total"`
	Completed       int `json:"completed"`
	Paid            int `json:"paid"`
	PercentComplete int `json:"percentComplete"`
}

// MilestoneService owns the milestone mutation and read paths. Mutations that
// move a deadline reschedule the matching checks; scheduling failures are
// logged and swallowed, never rolled back into the committed row.
type MilestoneService struct {
	repo        repository.MilestoneRepository
	projects    repository.ProjectRepository
	checks      *CheckScheduler
	logger      *zap.Logger
	graceMonths int
	now         func() time.Time
}

func NewMilestoneService(
	repo repository.MilestoneRepository,
	projects repository.ProjectRepository,
	checks *CheckScheduler,
	graceMonths int,
	logger *zap.Logger,
) (*MilestoneService, error) {
	if repo == nil {
		return nil, fmt.Errorf("milestone repository is required")
	}
	if projects == nil {
		return nil, fmt.Errorf("project repository is required")
	}
	if checks == nil {
		return nil, fmt.Errorf("check scheduler is required")
	}
	if graceMonths <= 0 {
		graceMonths = defaultGraceMonths
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MilestoneService{
		repo:        repo,
		projects:    projects,
		checks:      checks,
		logger:      logger,
		graceMonths: graceMonths,
		now:         time.Now,
	}, nil
}

// Create persists a new milestone under an existing project and queues its
// deadline checks.
func (s *MilestoneService) Create(ctx context.Context, m *domain.Milestone) (*domain.Milestone, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.projects.GetByID(ctx, m.ProjectID); err != nil {
		return nil, fmt.Errorf("failed to resolve project %s: %w", m.ProjectID, err)
	}

	now := s.now()
	m.ID = uuid.NewString()
	m.DateCreated = now
	m.DateUpdated = now

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	s.queueMilestoneChecks(ctx, m)
	return m, nil
}

// Update rewrites the milestone's mutable fields and reschedules its checks
// against the possibly-moved deadlines.
func (s *MilestoneService) Update(ctx context.Context, m *domain.Milestone) (*domain.Milestone, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	m.DateUpdated = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update milestone %s: %w", m.ID, err)
	}

	s.queueMilestoneChecks(ctx, m)
	return m, nil
}

// MarkCompleted records the completion instant and starts the payment grace
// clock. A pending completion-overdue check is left in place; it re-validates
// at fire time and suppresses itself against the completed state.
func (s *MilestoneService) MarkCompleted(ctx context.Context, id string) (*domain.Milestone, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.IsCompleted {
		return nil, fmt.Errorf("%w: milestone %s is already completed", domain.ErrConflict, id)
	}

	now := s.now()
	m.IsCompleted = true
	m.DateActualEnd = &now
	m.DateUpdated = now

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to complete milestone %s: %w", id, err)
	}

	if err := s.checks.QueueMilestonePaymentCheck(ctx, m); err != nil {
		s.logger.Warn("failed to queue payment check",
			zap.String("milestoneId", m.ID),
			zap.Error(err),
		)
	}
	return m, nil
}

// MarkPaid records the payment instant. The pending payment-overdue check, if
// any, suppresses itself at fire time.
func (s *MilestoneService) MarkPaid(ctx context.Context, id string) (*domain.Milestone, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsCompleted {
		return nil, fmt.Errorf("%w: milestone %s is not completed yet", domain.ErrConflict, id)
	}
	if m.IsPaid {
		return nil, fmt.Errorf("%w: milestone %s is already paid", domain.ErrConflict, id)
	}

	now := s.now()
	m.IsPaid = true
	m.DatePaid = &now
	m.DateUpdated = now

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to mark milestone %s paid: %w", id, err)
	}
	return m, nil
}

func (s *MilestoneService) Get(ctx context.Context, id string) (*domain.Milestone, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete cancels the milestone's pending checks, then removes the row.
// Cancellation completes before deletion so no fire can land on a
// half-deleted entity.
func (s *MilestoneService) Delete(ctx context.Context, id string) error {
	if err := s.checks.CancelMilestoneChecks(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel checks for milestone %s: %w", id, err)
	}
	return s.repo.Delete(ctx, id)
}

// Status derives the milestone's display status at the current instant.
func (s *MilestoneService) Status(ctx context.Context, id string) (domain.MilestoneStatus, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return domain.DeriveMilestoneStatus(m, s.now(), s.graceMonths), nil
}

// Search runs a text search over a project's milestones, optionally narrowed
// to those whose derived status matches. Status is derived per row at the
// current instant, so the same milestone can move between scopes over time.
func (s *MilestoneService) Search(ctx context.Context, projectID, query string, status domain.MilestoneStatus) ([]domain.Milestone, error) {
	milestones, err := s.repo.Search(ctx, projectID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search milestones for project %s: %w", projectID, err)
	}
	if status == "" {
		return milestones, nil
	}

	now := s.now()
	filtered := make([]domain.Milestone, 0, len(milestones))
	for i := range milestones {
		if domain.DeriveMilestoneStatus(&milestones[i], now, s.graceMonths) == status {
			filtered = append(filtered, milestones[i])
		}
	}
	return filtered, nil
}

// Progress summarizes milestone completion for a project. Percent complete is
// the sum of completed milestones' payment percentages, capped at 100.
func (s *MilestoneService) Progress(ctx context.Context, projectID string) (*MilestoneProgress, error) {
	milestones, err := s.repo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones for project %s: %w", projectID, err)
	}

	progress := &MilestoneProgress{Total: len(milestones)}
	for i := range milestones {
		if milestones[i].IsCompleted {
			progress.Completed++
			progress.PercentComplete += milestones[i].PaymentPercentage
		}
		if milestones[i].IsPaid {
			progress.Paid++
		}
	}
	if progress.PercentComplete > 100 {
		progress.PercentComplete = 100
	}
	return progress, nil
}

func (s *MilestoneService) queueMilestoneChecks(ctx context.Context, m *domain.Milestone) {
	if err := s.checks.QueueMilestoneCompletionCheck(ctx, m); err != nil {
		s.logger.Warn("failed to queue completion check",
			zap.String("milestoneId", m.ID),
			zap.Error(err),
		)
	}
	if err := s.checks.QueueMilestonePaymentCheck(ctx, m); err != nil {
		s.logger.Warn("failed to queue payment check",
			zap.String("milestoneId", m.ID),
			zap.Error(err),
		)
	}
}
