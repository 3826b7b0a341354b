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

// ProjectService owns the project mutation paths. Every mutation that moves a
// deadline or the last-updated timestamp reschedules the matching checks;
// scheduling failures are logged and swallowed so a check registration problem
// never rolls back a committed row.
type ProjectService struct {
	repo       repository.ProjectRepository
	milestones repository.MilestoneRepository
	checks     *CheckScheduler
	logger     *zap.Logger
	now        func() time.Time
}

func NewProjectService(
	repo repository.ProjectRepository,
	milestones repository.MilestoneRepository,
	checks *CheckScheduler,
	logger *zap.Logger,
) (*ProjectService, error) {
	if repo == nil {
		return nil, fmt.Errorf("project repository is required")
	}
	if milestones == nil {
		return nil, fmt.Errorf("milestone repository is required")
	}
	if checks == nil {
		return nil, fmt.Errorf("check scheduler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProjectService{
		repo:       repo,
		milestones: milestones,
		checks:     checks,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Create persists a new project, attaches its creator membership, and queues
// the completion-overdue and staleness checks.
func (s *ProjectService) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	p.ID = uuid.NewString()
	p.DateCreated = now
	p.DateUpdated = now

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if p.CreatedByID != nil {
		if err := s.repo.AddMember(ctx, p.ID, *p.CreatedByID, domain.RoleCreator, now); err != nil {
			return nil, fmt.Errorf("failed to attach creator membership: %w", err)
		}
	}

	s.queueProjectChecks(ctx, p)
	return p, nil
}

// Update rewrites the project's mutable fields and reschedules its checks
// against the possibly-moved deadlines.
func (s *ProjectService) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	p.DateUpdated = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update project %s: %w", p.ID, err)
	}

	s.queueProjectChecks(ctx, p)
	return p, nil
}

// TouchLastUpdated bumps the project's last-updated timestamp and resets the
// staleness countdown without changing anything else.
func (s *ProjectService) TouchLastUpdated(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	p.DateUpdated = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to touch project %s: %w", id, err)
	}

	if err := s.checks.QueueProjectStaleCheck(ctx, p); err != nil {
		s.logger.Warn("failed to reschedule staleness check",
			zap.String("projectId", p.ID),
			zap.Error(err),
		)
	}
	return nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete cancels every pending check for the project and its milestones, then
// removes the row. Cancellation completes before deletion so no fire can land
// on a half-deleted entity; notifications and milestones cascade in the
// database.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	milestones, err := s.milestones.ListByProjectID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list milestones for project %s: %w", id, err)
	}

	milestoneIDs := make([]string, 0, len(milestones))
	for i := range milestones {
		milestoneIDs = append(milestoneIDs, milestones[i].ID)
	}

	if err := s.checks.CancelProjectChecks(ctx, id, milestoneIDs); err != nil {
		return fmt.Errorf("failed to cancel checks for project %s: %w", id, err)
	}

	return s.repo.Delete(ctx, id)
}

func (s *ProjectService) queueProjectChecks(ctx context.Context, p *domain.Project) {
	if err := s.checks.QueueProjectCompletionCheck(ctx, p); err != nil {
		s.logger.Warn("failed to queue completion check",
			zap.String("projectId", p.ID),
			zap.Error(err),
		)
	}
	if err := s.checks.QueueProjectStaleCheck(ctx, p); err != nil {
		s.logger.Warn("failed to queue staleness check",
			zap.String("projectId", p.ID),
			zap.Error(err),
		)
	}
}
