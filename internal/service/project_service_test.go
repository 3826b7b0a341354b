package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pmpulse/status-engine/internal/domain"
	"go.uber.org/zap"
)

func newProjectService(t *testing.T, stack *testStack) *ProjectService {
	t.Helper()
	svc, err := NewProjectService(stack.projects, stack.milestones, stack.checks, zap.NewNop())
	if err != nil {
		t.Fatalf("NewProjectService: %v", err)
	}
	return svc
}

func TestProjectCreateAttachesCreatorAndQueuesChecks(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t)
	svc := newProjectService(t, stack)

	creatorID := "user-creator"
	created, err := svc.Create(context.Background(), &domain.Project{
		Name:               "rollout",
		DateProjectedStart: time.Now(),
		DateProjectedEnd:   time.Now().Add(72 * time.Hour),
		CreatedByID:        &creatorID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == "" {
		t.Fatal("create must assign an id")
	}
	if created.DateCreated.IsZero() || !created.DateCreated.Equal(created.DateUpdated) {
		t.Error("create must stamp matching created and updated timestamps")
	}

	member, err := stack.projects.GetRoleMember(context.Background(), created.ID, domain.RoleCreator)
	if err != nil {
		t.Fatalf("creator membership missing: %v", err)
	}
	if member.UserID != creatorID {
		t.Errorf("creator member = %s, want %s", member.UserID, creatorID)
	}

	if got := stack.checks.PendingChecks(); got != 2 {
		t.Fatalf("expected completion + stale checks pending, got %d", got)
	}
}

func TestProjectCreateWithoutCreatorSkipsMembership(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t)
	svc := newProjectService(t, stack)

	created, err := svc.Create(context.Background(), &domain.Project{
		Name:               "rollout",
		DateProjectedStart: time.Now(),
		DateProjectedEnd:   time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := stack.projects.GetRoleMember(context.Background(), created.ID, domain.RoleCreator); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no creator membership, got err=%v", err)
	}
}

func TestProjectCreateRejectsInvalidDates(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t)
	svc := newProjectService(t, stack)

	_, err := svc.Create(context.Background(), &domain.Project{
		Name:               "rollout",
		DateProjectedStart: time.Now().Add(72 * time.Hour),
		DateProjectedEnd:   time.Now(),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := stack.checks.PendingChecks(); got != 0 {
		t.Fatalf("rejected create must not queue checks, got %d", got)
	}
}

func TestProjectUpdateReschedulesChecks(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t)
	svc := newProjectService(t, stack)

	created, err := svc.Create(context.Background(), &domain.Project{
		Name:               "rollout",
		DateProjectedStart: time.Now(),
		DateProjectedEnd:   time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.DateProjectedEnd = time.Now().Add(240 * time.Hour)
	if _, err := svc.Update(context.Background(), created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Rescheduling replaces, never duplicates.
	if got := stack.checks.PendingChecks(); got != 2 {
		t.Fatalf("expected 2 pending checks after update, got %d", got)
	}
}

func TestProjectDeleteCancelsAllChecksFirst(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t)
	svc := newProjectService(t, stack)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.Project{
		Name:               "rollout",
		DateProjectedStart: time.Now(),
		DateProjectedEnd:   time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	m := futureMilestone("m1", created.ID)
	stack.milestones.milestones[m.ID] = m
	if err := stack.checks.QueueMilestoneCompletionCheck(ctx, &m); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got := stack.checks.PendingChecks(); got != 0 {
		t.Fatalf("delete must cancel all project and milestone checks, got %d pending", got)
	}
	if len(stack.projects.deleted) != 1 || stack.projects.deleted[0] != created.ID {
		t.Fatalf("project row not deleted: %v", stack.projects.deleted)
	}
}

func TestTouchLastUpdatedResetsStaleCheck(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t)
	svc := newProjectService(t, stack)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.Project{
		Name:               "rollout",
		DateProjectedStart: time.Now(),
		DateProjectedEnd:   time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := created.DateUpdated

	time.Sleep(5 * time.Millisecond)
	if err := svc.TouchLastUpdated(ctx, created.ID); err != nil {
		t.Fatalf("TouchLastUpdated: %v", err)
	}

	stored, err := stack.projects.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.DateUpdated.After(before) {
		t.Fatal("touch must advance the last-updated timestamp")
	}
	if got := stack.checks.PendingChecks(); got != 2 {
		t.Fatalf("touch must keep exactly one stale check pending, got %d total", got)
	}
}

func TestTouchLastUpdatedUnknownProject(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t)
	svc := newProjectService(t, stack)

	if err := svc.TouchLastUpdated(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
