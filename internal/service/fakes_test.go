package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pmpulse/status-engine/internal/domain"
	"github.com/pmpulse/status-engine/internal/push"
	"github.com/pmpulse/status-engine/internal/repository"
	"github.com/pmpulse/status-engine/internal/scheduler"
	"go.uber.org/zap"
)

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]domain.Project
	members  map[string][]domain.Member

	createErr error
	updateErr error
	deleteErr error
	memberErr error

	deleted []string
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[string]domain.Project),
		members:  make(map[string][]domain.Member),
	}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *domain.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[p.ID] = *p
	return nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *domain.Project) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[p.ID]; !ok {
		return domain.ErrNotFound
	}
	f.projects[p.ID] = *p
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.projects, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProjectRepo) AddMember(_ context.Context, projectID, userID, roleName string, joined time.Time) error {
	if f.memberErr != nil {
		return f.memberErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[projectID] = append(f.members[projectID], domain.Member{
		ProjectID:  projectID,
		UserID:     userID,
		RoleName:   roleName,
		DateJoined: joined,
	})
	return nil
}

func (f *fakeProjectRepo) GetRoleMember(_ context.Context, projectID, roleName string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members[projectID] {
		if m.RoleName == roleName {
			member := m
			return &member, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeMilestoneRepo struct {
	mu         sync.Mutex
	milestones map[string]domain.Milestone

	createErr error
	updateErr error
	searchErr error

	deleted []string
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{milestones: make(map[string]domain.Milestone)}
}

func (f *fakeMilestoneRepo) Create(_ context.Context, m *domain.Milestone) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.milestones[m.ID] = *m
	return nil
}

func (f *fakeMilestoneRepo) Update(_ context.Context, m *domain.Milestone) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.milestones[m.ID]; !ok {
		return domain.ErrNotFound
	}
	f.milestones[m.ID] = *m
	return nil
}

func (f *fakeMilestoneRepo) GetByID(_ context.Context, id string) (*domain.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.milestones[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMilestoneRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.milestones[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.milestones, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMilestoneRepo) ListByProjectID(_ context.Context, projectID string) ([]domain.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Milestone
	for _, m := range f.milestones {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMilestoneRepo) Search(_ context.Context, projectID, _ string) ([]domain.Milestone, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.ListByProjectID(context.Background(), projectID)
}

// fakeCategoryRepo serves the four seeded categories with synthetic ids.
type fakeCategoryRepo struct {
	missing map[string]bool
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{missing: make(map[string]bool)}
}

func categoryIDFor(name string) string { return "cat-" + name }

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	for _, name := range domain.CategoryNames() {
		if categoryIDFor(name) == id && !f.missing[name] {
			return &domain.Category{ID: id, Name: name, Message: "message for " + name}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) GetByName(_ context.Context, name string) (*domain.Category, error) {
	if f.missing[name] {
		return nil, domain.ErrNotFound
	}
	for _, known := range domain.CategoryNames() {
		if known == name {
			return &domain.Category{ID: categoryIDFor(name), Name: name, Message: "message for " + name}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(domain.CategoryNames()))
	for _, name := range domain.CategoryNames() {
		out = append(out, domain.Category{ID: categoryIDFor(name), Name: name, Message: "message for " + name})
	}
	return out, nil
}

type persistedNotification struct {
	notification domain.Notification
	logs         []domain.NotificationLog
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	created   []persistedNotification
	createErr error

	seen map[string][]string
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{seen: make(map[string][]string)}
}

func (f *fakeNotificationRepo) CreateWithLogs(_ context.Context, n *domain.Notification, logs []domain.NotificationLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, persistedNotification{notification: *n, logs: append([]domain.NotificationLog(nil), logs...)})
	return nil
}

func (f *fakeNotificationRepo) ListForUser(_ context.Context, userID string, _ int) ([]repository.UserFeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []repository.UserFeedItem
	for _, p := range f.created {
		for _, l := range p.logs {
			if l.UserID == userID {
				items = append(items, repository.UserFeedItem{
					NotificationID: p.notification.ID,
					ProjectID:      p.notification.ProjectID,
					IsSeen:         l.IsSeen,
					DateCreated:    p.notification.DateCreated,
				})
			}
		}
	}
	return items, nil
}

func (f *fakeNotificationRepo) MarkSeen(_ context.Context, userID string, notificationIDs []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[userID] = append(f.seen[userID], notificationIDs...)
	return int64(len(notificationIDs)), nil
}

func (f *fakeNotificationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type pushCall struct {
	userID  string
	payload push.UserNotification
}

type fakePusher struct {
	mu      sync.Mutex
	pushes  []pushCall
	pushErr error
}

func (f *fakePusher) PushToUser(_ context.Context, userID string, payload push.UserNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, pushCall{userID: userID, payload: payload})
	if f.pushErr != nil {
		return f.pushErr
	}
	return nil
}

// testStack wires a real engine and scheduler against in-memory fakes.
type testStack struct {
	engine        *scheduler.Engine
	checks        *CheckScheduler
	notifier      *Notifier
	projects      *fakeProjectRepo
	milestones    *fakeMilestoneRepo
	categories    *fakeCategoryRepo
	notifications *fakeNotificationRepo
	pusher        *fakePusher
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	projects := newFakeProjectRepo()
	milestones := newFakeMilestoneRepo()
	categories := newFakeCategoryRepo()
	notifications := newFakeNotificationRepo()
	pusher := &fakePusher{}

	notifier, err := NewNotifier(projects, milestones, categories, notifications, pusher, 2, 60*24*time.Hour, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}

	engine := scheduler.NewEngine(time.Second, zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = engine.Shutdown(ctx)
	})

	checks, err := NewCheckScheduler(engine, categories, notifier, 2, 60*24*time.Hour, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCheckScheduler: %v", err)
	}

	return &testStack{
		engine:        engine,
		checks:        checks,
		notifier:      notifier,
		projects:      projects,
		milestones:    milestones,
		categories:    categories,
		notifications: notifications,
		pusher:        pusher,
	}
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}
