package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pmpulse/status-engine/internal/domain"
	"go.uber.org/zap"
)

const defaultFireTimeout = 30 * time.Second

// ErrEngineClosed is returned when scheduling against a shut-down engine.
var ErrEngineClosed = errors.New("scheduling engine is closed")

// Key identifies a scheduled check. At most one job exists per key.
type Key struct {
	OriginID   string
	CategoryID string
}

// FireFunc is the callback invoked when a scheduled check fires. Failures
// inside the callback are contained to that fire; they never propagate to
// the engine or other pending jobs.
type FireFunc func(ctx context.Context, origin domain.Origin, categoryID string)

type job struct {
	key    Key
	origin domain.Origin
	fireAt time.Time
	timer  *time.Timer
}

// Engine holds all pending one-shot checks for the process. Registry
// mutations (exists, remove, replace) are serialized behind one mutex so a
// remove-then-register sequence for a key can never yield two live jobs.
// Fire callbacks run on their own goroutines, out-of-band from callers.
type Engine struct {
	logger      *zap.Logger
	fireTimeout time.Duration
	now         func() time.Time

	mu     sync.Mutex
	jobs   map[Key]*job
	closed bool

	inflight sync.WaitGroup
}

func NewEngine(fireTimeout time.Duration, logger *zap.Logger) *Engine {
	if fireTimeout <= 0 {
		fireTimeout = defaultFireTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		logger:      logger,
		fireTimeout: fireTimeout,
		now:         time.Now,
		jobs:        make(map[Key]*job),
	}
}

// Schedule registers a one-shot check for (origin, categoryID) at fireAt,
// replacing any pending job for the same key. A fireAt in the past fires
// immediately; no clamping is applied.
func (e *Engine) Schedule(origin domain.Origin, categoryID string, fireAt time.Time, fire FireFunc) error {
	if err := origin.Validate(); err != nil {
		return err
	}
	if categoryID == "" {
		return fmt.Errorf("%w: category id is required", domain.ErrValidation)
	}
	if fire == nil {
		return fmt.Errorf("%w: fire callback is required", domain.ErrValidation)
	}

	key := Key{OriginID: origin.ID(), CategoryID: categoryID}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	if existing, ok := e.jobs[key]; ok {
		existing.timer.Stop()
		delete(e.jobs, key)
	}

	delay := fireAt.Sub(e.now())
	if delay < 0 {
		delay = 0
	}

	j := &job{key: key, origin: origin, fireAt: fireAt}
	j.timer = time.AfterFunc(delay, func() {
		e.runFire(j, fire)
	})
	e.jobs[key] = j

	return nil
}

// Exists reports whether a job is pending for (originID, categoryID).
func (e *Engine) Exists(originID, categoryID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.jobs[Key{OriginID: originID, CategoryID: categoryID}]
	return ok
}

// Remove cancels the pending job for (originID, categoryID), if any.
func (e *Engine) Remove(originID, categoryID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := Key{OriginID: originID, CategoryID: categoryID}
	j, ok := e.jobs[key]
	if !ok {
		return false
	}

	j.timer.Stop()
	delete(e.jobs, key)
	return true
}

// CancelAll removes every pending job whose origin id and category id both
// appear in the given sets, returning the number of jobs canceled. Callers
// deleting an entity must await this before removing the entity's rows.
func (e *Engine) CancelAll(originIDs, categoryIDs []string) int {
	origins := make(map[string]struct{}, len(originIDs))
	for _, id := range originIDs {
		origins[id] = struct{}{}
	}
	categories := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		categories[id] = struct{}{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	canceled := 0
	for key, j := range e.jobs {
		if _, ok := origins[key.OriginID]; !ok {
			continue
		}
		if _, ok := categories[key.CategoryID]; !ok {
			continue
		}
		j.timer.Stop()
		delete(e.jobs, key)
		canceled++
	}
	return canceled
}

// Pending returns the number of jobs currently registered.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.jobs)
}

// Shutdown stops accepting work, cancels pending jobs, and waits for
// in-flight fire callbacks to drain or the context to expire.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for key, j := range e.jobs {
		j.timer.Stop()
		delete(e.jobs, key)
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduling engine drain interrupted: %w", ctx.Err())
	}
}

func (e *Engine) runFire(j *job, fire FireFunc) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	// The timer may race a concurrent replace for the same key; only the
	// currently registered job is allowed to fire. One-shot: firing consumes
	// the registration.
	if current, ok := e.jobs[j.key]; !ok || current != j {
		e.mu.Unlock()
		return
	}
	delete(e.jobs, j.key)
	e.inflight.Add(1)
	e.mu.Unlock()

	defer e.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("check fire panicked",
				zap.String("originId", j.key.OriginID),
				zap.String("categoryId", j.key.CategoryID),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), e.fireTimeout)
	defer cancel()

	fire(ctx, j.origin, j.key.CategoryID)
}
