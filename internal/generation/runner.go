package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"domin8x/internal/models"
	"domin8x/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// ErrRunnerClosed is returned by Start after Shutdown.
var ErrRunnerClosed = errors.New("generation runner is shut down")

// DoneFunc receives the outcome of a task. err is non-nil only when the task was cancelled.
type DoneFunc func(content *models.GeneratedContent, err error)

// Runner owns in-flight generation tasks. Every task can be cancelled by id and
// Shutdown waits for all of them to exit.
type Runner struct {
	delay time.Duration

	mu     sync.Mutex
	tasks  map[string]*task
	closed bool
	wg     sync.WaitGroup
}

type task struct {
	cancel context.CancelFunc
}

func NewRunner(delay time.Duration) *Runner {
	return &Runner{delay: delay, tasks: make(map[string]*task)}
}

// Start runs a task for id, replacing any task already running under that id.
// The task keeps ctx values but not its cancellation.
func (r *Runner) Start(ctx context.Context, id, kind, prompt string, done DoneFunc) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRunnerClosed
	}
	if prev, ok := r.tasks[id]; ok {
		prev.cancel()
	}
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t := &task{cancel: cancel}
	r.tasks[id] = t
	r.wg.Add(1)
	r.mu.Unlock()

	observability.GenerationInFlight.Inc()
	go r.run(taskCtx, t, id, kind, prompt, done)
	return nil
}

func (r *Runner) run(ctx context.Context, t *task, id, kind, prompt string, done DoneFunc) {
	defer r.wg.Done()
	defer observability.GenerationInFlight.Dec()
	defer r.forget(id, t)

	ctx, span := observability.StartSpan(ctx, "generation.run",
		attribute.String("creation.id", id),
		attribute.String("creation.type", kind))
	defer span.End()

	observability.LogAsyncOperationStart(ctx, "generation", map[string]any{"creation_id": id, "type": kind})
	if err := sleep(ctx, r.delay); err != nil {
		span.SetError(err)
		observability.GenerationTasks.WithLabelValues(kind, "cancelled").Inc()
		observability.LogAsyncOperationEnd(ctx, "generation", map[string]any{"creation_id": id, "outcome": "cancelled"})
		done(nil, err)
		return
	}

	observability.GenerationTasks.WithLabelValues(kind, "completed").Inc()
	observability.LogAsyncOperationEnd(ctx, "generation", map[string]any{"creation_id": id, "outcome": "completed"})
	done(Content(kind, prompt), nil)
}

func (r *Runner) forget(id string, t *task) {
	r.mu.Lock()
	if cur, ok := r.tasks[id]; ok && cur == t {
		delete(r.tasks, id)
	}
	r.mu.Unlock()
	t.cancel()
}

// Cancel stops the task running under id and reports whether there was one.
func (r *Runner) Cancel(id string) bool {
	r.mu.Lock()
	t, ok := r.tasks[id]
	if ok {
		delete(r.tasks, id)
	}
	r.mu.Unlock()
	if ok {
		t.cancel()
	}
	return ok
}

// Running reports whether a task is in flight under id.
func (r *Runner) Running(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[id]
	return ok
}

// Shutdown cancels every task and waits for them to return or for ctx to end.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	for id, t := range r.tasks {
		t.cancel()
		delete(r.tasks, id)
	}
	r.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
