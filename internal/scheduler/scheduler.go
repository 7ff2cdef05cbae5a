// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"domin8x/internal/middleware"
	"domin8x/internal/observability"

	"github.com/robfig/cron/v3"
)

// JobFunc is one run of a job. The context is cancelled when the scheduler stops.
type JobFunc func(ctx context.Context) error

// Scheduler wraps a cron runner with named jobs.
type Scheduler struct {
	cron *cron.Cron

	mu     sync.Mutex
	jobs   map[string]JobFunc
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Scheduler {
	logger := cronLogger{l: middleware.Logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs:   make(map[string]JobFunc),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers fn under name to run on spec, e.g. "@hourly" or "@every 1m".
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		return fmt.Errorf("schedule job %q: %w", name, err)
	}
	s.jobs[name] = fn
	return nil
}

// Trigger runs the named job immediately on the calling goroutine.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	fn, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return fn(ctx)
}

func (s *Scheduler) run(name string, fn JobFunc) {
	start := time.Now()
	if err := fn(s.ctx); err != nil {
		observability.LogAsyncOperationError(s.ctx, "scheduled_job", err, map[string]any{"job": name})
		return
	}
	middleware.Logger.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs, cancels running ones and waits for them or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
