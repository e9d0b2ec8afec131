// Package scheduler runs the server's periodic housekeeping tasks.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTick is how often due tasks are checked.
const DefaultTick = time.Second

// Task is a job run every Every.
type Task struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context, now time.Time)
}

type Scheduler struct {
	mu      sync.Mutex
	tasks   []Task
	lastRun map[string]time.Time
	tick    time.Duration
	logger  *zap.Logger
}

func New(logger *zap.Logger, tasks ...Task) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tasks:   append([]Task(nil), tasks...),
		lastRun: make(map[string]time.Time),
		tick:    DefaultTick,
		logger:  logger,
	}
}

// SetTick changes the check interval. It must be called before Start.
func (s *Scheduler) SetTick(d time.Duration) {
	if d > 0 {
		s.tick = d
	}
}

// Start checks tasks every tick until ctx is done. The returned channel is
// closed once the loop has exited.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.logger.Info("scheduler started", zap.Int("tasks", len(s.tasks)))
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case now := <-ticker.C:
				s.Check(ctx, now)
			}
		}
	}()
	return done
}

// Check runs every task that is due at now.
func (s *Scheduler) Check(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []Task
	for _, t := range s.tasks {
		if t.Name == "" || t.Run == nil {
			continue
		}
		if !shouldRun(t, s.lastRun[t.Name], now) {
			continue
		}
		s.lastRun[t.Name] = now
		due = append(due, t)
	}
	s.mu.Unlock()

	for _, t := range due {
		s.runOnce(ctx, t, now)
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panicked", zap.String("task", t.Name), zap.Any("panic", r))
		}
	}()
	t.Run(ctx, now)
}

func shouldRun(t Task, lastRun, now time.Time) bool {
	if t.Every <= 0 {
		return false
	}
	if lastRun.IsZero() {
		return true
	}
	return now.Sub(lastRun) >= t.Every
}
