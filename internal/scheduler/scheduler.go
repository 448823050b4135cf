package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Scheduler owns a set of runners, each on its own goroutine.
type Scheduler struct {
	runners []*Runner
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler for runners.
func New(logger *slog.Logger, runners ...*Runner) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{runners: runners, logger: logger}
}

// Start launches every runner. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for _, r := range s.runners {
		s.wg.Add(1)
		go func(r *Runner) {
			defer s.wg.Done()
			r.Run(ctx)
		}(r)
	}
	s.logger.Info("Scheduler started", slog.Int("jobs", len(s.runners)))
}

// Shutdown stops all runners and waits up to timeout for in-flight runs.
func (s *Scheduler) Shutdown(timeout time.Duration) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(timeout):
		return errors.New("scheduler shutdown timed out")
	}
}
