package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/config"
)

// SweepRunner is the lifecycle engine operation the sweeper drives
type SweepRunner interface {
	ProcessExpiredRequests(ctx context.Context) (int, error)
}

// ExpirySweeper runs the expiry sweep in a single long-lived loop. Each
// failure below the threshold delays the next attempt with capped exponential
// backoff; once failures accumulate to the threshold the sweeper suspends for
// a cooldown window before trying again. Any success resets the counter.
type ExpirySweeper struct {
	cfg    config.SweeperConfig
	runner SweepRunner
	logger *logrus.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewExpirySweeper creates a new ExpirySweeper
func NewExpirySweeper(cfg config.SweeperConfig, runner SweepRunner, logger *logrus.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Start launches the sweep loop. Disabled or already-running sweepers are a
// no-op.
func (s *ExpirySweeper) Start(ctx context.Context) {
	if s == nil || s.runner == nil || !s.cfg.Enabled {
		return
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(runCtx)

	s.logger.WithField("poll_interval", s.cfg.PollInterval).Info("Expiry sweeper started")
}

// Stop cancels the loop and waits for the in-flight sweep, bounded by the
// caller's context.
func (s *ExpirySweeper) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()
	if !wasRunning || cancel == nil {
		return nil
	}
	cancel()

	waitDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
		s.logger.Info("Expiry sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ExpirySweeper) run(ctx context.Context) {
	defer s.wg.Done()

	failures := 0
	for {
		delay := s.pollInterval()
		if err := s.sweepOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			if failures >= s.failureThreshold() {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"failures": failures,
					"cooldown": s.cfg.CircuitCooldown,
				}).Error("Sweep circuit opened; suspending sweeps")
				delay = s.cfg.CircuitCooldown
				failures = 0
			} else {
				delay = s.backoffDelay(failures)
				s.logger.WithError(err).WithFields(logrus.Fields{
					"failures": failures,
					"backoff":  delay,
				}).Warn("Sweep failed; backing off")
			}
		} else {
			failures = 0
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

func (s *ExpirySweeper) sweepOnce(ctx context.Context) error {
	expired, err := s.runner.ProcessExpiredRequests(ctx)
	if err != nil {
		return err
	}
	if expired > 0 {
		s.logger.WithField("expired", expired).Info("Sweep completed")
	}
	return nil
}

// backoffDelay doubles the base delay per consecutive failure, capped
func (s *ExpirySweeper) backoffDelay(failures int) time.Duration {
	delay := s.cfg.BackoffBase
	if delay <= 0 {
		delay = time.Minute
	}
	for i := 1; i < failures; i++ {
		delay *= 2
		if s.cfg.BackoffCap > 0 && delay >= s.cfg.BackoffCap {
			return s.cfg.BackoffCap
		}
	}
	return delay
}

func (s *ExpirySweeper) pollInterval() time.Duration {
	if s.cfg.PollInterval <= 0 {
		return 30 * time.Minute
	}
	return s.cfg.PollInterval
}

func (s *ExpirySweeper) failureThreshold() int {
	if s.cfg.FailureThreshold <= 0 {
		return 5
	}
	return s.cfg.FailureThreshold
}
