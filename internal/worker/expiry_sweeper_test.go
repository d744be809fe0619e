package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/docushare/share-management-api/internal/config"
)

type stubRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *stubRunner) ProcessExpiredRequests(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	return 1, nil
}

func (r *stubRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newSweeperConfig() config.SweeperConfig {
	return config.SweeperConfig{
		Enabled:          true,
		PollInterval:     5 * time.Millisecond,
		BackoffBase:      5 * time.Millisecond,
		BackoffCap:       20 * time.Millisecond,
		FailureThreshold: 3,
		CircuitCooldown:  time.Hour,
	}
}

func newSweeperLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestExpirySweeper_SweepsOnInterval(t *testing.T) {
	runner := &stubRunner{}
	sweeper := NewExpirySweeper(newSweeperConfig(), runner, newSweeperLogger())

	sweeper.Start(context.Background())
	defer sweeper.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return runner.callCount() >= 3
	}, time.Second, time.Millisecond)
}

func TestExpirySweeper_StopWaitsForLoop(t *testing.T) {
	runner := &stubRunner{}
	sweeper := NewExpirySweeper(newSweeperConfig(), runner, newSweeperLogger())

	sweeper.Start(context.Background())
	assert.Eventually(t, func() bool {
		return runner.callCount() >= 1
	}, time.Second, time.Millisecond)

	err := sweeper.Stop(context.Background())
	assert.NoError(t, err)

	settled := runner.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, runner.callCount())
}

func TestExpirySweeper_StopWithoutStartIsNoop(t *testing.T) {
	sweeper := NewExpirySweeper(newSweeperConfig(), &stubRunner{}, newSweeperLogger())
	assert.NoError(t, sweeper.Stop(context.Background()))
}

func TestExpirySweeper_DisabledDoesNotSweep(t *testing.T) {
	cfg := newSweeperConfig()
	cfg.Enabled = false
	runner := &stubRunner{}
	sweeper := NewExpirySweeper(cfg, runner, newSweeperLogger())

	sweeper.Start(context.Background())
	time.Sleep(30 * time.Millisecond)

	assert.Zero(t, runner.callCount())
	assert.NoError(t, sweeper.Stop(context.Background()))
}

func TestExpirySweeper_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	cfg := newSweeperConfig()
	runner := &stubRunner{err: errors.New("database unavailable")}
	sweeper := NewExpirySweeper(cfg, runner, newSweeperLogger())

	sweeper.Start(context.Background())
	defer sweeper.Stop(context.Background())

	// Three failures trip the circuit; the hour-long cooldown then holds the
	// loop, so the call count settles at the threshold.
	assert.Eventually(t, func() bool {
		return runner.callCount() == cfg.FailureThreshold
	}, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, cfg.FailureThreshold, runner.callCount())
}

func TestExpirySweeper_BackoffDoublesPerFailureUpToCap(t *testing.T) {
	sweeper := NewExpirySweeper(newSweeperConfig(), &stubRunner{}, newSweeperLogger())

	assert.Equal(t, 5*time.Millisecond, sweeper.backoffDelay(1))
	assert.Equal(t, 10*time.Millisecond, sweeper.backoffDelay(2))
	assert.Equal(t, 20*time.Millisecond, sweeper.backoffDelay(3))
	assert.Equal(t, 20*time.Millisecond, sweeper.backoffDelay(6))
}

func TestExpirySweeper_DoubleStartRunsOneLoop(t *testing.T) {
	cfg := newSweeperConfig()
	cfg.PollInterval = time.Hour
	runner := &stubRunner{}
	sweeper := NewExpirySweeper(cfg, runner, newSweeperLogger())

	sweeper.Start(context.Background())
	sweeper.Start(context.Background())
	defer sweeper.Stop(context.Background())

	// A single immediate sweep per loop; a second loop would double it.
	assert.Eventually(t, func() bool {
		return runner.callCount() == 1
	}, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, runner.callCount())
}
