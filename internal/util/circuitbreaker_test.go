package util

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Minute, time.Minute, nil, zap.NewNop())

	cb.RecordFailure(0)
	assert.True(t, cb.CanExecute())

	cb.RecordFailure(0)
	assert.False(t, cb.CanExecute())
	assert.NotNil(t, cb.Status().NextRetryTime)
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Minute, time.Minute, nil, zap.NewNop())
	now := time.Now()
	cb.now = func() time.Time { return now }

	cb.RecordFailure(0)
	assert.Equal(t, CircuitStateOpen, cb.State())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, CircuitStateHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute, time.Minute, nil, zap.NewNop())
	now := time.Now()
	cb.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		cb.RecordFailure(0)
	}
	now = now.Add(2 * time.Minute)
	assert.Equal(t, CircuitStateHalfOpen, cb.State())

	cb.RecordFailure(0)
	assert.Equal(t, CircuitStateOpen, cb.State())

	cb.Reset()
	assert.True(t, cb.CanExecute())
}

func TestCircuitBreakerHealthCheckHalfOpensEarly(t *testing.T) {
	var checks atomic.Int32
	healthy := func() bool {
		checks.Add(1)
		return true
	}
	cb := NewCircuitBreaker("test", 1, time.Hour, time.Minute, healthy, zap.NewNop())
	now := time.Now()
	cb.now = func() time.Time { return now }

	cb.RecordFailure(0)
	assert.Equal(t, CircuitStateOpen, cb.State())
	assert.Zero(t, checks.Load())

	now = now.Add(2 * time.Minute)
	cb.State()
	assert.Eventually(t, func() bool {
		return cb.Status().State == CircuitStateHalfOpen
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), checks.Load())
}

func TestCircuitBreakerFailedHealthCheckStaysOpen(t *testing.T) {
	var checks atomic.Int32
	unhealthy := func() bool {
		checks.Add(1)
		return false
	}
	cb := NewCircuitBreaker("test", 1, time.Hour, time.Minute, unhealthy, zap.NewNop())
	now := time.Now()
	cb.now = func() time.Time { return now }

	cb.RecordFailure(0)
	now = now.Add(2 * time.Minute)
	cb.State()
	assert.Eventually(t, func() bool {
		cb.mu.Lock()
		defer cb.mu.Unlock()
		return checks.Load() == 1 && !cb.isHealthChecking
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, CircuitStateOpen, cb.State())
	assert.Equal(t, int32(1), checks.Load())
}
