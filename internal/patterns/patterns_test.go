package patterns

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDownstream = errors.New("downstream failed")

func TestCircuitBreaker_OpensOnFailureRatio(t *testing.T) {
	cb := NewCircuitBreaker(DefaultBreakerConfig("TripTest", "patterns-test"))

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, errDownstream })
		require.ErrorIs(t, err, errDownstream)
	}

	assert.Equal(t, "open", cb.GetState())
	assert.Equal(t, 1, cb.GetStateValue())

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
}

func TestCircuitBreaker_StaysClosedBelowMinRequests(t *testing.T) {
	cb := NewCircuitBreaker(DefaultBreakerConfig("MinRequests", "patterns-test"))

	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errDownstream })
	}

	assert.Equal(t, "closed", cb.GetState())
	assert.Equal(t, 0, cb.GetStateValue())
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	errBenign := errors.New("benign")
	cfg := DefaultBreakerConfig("Benign", "patterns-test")
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errBenign)
	}
	cb := NewCircuitBreaker(cfg)

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, errBenign })
		assert.ErrorIs(t, err, errBenign)
	}

	assert.Equal(t, "closed", cb.GetState())
}

func TestFormatError(t *testing.T) {
	err := FormatError("Catalog", gobreaker.ErrOpenState)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "circuit breaker Catalog is open")

	err = FormatError("Catalog", gobreaker.ErrTooManyRequests)
	assert.ErrorIs(t, err, gobreaker.ErrTooManyRequests)

	assert.Equal(t, errDownstream, FormatError("Catalog", errDownstream))
}

func TestBulkhead_RunsWithinCapacity(t *testing.T) {
	b := NewBulkhead(2, "test", "patterns-test")

	err := b.Execute(context.Background(), func() error { return nil })
	assert.NoError(t, err)

	err = b.Execute(context.Background(), func() error { return errDownstream })
	assert.ErrorIs(t, err, errDownstream)
	assert.Equal(t, "test", b.GetName())
}

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := NewBulkhead(1, "full", "patterns-test")
	b.acquireTimeout = 20 * time.Millisecond

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := b.Execute(context.Background(), func() error {
		t.Fatal("must not run while the bulkhead is full")
		return nil
	})
	assert.ErrorContains(t, err, "timeout acquiring resource")

	close(release)
	assert.NoError(t, <-done)

	assert.NoError(t, b.Execute(context.Background(), func() error { return nil }))
}

func TestBulkhead_HonorsContext(t *testing.T) {
	b := NewBulkhead(1, "ctx", "patterns-test")
	b.semaphore <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Execute(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, time.Second)
}
