// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoRetryPolicy(t *testing.T) {
	assert.False(t, NewNoRetryPolicy().StartOperation().ShouldRetry(context.Background(), "TestDiagnostic"))
}

func TestTreeAttempts(t *testing.T) {
	rp := NewDefaultRetryPolicy(&MockClock{})
	rp.MaxAttempts = 3
	op := rp.StartOperation()
	ctx := context.Background()
	assert.True(t, op.ShouldRetry(ctx, "Attempt 1"))
	assert.True(t, op.ShouldRetry(ctx, "Attempt 2"))
	assert.False(t, op.ShouldRetry(ctx, "Attempt 3"))
}

func TestTreeMinutesLimit(t *testing.T) {
	clock := &MockClock{}
	rp := NewDefaultRetryPolicy(clock)
	rp.MaxAttempts = 9999999
	rp.TimeLimit = 3 * time.Minute
	op := rp.StartOperation()
	ctx := context.Background()
	assert.True(t, op.ShouldRetry(ctx, "Attempt 1"))
	clock.NotifyTimeElapsed(time.Minute)
	assert.True(t, op.ShouldRetry(ctx, "Attempt 2"))
	clock.NotifyTimeElapsed(time.Minute)
	assert.True(t, op.ShouldRetry(ctx, "Attempt 3"))
	clock.NotifyTimeElapsed(61 * time.Second)
	assert.False(t, op.ShouldRetry(ctx, "Attempt 4"))
}

func TestDelaysGrowUpToMax(t *testing.T) {
	rp := NewDefaultRetryPolicy(&MockClock{})
	rp.RandomizeDelays = false
	rp.MaxDelay = 2 * time.Second
	op := rp.StartOperation()
	ctx := context.Background()
	assert.True(t, op.ShouldRetry(ctx, "Attempt 1"))
	assert.Equal(t, time.Duration(0), op.Delay)
	assert.True(t, op.ShouldRetry(ctx, "Attempt 2"))
	assert.Equal(t, time.Second, op.Delay)
	assert.True(t, op.ShouldRetry(ctx, "Attempt 3"))
	assert.Equal(t, time.Duration(1.618*float64(time.Second)), op.Delay)
	assert.True(t, op.ShouldRetry(ctx, "Attempt 4"))
	assert.Equal(t, 2*time.Second, op.Delay)
}

func TestCancelledContextStopsRetries(t *testing.T) {
	rp := NewDefaultRetryPolicy(StoppedClock{})
	op := rp.StartOperation()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, op.ShouldRetry(ctx, "Attempt 1"))
}

func TestCancelCutsBackoffShort(t *testing.T) {
	rp := NewDefaultRetryPolicy(StoppedClock{})
	op := rp.StartOperation()
	op.Attempt = 2
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	assert.False(t, op.ShouldRetry(ctx, "Attempt 2"))
}
