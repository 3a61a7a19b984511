// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Encapsulates policy and logic of handling retries
type RetryPolicy struct {
	Clock           Clock         // Interface to clock
	MaxAttempts     int           // Maximum allowed attempts for operations
	TimeLimit       time.Duration // Time limit for retries on subsequent failures
	MinDelay        time.Duration // minimum delay between retries (note, first retry always happens immediately)
	MaxDelay        time.Duration // maximum delay between retries
	RandomizeDelays bool          // true to randomize delays between retries
	ExpBackoffBase  float64       // base for the exponent function to compute delays between attempts
}

// Tracks retries of a single operation
type RetryOp struct {
	RetryPolicy *RetryPolicy  // Pointed to the shared policy data structure
	Attempt     int           // 1-based index of current attempt
	Expires     time.Time     // point in time after which no retries are allowed
	Delay       time.Duration // last delay (exponentially grows)
}

// Creates trivial retry policy which disallows all retries
func NewNoRetryPolicy() *RetryPolicy {
	return &RetryPolicy{MaxAttempts: 1, Clock: WallClock{}}
}

// Creates default retry policy.
// Default retry policy is time-based
// using randomized delay between 1sec-1min.
// The base for the exponential backoff is set as a golden ratio
// (delays grow approximately as the numbers in Fibonacci sequence)
func NewDefaultRetryPolicy(clock Clock) *RetryPolicy {
	return &RetryPolicy{
		Clock:           clock,
		MaxAttempts:     10,
		TimeLimit:       5 * time.Minute,
		MinDelay:        1 * time.Second,
		MaxDelay:        1 * time.Minute,
		RandomizeDelays: true,
		ExpBackoffBase:  1.618}
}

// Starts a new operation (a retry context) and returns data structure to track operation retries
func (this *RetryPolicy) StartOperation() *RetryOp {
	return &RetryOp{
		Attempt:     1,
		RetryPolicy: this,
		Expires:     this.Clock.Now().Add(this.TimeLimit)}
}

// Logs diagnostic message (using Printf formatting semantic) and
// returns true if retry should be performed for the failed operation.
// Before returning this function might sleep for some time, providing exponential backoff.
// Cancelling ctx cuts the sleep short and disallows the retry.
func (this *RetryOp) ShouldRetry(ctx context.Context, message string, args ...interface{}) bool {
	msg := fmt.Sprintf(message, args...)
	// Deciding whether to retry by # of attempts and time
	diag := ""
	if this.Attempt >= this.RetryPolicy.MaxAttempts {
		diag = "reached max # of attempts"
	} else if this.RetryPolicy.Clock.Now().After(this.Expires) {
		diag = "exceeded max configured time interval for retries"
	} else if ctx.Err() != nil {
		diag = "operation cancelled"
	}
	if diag != "" {
		Log.Errorf("%s -> failed attempt #%d: will NOT be retried (%s)", msg, this.Attempt, diag)
		return false
	}
	// Computing delay (exponential backoff)
	if this.Attempt == 2 {
		this.Delay = this.RetryPolicy.MinDelay
	} else if this.Attempt > 2 {
		this.Delay = time.Duration(float64(this.Delay) * this.RetryPolicy.ExpBackoffBase)
		if this.Delay > this.RetryPolicy.MaxDelay {
			this.Delay = this.RetryPolicy.MaxDelay
		}
	}

	effectiveDelay := this.Delay
	if this.RetryPolicy.RandomizeDelays && this.Delay > this.RetryPolicy.MinDelay {
		effectiveDelay = this.RetryPolicy.MinDelay + time.Duration(float64(this.Delay-this.RetryPolicy.MinDelay)*rand.Float64())
	}

	Log.Warningf("%s -> failed attempt #%d: retrying in %s", msg, this.Attempt, effectiveDelay)
	this.Attempt++

	if effectiveDelay > 0 {
		select {
		case <-this.RetryPolicy.Clock.After(effectiveDelay):
		case <-ctx.Done():
			return false
		}
	}
	return true
}
