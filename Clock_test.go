// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"sync"
	"time"
)

// MockClock reports a manually advanced time. Its timers expire immediately, so every
// deadline driven by it is already over by the time anything waits on it.
type MockClock struct {
	mutex sync.Mutex
	now   time.Time
}

var _ Clock = (*MockClock)(nil) // ensure MockClock implements Clock

// Returns current time
func (this *MockClock) Now() time.Time {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.now
}

// After sends the current time on the returned channel right away
func (this *MockClock) After(d time.Duration) <-chan time.Time {
	c := make(chan time.Time, 1)
	c <- this.Now()
	return c
}

// Tells mock clock about time progression
func (this *MockClock) NotifyTimeElapsed(d time.Duration) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.now = this.now.Add(d)
}

// StoppedClock never lets a deadline expire
type StoppedClock struct{}

var _ Clock = StoppedClock{} // ensure StoppedClock implements Clock

func (StoppedClock) Now() time.Time { return time.Time{} }

func (StoppedClock) After(d time.Duration) <-chan time.Time { return nil }

// GatedClock lets deadlines expire only once Open has been closed, so a test can make sure
// the operation started before it times out
type GatedClock struct {
	Open chan struct{}
}

var _ Clock = (*GatedClock)(nil) // ensure GatedClock implements Clock

func NewGatedClock() *GatedClock {
	return &GatedClock{Open: make(chan struct{})}
}

func (this *GatedClock) Now() time.Time { return time.Time{} }

// After fires once the gate is open
func (this *GatedClock) After(d time.Duration) <-chan time.Time {
	c := make(chan time.Time, 1)
	go func() {
		<-this.Open
		c <- time.Time{}
	}()
	return c
}
