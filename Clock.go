// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"time"
)

// Clock supplies wall clock time and timers to the harness and to retry policies
// (taking an indirection makes unit testing easier)
type Clock interface {
	Now() time.Time                         // Returns current time
	After(d time.Duration) <-chan time.Time // Fires once d has elapsed
}

// WallClock is the Clock backed by package time
type WallClock struct{}

var _ Clock = WallClock{} // ensure WallClock implements Clock

func (WallClock) Now() time.Time { return time.Now() }

func (WallClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
