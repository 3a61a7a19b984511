// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// runtime is the private scheduler of one SyncHdfsClient. It runs a single Future at a time
// to completion, or gives up when the deadline fires first.
// Concurrency: not thread safe: at most one request at a time (entering twice panics)
type runtime struct {
	clock Clock
	busy  atomic.Bool
}

type outcome[R any] struct {
	value R
	err   error
}

func newRuntime(clock Clock) (*runtime, error) {
	if clock == nil {
		return nil, errors.New("webhdfs: cannot create runtime without a clock")
	}
	return &runtime{clock: clock}, nil
}

// blockOn drives f until it completes or timeout elapses, in which case completed is false.
// On timeout the future's context is cancelled and its result dropped; whatever the
// operation already sent to the cluster stays sent.
func blockOn[R any](rt *runtime, f Future[R], timeout time.Duration) (result R, completed bool, err error) {
	if !rt.busy.CompareAndSwap(false, true) {
		panic("webhdfs: SyncHdfsClient used from two goroutines at once, use Fork() to get one per goroutine")
	}
	defer rt.busy.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan outcome[R], 1) // buffered so an abandoned future can still finish
	go func() {
		value, err := f(ctx)
		done <- outcome[R]{value: value, err: err}
	}()

	select {
	case o := <-done:
		return o.value, true, o.err
	case <-rt.clock.After(timeout):
		return result, false, nil
	}
}
