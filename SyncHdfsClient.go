// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// SyncHdfsClient is the blocking harness over an AsyncClient. It turns every asynchronous
// operation into a plain call that returns when the operation completes or when the
// client's default timeout expires, whichever comes first.
//
// On timeout the caller gets a Timeout error, but the operation is not rolled back: a
// create or append may still take effect on the cluster after the call has failed.
//
// The underlying AsyncClient is shared (by forks and by every stream opened from this
// harness), the scheduler is private.
// Concurrency: not thread safe: at most one request at a time. Use Fork() to obtain an
// independent harness for another goroutine.
type SyncHdfsClient struct {
	acx     AsyncClient // shared transport
	rt      *runtime    // private scheduler
	metrics *Metrics    // may be nil
}

// Creates a harness for the WebHDFS entrypoint (e.g. "http://namenode:9870"), rewriting
// redirect addresses through natMap
func NewSyncHdfsClient(entrypoint string, natMap NatMap) (*SyncHdfsClient, error) {
	acx, err := NewHdfsClient(entrypoint, natMap)
	if err != nil {
		return nil, err
	}
	return NewSyncHdfsClientFromAsync(acx)
}

// Creates a harness for the WebHDFS entrypoint with identity address translation
func SyncHdfsClientFromEntrypoint(entrypoint string) (*SyncHdfsClient, error) {
	return NewSyncHdfsClient(entrypoint, nil)
}

// Creates a harness over an existing transport
func NewSyncHdfsClientFromAsync(acx AsyncClient) (*SyncHdfsClient, error) {
	return newSyncHdfsClient(acx, WallClock{})
}

func newSyncHdfsClient(acx AsyncClient, clock Clock) (*SyncHdfsClient, error) {
	if acx == nil {
		return nil, errors.New("webhdfs: nil AsyncClient")
	}
	if acx.DefaultTimeout() <= 0 {
		return nil, errors.Errorf("webhdfs: default timeout must be positive, got %s", acx.DefaultTimeout())
	}
	rt, err := newRuntime(clock)
	if err != nil {
		return nil, err
	}
	return &SyncHdfsClient{acx: acx, rt: rt, metrics: DefaultMetrics}, nil
}

// Fork returns a new harness sharing this harness' transport, with its own scheduler
func (this *SyncHdfsClient) Fork() (*SyncHdfsClient, error) {
	rt, err := newRuntime(this.rt.clock)
	if err != nil {
		return nil, err
	}
	return &SyncHdfsClient{acx: this.acx, rt: rt, metrics: this.metrics}, nil
}

// Client returns the shared transport
func (this *SyncHdfsClient) Client() AsyncClient {
	return this.acx
}

// Timeout returns the deadline applied to every call
func (this *SyncHdfsClient) Timeout() time.Duration {
	return this.acx.DefaultTimeout()
}

// Enumerates a directory
func (this *SyncHdfsClient) Dir(path string) (*ListStatusResponse, error) {
	return execute(this, "dir", path, this.acx.Dir(path))
}

// Retrieves file/directory status
func (this *SyncHdfsClient) Stat(path string) (*FileStatusResponse, error) {
	return execute(this, "stat", path, this.acx.Stat(path))
}

// Execute runs f to completion on c's scheduler, or fails with a Timeout error once the
// default timeout elapses. Errors returned by f are passed through unchanged.
func Execute[R any](c *SyncHdfsClient, f Future[R]) (R, error) {
	return execute(c, "execute", "", f)
}

func execute[R any](c *SyncHdfsClient, op string, path string, f Future[R]) (R, error) {
	started := time.Now()
	timeout := c.acx.DefaultTimeout()
	result, completed, err := blockOn(c.rt, f, timeout)
	if !completed {
		err = newError(KindTimeout, op, path, "operation did not complete within %s", timeout)
	}
	c.metrics.observe(op, started, err)
	if err != nil && err != io.EOF {
		logFailure(logOp(op, path), err)
	}
	return result, err
}
