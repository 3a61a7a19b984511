// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"context"
	"time"
)

// Adds automatic retry capability to AsyncClient with respect to RetryPolicy.
// Only Dir and Stat are retried; data operations are passed through, since a failed
// create or append may have taken effect anyway.
// Retries happen inside the returned future, so they are bounded by the harness deadline.
type FaultTolerantClient struct {
	Impl        AsyncClient
	RetryPolicy *RetryPolicy
}

var _ AsyncClient = (*FaultTolerantClient)(nil) // ensure FaultTolerantClient implements AsyncClient

// Creates an instance of FaultTolerantClient
func NewFaultTolerantClient(impl AsyncClient, retryPolicy *RetryPolicy) *FaultTolerantClient {
	return &FaultTolerantClient{
		Impl:        impl,
		RetryPolicy: retryPolicy}
}

// Enumerates a directory
func (this *FaultTolerantClient) Dir(path string) Future[*ListStatusResponse] {
	return func(ctx context.Context) (*ListStatusResponse, error) {
		op := this.RetryPolicy.StartOperation()
		for {
			result, err := this.Impl.Dir(path)(ctx)
			if IsSuccessOrBenignError(err) || !op.ShouldRetry(ctx, "[%s] Dir: %s", path, err) {
				return result, err
			}
		}
	}
}

// Retrieves file/directory status
func (this *FaultTolerantClient) Stat(path string) Future[*FileStatusResponse] {
	return func(ctx context.Context) (*FileStatusResponse, error) {
		op := this.RetryPolicy.StartOperation()
		for {
			result, err := this.Impl.Stat(path)(ctx)
			if IsSuccessOrBenignError(err) || !op.ShouldRetry(ctx, "[%s] Stat: %s", path, err) {
				return result, err
			}
		}
	}
}

// Reads a byte range
func (this *FaultTolerantClient) Open(path string, opts OpenOptions) ChunkStream {
	return this.Impl.Open(path, opts)
}

// Creates a file with the given content
func (this *FaultTolerantClient) Create(path string, body []byte, opts CreateOptions) Future[struct{}] {
	return this.Impl.Create(path, body, opts)
}

// Appends to an existing file
func (this *FaultTolerantClient) Append(path string, body []byte, opts AppendOptions) Future[struct{}] {
	return this.Impl.Append(path, body, opts)
}

// Deadline for a single operation
func (this *FaultTolerantClient) DefaultTimeout() time.Duration {
	return this.Impl.DefaultTimeout()
}
