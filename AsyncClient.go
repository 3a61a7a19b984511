// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"context"
	"time"
)

// Future is a deferred network operation. Nothing is sent until the future is invoked;
// the context bounds the operation and is cancelled by the harness on deadline expiry.
type Future[R any] func(ctx context.Context) (R, error)

// ChunkStream is the lazy response of a range request: a finite, non-restartable sequence
// of byte chunks. The request is issued on the first call to Next.
// Concurrency: not thread safe: at most one request at a time
type ChunkStream interface {
	Next(ctx context.Context) ([]byte, error) // Returns next chunk, or io.EOF at the end
	Close() error                             // Releases the connection, safe to call twice
}

// AsyncClient is the transport the harness drives: every operation is returned as a Future
// (or ChunkStream) and performs the actual exchange with the cluster when executed.
// Concurrency: thread safe: one client may be shared by any number of harnesses
type AsyncClient interface {
	Dir(path string) Future[*ListStatusResponse]                          // Enumerates a directory
	Stat(path string) Future[*FileStatusResponse]                         // Retrieves file/directory status
	Open(path string, opts OpenOptions) ChunkStream                       // Reads a byte range
	Create(path string, body []byte, opts CreateOptions) Future[struct{}] // Creates a file with the given content
	Append(path string, body []byte, opts AppendOptions) Future[struct{}] // Appends to an existing file
	DefaultTimeout() time.Duration                                        // Deadline for a single operation
}
