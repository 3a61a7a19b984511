// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"io"
)

// WriteHdfsFile appends to a remote file. Every Write is one append request carrying exactly
// the written bytes; there is no client-side buffering, so Flush has nothing to do.
// Wrap the stream into bufio.Writer to coalesce small writes.
// Concurrency: not thread safe: at most one request at a time
type WriteHdfsFile struct {
	cx   *SyncHdfsClient
	path string
}

var _ io.Writer = (*WriteHdfsFile)(nil) // ensure WriteHdfsFile implements io.Writer

// Creates (or truncates, with opts.Overwrite) an empty file at path and returns an append stream for it
func CreateWriteHdfsFile(cx *SyncHdfsClient, path string, opts CreateOptions) (*WriteHdfsFile, error) {
	if _, err := execute(cx, "create", path, cx.acx.Create(path, []byte{}, opts)); err != nil {
		return nil, err
	}
	return AppendWriteHdfsFile(cx, path), nil
}

// Returns an append stream for an existing file, without touching the network
func AppendWriteHdfsFile(cx *SyncHdfsClient, path string) *WriteHdfsFile {
	return &WriteHdfsFile{cx: cx, path: path}
}

// Remote path
func (this *WriteHdfsFile) Path() string {
	return this.path
}

// Write appends a copy of buffer to the remote file and returns len(buffer) on success.
// An empty buffer still issues an (empty) append request.
func (this *WriteHdfsFile) Write(buffer []byte) (int, error) {
	body := make([]byte, len(buffer))
	copy(body, buffer)
	if _, err := execute(this.cx, "append", this.path, this.cx.acx.Append(this.path, body, AppendOptions{})); err != nil {
		return 0, err
	}
	return len(buffer), nil
}

// Flush is a no-op: data is sent by Write
func (this *WriteHdfsFile) Flush() error {
	return nil
}
