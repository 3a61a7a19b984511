// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"context"
	"io"
	"path"
	"sync"
	"time"
)

// memClient is an in-memory AsyncClient serving range reads in fixed size chunks
type memClient struct {
	mutex     sync.Mutex
	files     map[string][]byte
	chunkSize int
	opens     []OpenOptions
}

var _ AsyncClient = (*memClient)(nil) // ensure memClient implements AsyncClient

func newMemClient(chunkSize int) *memClient {
	return &memClient{files: map[string][]byte{}, chunkSize: chunkSize}
}

func (this *memClient) put(name string, data []byte) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.files[name] = append([]byte(nil), data...)
}

func (this *memClient) content(name string) []byte {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return append([]byte(nil), this.files[name]...)
}

func (this *memClient) openCount() int {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return len(this.opens)
}

func (this *memClient) Dir(name string) Future[*ListStatusResponse] {
	return func(ctx context.Context) (*ListStatusResponse, error) {
		this.mutex.Lock()
		defer this.mutex.Unlock()
		result := &ListStatusResponse{}
		for p, data := range this.files {
			if path.Dir(p) == name {
				result.FileStatuses.FileStatus = append(result.FileStatuses.FileStatus,
					FileStatus{PathSuffix: path.Base(p), Length: int64(len(data)), Type: TypeFile, Permission: "644"})
			}
		}
		return result, nil
	}
}

func (this *memClient) Stat(name string) Future[*FileStatusResponse] {
	return func(ctx context.Context) (*FileStatusResponse, error) {
		this.mutex.Lock()
		defer this.mutex.Unlock()
		data, ok := this.files[name]
		if !ok {
			return nil, newError(KindNotFound, "stat", name, "File does not exist")
		}
		return &FileStatusResponse{FileStatus: FileStatus{Length: int64(len(data)), Type: TypeFile, Permission: "644"}}, nil
	}
}

func (this *memClient) Open(name string, opts OpenOptions) ChunkStream {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.opens = append(this.opens, opts)
	data, ok := this.files[name]
	if !ok {
		return &memChunkStream{err: newError(KindNotFound, "read", name, "File does not exist")}
	}
	end := int64(len(data))
	if opts.Offset > end {
		return &memChunkStream{err: newError(KindRemote, "read", name, "offset out of range")}
	}
	if opts.Length > 0 && opts.Offset+opts.Length < end {
		end = opts.Offset + opts.Length
	}
	return &memChunkStream{data: append([]byte(nil), data[opts.Offset:end]...), chunkSize: this.chunkSize}
}

func (this *memClient) Create(name string, body []byte, opts CreateOptions) Future[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		this.mutex.Lock()
		defer this.mutex.Unlock()
		if _, ok := this.files[name]; ok && !opts.Overwrite {
			return struct{}{}, newError(KindAlreadyExists, "create", name, "already exists")
		}
		this.files[name] = append([]byte(nil), body...)
		return struct{}{}, nil
	}
}

func (this *memClient) Append(name string, body []byte, opts AppendOptions) Future[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		this.mutex.Lock()
		defer this.mutex.Unlock()
		data, ok := this.files[name]
		if !ok {
			return struct{}{}, newError(KindNotFound, "append", name, "File does not exist")
		}
		this.files[name] = append(data, body...)
		return struct{}{}, nil
	}
}

func (this *memClient) DefaultTimeout() time.Duration {
	return time.Minute
}

type memChunkStream struct {
	data      []byte
	chunkSize int
	err       error
	closed    bool
}

func (this *memChunkStream) Next(ctx context.Context) ([]byte, error) {
	if this.err != nil {
		return nil, this.err
	}
	if this.closed || len(this.data) == 0 {
		return nil, io.EOF
	}
	n := this.chunkSize
	if n > len(this.data) {
		n = len(this.data)
	}
	chunk := this.data[:n]
	this.data = this.data[n:]
	return chunk, nil
}

func (this *memChunkStream) Close() error {
	this.closed = true
	return nil
}
