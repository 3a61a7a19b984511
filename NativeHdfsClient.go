// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"context"
	"io"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/colinmarc/hdfs/v2"
	"github.com/pkg/errors"
)

// NativeHdfsClient implements AsyncClient over Hadoop RPC, talking to the NameNode and
// DataNodes directly instead of going through the REST gateway.
// Concurrency: thread safe: handles unlimited number of concurrent requests
type NativeHdfsClient struct {
	client    *hdfs.Client
	timeout   time.Duration
	chunkSize int
}

var _ AsyncClient = (*NativeHdfsClient)(nil) // ensure NativeHdfsClient implements AsyncClient

// Defaults applied by CreateFile when CreateOptions leave the choice to the cluster
const (
	nativeDefaultReplication = 3
	nativeDefaultBlockSize   = 128 * 1024 * 1024
	nativeDefaultPermission  = os.FileMode(0644)
)

// Connects to the NameNode(s) given as "host:port" addresses
func NewNativeHdfsClient(namenodes []string, user string, timeout time.Duration) (*NativeHdfsClient, error) {
	if len(namenodes) == 0 {
		return nil, errors.New("webhdfs: at least one namenode address is required")
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		return nil, errors.Errorf("webhdfs: timeout must be positive, got %s", timeout)
	}
	client, err := hdfs.NewClient(hdfs.ClientOptions{Addresses: namenodes, User: user})
	if err != nil {
		return nil, errors.Wrapf(err, "webhdfs: connecting to %v", namenodes)
	}
	return &NativeHdfsClient{client: client, timeout: timeout, chunkSize: DefaultChunkSize}, nil
}

// Deadline for a single operation
func (this *NativeHdfsClient) DefaultTimeout() time.Duration {
	return this.timeout
}

// Closes the RPC connection
func (this *NativeHdfsClient) Close() error {
	return this.client.Close()
}

// Enumerates a directory
func (this *NativeHdfsClient) Dir(path string) Future[*ListStatusResponse] {
	return func(ctx context.Context) (*ListStatusResponse, error) {
		files, err := this.client.ReadDir(path)
		if err != nil {
			return nil, nativeError("dir", path, err)
		}
		result := &ListStatusResponse{}
		result.FileStatuses.FileStatus = make([]FileStatus, len(files))
		for i, f := range files {
			result.FileStatuses.FileStatus[i] = fileStatusOf(f, f.Name())
		}
		return result, nil
	}
}

// Retrieves file/directory status
func (this *NativeHdfsClient) Stat(path string) Future[*FileStatusResponse] {
	return func(ctx context.Context) (*FileStatusResponse, error) {
		st, err := this.client.Stat(path)
		if err != nil {
			return nil, nativeError("stat", path, err)
		}
		return &FileStatusResponse{FileStatus: fileStatusOf(st, "")}, nil
	}
}

// Reads a byte range. The file is opened on the first Next.
func (this *NativeHdfsClient) Open(path string, opts OpenOptions) ChunkStream {
	return &nativeChunkStream{client: this, path: path, opts: opts, remaining: opts.Length}
}

// Creates a file holding body
func (this *NativeHdfsClient) Create(name string, body []byte, opts CreateOptions) Future[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		if opts.Overwrite {
			if err := this.client.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
				return struct{}{}, nativeError("create", name, err)
			}
		}
		replication := int(opts.Replication)
		if replication <= 0 {
			replication = nativeDefaultReplication
		}
		blockSize := opts.BlockSize
		if blockSize <= 0 {
			blockSize = nativeDefaultBlockSize
		}
		perm := opts.Permission.Perm()
		if perm == 0 {
			perm = nativeDefaultPermission
		}
		w, err := this.client.CreateFile(name, replication, blockSize, perm)
		if err != nil {
			return struct{}{}, nativeError("create", name, err)
		}
		return struct{}{}, writeAndClose("create", name, w, body)
	}
}

// Appends body to an existing file
func (this *NativeHdfsClient) Append(name string, body []byte, opts AppendOptions) Future[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		w, err := this.client.Append(name)
		if err != nil {
			return struct{}{}, nativeError("append", name, err)
		}
		return struct{}{}, writeAndClose("append", name, w, body)
	}
}

func writeAndClose(op string, name string, w *hdfs.FileWriter, body []byte) error {
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			_ = w.Close()
			return nativeError(op, name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nativeError(op, name, err)
	}
	return nil
}

// nativeChunkStream reads a byte range through an RPC FileReader
type nativeChunkStream struct {
	client    *NativeHdfsClient
	path      string
	opts      OpenOptions
	mutex     sync.Mutex
	reader    *hdfs.FileReader
	remaining int64 // bytes left in the range, 0 means "to the end of file"
	buf       []byte
	done      bool
}

var _ ChunkStream = (*nativeChunkStream)(nil) // ensure nativeChunkStream implements ChunkStream

// Returns next chunk, or io.EOF at the end
func (this *nativeChunkStream) Next(ctx context.Context) ([]byte, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.done {
		return nil, io.EOF
	}
	if this.reader == nil {
		reader, err := this.client.client.Open(this.path)
		if err != nil {
			this.finish()
			return nil, nativeError("read", this.path, err)
		}
		if _, err := reader.Seek(this.opts.Offset, io.SeekStart); err != nil {
			_ = reader.Close()
			this.finish()
			return nil, nativeError("read", this.path, err)
		}
		this.reader = reader
		this.buf = make([]byte, this.client.chunkSize)
	}
	// unblocks a pending read once the harness gives up
	reader := this.reader
	stop := context.AfterFunc(ctx, func() { _ = reader.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	size := len(this.buf)
	if this.opts.Length > 0 && this.remaining < int64(size) {
		size = int(this.remaining)
	}
	n, err := io.ReadFull(this.reader, this.buf[:size])
	if this.opts.Length > 0 {
		this.remaining -= int64(n)
		if this.remaining == 0 {
			this.finish()
		}
	}
	switch err {
	case nil:
		return this.buf[:n], nil
	case io.EOF, io.ErrUnexpectedEOF:
		this.finish()
		if n == 0 {
			return nil, io.EOF
		}
		return this.buf[:n], nil
	default:
		this.finish()
		return nil, wrapError(KindConnection, "read", this.path, err, "block read")
	}
}

// Releases the reader, safe to call twice
func (this *nativeChunkStream) Close() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.finish()
	return nil
}

func (this *nativeChunkStream) finish() {
	this.done = true
	if this.reader != nil {
		_ = this.reader.Close()
		this.reader = nil
	}
}

// fileStatusOf converts RPC file info into the REST representation
func fileStatusOf(fi os.FileInfo, suffix string) FileStatus {
	status := FileStatus{
		Length:           fi.Size(),
		ModificationTime: fi.ModTime().UnixMilli(),
		PathSuffix:       suffix,
		Permission:       strconv.FormatUint(uint64(fi.Mode().Perm()), 8),
		Type:             TypeFile,
	}
	if fi.IsDir() {
		status.Type = TypeDirectory
		status.Length = 0
	} else if fi.Mode()&os.ModeSymlink != 0 {
		status.Type = TypeSymlink
	}
	if hfi, ok := fi.(*hdfs.FileInfo); ok {
		status.Owner = hfi.Owner()
		status.Group = hfi.OwnerGroup()
		status.AccessTime = hfi.AccessTime().UnixMilli()
	}
	return status
}

// nativeError classifies errors of the RPC client, which follow os.PathError conventions
func nativeError(op string, name string, err error) error {
	kind := KindRemote
	switch {
	case errors.Is(err, os.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, os.ErrPermission):
		kind = KindPermissionDenied
	case errors.Is(err, os.ErrExist):
		kind = KindAlreadyExists
	case errors.Is(err, os.ErrInvalid):
		kind = KindInvalidInput
	}
	return &Error{Kind: kind, Op: op, Path: path.Clean(name), Err: err}
}
