// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"golang.org/x/net/context"
)

// Represends a handle to an open file. Each handle owns a harness forked from the filesystem's one.
type FileHandle struct {
	File   *File
	Reader *FileHandleReader // nil if the handle was opened write-only
	Writer *FileHandleWriter // nil if the handle was opened read-only
	Mutex  sync.Mutex        // all operations on the handle are serialized to simplify invariants
}

// Verify that *FileHandle implements necesary FUSE interfaces
var _ fs.Node = (*FileHandle)(nil)
var _ fs.HandleReader = (*FileHandle)(nil)
var _ fs.HandleWriter = (*FileHandle)(nil)
var _ fs.HandleFlusher = (*FileHandle)(nil)
var _ fs.HandleReleaser = (*FileHandle)(nil)

// Creates new file handle
func NewFileHandle(file *File, flags fuse.OpenFlags) (*FileHandle, error) {
	cx, err := file.FileSystem.Fork()
	if err != nil {
		return nil, errno(err)
	}
	this := &FileHandle{File: file}
	if !flags.IsWriteOnly() {
		if this.Reader, err = NewFileHandleReader(this, cx); err != nil {
			return nil, err
		}
	}
	if !flags.IsReadOnly() {
		if this.Writer, err = NewFileHandleWriter(this, cx); err != nil {
			return nil, err
		}
	}
	return this, nil
}

// Returns attributes of the file associated with this handle
func (this *FileHandle) Attr(ctx context.Context, a *fuse.Attr) error {
	return this.File.Attr(ctx, a)
}

// Reponds to FUSE Read request
func (this *FileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	this.Mutex.Lock()
	defer this.Mutex.Unlock()
	if this.Reader == nil {
		return eBadf
	}
	if this.Writer != nil && this.Writer.Size != this.Reader.File.Len() {
		// data appended through this handle must be visible to its reads
		if err := this.Writer.Flush(); err != nil {
			return err
		}
		this.Reader.Reset(this.Writer.Size)
	}
	return this.Reader.Read(ctx, req, resp)
}

// Reponds to FUSE Write request
func (this *FileHandle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	this.Mutex.Lock()
	defer this.Mutex.Unlock()
	if this.Writer == nil {
		return eBadf
	}
	return this.Writer.Write(ctx, req, resp)
}

// Reponds to FUSE Flush request (sends buffered writes)
func (this *FileHandle) Flush(ctx context.Context, req *fuse.FlushRequest) error {
	this.Mutex.Lock()
	defer this.Mutex.Unlock()
	if this.Writer == nil {
		return nil
	}
	return this.Writer.Flush()
}

// Closes the handle
func (this *FileHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	this.Mutex.Lock()
	defer this.Mutex.Unlock()
	webhdfs.Log.WithField("path", this.File.AbsolutePath()).Debug("Handle closed")
	var err error
	if this.Writer != nil {
		err = this.Writer.Close()
	}
	if this.Reader != nil {
		this.Reader.Close()
	}
	return err
}
