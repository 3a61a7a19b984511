// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"bufio"

	"bazil.org/fuse"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// Size of the buffer coalescing FUSE write requests into append requests
var WriteBufferSize = 1024 * 1024

// Encapsulates state and routines for writing data from the file handle.
// Writes are append-only: every write must start at the current end of file.
// A failed append drops the buffered bytes and moves Size back to the end of the data
// appended so far, so the writer can carry on from there.
type FileHandleWriter struct {
	Handle       *FileHandle
	File         *webhdfs.WriteHdfsFile // Backend append stream
	Buffer       *bufio.Writer          // Coalesces small writes
	Size         uint64                 // End of file, including buffered bytes
	Appended     uint64                 // End of file, as far as appends have succeeded
	BytesWritten uint64                 // Bytes accepted from FUSE by this handle
}

// Forwards the buffer's output to the append stream, counting what got through
type appendCounter struct {
	writer *FileHandleWriter
}

func (this appendCounter) Write(buffer []byte) (int, error) {
	nw, err := this.writer.File.Write(buffer)
	if err == nil {
		this.writer.Appended += uint64(nw)
	}
	return nw, err
}

// Opens the file for appending (stats the remote file to find its end)
func NewFileHandleWriter(handle *FileHandle, cx *webhdfs.SyncHdfsClient) (*FileHandleWriter, error) {
	absolutePath := handle.File.AbsolutePath()
	st, err := cx.Stat(absolutePath)
	if err != nil {
		webhdfs.Log.WithField("path", absolutePath).WithError(err).Warning("open for write failed")
		return nil, errno(err)
	}
	this := &FileHandleWriter{
		Handle:   handle,
		File:     webhdfs.AppendWriteHdfsFile(cx, absolutePath),
		Size:     uint64(st.FileStatus.Length),
		Appended: uint64(st.FileStatus.Length),
	}
	this.Buffer = bufio.NewWriterSize(appendCounter{this}, WriteBufferSize)
	return this, nil
}

// Responds on FUSE Write request
func (this *FileHandleWriter) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	if req.Offset < 0 || uint64(req.Offset) != this.Size {
		webhdfs.Log.WithFields(logrus.Fields{"path": this.File.Path(), "offset": req.Offset, "size": this.Size}).Warning("write not at the end of file")
		return eNotsup
	}
	start := this.Size
	nw, err := this.Buffer.Write(req.Data)
	if err != nil {
		webhdfs.Log.WithField("path", this.File.Path()).WithError(err).Warning("append failed")
		this.discard()
		if this.Size > start {
			// part of the request got appended: short write
			resp.Size = int(this.Size - start)
			this.Handle.File.grewTo(this.Size)
			return nil
		}
		return errno(err)
	}
	resp.Size = nw
	this.Size += uint64(nw)
	this.BytesWritten += uint64(nw)
	return nil
}

// Responds on FUSE Flush/Fsync request
func (this *FileHandleWriter) Flush() error {
	webhdfs.Log.WithFields(logrus.Fields{"path": this.File.Path(), "bytes": this.BytesWritten}).Debug("flush")
	if err := this.Buffer.Flush(); err != nil {
		webhdfs.Log.WithField("path", this.File.Path()).WithError(err).Warning("append failed")
		this.discard()
		return errno(err)
	}
	this.Handle.File.grewTo(this.Size)
	return nil
}

// Drops buffered bytes (and the sticky error of the buffer) after a failed append
func (this *FileHandleWriter) discard() {
	this.BytesWritten = this.BytesWritten + this.Appended - this.Size
	this.Size = this.Appended
	this.Buffer.Reset(appendCounter{this})
}

// Closes the writer
func (this *FileHandleWriter) Close() error {
	return this.Flush()
}
