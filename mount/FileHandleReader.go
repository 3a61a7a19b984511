// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"io"

	"bazil.org/fuse"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// Encapsulates state and routines for reading data from the file handle
// FileHandleReader implements simple two-buffer scheme which allows to efficiently
// handle unordered reads which aren't far away from each other, so backend stream can
// be read sequentially without seek
type FileHandleReader struct {
	Handle    *FileHandle
	File      *webhdfs.ReadHdfsFile // Backend stream
	Offset    int64                 // Current offset for backend stream
	Buffer1   *FileFragment         // Most recent fragment from the backend stream
	Buffer2   *FileFragment         // Least recent fragment read from the backend
	Holes     int64                 // tracks number of skipped ranges read through instead of seeking
	CacheHits int64                 // tracks number of cache hits (read requests from buffer)
	Seeks     int64                 // tracks number of seeks performed on the backend stream
}

var BLOCKSIZE int = 65536

// Opens the reader (stats the remote file)
func NewFileHandleReader(handle *FileHandle, cx *webhdfs.SyncHdfsClient) (*FileHandleReader, error) {
	absolutePath := handle.File.AbsolutePath()
	file, err := webhdfs.OpenReadHdfsFile(cx, absolutePath)
	if err != nil {
		webhdfs.Log.WithField("path", absolutePath).WithError(err).Warning("open for read failed")
		return nil, errno(err)
	}
	return &FileHandleReader{Handle: handle, File: file, Buffer1: &FileFragment{}, Buffer2: &FileFragment{}}, nil
}

// Responds on FUSE Read request. A response shorter than requested means end of file.
func (this *FileHandleReader) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	length := int64(this.File.Len())
	if req.Offset >= length {
		resp.Data = []byte{}
		return nil
	}
	size := req.Size
	if int64(size) > length-req.Offset {
		size = int(length - req.Offset)
	}

	// First checking whether we can satisfy request from buffered file fragments
	if this.Buffer1.ReadFromBuffer(req.Offset, size, resp) || this.Buffer2.ReadFromBuffer(req.Offset, size, resp) {
		this.CacheHits++
		return nil
	}

	// None of the buffers has the data to satisfy the request, we're going to read more data from backend into Buffer1

	// Before doing that, swapping buffers to keep MRU/LRU invariant
	this.Buffer2, this.Buffer1 = this.Buffer1, this.Buffer2

	maxBytesToRead := req.Size
	minBytesToRead := size

	if req.Offset != this.Offset {
		// We're reading not from the offset expected by the backend stream
		// we need to decide whether we do Seek(), or read the skipped data (refered as "hole" below)
		if req.Offset > this.Offset && req.Offset-this.Offset <= int64(BLOCKSIZE*2) {
			holeSize := int(req.Offset - this.Offset)
			this.Holes++
			maxBytesToRead += holeSize // we're going to read the "hole"
			minBytesToRead += holeSize
		} else {
			this.Seeks++
			pos, err := this.File.Seek(req.Offset, io.SeekStart)
			if err != nil {
				webhdfs.Log.WithFields(logrus.Fields{"path": this.File.Path(), "offset": req.Offset}).WithError(err).Warning("seek failed")
				return errno(err)
			}
			this.Offset = pos
		}
	}

	// Ceiing to the nearest BLOCKSIZE
	maxBytesToRead = (maxBytesToRead + BLOCKSIZE - 1) / BLOCKSIZE * BLOCKSIZE

	// Reading from backend into Buffer1
	err := this.Buffer1.ReadFromBackend(this.File, &this.Offset, minBytesToRead, maxBytesToRead)
	if err != nil {
		if err == io.EOF {
			// the file is shorter than it was at open time
			webhdfs.Log.WithFields(logrus.Fields{"path": this.File.Path(), "offset": this.Offset}).Debug("EOF")
			if !this.Buffer1.ReadAvailable(req.Offset, size, resp) {
				resp.Data = []byte{}
			}
			return nil
		}
		webhdfs.Log.WithFields(logrus.Fields{"path": this.File.Path(), "offset": this.Offset}).WithError(err).Warning("read failed")
		return errno(err)
	}
	// Now Buffer1 has the data to satisfy request
	if !this.Buffer1.ReadFromBuffer(req.Offset, size, resp) {
		return errors.New("INTERNAL ERROR: FileFragment invariant")
	}
	return nil
}

// Restarts the backend stream at the current offset with a new file length, dropping buffers
func (this *FileHandleReader) Reset(length uint64) {
	cx, path, pos, _ := this.File.IntoParts()
	this.File = webhdfs.ResumeReadHdfsFile(cx, path, pos, int64(length))
	this.Buffer1.Clear()
	this.Buffer2.Clear()
}

// Closes the reader
func (this *FileHandleReader) Close() error {
	webhdfs.Log.WithFields(logrus.Fields{
		"path":      this.File.Path(),
		"holes":     this.Holes,
		"cacheHits": this.CacheHits,
		"seeks":     this.Seeks,
	}).Debug("Handle stats")
	return nil
}
