// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"archive/zip"
	"io"
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"golang.org/x/net/context"
)

// Encapsulates a file handle for a file inside a zip archive. Archived content can only be
// decompressed sequentially: forward jumps are skipped over, backward jumps restart the stream.
type ZipFileHandle struct {
	zipFile       *zip.File
	ContentStream io.ReadCloser
	lock          sync.Mutex
	offset        int64
	Restarts      int64 // number of times the stream was re-opened to go backwards
}

// Ensure ZipFileHandle implements necesary fuse interface
var _ fs.Handle = (*ZipFileHandle)(nil)
var _ fs.HandleReleaser = (*ZipFileHandle)(nil)
var _ fs.HandleReader = (*ZipFileHandle)(nil)

// Creates new file handle
func NewZipFileHandle(zipFile *zip.File) (*ZipFileHandle, error) {
	contentStream, err := zipFile.Open()
	if err != nil {
		return nil, errno(err)
	}
	return &ZipFileHandle{zipFile: zipFile, ContentStream: contentStream}, nil
}

// Releases (closes) the handle
func (this *ZipFileHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	this.lock.Lock()
	defer this.lock.Unlock()
	return this.ContentStream.Close()
}

// Responds on FUSE Read request
func (this *ZipFileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	this.lock.Lock()
	defer this.lock.Unlock()
	if req.Offset < this.offset {
		// kernel read-ahead requests may arrive out of order
		if err := this.restart(); err != nil {
			return err
		}
	}
	if req.Offset > this.offset {
		skipped, err := io.CopyN(io.Discard, this.ContentStream, req.Offset-this.offset)
		this.offset += skipped
		if err == io.EOF {
			resp.Data = []byte{}
			return nil
		}
		if err != nil {
			return errno(err)
		}
	}

	// reading requested bytes
	buffer := make([]byte, req.Size)
	nr, err := io.ReadFull(this.ContentStream, buffer)
	this.offset += int64(nr)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// EOF isn't an error from the FUSE's point of view
		err = nil
	}
	resp.Data = buffer[:nr]
	return errno(err)
}

func (this *ZipFileHandle) restart() error {
	this.Restarts++
	_ = this.ContentStream.Close()
	contentStream, err := this.zipFile.Open()
	if err != nil {
		return errno(err)
	}
	this.ContentStream = contentStream
	this.offset = 0
	return nil
}
