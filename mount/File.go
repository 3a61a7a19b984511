// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"path"
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type File struct {
	FileSystem *FileSystem // pointer to the FieSystem which owns this file
	Attrs      Attrs       // Cache of file attributes
	Parent     *Dir        // Pointer to the parent directory (allows computing fully-qualified paths on demand)
	AttrsMutex sync.Mutex  // handles update Attrs after writes
}

// Verify that *File implements necesary FUSE interfaces
var _ fs.Node = (*File)(nil)
var _ fs.NodeOpener = (*File)(nil)
var _ fs.NodeSetattrer = (*File)(nil)
var _ ReaderFactory = (*File)(nil)

// Retunds absolute path of the file in HDFS namespace
func (this *File) AbsolutePath() string {
	return path.Join(this.Parent.AbsolutePath(), this.Attrs.Name)
}

// Responds to the FUSE file attribute request
func (this *File) Attr(ctx context.Context, a *fuse.Attr) error {
	this.AttrsMutex.Lock()
	defer this.AttrsMutex.Unlock()
	if this.FileSystem.Clock.Now().After(this.Attrs.Expires) {
		err := this.Parent.LookupAttrs(this.Attrs.Name, &this.Attrs)
		if err != nil {
			return err
		}
	}
	return this.Attrs.Attr(a)
}

// Responds to the FUSE file open request (creates new file handle)
func (this *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	webhdfs.Log.WithFields(logrus.Fields{"path": this.AbsolutePath(), "flags": req.Flags.String()}).Debug("Opened")
	if !req.Flags.IsReadOnly() && this.FileSystem.ReadOnly {
		return nil, eRofs
	}
	if req.Flags&fuse.OpenTruncate != 0 && !req.Flags.IsReadOnly() {
		if err := this.truncate(); err != nil {
			return nil, err
		}
	}
	return NewFileHandle(this, req.Flags)
}

// Responds to the FUSE setattr request. Only truncation to zero (re-creating the file) and
// size changes that keep the current size are supported; other attributes are kept as cached.
func (this *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Size() {
		if this.FileSystem.ReadOnly {
			return eRofs
		}
		switch {
		case req.Size == 0:
			if err := this.truncate(); err != nil {
				return err
			}
		case req.Size != this.size():
			return eNotsup
		}
	}
	this.AttrsMutex.Lock()
	defer this.AttrsMutex.Unlock()
	if req.Valid.Mtime() {
		this.Attrs.Mtime = req.Mtime
	}
	return this.Attrs.Attr(&resp.Attr)
}

// Re-creates the file empty, keeping its permissions
func (this *File) truncate() error {
	this.AttrsMutex.Lock()
	defer this.AttrsMutex.Unlock()
	absolutePath := this.AbsolutePath()
	err := this.FileSystem.CreateFile(absolutePath, webhdfs.CreateOptions{Overwrite: true, Permission: this.Attrs.Mode.Perm()})
	if err != nil {
		webhdfs.Log.WithField("path", absolutePath).WithError(err).Warning("truncate failed")
		return errno(err)
	}
	this.Attrs.Size = 0
	this.Attrs.Mtime = this.FileSystem.Clock.Now()
	return nil
}

// Opens an independent stream over the file, used for random access to archives
func (this *File) OpenRead() (PositionedReader, error) {
	cx, err := this.FileSystem.Fork()
	if err != nil {
		return nil, err
	}
	file, err := webhdfs.OpenReadHdfsFile(cx, this.AbsolutePath())
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Copy of the cached attributes
func (this *File) attrs() Attrs {
	this.AttrsMutex.Lock()
	defer this.AttrsMutex.Unlock()
	return this.Attrs
}

// Cached size
func (this *File) size() uint64 {
	this.AttrsMutex.Lock()
	defer this.AttrsMutex.Unlock()
	return this.Attrs.Size
}

// Records the size reached by an append, extending the cache lifetime
func (this *File) grewTo(size uint64) {
	this.AttrsMutex.Lock()
	defer this.AttrsMutex.Unlock()
	this.Attrs.Size = size
	this.Attrs.Mtime = this.FileSystem.Clock.Now()
	this.Attrs.Expires = this.FileSystem.expiresAt()
}
