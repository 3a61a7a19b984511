// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"os"
	"path"
	"strings"
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"golang.org/x/net/context"
)

// Encapsulates state and operations for directory node on the HDFS file system
type Dir struct {
	FileSystem   *FileSystem        // Pointer to the owning filesystem
	Attrs        Attrs              // Cached attributes of the directory
	Parent       *Dir               // Pointer to the parent directory (allows computing fully-qualified paths on demand)
	Entries      map[string]fs.Node // Cahed directory entries
	EntriesMutex sync.Mutex         // Used to protect Entries
}

// Verify that *Dir implements necesary FUSE interfaces
var _ fs.Node = (*Dir)(nil)
var _ fs.HandleReadDirAller = (*Dir)(nil)
var _ fs.NodeStringLookuper = (*Dir)(nil)
var _ fs.NodeCreater = (*Dir)(nil)

// Retunds absolute path of the dir in HDFS namespace
func (this *Dir) AbsolutePath() string {
	if this.Parent == nil {
		return "/"
	}
	return path.Join(this.Parent.AbsolutePath(), this.Attrs.Name)
}

// Responds on FUSE request to get directory attributes
func (this *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	if this.Parent != nil && this.FileSystem.Clock.Now().After(this.Attrs.Expires) {
		if err := this.Parent.LookupAttrs(this.Attrs.Name, &this.Attrs); err != nil {
			return err
		}
	}
	return this.Attrs.Attr(a)
}

func (this *Dir) EntriesGet(name string) fs.Node {
	this.EntriesMutex.Lock()
	defer this.EntriesMutex.Unlock()
	if this.Entries == nil {
		this.Entries = make(map[string]fs.Node)
		return nil
	}
	return this.Entries[name]
}

func (this *Dir) EntriesSet(name string, node fs.Node) {
	this.EntriesMutex.Lock()
	defer this.EntriesMutex.Unlock()
	if this.Entries == nil {
		this.Entries = make(map[string]fs.Node)
	}
	this.Entries[name] = node
}

func (this *Dir) EntriesRemove(name string) {
	this.EntriesMutex.Lock()
	defer this.EntriesMutex.Unlock()
	delete(this.Entries, name)
}

// Responds on FUSE request to lookup the directory
func (this *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	if this.FileSystem.ExpandZips && strings.HasSuffix(name, ".zip"+ZipDirSuffix) {
		return this.lookupZipRoot(ctx, name)
	}
	if !this.FileSystem.IsPathAllowed(path.Join(this.AbsolutePath(), name)) {
		return nil, fuse.ENOENT
	}
	if node := this.EntriesGet(name); node != nil {
		return node, nil
	}
	var attrs Attrs
	if err := this.LookupAttrs(name, &attrs); err != nil {
		return nil, err
	}
	return this.NodeFromAttrs(attrs), nil
}

// Returns the virtual directory exposing the contents of a zip archive
func (this *Dir) lookupZipRoot(ctx context.Context, name string) (fs.Node, error) {
	if node := this.EntriesGet(name); node != nil {
		return node, nil
	}
	container, err := this.Lookup(ctx, strings.TrimSuffix(name, ZipDirSuffix))
	if err != nil {
		return nil, err
	}
	file, ok := container.(*File)
	if !ok {
		return nil, fuse.ENOENT
	}
	attrs := file.attrs()
	attrs.Name = name
	attrs.Inode = 0
	attrs.Mode = os.ModeDir | 0555
	attrs.Size = 0
	node := NewZipRootDir(file, attrs)
	this.EntriesSet(name, node)
	return node, nil
}

// Fetches attributes of a child entry from the backend
func (this *Dir) LookupAttrs(name string, attrs *Attrs) error {
	absolutePath := path.Join(this.AbsolutePath(), name)
	st, err := this.FileSystem.Stat(absolutePath)
	if err != nil {
		if webhdfs.KindOf(err) == webhdfs.KindNotFound {
			this.EntriesRemove(name)
		} else {
			webhdfs.Log.WithField("path", absolutePath).WithError(err).Warning("stat failed")
		}
		return errno(err)
	}
	*attrs = AttrsFromStatus(&st.FileStatus, name, this.FileSystem.expiresAt())
	return nil
}

// Responds on FUSE request to read directory
func (this *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	absolutePath := this.AbsolutePath()
	webhdfs.Log.WithField("path", absolutePath).Debug("ReadDirAll")

	listing, err := this.FileSystem.ReadDir(absolutePath)
	if err != nil {
		webhdfs.Log.WithField("path", absolutePath).WithError(err).Warning("ls failed")
		return nil, errno(err)
	}
	expires := this.FileSystem.expiresAt()
	entries := make([]fuse.Dirent, 0, len(listing.FileStatuses.FileStatus))
	for i := range listing.FileStatuses.FileStatus {
		st := &listing.FileStatuses.FileStatus[i]
		if !this.FileSystem.IsPathAllowed(path.Join(absolutePath, st.PathSuffix)) {
			continue
		}
		a := AttrsFromStatus(st, st.PathSuffix, expires)
		// Creating Dirent structure as required by FUSE
		entries = append(entries, fuse.Dirent{
			Inode: a.Inode,
			Name:  a.Name,
			Type:  a.FuseNodeType()})
		// Speculatively pre-creating child Dir or File node with cached attributes,
		// since it's highly likely that we will have Lookup() call for this name
		// This is the key trick which dramatically speeds up 'ls'
		this.NodeFromAttrs(a)
		if this.FileSystem.ExpandZips && a.FuseNodeType() == fuse.DT_File && strings.HasSuffix(a.Name, ".zip") {
			entries = append(entries, fuse.Dirent{Name: a.Name + ZipDirSuffix, Type: fuse.DT_Dir})
		}
	}
	return entries, nil
}

// Responds on FUSE request to create a file: the empty file is created on the backend
// right away and the returned handle appends to it
func (this *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	if this.FileSystem.ReadOnly {
		return nil, nil, eRofs
	}
	absolutePath := path.Join(this.AbsolutePath(), req.Name)
	if !this.FileSystem.IsPathAllowed(absolutePath) {
		return nil, nil, eAccess
	}
	err := this.FileSystem.CreateFile(absolutePath, webhdfs.CreateOptions{Permission: req.Mode.Perm()})
	if err != nil {
		webhdfs.Log.WithField("path", absolutePath).WithError(err).Warning("create failed")
		return nil, nil, errno(err)
	}
	now := this.FileSystem.Clock.Now()
	file := this.NodeFromAttrs(Attrs{
		Name:    req.Name,
		Mode:    req.Mode.Perm(),
		Uid:     req.Uid,
		Gid:     req.Gid,
		Mtime:   now,
		Atime:   now,
		Expires: now.Add(this.FileSystem.AttrTTL),
	}).(*File)
	handle, err := NewFileHandle(file, req.Flags&^fuse.OpenTruncate)
	if err != nil {
		return nil, nil, err
	}
	return file, handle, nil
}

func (this *Dir) NodeFromAttrs(attrs Attrs) fs.Node {
	var node fs.Node
	if (attrs.Mode & os.ModeDir) == 0 {
		node = &File{FileSystem: this.FileSystem, Parent: this, Attrs: attrs}
	} else {
		node = &Dir{FileSystem: this.FileSystem, Parent: this, Attrs: attrs}
	}
	this.EntriesSet(attrs.Name, node)
	return node
}
