// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"github.com/pkg/errors"
)

// How long cached attributes are trusted before they are re-fetched from the NameNode
const DefaultAttrTTL = time.Minute

type FileSystem struct {
	MountPoint      string        // Path to the mount point on a local file system
	AllowedPrefixes []string      // List of allowed path prefixes (only those prefixes are exposed via mountpoint)
	ExpandZips      bool          // Indicates whether ZIP expansion feature is enabled
	ReadOnly        bool          // Indicates whether mount filesystem with readonly
	Mounted         bool          // True if filesystem is mounted
	Clock           webhdfs.Clock // interface to get wall clock time
	AttrTTL         time.Duration // how long cached attributes stay valid

	client      *webhdfs.SyncHdfsClient // harness for metadata requests
	clientMutex sync.Mutex              // the harness serves one request at a time
}

// Verify that *FileSystem implements necesary FUSE interfaces
var _ fs.FS = (*FileSystem)(nil)

// Creates an instance of mountable file system
func NewFileSystem(client *webhdfs.SyncHdfsClient, mountPoint string, allowedPrefixes []string, expandZips bool, readOnly bool, clock webhdfs.Clock) (*FileSystem, error) {
	if client == nil {
		return nil, errors.New("mount: nil client")
	}
	return &FileSystem{
		client:          client,
		MountPoint:      mountPoint,
		Mounted:         false,
		AllowedPrefixes: allowedPrefixes,
		ExpandZips:      expandZips,
		ReadOnly:        readOnly,
		Clock:           clock,
		AttrTTL:         DefaultAttrTTL}, nil
}

// Mounts the filesystem
func (this *FileSystem) Mount() (*fuse.Conn, error) {
	options := []fuse.MountOption{
		fuse.FSName("webhdfs"),
		fuse.Subtype("webhdfs"),
		fuse.VolumeName("HDFS filesystem"),
		fuse.AllowOther(),
		fuse.MaxReadahead(1024 * 64),
	}
	if this.ReadOnly {
		// write-back caching is safe only when nothing is written
		options = append(options, fuse.WritebackCache(), fuse.ReadOnly())
	}
	conn, err := fuse.Mount(this.MountPoint, options...)
	if err != nil {
		return nil, err
	}
	this.Mounted = true
	return conn, nil
}

// Unmounts the filesysten (invokes fusermount tool)
func (this *FileSystem) Unmount() error {
	if !this.Mounted {
		return nil
	}
	this.Mounted = false
	webhdfs.Log.WithField("mountpoint", this.MountPoint).Info("Unmounting...")
	return exec.Command("fusermount", "-zu", this.MountPoint).Run()
}

// Returns root directory of the filesystem
func (this *FileSystem) Root() (fs.Node, error) {
	return &Dir{FileSystem: this, Attrs: Attrs{Inode: 1, Name: "", Mode: 0755 | os.ModeDir}}, nil
}

// Returns if given absoute path allowed by any of the prefixes
func (this *FileSystem) IsPathAllowed(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range this.AllowedPrefixes {
		if prefix == "*" {
			return true
		}
		p := "/" + strings.Trim(prefix, "/")
		if p == path || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Retrieves attributes through the shared metadata harness
func (this *FileSystem) Stat(path string) (*webhdfs.FileStatusResponse, error) {
	this.clientMutex.Lock()
	defer this.clientMutex.Unlock()
	return this.client.Stat(path)
}

// Lists a directory through the shared metadata harness
func (this *FileSystem) ReadDir(path string) (*webhdfs.ListStatusResponse, error) {
	this.clientMutex.Lock()
	defer this.clientMutex.Unlock()
	return this.client.Dir(path)
}

// Creates an empty file through the shared metadata harness
func (this *FileSystem) CreateFile(path string, opts webhdfs.CreateOptions) error {
	this.clientMutex.Lock()
	defer this.clientMutex.Unlock()
	_, err := webhdfs.CreateWriteHdfsFile(this.client, path, opts)
	return err
}

// Returns an independent harness for a file handle
func (this *FileSystem) Fork() (*webhdfs.SyncHdfsClient, error) {
	this.clientMutex.Lock()
	defer this.clientMutex.Unlock()
	return this.client.Fork()
}

// Expiration time for attributes fetched now
func (this *FileSystem) expiresAt() time.Time {
	return this.Clock.Now().Add(this.AttrTTL)
}
