// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"os"
	"time"

	"bazil.org/fuse"
	webhdfs "github.com/microsoft/webhdfs-mount"
)

// Attributes common to the file/directory HDFS nodes
type Attrs struct {
	Inode   uint64
	Name    string
	Mode    os.FileMode
	Size    uint64
	Uid     uint32
	Gid     uint32
	Mtime   time.Time
	Atime   time.Time
	Expires time.Time // indicates when cached attribute information expires
}

// Builds attributes from a remote status. Owner and group are reported as the mounting user:
// HDFS principals have no local uid.
func AttrsFromStatus(st *webhdfs.FileStatus, name string, expires time.Time) Attrs {
	attrs := Attrs{
		Inode:   st.FileID,
		Name:    name,
		Mode:    st.Mode(),
		Mtime:   st.ModTime(),
		Atime:   time.UnixMilli(st.AccessTime),
		Uid:     uint32(os.Getuid()),
		Gid:     uint32(os.Getgid()),
		Expires: expires,
	}
	if !st.IsDir() && st.Length > 0 {
		attrs.Size = uint64(st.Length)
	}
	return attrs
}

// Converts Attrs datastructure into FUSE represnetation
func (this *Attrs) Attr(a *fuse.Attr) error {
	a.Inode = this.Inode
	a.Mode = this.Mode
	if (a.Mode & os.ModeDir) == 0 {
		a.Size = this.Size
	}
	a.Uid = this.Uid
	a.Gid = this.Gid
	a.Mtime = this.Mtime
	a.Ctime = this.Mtime
	a.Atime = this.Atime
	return nil
}

// returns fuse.DirentType for this attributes (DT_Dir or DT_File)
func (this *Attrs) FuseNodeType() fuse.DirentType {
	if (this.Mode & os.ModeDir) == os.ModeDir {
		return fuse.DT_Dir
	}
	return fuse.DT_File
}
