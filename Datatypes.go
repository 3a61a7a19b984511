// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"os"
	"strconv"
	"time"
)

// WebHDFS operation names (value of the "op" query parameter)
const (
	OpListStatus    = "LISTSTATUS"
	OpGetFileStatus = "GETFILESTATUS"
	OpOpen          = "OPEN"
	OpCreate        = "CREATE"
	OpAppend        = "APPEND"
)

// File types reported in FileStatus.Type
const (
	TypeFile      = "FILE"
	TypeDirectory = "DIRECTORY"
	TypeSymlink   = "SYMLINK"
)

// FileStatus describes a file or directory.
// Lengths and offsets are signed 64-bit, as in the protocol (JVM has no unsigned types).
type FileStatus struct {
	AccessTime       int64  `json:"accessTime"`       // milliseconds since epoch
	BlockSize        int64  `json:"blockSize"`        // bytes
	ChildrenNum      int64  `json:"childrenNum"`      // number of entries, directories only
	FileID           uint64 `json:"fileId"`           // inode id
	Group            string `json:"group"`            // owning group
	Length           int64  `json:"length"`           // bytes, 0 for directories
	ModificationTime int64  `json:"modificationTime"` // milliseconds since epoch
	Owner            string `json:"owner"`            // owning user
	PathSuffix       string `json:"pathSuffix"`       // entry name when listed, empty for stat
	Permission       string `json:"permission"`       // octal, e.g. "755"
	Replication      int    `json:"replication"`      // replication factor, files only
	Type             string `json:"type"`             // FILE, DIRECTORY or SYMLINK
}

// IsDir returns true if the status describes a directory
func (this *FileStatus) IsDir() bool {
	return this.Type == TypeDirectory
}

// Mode converts the octal permission string and type into os.FileMode
func (this *FileStatus) Mode() os.FileMode {
	perm, err := strconv.ParseUint(this.Permission, 8, 32)
	if err != nil {
		perm = 0
	}
	mode := os.FileMode(perm) & os.ModePerm
	switch this.Type {
	case TypeDirectory:
		mode |= os.ModeDir
	case TypeSymlink:
		mode |= os.ModeSymlink
	}
	return mode
}

// ModTime returns modification time
func (this *FileStatus) ModTime() time.Time {
	return time.UnixMilli(this.ModificationTime)
}

// ListStatusResponse is the response of LISTSTATUS
type ListStatusResponse struct {
	FileStatuses struct {
		FileStatus []FileStatus `json:"FileStatus"`
	} `json:"FileStatuses"`
}

// FileStatusResponse is the response of GETFILESTATUS
type FileStatusResponse struct {
	FileStatus FileStatus `json:"FileStatus"`
}

// RemoteException is the error body returned by NameNode and DataNode
type RemoteException struct {
	Exception     string `json:"exception"`
	JavaClassName string `json:"javaClassName"`
	Message       string `json:"message"`
}

// RemoteExceptionResponse wraps RemoteException as it appears on the wire
type RemoteExceptionResponse struct {
	RemoteException RemoteException `json:"RemoteException"`
}

// OpenOptions select a byte range of a file. Zero Length means "to the end of file".
type OpenOptions struct {
	Offset     int64
	Length     int64
	BufferSize int32
}

// CreateOptions control file creation. Zero values leave the choice to the cluster.
type CreateOptions struct {
	Overwrite   bool
	BlockSize   int64
	Replication int16
	Permission  os.FileMode
	BufferSize  int32
}

// AppendOptions control append
type AppendOptions struct {
	BufferSize int32
}
