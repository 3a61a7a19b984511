// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"archive/zip"
	"os"
	"sort"
	"strings"
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"golang.org/x/net/context"
)

// Suffix of the virtual directory exposing the contents of a zip archive, "a.zip" is expanded as "a.zip@"
const ZipDirSuffix = "@"

// Encapsulates state and operations for a directory inside a zip file on HDFS file system
type ZipDir struct {
	Attrs            Attrs               // Attributes of the directory
	ZipContainerFile *File               // Zip container file node
	IsRoot           bool                // true if this ZipDir represents archive root
	SubDirs          map[string]*ZipDir  // Sub-directories (immediate children)
	Files            map[string]*ZipFile // Files in this directory
	ReadArchiveLock  sync.Mutex          // Used when reading the archive for root zip node (IsRoot==true)
	Archive          *RandomAccessReader // Random access to the container, root only
}

// Verify that *ZipDir implements necesary FUSE interfaces
var _ fs.Node = (*ZipDir)(nil)
var _ fs.HandleReadDirAller = (*ZipDir)(nil)
var _ fs.NodeStringLookuper = (*ZipDir)(nil)

// Creates root dir node for zip archive
func NewZipRootDir(zipContainerFile *File, attrs Attrs) *ZipDir {
	return &ZipDir{
		IsRoot:           true,
		ZipContainerFile: zipContainerFile,
		Attrs:            attrs}
}

// Responds on FUSE request to get directory attributes
func (this *ZipDir) Attr(ctx context.Context, a *fuse.Attr) error {
	return this.Attrs.Attr(a)
}

// Reads a zip file (once) and pre-creates all the directory/file structure in memory
// This happens under lock. Upon exit from a lock the resulting directory/file structure
// is immutable and safe to access from multiple threads.
func (this *ZipDir) ReadArchive() error {
	this.ReadArchiveLock.Lock()
	defer this.ReadArchiveLock.Unlock()
	if this.SubDirs != nil {
		// Archive nodes have been already pre-created, nothing to do
		return nil
	}

	// Opening zip file (reading metadata of all archived files)
	containerPath := this.ZipContainerFile.AbsolutePath()
	var attr fuse.Attr
	if err := this.ZipContainerFile.Attr(nil, &attr); err != nil {
		return err
	}
	archive := NewRandomAccessReader(this.ZipContainerFile, &ReaderStats{})
	zipArchiveReader, err := zip.NewReader(archive, int64(attr.Size))
	if err != nil {
		webhdfs.Log.WithField("path", containerPath).WithError(err).Warning("Opening zip file failed")
		if err == zip.ErrFormat {
			return eInval
		}
		return errno(err)
	}
	webhdfs.Log.WithField("path", containerPath).Info("Opened zip file")
	this.Archive = archive

	subDirs := make(map[string]*ZipDir)
	files := make(map[string]*ZipFile)
	root := &ZipDir{SubDirs: subDirs, Files: files}
	dirAttrs := Attrs{Mode: os.ModeDir | 0555, Uid: this.Attrs.Uid, Gid: this.Attrs.Gid, Mtime: this.Attrs.Mtime, Expires: this.Attrs.Expires}

	// Enumerating all files inside zip archive and pre-creating a tree of ZipDir and ZipFile structures
	for _, zipFile := range zipArchiveReader.File {
		dir := root
		// Split path to components
		components := strings.Split(zipFile.Name, "/")
		// Enumerate path components from left to right, creating ZipDir tree as we go
		for i, name := range components {
			if name == "" {
				continue
			}
			if subDir, ok := dir.SubDirs[name]; ok {
				// Going inside subDir
				dir = subDir
				continue
			}
			if i == len(components)-1 {
				// Current path component is the last component of the path:
				// Creating ZipFile
				dir.Files[name] = &ZipFile{
					zipFile: zipFile,
					Attrs:   zipFileAttrs(zipFile, name, dirAttrs)}
				continue
			}
			// Current path component is a directory, which we haven't previously observed
			attrs := dirAttrs
			attrs.Name = name
			subDir := &ZipDir{
				ZipContainerFile: this.ZipContainerFile,
				SubDirs:          make(map[string]*ZipDir),
				Files:            make(map[string]*ZipFile),
				Attrs:            attrs}
			dir.SubDirs[name] = subDir
			dir = subDir
		}
	}
	this.Files = files
	this.SubDirs = subDirs
	return nil
}

// Attributes of an archived file. Archived files are read-only.
func zipFileAttrs(zipFile *zip.File, name string, dirAttrs Attrs) Attrs {
	perm := zipFile.Mode().Perm() &^ 0222
	if perm == 0 {
		perm = 0444
	}
	return Attrs{
		Name:    name,
		Mode:    perm,
		Size:    zipFile.UncompressedSize64,
		Uid:     dirAttrs.Uid,
		Gid:     dirAttrs.Gid,
		Mtime:   zipFile.Modified,
		Atime:   zipFile.Modified,
		Expires: dirAttrs.Expires,
	}
}

// Responds on FUSE request to list directory contents
func (this *ZipDir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	if err := this.readArchiveIfRoot(); err != nil {
		return nil, err
	}

	entries := make([]fuse.Dirent, 0, len(this.SubDirs)+len(this.Files))
	// Creating Dirent structures as required by FUSE for subdirs and files
	for name := range this.SubDirs {
		entries = append(entries, fuse.Dirent{Name: name, Type: fuse.DT_Dir})
	}
	for name := range this.Files {
		entries = append(entries, fuse.Dirent{Name: name, Type: fuse.DT_File})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Responds on FUSE request to look up a file or directory by name
func (this *ZipDir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	if err := this.readArchiveIfRoot(); err != nil {
		return nil, err
	}

	if subDir, ok := this.SubDirs[name]; ok {
		return subDir, nil
	}

	if file, ok := this.Files[name]; ok {
		return file, nil
	}

	return nil, fuse.ENOENT
}

func (this *ZipDir) readArchiveIfRoot() error {
	if !this.IsRoot {
		return nil
	}
	return this.ReadArchive()
}
