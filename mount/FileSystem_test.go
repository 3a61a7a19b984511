// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"errors"
	"sync"
	"testing"
	"time"

	"bazil.org/fuse"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"github.com/microsoft/webhdfs-mount/internal/webhdfstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockClock reports a manually advanced time
type MockClock struct {
	mutex       sync.Mutex
	currentTime time.Time
}

var _ webhdfs.Clock = (*MockClock)(nil) // ensure MockClock implements Clock

func (this *MockClock) Now() time.Time {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.currentTime
}

func (this *MockClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- this.Now().Add(d)
	return ch
}

// Advances the clock
func (this *MockClock) NotifyTimeElapsed(d time.Duration) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.currentTime = this.currentTime.Add(d)
}

// Starts a fake cluster and a filesystem serving it
func newTestFileSystem(t *testing.T, allowedPrefixes []string, readOnly bool) (*webhdfstest.Cluster, *FileSystem, *MockClock) {
	cluster := webhdfstest.NewCluster()
	t.Cleanup(cluster.Close)
	cx, err := webhdfs.NewSyncHdfsClient(cluster.Entrypoint(), cluster.NatMap())
	require.NoError(t, err)
	mockClock := &MockClock{}
	fs, err := NewFileSystem(cx, "/tmp/x", allowedPrefixes, false, readOnly, mockClock)
	require.NoError(t, err)
	return cluster, fs, mockClock
}

func rootOf(t *testing.T, fs *FileSystem) *Dir {
	root, err := fs.Root()
	require.NoError(t, err)
	return root.(*Dir)
}

func TestNewFileSystemRequiresClient(t *testing.T) {
	_, err := NewFileSystem(nil, "/tmp/x", []string{"*"}, false, false, &MockClock{})
	assert.Error(t, err)
}

func TestIsPathAllowed(t *testing.T) {
	fs := &FileSystem{AllowedPrefixes: []string{"foo", "/bar/"}}
	assert.True(t, fs.IsPathAllowed("/"))
	assert.True(t, fs.IsPathAllowed("/foo"))
	assert.True(t, fs.IsPathAllowed("/foo/x"))
	assert.True(t, fs.IsPathAllowed("/bar/y"))
	assert.False(t, fs.IsPathAllowed("/foobar"))
	assert.False(t, fs.IsPathAllowed("/qux"))
	fs.AllowedPrefixes = []string{"*"}
	assert.True(t, fs.IsPathAllowed("/anything/at/all"))
}

func TestErrnoMapping(t *testing.T) {
	assert.Nil(t, errno(nil))
	assert.Equal(t, fuse.ENOENT, errno(&webhdfs.Error{Kind: webhdfs.KindNotFound}))
	assert.Equal(t, eAccess, errno(&webhdfs.Error{Kind: webhdfs.KindPermissionDenied}))
	assert.Equal(t, fuse.EEXIST, errno(&webhdfs.Error{Kind: webhdfs.KindAlreadyExists}))
	assert.Equal(t, eInval, errno(&webhdfs.Error{Kind: webhdfs.KindInvalidInput}))
	assert.Equal(t, eTimeout, errno(&webhdfs.Error{Kind: webhdfs.KindTimeout}))
	assert.Equal(t, fuse.EIO, errno(&webhdfs.Error{Kind: webhdfs.KindConnection}))
	assert.Equal(t, fuse.EIO, errno(errors.New("Injected failure")))
}

func TestRootAttributes(t *testing.T) {
	_, fs, _ := newTestFileSystem(t, []string{"*"}, false)
	var attr fuse.Attr
	require.NoError(t, rootOf(t, fs).Attr(nil, &attr))
	assert.True(t, attr.Mode.IsDir())
	assert.Equal(t, uint64(1), attr.Inode)
}
