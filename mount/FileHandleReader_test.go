// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"math/rand"
	"testing"

	"bazil.org/fuse"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Generates deterministic content of the given size
func pseudoRandomContent(size int, seed int64) []byte {
	content := make([]byte, size)
	rand.New(rand.NewSource(seed)).Read(content)
	return content
}

func (this *FileHandle) readAndVerify(t *testing.T, expected []byte, offset int64, size int) {
	resp := &fuse.ReadResponse{}
	require.NoError(t, this.Read(nil, &fuse.ReadRequest{Offset: offset, Size: size}, resp))
	end := offset + int64(size)
	if end > int64(len(expected)) {
		end = int64(len(expected))
	}
	if offset >= int64(len(expected)) {
		assert.Empty(t, resp.Data)
		return
	}
	assert.Equal(t, expected[offset:end], resp.Data)
}

// Testing reading of an empty file
func TestEmptyFile(t *testing.T) {
	cluster, fs, _ := newTestFileSystem(t, []string{"*"}, false)
	cluster.AddFile("/empty", []byte{})
	handle := openFile(t, lookupFile(t, fs, "empty"), fuse.OpenReadOnly)
	handle.readAndVerify(t, []byte{}, 0, 1024)
	assert.Empty(t, cluster.RequestsFor("namenode", webhdfs.OpOpen))
	assert.Nil(t, handle.Release(nil, nil))
}

// Testing reading of a small "HelloWorld!" file using few Read() operations
func TestSmallFileSequentialRead(t *testing.T) {
	cluster, fs, _ := newTestFileSystem(t, []string{"*"}, false)
	content := []byte("HelloWorld!")
	cluster.AddFile("/hello", content)
	handle := openFile(t, lookupFile(t, fs, "hello"), fuse.OpenReadOnly)

	handle.readAndVerify(t, content, 0, 5)
	handle.readAndVerify(t, content, 5, 6)
	handle.readAndVerify(t, content, 11, 1024)
	// the whole file fits into the first fragment
	assert.Equal(t, 1, len(cluster.RequestsFor("namenode", webhdfs.OpOpen)))
	assert.Equal(t, int64(1), handle.Reader.CacheHits)
	assert.Nil(t, handle.Release(nil, nil))
}

// Testing that short forward jumps read through the hole instead of seeking
func TestReadWithHoles(t *testing.T) {
	cluster, fs, _ := newTestFileSystem(t, []string{"*"}, false)
	content := pseudoRandomContent(5*BLOCKSIZE, 1)
	cluster.AddFile("/data", content)
	handle := openFile(t, lookupFile(t, fs, "data"), fuse.OpenReadOnly)

	handle.readAndVerify(t, content, 0, 4096)
	handle.readAndVerify(t, content, int64(BLOCKSIZE)+100, 4096)
	assert.Equal(t, int64(1), handle.Reader.Holes)
	assert.Equal(t, int64(0), handle.Reader.Seeks)

	handle.readAndVerify(t, content, int64(4*BLOCKSIZE)+1, 4096)
	assert.Equal(t, int64(1), handle.Reader.Seeks)

	// going back to the data of the least recent fragment is served from the buffer
	handle.readAndVerify(t, content, int64(BLOCKSIZE)+200, 100)
	assert.Equal(t, int64(1), handle.Reader.CacheHits)
	assert.Equal(t, 3, len(cluster.RequestsFor("namenode", webhdfs.OpOpen)))
}

// Testing random reads against the content
func TestRandomReads(t *testing.T) {
	cluster, fs, _ := newTestFileSystem(t, []string{"*"}, false)
	content := pseudoRandomContent(300000, 2)
	cluster.AddFile("/data", content)
	handle := openFile(t, lookupFile(t, fs, "data"), fuse.OpenReadOnly)
	random := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		offset := random.Int63n(int64(len(content)) + 1000)
		size := random.Intn(3*BLOCKSIZE) + 1
		handle.readAndVerify(t, content, offset, size)
	}
	assert.Nil(t, handle.Release(nil, nil))
}

// Testing that failures of the backend surface as errno
func TestReadError(t *testing.T) {
	cluster, fs, _ := newTestFileSystem(t, []string{"*"}, false)
	cluster.AddFile("/data", []byte("some data"))
	handle := openFile(t, lookupFile(t, fs, "data"), fuse.OpenReadOnly)
	cluster.Deny("/data")
	err := handle.Read(nil, &fuse.ReadRequest{Offset: 0, Size: 4}, &fuse.ReadResponse{})
	assert.Equal(t, eAccess, err)
}

func TestReadOnWriteOnlyHandle(t *testing.T) {
	cluster, fs, _ := newTestFileSystem(t, []string{"*"}, false)
	cluster.AddFile("/data", []byte("x"))
	handle := openFile(t, lookupFile(t, fs, "data"), fuse.OpenWriteOnly)
	err := handle.Read(nil, &fuse.ReadRequest{Offset: 0, Size: 4}, &fuse.ReadResponse{})
	assert.Equal(t, eBadf, err)
}

func TestFileFragment(t *testing.T) {
	fragment := &FileFragment{Offset: 100, Data: []byte("0123456789")}
	resp := &fuse.ReadResponse{}
	assert.True(t, fragment.ReadFromBuffer(105, 5, resp))
	assert.Equal(t, []byte("56789"), resp.Data)
	assert.False(t, fragment.ReadFromBuffer(105, 100, resp))
	assert.True(t, fragment.ReadAvailable(105, 100, resp))
	assert.Equal(t, []byte("56789"), resp.Data)
	assert.False(t, fragment.ReadFromBuffer(99, 2, resp))
	assert.False(t, fragment.ReadAvailable(110, 2, resp))
	fragment.Clear()
	assert.False(t, fragment.ReadAvailable(0, 1, resp))
}
