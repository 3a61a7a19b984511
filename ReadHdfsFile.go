// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"io"
)

// ReadHdfsFile exposes a remote file as io.ReadSeeker on top of stateless range requests.
//
// The length is captured once, when the file is opened, and never refreshed: if the file
// grows or shrinks afterwards, seeks are still checked against the old length.
// Positions and lengths are int64, as in the protocol.
// Concurrency: not thread safe: at most one request at a time
type ReadHdfsFile struct {
	cx   *SyncHdfsClient // harness, possibly shared with other streams on the same goroutine
	path string          // remote path
	len  int64           // length snapshot taken at open time
	pos  int64           // current position, 0 <= pos
}

var _ io.ReadSeeker = (*ReadHdfsFile)(nil) // ensure ReadHdfsFile implements io.ReadSeeker

// Opens the file at path for reading (issues one Stat to capture the length)
func OpenReadHdfsFile(cx *SyncHdfsClient, path string) (*ReadHdfsFile, error) {
	stat, err := cx.Stat(path)
	if err != nil {
		return nil, err
	}
	return ResumeReadHdfsFile(cx, path, 0, stat.FileStatus.Length), nil
}

// Rebuilds a stream from the parts returned by IntoParts, without touching the network
func ResumeReadHdfsFile(cx *SyncHdfsClient, path string, pos int64, length int64) *ReadHdfsFile {
	return &ReadHdfsFile{cx: cx, path: path, len: length, pos: pos}
}

// File length in bytes, as captured at open time
func (this *ReadHdfsFile) Len() uint64 {
	return uint64(this.len)
}

// Current read position
func (this *ReadHdfsFile) Position() int64 {
	return this.pos
}

// Remote path
func (this *ReadHdfsFile) Path() string {
	return this.path
}

// IntoParts splits the stream into (harness, path, pos, len) for handing a partially
// consumed stream to another component. The stream must not be used afterwards.
func (this *ReadHdfsFile) IntoParts() (*SyncHdfsClient, string, int64, int64) {
	cx, path, pos, length := this.cx, this.path, this.pos, this.len
	this.cx = nil
	return cx, path, pos, length
}

// Read issues a single range request for [pos, pos+len(buffer)) and copies the chunks of
// the response into buffer until it is full or the response ends. Returns io.EOF when the
// response ended before any byte was copied. On error, bytes copied so far remain valid
// and are counted in the returned n.
func (this *ReadHdfsFile) Read(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}
	// len(buffer) always fits the int64 range length
	stream := this.cx.acx.Open(this.path, OpenOptions{Offset: this.pos, Length: int64(len(buffer))})
	defer stream.Close()

	nr := 0
	for nr < len(buffer) {
		chunk, err := execute(this.cx, "read", this.path, stream.Next)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nr, err
		}
		consumed := copy(buffer[nr:], chunk)
		nr += consumed
		this.pos += int64(consumed)
	}
	if nr == 0 {
		return 0, io.EOF
	}
	return nr, nil
}

// Seek sets the position for the next Read. It never touches the network.
//
// Seeking before the start (or overflowing int64) fails with an InvalidInput error and
// leaves the position unchanged. Seeking past the end of file does not fail either, but it
// does not move the position: the stream stays where it was. Only targets within
// [0, Len()] move the position.
func (this *ReadHdfsFile) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		if offset == 0 {
			this.pos = 0
			return this.pos, nil
		}
		base = 0
	case io.SeekCurrent:
		if offset == 0 {
			return this.pos, nil
		}
		base = this.pos
	case io.SeekEnd:
		if offset == 0 {
			this.pos = this.len
			return this.pos, nil
		}
		base = this.len
	default:
		return 0, newError(KindInvalidInput, "seek", this.path, "invalid whence %d", whence)
	}

	pos, ok := seekTarget(base, offset, this.pos, this.len)
	if !ok {
		return 0, newError(KindInvalidInput, "seek", this.path, "attempt to seek before start")
	}
	this.pos = pos
	return this.pos, nil
}

// seekTarget computes base+offset with overflow detection, ok is false when the sum overflows
// or is negative. Targets past length resolve to current (no move).
func seekTarget(base int64, offset int64, current int64, length int64) (int64, bool) {
	candidate := base + offset
	overflow := (offset > 0 && candidate < base) || (offset < 0 && candidate > base)
	if overflow || candidate < 0 {
		return 0, false
	}
	if candidate <= length {
		return candidate, true
	}
	return current, true
}
