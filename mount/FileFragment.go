// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"io"

	"bazil.org/fuse"
)

// Represents a buffered (or cached) sequential fragment of the file
type FileFragment struct {
	Offset int64  // offset from the beginning of the file
	Data   []byte // data
}

// Reads into the file fragment buffer from the backend
func (this *FileFragment) ReadFromBackend(reader io.Reader, offset *int64, minBytesToRead int, maxBytesToRead int) error {
	this.Data = make([]byte, maxBytesToRead)
	totalRead := 0
	this.Offset = *offset
	var err error
	var nr int
	for totalRead < minBytesToRead {
		nr, err = reader.Read(this.Data[totalRead:maxBytesToRead])
		*offset += int64(nr)
		totalRead += nr
		if err != nil {
			break
		}
	}
	this.Data = this.Data[0:totalRead]
	return err
}

// Attempts to satisfy a read of size bytes at offset using buffered data, returns true if
// the whole range is buffered
func (this *FileFragment) ReadFromBuffer(offset int64, size int, resp *fuse.ReadResponse) bool {
	if offset+int64(size) > this.Offset+int64(len(this.Data)) {
		return false
	}
	return this.ReadAvailable(offset, size, resp)
}

// Responds with the buffered part of a read of size bytes at offset, returns false if
// offset isn't buffered
func (this *FileFragment) ReadAvailable(offset int64, size int, resp *fuse.ReadResponse) bool {
	// computing a [start,end) range within this frament
	start := offset - this.Offset
	if start < 0 || start >= int64(len(this.Data)) {
		return false
	}

	end := start + int64(size)
	if end > int64(len(this.Data)) {
		end = int64(len(this.Data))
	}
	resp.Data = this.Data[start:end]
	return true
}

// Drops buffered data
func (this *FileFragment) Clear() {
	this.Offset = 0
	this.Data = nil
}
