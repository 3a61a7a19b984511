// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Stream which reports its position without a round-trip, such as webhdfs.ReadHdfsFile
// Concurrency: not thread safe: at most one request at a time
type PositionedReader interface {
	io.ReadSeeker
	Position() int64
}

// Interface to open a file for reading
type ReaderFactory interface {
	OpenRead() (PositionedReader, error) // Opens an independent stream positioned at 0
}

// RandomAccessReader implments io.ReaderAt providing efficient concurrent random access
// to a remote file. Concurrency is achieved by pooling streams, each owning its own harness.
// In order to optimize sequential read scenario of a fragment of the file, pool data structure
// is organized as a map keyed by the seek position, so sequential read of adjacent file chunks
// with high probability goes to the same stream
type RandomAccessReader struct {
	File       ReaderFactory              // Interface to open a file
	Pool       map[int64]PositionedReader // Pool of streams keyed by the seek position
	PoolLock   sync.Mutex                 // Exclusive lock for the Pool
	MaxReaders int                        // Maximum number of idle streams in the pool
	Stats      *ReaderStats               // optional
}

var _ io.ReaderAt = (*RandomAccessReader)(nil) // ensure RandomAccessReader implements io.ReaderAt

func NewRandomAccessReader(file ReaderFactory, stats *ReaderStats) *RandomAccessReader {
	return &RandomAccessReader{
		File:       file,
		Pool:       map[int64]PositionedReader{},
		MaxReaders: 256,
		Stats:      stats}
}

// Reads len(buffer) bytes at offset, io.EOF is returned if the file ends before that
func (this *RandomAccessReader) ReadAt(buffer []byte, offset int64) (int, error) {
	reader, err := this.getReaderFromPoolOrCreateNew(offset)
	if err != nil {
		return 0, err
	}
	this.Stats.IncrementRead()
	if reader.Position() != offset {
		this.Stats.IncrementSeek()
		pos, err := reader.Seek(offset, io.SeekStart)
		if err != nil {
			return 0, err
		}
		if pos != offset {
			// past the end of file
			this.returnReaderToPool(reader)
			return 0, io.EOF
		}
	}
	nr, err := io.ReadFull(reader, buffer)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if err == nil || err == io.EOF {
		this.returnReaderToPool(reader)
	}
	return nr, err
}

// Drops all the pooled streams
func (this *RandomAccessReader) Close() error {
	this.PoolLock.Lock()
	defer this.PoolLock.Unlock()
	this.Pool = nil
	return nil
}

// Retrieves an optimal reader from pool or creates new one
func (this *RandomAccessReader) getReaderFromPoolOrCreateNew(offset int64) (PositionedReader, error) {
	reader, err := this.getReaderFromPool(offset)
	if err != nil || reader != nil {
		return reader, err
	}
	// Opening new stream
	return this.File.OpenRead()
}

// Retrieves an optimal reader from pool or nil if pool is empty
func (this *RandomAccessReader) getReaderFromPool(offset int64) (PositionedReader, error) {
	this.PoolLock.Lock()
	defer this.PoolLock.Unlock()
	if this.Pool == nil {
		return nil, errors.New("RandomAccessReader closed")
	}
	if len(this.Pool) == 0 {
		// Empty pool
		return nil, nil
	}
	reader, ok := this.Pool[offset]
	var key int64
	if ok {
		// Found perfect reader
		key = offset
	} else {
		// Take a random reader from the map
		// Note: go randomizes map enumeration, so we're leveraging it here
		for k, v := range this.Pool {
			key = k
			reader = v
			break
		}
	}
	// removing from pool before returning
	delete(this.Pool, key)
	return reader, nil
}

// Returns idle reader back to the pool
func (this *RandomAccessReader) returnReaderToPool(reader PositionedReader) {
	this.PoolLock.Lock()
	defer this.PoolLock.Unlock()
	// If pool was destroyed or is full then dropping current reader w/o returning
	if this.Pool == nil || len(this.Pool) >= this.MaxReaders {
		return
	}
	// A reader at the same position is replaced
	this.Pool[reader.Position()] = reader
}
