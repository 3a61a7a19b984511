// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package mount

import (
	"sync/atomic"
)

// Counts reads and seeks served by a RandomAccessReader, safe for concurrent use
type ReaderStats struct {
	ReadCount uint64
	SeekCount uint64
}

func (this *ReaderStats) IncrementRead() {
	if this != nil {
		atomic.AddUint64(&this.ReadCount, 1)
	}
}

func (this *ReaderStats) IncrementSeek() {
	if this != nil {
		atomic.AddUint64(&this.SeekCount, 1)
	}
}

// Returns a consistent copy of the counters
func (this *ReaderStats) Snapshot() ReaderStats {
	return ReaderStats{
		ReadCount: atomic.LoadUint64(&this.ReadCount),
		SeekCount: atomic.LoadUint64(&this.SeekCount),
	}
}
