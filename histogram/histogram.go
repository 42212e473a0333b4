// Package histogram is a peripheral collector that tallies read/write
// activity at word granularity. It shares no state with package cache; a
// caller that wants word-level detail alongside line-level cache
// simulation feeds it the same (address, isWrite) tuples separately.
package histogram

import (
	"encoding/binary"
	"fmt"
	"os"
)

type entry struct {
	Reads  int64
	Writes int64
}

// Counter accumulates per-word read/write counts.
type Counter struct {
	bytesPerWordLog2 uint64
	hist             map[uint64]*entry
}

// NewCounter creates a Counter for a given word size in bytes, which must
// be a power of two.
func NewCounter(bytesPerWord uint64) (*Counter, error) {
	if bytesPerWord == 0 || bytesPerWord&(bytesPerWord-1) != 0 {
		return nil, fmt.Errorf("histogram: bytesPerWord (%d) must be a power of two", bytesPerWord)
	}

	var log2 uint64
	for n := bytesPerWord; n > 1; n >>= 1 {
		log2++
	}

	return &Counter{
		bytesPerWordLog2: log2,
		hist:             make(map[uint64]*entry),
	}, nil
}

// Access records one memory reference.
func (c *Counter) Access(address uint64, isWrite bool) {
	word := address >> c.bytesPerWordLog2

	e, ok := c.hist[word]
	if !ok {
		e = &entry{}
		c.hist[word] = e
	}

	if isWrite {
		e.Writes++
	} else {
		e.Reads++
	}
}

// ZeroCounters clears the histogram.
func (c *Counter) ZeroCounters() {
	c.hist = make(map[uint64]*entry)
}

// binaryRecord mirrors the on-disk layout used by package cache's miss
// log: word address, read count, write count, host byte order.
type binaryRecord struct {
	Word   uint64
	Reads  int64
	Writes int64
}

// DumpBinary writes the histogram to path in the same fixed-width record
// format as cache.SingleLevelCache.DumpBinary.
func (c *Counter) DumpBinary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("histogram: creating %s: %w", path, err)
	}
	defer f.Close()

	for word, e := range c.hist {
		rec := binaryRecord{Word: word, Reads: e.Reads, Writes: e.Writes}
		if err := binary.Write(f, binary.NativeEndian, rec); err != nil {
			return fmt.Errorf("histogram: writing entry for word %d: %w", word, err)
		}
	}

	return nil
}
