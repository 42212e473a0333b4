package cache

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
)

// DumpText appends the text-stats report to w, computing stats first if
// ComputeStats has not already been called.
func (c *SingleLevelCache) DumpText(w io.Writer) error {
	if !c.stats.computed {
		c.ComputeStats()
	}

	s := c.stats

	_, err := fmt.Fprintf(w, "------------ Cache Statistics ------------\n"+
		"READ_HITS\t%d (%.2f%%)\n"+
		"WRITE_HITS\t%d (%.2f%%)\n"+
		"READ_MISSES\t%d (%.2f%%)\n"+
		"WRITE_MISSES\t%d (%.2f%%)\n"+
		"EVICTIONS\t%d (%.2f%%)\n",
		s.ReadHits, s.ReadHitPct*100,
		s.WriteHits, s.WriteHitPct*100,
		s.ReadMisses, s.ReadMissPct*100,
		s.WriteMisses, s.WriteMissPct*100,
		s.Evictions, s.EvictionPct*100,
	)

	return err
}

// DumpTextFile appends the text-stats report to the file at path,
// creating it if necessary.
func (c *SingleLevelCache) DumpTextFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cache: opening %s for text dump: %w", path, err)
	}
	defer f.Close()

	return c.DumpText(f)
}

// missLogRecord is the fixed-width on-disk layout of one miss-log entry:
// line address, read-miss count, eviction("write")-count, in host byte
// order. No header, no record count, no separator — readers consume
// until EOF.
type missLogRecord struct {
	Line   uint64
	Reads  int64
	Writes int64
}

// DumpBinary writes the miss log to path as a flat sequence of
// fixed-width records, iterated in the map's native (unordered) order.
func (c *SingleLevelCache) DumpBinary(path string) error {
	log.Printf("cache: dumping %d miss-log entries to %s", len(c.missLog), path)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cache: creating %s for binary dump: %w", path, err)
	}
	defer f.Close()

	for line, rec := range c.missLog {
		entry := missLogRecord{Line: line, Reads: rec.Reads, Writes: rec.Writes}
		if err := binary.Write(f, binary.NativeEndian, entry); err != nil {
			return fmt.Errorf("cache: writing miss-log entry for line %d: %w", line, err)
		}
	}

	return nil
}

// DumpText appends the two-level text-stats report to w.
func (c *TwoLevelCache) DumpText(w io.Writer) error {
	if !c.stats.computed {
		c.ComputeStats()
	}

	s := c.stats

	_, err := fmt.Fprintf(w, "------------ Cache Statistics ------------\n"+
		"L1:    RH: %d (%.2f%%)    WH: %d (%.2f%%)\n"+
		"L2:    RH: %d (%.2f%%)    WH: %d (%.2f%%)\n"+
		"Mem:   RH: %d (%.2f%%)    WH: %d (%.2f%%)\n",
		s.L1ReadHits, s.L1ReadHitPct*100, s.L1WriteHits, s.L1WriteHitPct*100,
		s.L2ReadHits, s.L2ReadHitPct*100, s.L2WriteHits, s.L2WriteHitPct*100,
		s.L2ReadMiss, s.L2ReadMissPct*100, s.L2WriteMiss, s.L2WriteMissPct*100,
	)

	return err
}

// DumpTextFile appends the two-level text-stats report to the file at
// path, creating it if necessary.
func (c *TwoLevelCache) DumpTextFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cache: opening %s for text dump: %w", path, err)
	}
	defer f.Close()

	return c.DumpText(f)
}
