// Package cache implements set-associative, write-allocate (or
// write-only-allocate) LRU cache simulation for externally supplied
// memory-access traces. It reports hit/miss counts and per-line miss
// histograms; it does not execute programs or move data.
package cache

import (
	"log"

	"github.com/sarchlab/cachesim/cache/internal/lru"
)

// missRecord tallies the read misses and eviction ("write-back") events
// logged against a single line address.
type missRecord struct {
	Reads  int64
	Writes int64
}

// SingleLevelCache is one level of set-associative LRU storage,
// partitioned into independent banks. In allocate-on-write-only mode it
// behaves as a write buffer: read misses are never admitted.
type SingleLevelCache struct {
	nLines              uint64
	ways                uint64
	banks               uint64
	setsPerBank         uint64
	lineBytes           uint64
	lineBytesLog2       uint64
	allocateOnWriteOnly bool

	bankSets [][]*lru.Set

	stats   Stats
	missLog map[uint64]*missRecord
}

// NewSingleLevelCache constructs a SingleLevelCache. nLines must be
// divisible by both ways and banks, (nLines/banks)/ways must be a power
// of two, and lineBytes must be a power of two; any violation returns a
// *ConfigurationError and no cache.
func NewSingleLevelCache(
	nLines, ways, banks, lineBytes uint64,
	allocateOnWriteOnly bool,
) (*SingleLevelCache, error) {
	if err := validateSingleLevelConfig(nLines, ways, banks, lineBytes); err != nil {
		return nil, err
	}

	setsPerBank := (nLines / banks) / ways

	c := &SingleLevelCache{
		nLines:              nLines,
		ways:                ways,
		banks:               banks,
		setsPerBank:         setsPerBank,
		lineBytes:           lineBytes,
		lineBytesLog2:       log2(lineBytes),
		allocateOnWriteOnly: allocateOnWriteOnly,
		missLog:             make(map[uint64]*missRecord),
	}

	c.bankSets = make([][]*lru.Set, banks)
	for b := range c.bankSets {
		sets := make([]*lru.Set, setsPerBank)
		for i := range sets {
			sets[i] = lru.NewSet(int(ways))
		}
		c.bankSets[b] = sets
	}

	log.Printf("cache: initialized %d bank(s) x %d set(s) x %d way(s)",
		banks, setsPerBank, ways)

	return c, nil
}

func log2(n uint64) uint64 {
	var l uint64
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// Access mutates the cache state and counters for one memory reference.
// It is infallible: any internal inconsistency would be an implementation
// bug, not a data-driven failure.
func (c *SingleLevelCache) Access(address uint64, isWrite bool) {
	line := address >> c.lineBytesLog2
	setIdx := line & (c.setsPerBank - 1)
	bankIdx := fastHash(line, c.banks)

	set := c.bankSets[bankIdx][setIdx]

	shouldAdmit := !c.allocateOnWriteOnly || isWrite
	hit, evicted, victim := set.Touch(line, shouldAdmit)

	if evicted {
		c.stats.Evictions++
		c.logMiss(victim, true)
	}

	if !hit && !isWrite {
		c.logMiss(line, false)
	}

	switch {
	case !isWrite && hit:
		c.stats.ReadHits++
	case !isWrite && !hit:
		c.stats.ReadMisses++
	case isWrite && hit:
		c.stats.WriteHits++
	default:
		c.stats.WriteMisses++
	}
}

// logMiss records a read-miss or eviction event for line in the miss
// histogram. An eviction is logged in the write channel: it represents a
// line that must be written back to the next level, conflating
// dirty-victim accounting with true write-miss events by original design.
func (c *SingleLevelCache) logMiss(line uint64, isEvictionOrWrite bool) {
	rec, ok := c.missLog[line]
	if !ok {
		rec = &missRecord{}
		c.missLog[line] = rec
	}

	if isEvictionOrWrite {
		rec.Writes++
	} else {
		rec.Reads++
	}
}

// ZeroCounters resets counters and clears the miss log, leaving set
// contents untouched. Used to terminate a warm-up phase.
func (c *SingleLevelCache) ZeroCounters() {
	c.stats.zero()
	c.missLog = make(map[uint64]*missRecord)
}

// ComputeStats fills the derived fields of the stats snapshot. It is
// idempotent.
func (c *SingleLevelCache) ComputeStats() {
	c.stats.compute()
}

// Stats returns a snapshot of the current counters.
func (c *SingleLevelCache) Stats() Stats {
	return c.stats
}
