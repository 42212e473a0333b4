package cache

import (
	"log"

	"github.com/sarchlab/cachesim/cache/internal/lru"
)

// TwoLevelCache composes an L1 (single bank, allocate-on-any-access) and
// a banked L2 into a strictly inclusive pair. Both levels are touched on
// every access unconditionally; hit classification follows the priority
// L1 hit, else L2 hit, else miss-to-memory.
//
// Because both levels admit unconditionally and are touched on every
// access, the set of lines resident in L1 is always a subset of the
// lines ever installed in L2 — but a line evicted from L2 while still
// resident in L1 is not invalidated there. This is specified behavior,
// not a bug: L1 is always consulted first, so the reported L2 hit rate
// can only be an overestimate relative to strict hardware inclusion,
// never an underestimate.
type TwoLevelCache struct {
	l1Sets        uint64
	l1LineLog2    uint64
	l1Ways        uint64

	l2SetsPerBank uint64
	l2Banks       uint64
	l2Ways        uint64

	l1 []*lru.Set
	l2 [][]*lru.Set

	stats TwoLevelStats
}

// NewTwoLevelCache constructs a TwoLevelCache. Both levels are subject to
// the same divisibility and power-of-two constraints as
// NewSingleLevelCache; L1 is always single-bank.
func NewTwoLevelCache(
	l1NLines, l1Ways, l2NLines, l2Ways, l2Banks, lineBytes uint64,
) (*TwoLevelCache, error) {
	if err := validateSingleLevelConfig(l1NLines, l1Ways, 1, lineBytes); err != nil {
		return nil, configErrorf("L1: %s", err)
	}

	if err := validateSingleLevelConfig(l2NLines, l2Ways, l2Banks, lineBytes); err != nil {
		return nil, configErrorf("L2: %s", err)
	}

	l1Sets := l1NLines / l1Ways
	l2SetsPerBank := (l2NLines / l2Banks) / l2Ways

	c := &TwoLevelCache{
		l1Sets:        l1Sets,
		l1LineLog2:    log2(lineBytes),
		l1Ways:        l1Ways,
		l2SetsPerBank: l2SetsPerBank,
		l2Banks:       l2Banks,
		l2Ways:        l2Ways,
	}

	c.l1 = make([]*lru.Set, l1Sets)
	for i := range c.l1 {
		c.l1[i] = lru.NewSet(int(l1Ways))
	}

	c.l2 = make([][]*lru.Set, l2Banks)
	for b := range c.l2 {
		sets := make([]*lru.Set, l2SetsPerBank)
		for i := range sets {
			sets[i] = lru.NewSet(int(l2Ways))
		}
		c.l2[b] = sets
	}

	log.Printf("cache: initialized L1 (%d set(s) x %d way(s)) / "+
		"L2 (%d bank(s) x %d set(s) x %d way(s))",
		l1Sets, l1Ways, l2Banks, l2SetsPerBank, l2Ways)

	return c, nil
}

// Access touches both levels unconditionally and classifies the access
// as an L1 hit, else an L2 hit, else a miss to memory.
func (c *TwoLevelCache) Access(address uint64, isWrite bool) {
	line := address >> c.l1LineLog2

	l1Set := line & (c.l1Sets - 1)
	l2Bank := fastHash(line, c.l2Banks)
	l2Set := line & (c.l2SetsPerBank - 1)

	l1Hit, _, _ := c.l1[l1Set].Touch(line, true)
	l2Hit, _, _ := c.l2[l2Bank][l2Set].Touch(line, true)

	if !isWrite {
		switch {
		case l1Hit:
			c.stats.L1ReadHits++
		case l2Hit:
			c.stats.L2ReadHits++
		default:
			c.stats.L2ReadMiss++
		}
		return
	}

	switch {
	case l1Hit:
		c.stats.L1WriteHits++
	case l2Hit:
		c.stats.L2WriteHits++
	default:
		c.stats.L2WriteMiss++
	}
}

// ZeroCounters resets counters, leaving set contents untouched.
func (c *TwoLevelCache) ZeroCounters() {
	c.stats.zero()
}

// ComputeStats fills the derived fields of the stats snapshot. It is
// idempotent.
func (c *TwoLevelCache) ComputeStats() {
	c.stats.compute()
}

// Stats returns a snapshot of the current counters.
func (c *TwoLevelCache) Stats() TwoLevelStats {
	return c.stats
}
