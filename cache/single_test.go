package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
)

var _ = Describe("SingleLevelCache", func() {
	It("rejects n_lines not divisible by ways", func() {
		_, err := cache.NewSingleLevelCache(100, 8, 1, 64, false)
		Expect(err).To(HaveOccurred())

		var cfgErr *cache.ConfigurationError
		Expect(err).To(BeAssignableToTypeOf(cfgErr))
	})

	It("rejects n_lines not divisible by banks", func() {
		_, err := cache.NewSingleLevelCache(128, 8, 3, 64, false)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a non-power-of-two sets-per-bank", func() {
		// n_lines/banks/ways = 96/1/8 = 12, not a power of two.
		_, err := cache.NewSingleLevelCache(96, 8, 1, 64, false)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a non-power-of-two line size", func() {
		_, err := cache.NewSingleLevelCache(128, 8, 1, 48, false)
		Expect(err).To(HaveOccurred())
	})

	Describe("a single-set degenerate configuration", func() {
		var c *cache.SingleLevelCache

		BeforeEach(func() {
			var err error
			c, err = cache.NewSingleLevelCache(8, 8, 1, 64, false)
			Expect(err).NotTo(HaveOccurred())
		})

		It("behaves as a pure LRU queue of length ways", func() {
			for i := uint64(0); i < 8; i++ {
				c.Access(i*64, false)
			}

			c.ComputeStats()
			stats := c.Stats()
			Expect(stats.ReadMisses).To(Equal(uint64(8)))
			Expect(stats.Evictions).To(Equal(uint64(0)))

			// the 9th distinct line evicts the LRU incumbent (line 0)
			c.Access(8*64, false)
			c.ComputeStats()
			stats = c.Stats()
			Expect(stats.Evictions).To(Equal(uint64(1)))

			// line 0 was evicted, so re-touching it misses again
			c.Access(0, false)
			c.ComputeStats()
			stats = c.Stats()
			Expect(stats.ReadMisses).To(Equal(uint64(10)))
		})
	})

	Describe("allocate-on-write-only mode", func() {
		It("never admits on a pure-read workload (scenario 5)", func() {
			c, err := cache.NewSingleLevelCache(1048576, 8, 1, 64, true)
			Expect(err).NotTo(HaveOccurred())

			for pass := 0; pass < 2; pass++ {
				for i := uint64(0); i < 1048576; i++ {
					c.Access(i*64, false)
				}
			}

			c.ComputeStats()
			stats := c.Stats()
			Expect(stats.ReadHits).To(Equal(uint64(0)))
			Expect(stats.Evictions).To(Equal(uint64(0)))
		})

		It("admits only on writes across a R/W/R/W replay (scenario 6)", func() {
			c, err := cache.NewSingleLevelCache(1048576, 8, 1, 64, true)
			Expect(err).NotTo(HaveOccurred())

			const nLines = uint64(1048576)

			replay := func(isWrite bool) {
				for i := uint64(0); i < nLines; i++ {
					c.Access(i*64, isWrite)
				}
			}

			replay(false) // pass 1: reads, all miss, none admitted
			replay(true)  // pass 2: writes, all miss, all admitted
			replay(false) // pass 3: reads, all hit (still resident)
			replay(true)  // pass 4: writes, all hit

			c.ComputeStats()
			stats := c.Stats()
			Expect(stats.ReadMisses).To(Equal(nLines))
			Expect(stats.WriteMisses).To(Equal(nLines))
			Expect(stats.ReadHits).To(Equal(nLines))
			Expect(stats.WriteHits).To(Equal(nLines))
		})
	})

	It("is deterministic across two fresh instances given the same trace", func() {
		trace := func(c *cache.SingleLevelCache) {
			for i := uint64(0); i < 5000; i++ {
				c.Access((i*37)%2000*64, i%3 == 0)
			}
		}

		c1, _ := cache.NewSingleLevelCache(1024, 4, 4, 64, false)
		c2, _ := cache.NewSingleLevelCache(1024, 4, 4, 64, false)

		trace(c1)
		trace(c2)

		c1.ComputeStats()
		c2.ComputeStats()

		Expect(c1.Stats()).To(Equal(c2.Stats()))
	})

	It("leaves computed stats unchanged across a second ComputeStats call", func() {
		c, _ := cache.NewSingleLevelCache(128, 8, 1, 64, false)
		for i := uint64(0); i < 50; i++ {
			c.Access(i*64, i%2 == 0)
		}

		c.ComputeStats()
		first := c.Stats()

		c.ComputeStats()
		second := c.Stats()

		Expect(second).To(Equal(first))
	})

	It("clears counters and the miss log on ZeroCounters without touching contents", func() {
		c, _ := cache.NewSingleLevelCache(128, 8, 1, 64, false)
		c.Access(0, false)
		c.Access(0, false) // now a hit

		c.ZeroCounters()
		c.ComputeStats()
		stats := c.Stats()
		Expect(stats.ReadHits).To(Equal(uint64(0)))
		Expect(stats.ReadMisses).To(Equal(uint64(0)))

		// line 0 is still resident: this access hits, not misses
		c.Access(0, false)
		c.ComputeStats()
		stats = c.Stats()
		Expect(stats.ReadHits).To(Equal(uint64(1)))
		Expect(stats.ReadMisses).To(Equal(uint64(0)))
	})
})
