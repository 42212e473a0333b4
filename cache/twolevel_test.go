package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
)

var _ = Describe("TwoLevelCache", func() {
	It("rejects a malformed L1 configuration", func() {
		_, err := cache.NewTwoLevelCache(100, 8, 1048576, 8, 64, 64)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a malformed L2 configuration", func() {
		_, err := cache.NewTwoLevelCache(512, 8, 1048500, 8, 64, 64)
		Expect(err).To(HaveOccurred())
	})

	It("handles sub-line reads (scenario 1)", func() {
		c, err := cache.NewTwoLevelCache(512, 8, 1048576, 8, 64, 64)
		Expect(err).NotTo(HaveOccurred())

		for i := uint64(0); i < 128; i++ {
			c.Access(i, false)
		}

		c.ComputeStats()
		s := c.Stats()
		Expect(s.L1ReadHits).To(Equal(uint64(126)))
		Expect(s.L2ReadMiss).To(Equal(uint64(2)))
		Expect(s.L2ReadHits).To(Equal(uint64(0)))
		Expect(s.L1WriteHits).To(Equal(uint64(0)))
		Expect(s.L2WriteHits).To(Equal(uint64(0)))
		Expect(s.L2WriteMiss).To(Equal(uint64(0)))
	})

	It("replays exactly at L2 capacity (scenario 2)", func() {
		c, err := cache.NewTwoLevelCache(512, 8, 1048576, 8, 8, 64)
		Expect(err).NotTo(HaveOccurred())

		const nLines = uint64(1048576)

		for i := uint64(0); i < nLines; i++ {
			c.Access(i*64, false)
		}
		for i := uint64(0); i < nLines; i++ {
			c.Access(i*64, false)
		}

		c.ComputeStats()
		s := c.Stats()
		Expect(s.L1ReadHits).To(Equal(uint64(0)))
		Expect(s.L2ReadMiss).To(Equal(nLines))
		Expect(s.L2ReadHits).To(Equal(nLines))
	})

	It("oversubscribes L2 across two full-range passes (scenario 3)", func() {
		c, err := cache.NewTwoLevelCache(512, 8, 1048576, 8, 64, 64)
		Expect(err).NotTo(HaveOccurred())

		const nLines = uint64(2097152)

		for pass := 0; pass < 2; pass++ {
			for i := uint64(0); i < nLines; i++ {
				c.Access(i*64, false)
			}
		}

		c.ComputeStats()
		s := c.Stats()
		Expect(s.L1ReadHits).To(Equal(uint64(0)))
		Expect(s.L2ReadHits).To(Equal(uint64(0)))
		Expect(s.L2ReadMiss).To(Equal(uint64(4194304)))
	})

	It("alternates reads and writes over a small range (scenario 4)", func() {
		c, err := cache.NewTwoLevelCache(512, 8, 1048576, 8, 64, 64)
		Expect(err).NotTo(HaveOccurred())

		for pass := 0; pass < 2; pass++ {
			for i := uint64(0); i < 512; i++ {
				c.Access(i*64, i%2 == 1)
			}
		}

		c.ComputeStats()
		s := c.Stats()
		Expect(s.L1ReadHits).To(Equal(uint64(256)))
		Expect(s.L1WriteHits).To(Equal(uint64(256)))
		Expect(s.L2ReadMiss).To(Equal(uint64(256)))
		Expect(s.L2WriteMiss).To(Equal(uint64(256)))
	})

	It("is deterministic across two fresh instances given the same trace", func() {
		trace := func(c *cache.TwoLevelCache) {
			for i := uint64(0); i < 10000; i++ {
				c.Access((i*97)%4000*64, i%5 == 0)
			}
		}

		c1, _ := cache.NewTwoLevelCache(512, 8, 8192, 8, 8, 64)
		c2, _ := cache.NewTwoLevelCache(512, 8, 8192, 8, 8, 64)

		trace(c1)
		trace(c2)

		c1.ComputeStats()
		c2.ComputeStats()

		Expect(c1.Stats()).To(Equal(c2.Stats()))
	})

	It("keeps every access advancing exactly one of the six counters", func() {
		c, _ := cache.NewTwoLevelCache(64, 4, 1024, 4, 4, 64)

		var total uint64
		for i := uint64(0); i < 3000; i++ {
			c.Access((i*13)%500*64, i%4 == 0)
			total++
		}

		c.ComputeStats()
		s := c.Stats()
		Expect(s.NumReads + s.NumWrites).To(Equal(total))
	})
})
