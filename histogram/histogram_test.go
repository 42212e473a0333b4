package histogram_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/histogram"
)

var _ = Describe("Counter", func() {
	It("rejects a non-power-of-two word size", func() {
		_, err := histogram.NewCounter(6)
		Expect(err).To(HaveOccurred())
	})

	It("dumps its histogram before and after ZeroCounters", func() {
		c, err := histogram.NewCounter(4)
		Expect(err).NotTo(HaveOccurred())

		c.Access(0, false)
		c.Access(1, false)
		c.Access(4, true)

		// no exported accessor beyond dumping; exercise ZeroCounters and
		// DumpBinary for smoke coverage instead of peeking internals.
		path := GinkgoT().TempDir() + "/hist.bin"
		Expect(c.DumpBinary(path)).To(Succeed())

		c.ZeroCounters()
		Expect(c.DumpBinary(path)).To(Succeed())
	})
})
