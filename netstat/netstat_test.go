package netstat_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/netstat"
)

var _ = Describe("Tracker", func() {
	It("accumulates bytes per destination and totals them", func() {
		tr := netstat.NewTrackerForRank(3)
		tr.SendTo(0, 128)
		tr.SendTo(0, 32)
		tr.SendTo(1, 64)

		var buf strings.Builder
		Expect(tr.DumpText(&buf)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("3 => 0 : 160 bytes"))
		Expect(out).To(ContainSubstring("3 => 1 : 64 bytes"))
		Expect(out).To(ContainSubstring("Total bytes sent by us (3): 224"))
	})

	It("resets on ZeroCounters", func() {
		tr := netstat.NewTracker()
		tr.SetOurRank(1)
		tr.SendTo(2, 100)
		tr.ZeroCounters()

		var buf strings.Builder
		Expect(tr.DumpText(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Total bytes sent by us (1): 0"))
	})
})
