package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/monitor"
)

var replayTwoLevelCmd = &cobra.Command{
	Use:   "replay-two-level [trace file]",
	Short: "Replay a memory-access trace through an L1/L2 cache hierarchy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplayTwoLevel,
}

var (
	tlL1Lines     uint64
	tlL1Ways      uint64
	tlL2Lines     uint64
	tlL2Ways      uint64
	tlL2Banks     uint64
	tlLineBytes   uint64
	tlMonitor     bool
	tlMonitorOpen bool
	tlMonitorPort int
)

func init() {
	rootCmd.AddCommand(replayTwoLevelCmd)

	replayTwoLevelCmd.Flags().Uint64Var(&tlL1Lines, "l1-lines", 512, "total L1 cache lines")
	replayTwoLevelCmd.Flags().Uint64Var(&tlL1Ways, "l1-ways", 8, "L1 ways per set")
	replayTwoLevelCmd.Flags().Uint64Var(&tlL2Lines, "l2-lines", 1048576, "total L2 cache lines")
	replayTwoLevelCmd.Flags().Uint64Var(&tlL2Ways, "l2-ways", 8, "L2 ways per set")
	replayTwoLevelCmd.Flags().Uint64Var(&tlL2Banks, "l2-banks", 64, "number of L2 banks")
	replayTwoLevelCmd.Flags().Uint64Var(&tlLineBytes, "line-bytes", 64, "bytes per line")
	replayTwoLevelCmd.Flags().BoolVar(&tlMonitor, "monitor", false,
		"serve live statistics over HTTP while replaying")
	replayTwoLevelCmd.Flags().BoolVar(&tlMonitorOpen, "monitor-open", false,
		"open the monitor's base URL in a browser once it starts")
	replayTwoLevelCmd.Flags().IntVar(&tlMonitorPort, "monitor-port", 0,
		"port for the monitor HTTP server (0 picks a random port)")
}

func runReplayTwoLevel(_ *cobra.Command, args []string) error {
	c, err := cache.NewTwoLevelCache(tlL1Lines, tlL1Ways, tlL2Lines, tlL2Ways, tlL2Banks, tlLineBytes)
	if err != nil {
		return fmt.Errorf("cachesim: %w", err)
	}

	if tlMonitor {
		srv := monitor.NewServer().WithPortNumber(tlMonitorPort)
		srv.WithStats(func() any { return c.Stats() })

		if err := srv.Start(tlMonitorOpen); err != nil {
			return fmt.Errorf("cachesim: starting monitor: %w", err)
		}
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cachesim: opening trace: %w", err)
	}
	defer f.Close()

	n, err := replayTraceTwoLevel(f, c)
	if err != nil {
		return fmt.Errorf("cachesim: %w", err)
	}

	log.Printf("cachesim: replayed %d accesses", n)

	return c.DumpText(os.Stdout)
}

func replayTraceTwoLevel(f *os.File, c *cache.TwoLevelCache) (uint64, error) {
	scanner := bufio.NewScanner(f)

	var n uint64

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		address, isWrite, err := parseTraceLine(line)
		if err != nil {
			return n, fmt.Errorf("parsing trace line %q: %w", line, err)
		}

		c.Access(address, isWrite)
		n++
	}

	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("reading trace: %w", err)
	}

	return n, nil
}
