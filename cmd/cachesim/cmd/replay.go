package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/monitor"
	"github.com/sarchlab/cachesim/record"
)

var replayCmd = &cobra.Command{
	Use:   "replay [trace file]",
	Short: "Replay a memory-access trace through a single-level cache.",
	Long: `Replay reads a text trace of "ADDRESS R|W" lines (one access per ` +
		`line, address in decimal or 0x-prefixed hex) and reports the ` +
		`resulting cache statistics. Trace parsing is a thin convenience ` +
		`wrapper: cachesim's cache package itself never reads a trace file, ` +
		`it only accepts (address, isWrite) pairs.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replayLines       uint64
	replayWays        uint64
	replayBanks       uint64
	replayLineBytes   uint64
	replayWriteOnly   bool
	replayMonitor     bool
	replayMonitorOpen bool
	replayMonitorPort int
	replayDumpBinary  string
	replayRecordDB    string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Uint64Var(&replayLines, "lines", 512, "total cache lines")
	replayCmd.Flags().Uint64Var(&replayWays, "ways", 8, "ways per set")
	replayCmd.Flags().Uint64Var(&replayBanks, "banks", 1, "number of banks")
	replayCmd.Flags().Uint64Var(&replayLineBytes, "line-bytes", 64, "bytes per line")
	replayCmd.Flags().BoolVar(&replayWriteOnly, "write-only-allocate", false,
		"only allocate a line on a write (write-buffer mode)")
	replayCmd.Flags().BoolVar(&replayMonitor, "monitor", false,
		"serve live statistics over HTTP while replaying")
	replayCmd.Flags().BoolVar(&replayMonitorOpen, "monitor-open", false,
		"open the monitor's base URL in a browser once it starts")
	replayCmd.Flags().IntVar(&replayMonitorPort, "monitor-port", 0,
		"port for the monitor HTTP server (0 picks a random port)")
	replayCmd.Flags().StringVar(&replayDumpBinary, "dump-miss-log", "",
		"path to write the binary miss-log to, if non-empty")
	replayCmd.Flags().StringVar(&replayRecordDB, "record-sqlite", "",
		"SQLite database file (without extension) to record final stats into, if non-empty")
}

func runReplay(_ *cobra.Command, args []string) error {
	c, err := cache.NewSingleLevelCache(
		replayLines, replayWays, replayBanks, replayLineBytes, replayWriteOnly)
	if err != nil {
		return fmt.Errorf("cachesim: %w", err)
	}

	if replayMonitor {
		srv := monitor.NewServer().WithPortNumber(replayMonitorPort)
		srv.WithStats(func() any { return c.Stats() })

		if err := srv.Start(replayMonitorOpen); err != nil {
			return fmt.Errorf("cachesim: starting monitor: %w", err)
		}
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cachesim: opening trace: %w", err)
	}
	defer f.Close()

	n, err := replayTrace(f, c)
	if err != nil {
		return fmt.Errorf("cachesim: %w", err)
	}

	log.Printf("cachesim: replayed %d accesses", n)

	if err := c.DumpText(os.Stdout); err != nil {
		return fmt.Errorf("cachesim: %w", err)
	}

	if replayDumpBinary != "" {
		if err := c.DumpBinary(replayDumpBinary); err != nil {
			return fmt.Errorf("cachesim: %w", err)
		}
	}

	if replayRecordDB != "" {
		if err := recordStats(c.Stats(), replayRecordDB); err != nil {
			return fmt.Errorf("cachesim: %w", err)
		}
	}

	return nil
}

// recordStats writes one StatsEntry row, tagged with a fresh run ID, to
// a new SQLite database at dbPath+".sqlite3". It fails if that file
// already exists.
func recordStats(s cache.Stats, dbPath string) error {
	rec, err := record.NewSQLiteRecorder(dbPath)
	if err != nil {
		return fmt.Errorf("opening recorder: %w", err)
	}

	if err := rec.CreateTable("stats", record.StatsEntry{}); err != nil {
		return fmt.Errorf("creating stats table: %w", err)
	}

	entry := record.StatsEntry{
		RunID:       xid.New().String(),
		ReadHits:    int64(s.ReadHits),
		ReadMisses:  int64(s.ReadMisses),
		WriteHits:   int64(s.WriteHits),
		WriteMisses: int64(s.WriteMisses),
		Evictions:   int64(s.Evictions),
	}

	if err := rec.InsertData("stats", entry); err != nil {
		return fmt.Errorf("inserting stats row: %w", err)
	}

	return rec.Flush()
}

// replayTrace feeds every (address, isWrite) pair in f to c, returning
// the number of accesses processed.
func replayTrace(f *os.File, c *cache.SingleLevelCache) (uint64, error) {
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

func parseTraceLine(line string) (address uint64, isWrite bool, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, false, fmt.Errorf("expected \"ADDRESS R|W\", got %q", line)
	}

	address, err = strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), hexOrDecBase(fields[0]), 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing address: %w", err)
	}

	switch strings.ToUpper(fields[1]) {
	case "R":
		isWrite = false
	case "W":
		isWrite = true
	default:
		return 0, false, fmt.Errorf("access type must be R or W, got %q", fields[1])
	}

	return address, isWrite, nil
}

func hexOrDecBase(field string) int {
	if strings.HasPrefix(field, "0x") || strings.HasPrefix(field, "0X") {
		return 16
	}

	return 10
}
