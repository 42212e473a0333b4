// Package netstat is the byte-counting network telemetry helper
// mentioned by the cache simulator's design as a peripheral collaborator:
// it tracks bytes sent to each destination rank and reports totals in the
// same text format the cache statistics use. It shares no state with
// package cache.
package netstat

import (
	"fmt"
	"io"
)

// Tracker accumulates bytes sent from one rank to each destination rank.
type Tracker struct {
	ourRank   int
	destBytes map[int]uint64
}

// NewTracker creates a Tracker with no rank assigned yet (rank -1, a
// placeholder to be filled in later via SetOurRank).
func NewTracker() *Tracker {
	return &Tracker{
		ourRank:   -1,
		destBytes: make(map[int]uint64),
	}
}

// NewTrackerForRank creates a Tracker for a known global rank.
func NewTrackerForRank(ourRank int) *Tracker {
	return &Tracker{
		ourRank:   ourRank,
		destBytes: make(map[int]uint64),
	}
}

// SetOurRank assigns (or reassigns) the global rank this Tracker reports
// as the sender.
func (t *Tracker) SetOurRank(ourRank int) {
	t.ourRank = ourRank
}

// SendTo records nBytes sent to destID.
func (t *Tracker) SendTo(destID int, nBytes uint64) {
	t.destBytes[destID] += nBytes
}

// ZeroCounters clears all recorded byte counts.
func (t *Tracker) ZeroCounters() {
	t.destBytes = make(map[int]uint64)
}

// DumpText writes the network statistics report to w: one line per
// destination rank, followed by the total bytes sent.
func (t *Tracker) DumpText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "------------ Network Statistics ------------\n"); err != nil {
		return err
	}

	var total uint64
	for dest, nBytes := range t.destBytes {
		if _, err := fmt.Fprintf(w, "%d => %d : %d bytes\n", t.ourRank, dest, nBytes); err != nil {
			return err
		}
		total += nBytes
	}

	_, err := fmt.Fprintf(w, "Total bytes sent by us (%d): %d\n", t.ourRank, total)

	return err
}
