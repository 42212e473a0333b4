// Package progress tracks trace-replay progress for display by the
// monitor package's HTTP server.
package progress

import "sync"

// Bar tracks progress of one unit of work, e.g. replaying one trace
// file, towards a known total number of accesses.
type Bar struct {
	mu sync.Mutex

	Name       string `json:"name"`
	Total      uint64 `json:"total"`
	Finished   uint64 `json:"finished"`
	InProgress uint64 `json:"in_progress"`
}

// IncrementInProgress records amount more accesses as started but not
// yet counted into the cache's statistics.
func (b *Bar) IncrementInProgress(amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.InProgress += amount
}

// IncrementFinished records amount more accesses as fully processed.
func (b *Bar) IncrementFinished(amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Finished += amount
}

// MoveInProgressToFinished moves amount accesses from in-progress to
// finished, for callers that track the two separately across a batch
// boundary.
func (b *Bar) MoveInProgressToFinished(amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount > b.InProgress {
		amount = b.InProgress
	}

	b.InProgress -= amount
	b.Finished += amount
}
