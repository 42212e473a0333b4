// Package record persists cache-simulation results — periodic Stats
// snapshots and miss-log entries — into a queryable backend, so a long
// trace replay does not have to be re-run just to slice the numbers a
// different way. It is a pure consumer of the values package cache
// already exposes through Stats() and DumpBinary(); it does not read
// cache internals.
package record

// Recorder is a backend that can record and store simulation-result
// entries, in the same shape whether the destination is SQLite or
// ClickHouse.
type Recorder interface {
	// CreateTable creates a new table named tableName shaped like
	// sampleEntry's fields.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers entry for insertion into tableName.
	InsertData(tableName string, entry any) error

	// ListTables returns the names of all tables created so far.
	ListTables() []string

	// Flush writes all buffered entries to the backend.
	Flush() error
}

// StatsEntry is one row of a single-level cache Stats snapshot, flattened
// for SQL storage. RunID ties multiple entries (e.g. one per warm-up
// interval) back to the same simulation run.
type StatsEntry struct {
	RunID       string
	Sequence    int64
	ReadHits    int64
	ReadMisses  int64
	WriteHits   int64
	WriteMisses int64
	Evictions   int64
}

// MissLogEntry is one row of a cache's per-line miss histogram.
type MissLogEntry struct {
	RunID string
	Line  int64
	Reads int64
	Write int64
}
