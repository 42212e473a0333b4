package record

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"
)

// ClickHouseRecorder is a Recorder backed by ClickHouse, for simulation
// runs large enough that a single SQLite file becomes a bottleneck.
// Unlike SQLiteRecorder it does not use reflection: it knows only about
// StatsEntry and MissLogEntry, batched into type-specific slices.
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	statsBatch   []StatsEntry
	missLogBatch []MissLogEntry

	tables map[string]bool
}

// NewClickHouseRecorder opens a connection to a ClickHouse server and
// pings it to fail fast on misconfiguration.
func NewClickHouseRecorder(host string, port int, database, username, password string) (*ClickHouseRecorder, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout:     time.Second * 30,
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("record: connecting to clickhouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("record: pinging clickhouse: %w", err)
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		batchSize: 100000,
		tables:    make(map[string]bool),
	}

	atexit.Register(func() { _ = r.Flush() })

	return r, nil
}

// CreateTable creates tableName shaped for whichever of StatsEntry or
// MissLogEntry sampleEntry is.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var createSQL string

	switch sampleEntry.(type) {
	case StatsEntry:
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				RunID String,
				Sequence Int64,
				ReadHits Int64,
				ReadMisses Int64,
				WriteHits Int64,
				WriteMisses Int64,
				Evictions Int64
			) ENGINE = MergeTree()
			ORDER BY (RunID, Sequence)
		`, tableName)
	case MissLogEntry:
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				RunID String,
				Line Int64,
				Reads Int64,
				Write Int64
			) ENGINE = MergeTree()
			ORDER BY (RunID, Line)
		`, tableName)
	default:
		return fmt.Errorf("record: clickhouse recorder does not know how to create a table for %T", sampleEntry)
	}

	if err := r.conn.Exec(context.Background(), createSQL); err != nil {
		return fmt.Errorf("record: creating table %s: %w", tableName, err)
	}

	r.tables[tableName] = true

	return nil
}

// InsertData buffers a StatsEntry or MissLogEntry, flushing automatically
// once the batch size is reached. tableName is not used: Flush writes
// StatsEntry rows to the table "stats" and MissLogEntry rows to
// "miss_log".
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) error {
	r.mu.Lock()

	switch e := entry.(type) {
	case StatsEntry:
		r.statsBatch = append(r.statsBatch, e)
	case MissLogEntry:
		r.missLogBatch = append(r.missLogBatch, e)
	default:
		r.mu.Unlock()
		return fmt.Errorf("record: clickhouse recorder cannot insert a %T", entry)
	}

	full := len(r.statsBatch)+len(r.missLogBatch) >= r.batchSize
	r.mu.Unlock()

	if full {
		return r.Flush()
	}

	return nil
}

// ListTables returns the names of all tables created so far.
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

// Flush writes all buffered entries as one batch per table.
func (r *ClickHouseRecorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.statsBatch) > 0 {
		if err := r.flushStats(); err != nil {
			return err
		}
	}

	if len(r.missLogBatch) > 0 {
		if err := r.flushMissLog(); err != nil {
			return err
		}
	}

	return nil
}

func (r *ClickHouseRecorder) flushStats() error {
	batch, err := r.conn.PrepareBatch(context.Background(), "INSERT INTO stats")
	if err != nil {
		return fmt.Errorf("record: preparing stats batch: %w", err)
	}

	for _, e := range r.statsBatch {
		if err := batch.Append(e.RunID, e.Sequence, e.ReadHits, e.ReadMisses,
			e.WriteHits, e.WriteMisses, e.Evictions); err != nil {
			return fmt.Errorf("record: appending stats row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("record: sending stats batch: %w", err)
	}

	r.statsBatch = nil

	return nil
}

func (r *ClickHouseRecorder) flushMissLog() error {
	batch, err := r.conn.PrepareBatch(context.Background(), "INSERT INTO miss_log")
	if err != nil {
		return fmt.Errorf("record: preparing miss_log batch: %w", err)
	}

	for _, e := range r.missLogBatch {
		if err := batch.Append(e.RunID, e.Line, e.Reads, e.Write); err != nil {
			return fmt.Errorf("record: appending miss_log row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("record: sending miss_log batch: %w", err)
	}

	r.missLogBatch = nil

	return nil
}
