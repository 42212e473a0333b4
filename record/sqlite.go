package record

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

type table struct {
	entries []any
}

// SQLiteRecorder is a Recorder backed by a SQLite database file. Table
// schemas are inferred from the fields of the sample struct passed to
// CreateTable via reflection; batched inserts are flushed inside a single
// transaction.
type SQLiteRecorder struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

// NewSQLiteRecorder creates a Recorder writing to path+".sqlite3". If
// path is empty a unique name is generated. Flush is registered with
// atexit, so buffered entries are flushed when the program exits through
// atexit.Exit.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	r := &SQLiteRecorder{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	if err := r.init(); err != nil {
		return nil, err
	}

	atexit.Register(func() { _ = r.Flush() })

	return r, nil
}

func (r *SQLiteRecorder) init() error {
	if r.dbName == "" {
		r.dbName = "cachesim_record_" + xid.New().String()
	}

	filename := r.dbName + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("record: file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return fmt.Errorf("record: opening %s: %w", filename, err)
	}

	r.DB = db

	return nil
}

func isAllowedColumnKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)

	for i := 0; i < t.NumField(); i++ {
		if !isAllowedColumnKind(t.Field(i).Type.Kind()) {
			return errors.New("record: entry has an unsupported field type")
		}
	}

	return nil
}

// CreateTable creates tableName with one column per field of
// sampleEntry.
func (r *SQLiteRecorder) CreateTable(tableName string, sampleEntry any) error {
	if err := checkStructFields(sampleEntry); err != nil {
		return err
	}

	fields := strings.Join(structs.Names(sampleEntry), ",\n\t")
	createTableSQL := "CREATE TABLE " + tableName + " (\n\t" + fields + "\n);"

	if _, err := r.Exec(createTableSQL); err != nil {
		return fmt.Errorf("record: creating table %s: %w", tableName, err)
	}

	r.tables[tableName] = &table{}

	return nil
}

// InsertData buffers entry for tableName, flushing automatically once the
// batch size is reached.
func (r *SQLiteRecorder) InsertData(tableName string, entry any) error {
	t, ok := r.tables[tableName]
	if !ok {
		return fmt.Errorf("record: table %s does not exist", tableName)
	}

	t.entries = append(t.entries, entry)
	r.entryCount++

	if r.entryCount >= r.batchSize {
		return r.Flush()
	}

	return nil
}

// ListTables returns the names of all tables created so far.
func (r *SQLiteRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

// Flush writes all buffered entries inside one transaction.
func (r *SQLiteRecorder) Flush() error {
	if r.entryCount == 0 {
		return nil
	}

	if _, err := r.Exec("BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("record: beginning transaction: %w", err)
	}

	for tableName, t := range r.tables {
		if len(t.entries) == 0 {
			continue
		}

		if err := r.flushTable(tableName, t); err != nil {
			return err
		}
	}

	if _, err := r.Exec("COMMIT TRANSACTION"); err != nil {
		return fmt.Errorf("record: committing transaction: %w", err)
	}

	r.entryCount = 0

	return nil
}

func (r *SQLiteRecorder) flushTable(tableName string, t *table) error {
	placeholders := make([]string, len(structs.Names(t.entries[0])))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	insertSQL := "INSERT INTO " + tableName + " VALUES (" +
		strings.Join(placeholders, ", ") + ")"

	stmt, err := r.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("record: preparing insert into %s: %w", tableName, err)
	}
	defer stmt.Close()

	for _, entry := range t.entries {
		values := structs.Values(entry)
		if _, err := stmt.Exec(values...); err != nil {
			return fmt.Errorf("record: inserting into %s: %w", tableName, err)
		}
	}

	t.entries = nil

	return nil
}
