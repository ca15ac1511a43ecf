package analysis

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/tebeka/atexit"
)

// PerfAnalyzerBackend stores the per-period fault statistics of the runs.
type PerfAnalyzerBackend interface {
	AddDataEntry(entry PerfAnalyzerEntry)
	Flush()
}

var csvPeriodHeader = []string{
	"StartEvent", "EndEvent", "Run", "Metric", "Kind", "Value", "Unit",
}

// CSVBackend writes one row per period and metric.
type CSVBackend struct {
	out  io.WriteCloser
	rows *csv.Writer
}

// NewCSVPerfAnalyzerBackend truncates or creates <name>.csv. The rows are
// flushed and the file closed when the process exits through atexit.
func NewCSVPerfAnalyzerBackend(name string) *CSVBackend {
	file, err := os.Create(name + ".csv")
	if err != nil {
		panic(err)
	}

	b := NewCSVBackendWithWriter(file)

	atexit.Register(func() {
		b.Flush()

		if err := b.out.Close(); err != nil {
			panic(err)
		}
	})

	return b
}

// NewCSVBackendWithWriter writes the header to w and returns a backend that
// appends periods to it.
func NewCSVBackendWithWriter(w io.WriteCloser) *CSVBackend {
	b := &CSVBackend{out: w, rows: csv.NewWriter(w)}

	if err := b.rows.Write(csvPeriodHeader); err != nil {
		panic(err)
	}

	return b
}

// AddDataEntry appends a row. Values keep ten decimals so that small fault
// rates survive.
func (b *CSVBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	err := b.rows.Write([]string{
		strconv.FormatUint(entry.Start, 10),
		strconv.FormatUint(entry.End, 10),
		entry.Where,
		entry.What,
		entry.EntryType,
		strconv.FormatFloat(entry.Value, 'f', 10, 64),
		entry.Unit,
	})
	if err != nil {
		panic(err)
	}
}

// Flush pushes the buffered rows to the writer.
func (b *CSVBackend) Flush() {
	b.rows.Flush()

	if err := b.rows.Error(); err != nil {
		panic(err)
	}
}

// sqlitePeriodBatch is how many periods are held in memory before they are
// inserted.
const sqlitePeriodBatch = 4096

// SQLiteBackend stores periods in the fault_periods table of a SQLite file.
type SQLiteBackend struct {
	db     *sql.DB
	insert *sql.Stmt

	pending []PerfAnalyzerEntry
}

// NewSQLitePerfAnalyzerBackend replaces <name>.sqlite3 with an empty
// database. Pending periods are written when the process exits through
// atexit.
func NewSQLitePerfAnalyzerBackend(name string) *SQLiteBackend {
	b := openSQLiteBackend(name + ".sqlite3")

	atexit.Register(func() {
		b.Flush()

		if err := b.db.Close(); err != nil {
			panic(err)
		}
	})

	return b
}

func openSQLiteBackend(path string) *SQLiteBackend {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		panic(err)
	}

	_, err = db.Exec(`CREATE TABLE fault_periods (
		id INTEGER NOT NULL PRIMARY KEY,
		run TEXT,
		start_event INTEGER,
		end_event INTEGER,
		metric TEXT,
		kind TEXT,
		value REAL,
		unit TEXT
	)`)
	if err != nil {
		panic(err)
	}

	insert, err := db.Prepare(`INSERT INTO fault_periods
		(run, start_event, end_event, metric, kind, value, unit)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}

	return &SQLiteBackend{
		db:      db,
		insert:  insert,
		pending: make([]PerfAnalyzerEntry, 0, sqlitePeriodBatch),
	}
}

// AddDataEntry queues a period. A full batch is inserted right away.
func (b *SQLiteBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	b.pending = append(b.pending, entry)

	if len(b.pending) >= sqlitePeriodBatch {
		b.Flush()
	}
}

// Flush inserts the queued periods in a single transaction.
func (b *SQLiteBackend) Flush() {
	if len(b.pending) == 0 {
		return
	}

	tx, err := b.db.Begin()
	if err != nil {
		panic(err)
	}

	insert := tx.Stmt(b.insert)
	for _, e := range b.pending {
		_, err = insert.Exec(
			e.Where, e.Start, e.End, e.What, e.EntryType, e.Value, e.Unit)
		if err != nil {
			_ = tx.Rollback()
			panic(fmt.Errorf("storing period %d-%d of %s: %w",
				e.Start, e.End, e.Where, err))
		}
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	b.pending = b.pending[:0]
}
