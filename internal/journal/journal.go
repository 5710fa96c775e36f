// Package journal persists per-flush statistics of the rate-limited sink to
// SQLite for offline tuning of the coalescing window.
//
// Only aggregate numbers are stored: batch sizes, merge counts, dispatch
// durations. Event payloads and element identities never touch disk.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"uiagate/internal/limiter"
)

// Schema for the flush statistics journal.
const schema = `
CREATE TABLE IF NOT EXISTS flushes (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp_ns INTEGER NOT NULL,
    records      INTEGER NOT NULL,
    coalesced    INTEGER NOT NULL,
    failures     INTEGER NOT NULL,
    duration_ns  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flushes_timestamp ON flushes(timestamp_ns);
`

// Journal is the SQLite-backed flush statistics store.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record inserts one flush observation. Intended to hang off
// limiter.Options.OnFlush; errors are returned for the caller to log, never
// to abort a flush.
func (j *Journal) Record(at time.Time, stats limiter.FlushStats) error {
	_, err := j.db.Exec(`
		INSERT INTO flushes (timestamp_ns, records, coalesced, failures, duration_ns)
		VALUES (?, ?, ?, ?, ?)`,
		at.UnixNano(), stats.Records, stats.Coalesced, stats.Failures, stats.Duration.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert flush: %w", err)
	}
	return nil
}

// Summary aggregates the journalled flushes.
type Summary struct {
	Flushes       int64
	Records       int64
	Coalesced     int64
	Failures      int64
	MeanBatchSize float64
	MeanDuration  time.Duration
}

// Summarize reports totals across all journalled flushes since the given
// time. A zero time summarizes everything.
func (j *Journal) Summarize(since time.Time) (*Summary, error) {
	row := j.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(records), 0),
		       COALESCE(SUM(coalesced), 0),
		       COALESCE(SUM(failures), 0),
		       COALESCE(AVG(records), 0),
		       COALESCE(AVG(duration_ns), 0)
		FROM flushes WHERE timestamp_ns >= ?`,
		since.UnixNano(),
	)
	var s Summary
	var meanDurNs float64
	if err := row.Scan(&s.Flushes, &s.Records, &s.Coalesced, &s.Failures, &s.MeanBatchSize, &meanDurNs); err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	s.MeanDuration = time.Duration(int64(meanDurNs))
	return &s, nil
}

// Prune deletes observations older than the cutoff and returns how many
// rows went away.
func (j *Journal) Prune(before time.Time) (int64, error) {
	res, err := j.db.Exec(`DELETE FROM flushes WHERE timestamp_ns < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return res.RowsAffected()
}
