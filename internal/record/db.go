// Package record provides SQLite-backed storage of run output: the final
// population frame and the structured analysis records emitted during the
// run. Each run gets its own ID so several runs can share a database file.
package record

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mkwanda/healthsim/internal/population"
)

// Store wraps a SQLite connection for run output.
type Store struct {
	conn  *sqlx.DB
	runID string

	buffer []row
}

type row struct {
	run    string
	date   string
	key    string
	person int
	data   string
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close flushes buffered records and closes the connection.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		slog.Error("flushing records on close failed", "err", err)
	}
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		days INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS persons (
		run_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		sex TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		mother_id INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		date_of_death TEXT,
		cause_of_death TEXT,
		parity INTEGER NOT NULL,
		previous_caesareans INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		date TEXT NOT NULL,
		key TEXT NOT NULL,
		person INTEGER NOT NULL,
		data TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_run_key ON records(run_id, key);
	CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// StartRun registers a new run and returns its ID.
func (s *Store) StartRun(seed int64) (string, error) {
	s.runID = uuid.NewString()
	_, err := s.conn.Exec(
		"INSERT INTO runs (run_id, seed, started_at) VALUES (?, ?, ?)",
		s.runID, seed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return s.runID, nil
}

// RunID returns the current run's ID.
func (s *Store) RunID() string { return s.runID }

// FinishRun stamps the run with its simulated length.
func (s *Store) FinishRun(days int) error {
	_, err := s.conn.Exec("UPDATE runs SET days = ? WHERE run_id = ?", days, s.runID)
	return err
}

// Record buffers one structured analysis record. Implements the
// simulation's Recorder interface; writes happen in batches via Flush. The
// run ID is stamped here, not at Flush time, so rows still buffered when a
// new run starts keep their attribution.
func (s *Store) Record(date time.Time, key string, person population.PersonID, data map[string]any) {
	payload, _ := json.Marshal(data)
	s.buffer = append(s.buffer, row{
		run:    s.runID,
		date:   date.Format("2006-01-02"),
		key:    key,
		person: int(person),
		data:   string(payload),
	})
	if len(s.buffer) >= 512 {
		if err := s.Flush(); err != nil {
			slog.Error("flushing records failed", "err", err)
		}
	}
}

// Flush writes the buffered records in one transaction.
func (s *Store) Flush() error {
	if len(s.buffer) == 0 {
		return nil
	}
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO records (run_id, date, key, person, data) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range s.buffer {
		if _, err := stmt.Exec(r.run, r.date, r.key, r.person, r.data); err != nil {
			return fmt.Errorf("insert record %s: %w", r.key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.buffer = s.buffer[:0]
	return nil
}

// SavePersons writes the final population frame for this run (full replace).
func (s *Store) SavePersons(pop *population.Store) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM persons WHERE run_id = ?", s.runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO persons
		(run_id, id, sex, date_of_birth, mother_id, alive,
		 date_of_death, cause_of_death, parity, previous_caesareans)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var insertErr error
	for id := population.PersonID(0); int(id) < pop.Len(); id++ {
		p := pop.Get(id)
		alive := 0
		if p.Alive {
			alive = 1
		}
		var death string
		if !p.DateOfDeath.IsZero() {
			death = p.DateOfDeath.Format("2006-01-02")
		}
		_, err := stmt.Exec(
			s.runID, p.ID, p.Sex.String(), p.DateOfBirth.Format("2006-01-02"),
			p.MotherID, alive, death, p.CauseOfDeath,
			p.Maternal.Parity, p.Maternal.PreviousCaesareans,
		)
		if err != nil {
			insertErr = fmt.Errorf("insert person %d: %w", p.ID, err)
			break
		}
	}
	if insertErr != nil {
		return insertErr
	}
	return tx.Commit()
}

// RecentRecord is one row of the records table as served by the API.
type RecentRecord struct {
	Date   string `db:"date" json:"date"`
	Key    string `db:"key" json:"key"`
	Person int    `db:"person" json:"person"`
	Data   string `db:"data" json:"data"`
}

// Recent returns the latest n records of the current run, newest first.
func (s *Store) Recent(n int) ([]RecentRecord, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	var out []RecentRecord
	err := s.conn.Select(&out,
		"SELECT date, key, person, data FROM records WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		s.runID, n)
	if err != nil {
		return nil, fmt.Errorf("select recent records: %w", err)
	}
	return out, nil
}

// CountByKey returns the number of records with the given key in this run.
func (s *Store) CountByKey(key string) (int, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}
	var n int
	err := s.conn.Get(&n,
		"SELECT COUNT(*) FROM records WHERE run_id = ? AND key = ?", s.runID, key)
	return n, err
}
