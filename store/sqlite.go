package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/dbopen"
	"github.com/hazyhaar/stagecraft/idgen"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	run_id     TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	units      INTEGER NOT NULL,
	body       TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_checkpoints_created ON checkpoints(created_at);
`

// Run summarises one export run kept in an SQLite store.
type Run struct {
	ID          string    `json:"id"`
	Checkpoints int       `json:"checkpoints"`
	Units       int       `json:"units"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SQLiteStore appends every checkpoint of a run as a new row. Load
// returns the latest one, so the store behaves as a whole-record
// overwrite while keeping the history of the run.
type SQLiteStore struct {
	db    *sql.DB
	runID string
	fresh bool
	log   *slog.Logger
	now   func() time.Time
}

// OpenSQLite opens (or creates) the database at path. With an empty
// opts.RunID, Persist writes under a new run id and Load reads the most
// recent run.
func OpenSQLite(path string, opts Options) (*SQLiteStore, error) {
	opts.defaults()
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	// Pragmas are per connection; one writer needs one connection.
	db.SetMaxOpenConns(1)
	return newSQLiteStore(db, opts), nil
}

func newSQLiteStore(db *sql.DB, opts Options) *SQLiteStore {
	opts.defaults()
	s := &SQLiteStore{db: db, runID: opts.RunID, log: opts.Logger, now: time.Now}
	if s.runID == "" {
		s.runID = idgen.RunID()
		s.fresh = true
	}
	return s
}

// RunID returns the run this store writes to.
func (s *SQLiteStore) RunID() string { return s.runID }

// Persist stores rec as the next checkpoint of the run.
func (s *SQLiteStore) Persist(ctx context.Context, rec capture.Record) error {
	if rec == nil {
		rec = capture.Record{}
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	var seq int
	err = dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1 FROM checkpoints WHERE run_id = ?`, s.runID,
		).Scan(&seq); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO checkpoints (run_id, seq, units, body, created_at) VALUES (?, ?, ?, ?, ?)`,
			s.runID, seq, len(rec), string(body), s.now().UnixMilli())
		return err
	})
	if err != nil {
		return fmt.Errorf("store: persist: %w", err)
	}
	s.fresh = false

	s.log.Info("store: checkpoint written", "run", s.runID, "seq", seq, "units", len(rec))
	return nil
}

// Load returns the latest checkpoint of the run. A store opened without
// a run id that has not persisted yet reads the most recent run instead.
func (s *SQLiteStore) Load(ctx context.Context) (capture.Record, error) {
	if s.fresh {
		runs, err := s.Runs(ctx)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("%w: no runs", ErrNotFound)
		}
		return s.LoadRun(ctx, runs[0].ID)
	}
	return s.LoadRun(ctx, s.runID)
}

// LoadRun returns the latest checkpoint of runID.
func (s *SQLiteStore) LoadRun(ctx context.Context, runID string) (capture.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM checkpoints WHERE run_id = ? ORDER BY seq DESC LIMIT 1`, runID,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}

	var rec capture.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("store: decode run %s: %w", runID, err)
	}
	if rec == nil {
		rec = capture.Record{}
	}
	return rec, nil
}

// Runs lists the runs of the database, most recently updated first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.run_id, COUNT(*), MAX(c.created_at),
		       (SELECT units FROM checkpoints l WHERE l.run_id = c.run_id ORDER BY seq DESC LIMIT 1)
		FROM checkpoints c
		GROUP BY c.run_id
		ORDER BY MAX(c.created_at) DESC, c.run_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var updated int64
		if err := rows.Scan(&r.ID, &r.Checkpoints, &updated, &r.Units); err != nil {
			return nil, fmt.Errorf("store: runs: %w", err)
		}
		r.UpdatedAt = time.UnixMilli(updated).UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
