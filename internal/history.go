package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord is one recorded playback run
type RunRecord struct {
	ID         string
	Scenario   string
	Variant    Variant
	Outcome    string
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    int
	Failures   int
	Transcript []byte // JSON
}

// Duration returns how long the run played
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// DecodeTranscript parses the stored transcript
func (r RunRecord) DecodeTranscript() (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(r.Transcript, &t); err != nil {
		return nil, fmt.Errorf("decode transcript %s: %w", r.ID, err)
	}
	return &t, nil
}

// HistoryStore records playback runs in SQLite
type HistoryStore struct {
	db   *sql.DB
	path string
}

// OpenHistory opens (or creates) the history database at path
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	h, err := newHistoryStore(db, path)
	if err != nil {
		db.Close()
		return nil, err
	}
	LogDebug("Opened history store at %s", path)
	return h, nil
}

// NewHistoryStore wraps an already open database, creating the schema
func NewHistoryStore(db *sql.DB) (*HistoryStore, error) {
	return newHistoryStore(db, ":memory:")
}

func newHistoryStore(db *sql.DB, path string) (*HistoryStore, error) {
	if err := migrate(db); err != nil {
		return nil, &StorageError{Path: path, Op: "migrate", Err: err}
	}
	return &HistoryStore{db: db, path: path}, nil
}

// Path returns the database location
func (h *HistoryStore) Path() string {
	return h.path
}

// Record stores a run. A transcript without an ID is assigned a new UUID,
// which becomes the run ID.
func (h *HistoryStore) Record(ctx context.Context, t *Transcript, startedAt, finishedAt time.Time) (RunRecord, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Metadata.RecordedAt == "" {
		t.Metadata.RecordedAt = finishedAt.UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return RunRecord{}, &StorageError{Path: h.path, Op: "insert", Err: fmt.Errorf("encode transcript: %w", err)}
	}

	rec := RunRecord{
		ID:         t.ID,
		Scenario:   t.Scenario,
		Variant:    t.Variant,
		Outcome:    t.Metadata.Outcome,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Entries:    t.Metadata.EntryCount,
		Failures:   t.Metadata.FailureCount,
		Transcript: data,
	}

	const query = `INSERT INTO runs (id, scenario, variant, outcome, started_at, finished_at, entries, failures, transcript)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = h.db.ExecContext(ctx, query,
		rec.ID, rec.Scenario, string(rec.Variant), rec.Outcome,
		rec.StartedAt.UnixNano(), rec.FinishedAt.UnixNano(),
		rec.Entries, rec.Failures, string(rec.Transcript))
	if err != nil {
		return RunRecord{}, &StorageError{Path: h.path, Op: "insert", Err: err}
	}

	LogDebug("Recorded run %s (%s, %s)", rec.ID, rec.Scenario, rec.Outcome)
	return rec, nil
}

// List returns the most recent runs first. A limit of zero or less returns
// every run.
func (h *HistoryStore) List(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, scenario, variant, outcome, started_at, finished_at, entries, failures, transcript
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Path: h.path, Op: "query", Err: err}
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, &StorageError{Path: h.path, Op: "query", Err: err}
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Path: h.path, Op: "query", Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	return runs, nil
}

// Get returns the run with the given ID
func (h *HistoryStore) Get(ctx context.Context, id string) (*RunRecord, error) {
	const query = `SELECT id, scenario, variant, outcome, started_at, finished_at, entries, failures, transcript
		FROM runs WHERE id = ?`
	rec, err := scanRun(h.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, &StorageError{Path: h.path, Op: "query", Err: err}
	}
	return &rec, nil
}

// Close closes the underlying database
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec        RunRecord
		variant    string
		started    int64
		finished   int64
		transcript string
	)
	if err := row.Scan(&rec.ID, &rec.Scenario, &variant, &rec.Outcome, &started, &finished, &rec.Entries, &rec.Failures, &transcript); err != nil {
		return RunRecord{}, err
	}
	rec.Variant = Variant(variant)
	rec.StartedAt = time.Unix(0, started)
	rec.FinishedAt = time.Unix(0, finished)
	rec.Transcript = []byte(transcript)
	return rec, nil
}
