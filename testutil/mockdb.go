package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an empty in-memory SQLite database for testing.
// The pool is limited to one connection so every query sees the same
// database.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// InsertRun inserts a raw row into the runs table
func InsertRun(t *testing.T, db *sql.DB, id, scenario, variant, outcome string, startedAt int64, transcript string) {
	t.Helper()
	insertSQL := `INSERT INTO runs (id, scenario, variant, outcome, started_at, finished_at, entries, failures, transcript)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?)`
	if _, err := db.Exec(insertSQL, id, scenario, variant, outcome, startedAt, startedAt, transcript); err != nil {
		t.Fatalf("Failed to insert run: %v", err)
	}
}
