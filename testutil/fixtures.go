package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateSQLiteFixture writes a history database file holding one recorded
// run with ID "fixture-run"
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		scenario    TEXT NOT NULL,
		variant     TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		started_at  INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		entries     INTEGER NOT NULL,
		failures    INTEGER NOT NULL,
		transcript  TEXT NOT NULL
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	InsertRun(t, db, "fixture-run", "fabrication", "chat", "completed", 1000,
		`{"id":"fixture-run","scenario":"fabrication","variant":"chat","title":"Fabrication","metadata":{"outcome":"completed","entry_count":0,"failure_count":0}}`)
}
