package db

import (
	"path/filepath"
	"testing"
)

func TestInitDB_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	conn, err := InitDB(path)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"sessions", "operators"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}

	// reopening an existing file keeps the schema idempotent
	conn2, err := InitDB(path)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	_ = conn2.Close()
}
