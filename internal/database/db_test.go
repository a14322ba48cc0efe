package database

import (
	"path/filepath"
	"testing"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"kv", "execution_metrics"} {
		var name string
		err := db.SQL.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}

	t.Run("Reopen is idempotent", func(t *testing.T) {
		again, err := NewDB(dbPath)
		if err != nil {
			t.Fatalf("second NewDB failed: %v", err)
		}
		again.Close()
	})
}
