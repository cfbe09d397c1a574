package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPendingMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_seed.sql", "0001_schema.sql", "0003_indexes.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	names, err := pendingMigrations(dir, map[string]bool{"0001_schema.sql": true})
	if err != nil {
		t.Fatalf("pendingMigrations: %v", err)
	}

	// Applied files and non-SQL entries are skipped; the rest run in order.
	want := []string{"0002_seed.sql", "0003_indexes.sql"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestPendingMigrationsNothingApplied(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0001_schema.sql"), []byte("SELECT 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	names, err := pendingMigrations(dir, map[string]bool{})
	if err != nil {
		t.Fatalf("pendingMigrations: %v", err)
	}
	if len(names) != 1 || names[0] != "0001_schema.sql" {
		t.Fatalf("names = %v", names)
	}
}
