package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM recent_notes").Scan(&count); err != nil {
		t.Errorf("table recent_notes: %v", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenDirPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO recent_notes (namespace, paths) VALUES ('ns', '["a.md"]')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	d.Close()

	d, err = OpenDir(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()

	var paths string
	if err := d.QueryRow(`SELECT paths FROM recent_notes WHERE namespace = 'ns'`).Scan(&paths); err != nil {
		t.Fatalf("select: %v", err)
	}
	if paths != `["a.md"]` {
		t.Errorf("paths = %q", paths)
	}
	if d.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path = %q", d.Path())
	}
}
