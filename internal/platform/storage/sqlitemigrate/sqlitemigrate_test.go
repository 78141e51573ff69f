package sqlitemigrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestParseSplitsSections(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		wantUp   string
		wantDown string
	}{
		{name: "up and down", content: "-- +migrate Up\nCREATE TABLE a(id INT);\n-- +migrate Down\nDROP TABLE a;", wantUp: "CREATE TABLE a(id INT);", wantDown: "DROP TABLE a;"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a(id INT);", wantUp: "CREATE TABLE a(id INT);"},
		{name: "no markers", content: "CREATE TABLE a(id INT);", wantUp: "CREATE TABLE a(id INT);"},
		{name: "down first", content: "-- +migrate Down\nDROP TABLE a;\n-- +migrate Up\nCREATE TABLE a(id INT);", wantUp: "CREATE TABLE a(id INT);", wantDown: "DROP TABLE a;"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Parse("001.sql", tc.content)
			if m.Up != tc.wantUp {
				t.Fatalf("up = %q, want %q", m.Up, tc.wantUp)
			}
			if m.Down != tc.wantDown {
				t.Fatalf("down = %q, want %q", m.Down, tc.wantDown)
			}
		})
	}
}

func TestLoadOrdersByNameAndSkipsOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql":  &fstest.MapFile{Data: []byte("-- +migrate Up\nSELECT 2;")},
		"001_a.sql":  &fstest.MapFile{Data: []byte("-- +migrate Up\nSELECT 1;")},
		"README.md":  &fstest.MapFile{Data: []byte("notes")},
		"sub/03.sql": &fstest.MapFile{Data: []byte("SELECT 3;")},
	}
	migrations, err := Load(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migrations) != 2 || migrations[0].Name != "001_a.sql" || migrations[1].Name != "002_b.sql" {
		t.Fatalf("migrations = %+v, want 001_a.sql then 002_b.sql", migrations)
	}
}

func TestApplyFSRecordsOncePerFile(t *testing.T) {
	db := openInMemoryDB(t)
	fsys := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);")},
	}

	applied, err := ApplyFS(context.Background(), db, fsys)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("applied = %v, want one migration", applied)
	}
	if !tableExists(t, db, "items") {
		t.Fatal("expected applied table to exist")
	}

	applied, err = ApplyFS(context.Background(), db, fsys)
	if err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("applied = %v, want nothing on replay", applied)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("migration rows = %d, want 1", rows)
	}
}

func TestApplyLeavesFailedMigrationUnrecorded(t *testing.T) {
	db := openInMemoryDB(t)

	bad := []Migration{{Name: "001_bad.sql", Up: "CREAT table things(id INT);"}}
	if _, err := Apply(context.Background(), db, bad); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 0 {
		t.Fatalf("migration rows = %d, want 0", rows)
	}

	good := []Migration{{Name: "001_bad.sql", Up: "CREATE TABLE things(id INTEGER PRIMARY KEY);"}}
	if _, err := Apply(context.Background(), db, good); err != nil {
		t.Fatalf("apply fixed migration: %v", err)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("migration rows = %d, want 1", rows)
	}
}

func TestApplyRequiresDB(t *testing.T) {
	if _, err := Apply(context.Background(), nil, nil); err == nil {
		t.Fatal("expected nil db error")
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// Each pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query int value: %v", err)
	}
	return value
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tableName).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("check table exists: %v", err)
	}
	return name == tableName
}
