// Package sqlitemigrate applies embedded SQL migrations to a SQLite database.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	migrationTable = "schema_migrations"
	upMarker       = "-- +migrate Up"
	downMarker     = "-- +migrate Down"
)

// Migration is one embedded migration file split into its sections.
type Migration struct {
	Name string
	Up   string
	Down string
}

// Load reads every .sql file in the root of fsys, ordered by name.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		out = append(out, Parse(entry.Name(), string(content)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Parse splits content on its Up and Down markers. Files without an Up
// marker are treated as Up-only.
func Parse(name, content string) Migration {
	m := Migration{Name: name}
	upIdx := strings.Index(content, upMarker)
	downIdx := strings.Index(content, downMarker)
	switch {
	case upIdx == -1 && downIdx == -1:
		m.Up = content
	case upIdx == -1:
		m.Up = content[:downIdx]
		m.Down = content[downIdx+len(downMarker):]
	case downIdx == -1 || downIdx < upIdx:
		m.Up = content[upIdx+len(upMarker):]
		if downIdx != -1 {
			m.Down = content[downIdx+len(downMarker) : upIdx]
		}
	default:
		m.Up = content[upIdx+len(upMarker) : downIdx]
		m.Down = content[downIdx+len(downMarker):]
	}
	m.Up = strings.TrimSpace(m.Up)
	m.Down = strings.TrimSpace(m.Down)
	return m
}

// Apply runs each migration not yet recorded, one transaction per file, and
// returns the names it applied. A failed migration is left unrecorded.
func Apply(ctx context.Context, sqlDB *sql.DB, migrations []Migration) ([]string, error) {
	if sqlDB == nil {
		return nil, errors.New("sql db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := sqlDB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+migrationTable+` (
	name TEXT PRIMARY KEY,
	applied_at INTEGER NOT NULL
)`); err != nil {
		return nil, fmt.Errorf("ensure migration table: %w", err)
	}

	var applied []string
	for _, m := range migrations {
		ok, err := applyOne(ctx, sqlDB, m)
		if err != nil {
			return applied, fmt.Errorf("migration %s: %w", m.Name, err)
		}
		if ok {
			applied = append(applied, m.Name)
		}
	}
	return applied, nil
}

// ApplyFS loads migrations from fsys and applies them.
func ApplyFS(ctx context.Context, sqlDB *sql.DB, fsys fs.FS) ([]string, error) {
	migrations, err := Load(fsys)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, sqlDB, migrations)
}

func applyOne(ctx context.Context, sqlDB *sql.DB, m Migration) (bool, error) {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var found int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", m.Name).Scan(&found)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("check applied: %w", err)
	}

	if m.Up != "" {
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			return false, fmt.Errorf("exec: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
		m.Name, time.Now().UTC().UnixMilli(),
	); err != nil {
		return false, fmt.Errorf("record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}
