package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Render catalog",
		SQL: `
			CREATE TABLE IF NOT EXISTS renders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				source TEXT NOT NULL,
				satellite TEXT NOT NULL,
				lat_min REAL NOT NULL,
				lat_max REAL NOT NULL,
				lon_min REAL NOT NULL,
				lon_max REAL NOT NULL,
				valid_time DATETIME NOT NULL,
				max_wind REAL,
				barbs INTEGER NOT NULL,
				output TEXT NOT NULL,
				duration_ms INTEGER NOT NULL,
				rendered_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_renders_rendered_at ON renders(rendered_at);
		`,
	},
	{
		Version:     2,
		Description: "Output format and per-satellite lookup",
		SQL: `
			ALTER TABLE renders ADD COLUMN format TEXT NOT NULL DEFAULT 'png';
			CREATE INDEX IF NOT EXISTS idx_renders_satellite_valid ON renders(satellite, valid_time);
		`,
	},
}

// Migrate applies any migrations not yet recorded in schema_migrations,
// each in its own transaction.
func (s *Store) Migrate() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Debug().Int("version", m.Version).Str("description", m.Description).Msg("catalog: applying migration")

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func (s *Store) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`)
	return err
}

func (s *Store) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// MigrationVersion is the highest applied migration, 0 for a fresh database.
func (s *Store) MigrationVersion() (int, error) {
	var version sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
