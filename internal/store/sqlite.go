// Package store catalogues rendered maps in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/lox/hyplot/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the catalog at path and brings its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	s := New(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	version, err := s.MigrationVersion()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog schema version: %w", err)
	}
	log.Debug().Str("path", path).Int("schema_version", version).Msg("catalog: opened")
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InsertRender(r models.RenderRecord) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO renders (source, satellite, lat_min, lat_max, lon_min, lon_max, valid_time, max_wind, barbs, output, format, duration_ms, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Source, r.Satellite, r.Box.LatMin, r.Box.LatMax, r.Box.LonMin, r.Box.LonMax,
		r.ValidTime.UTC(), r.MaxWind, r.Barbs, r.Output, r.Format, r.Duration.Milliseconds(), r.RenderedAt.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const renderColumns = `id, source, satellite, lat_min, lat_max, lon_min, lon_max, valid_time, max_wind, barbs, output, format, duration_ms, rendered_at`

// ListRenders returns up to limit renders, newest first. An empty satellite
// matches all.
func (s *Store) ListRenders(satellite string, limit int) ([]models.RenderRecord, error) {
	rows, err := s.db.Query(`
		SELECT `+renderColumns+`
		FROM renders
		WHERE ? = '' OR satellite = ?
		ORDER BY rendered_at DESC, id DESC
		LIMIT ?
	`, satellite, satellite, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RenderRecord
	for rows.Next() {
		r, err := scanRender(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRender is the render with the newest valid time for satellite, or
// nil if there is none.
func (s *Store) LatestRender(satellite string) (*models.RenderRecord, error) {
	row := s.db.QueryRow(`
		SELECT `+renderColumns+`
		FROM renders
		WHERE satellite = ?
		ORDER BY valid_time DESC, id DESC
		LIMIT 1
	`, satellite)
	r, err := scanRender(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRender(sc scanner) (models.RenderRecord, error) {
	var (
		r          models.RenderRecord
		durationMS int64
	)
	err := sc.Scan(&r.ID, &r.Source, &r.Satellite,
		&r.Box.LatMin, &r.Box.LatMax, &r.Box.LonMin, &r.Box.LonMax,
		&r.ValidTime, &r.MaxWind, &r.Barbs, &r.Output, &r.Format, &durationMS, &r.RenderedAt)
	if err != nil {
		return r, err
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}
