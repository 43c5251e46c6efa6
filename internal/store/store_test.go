package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/hyplot/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func testRecord(satellite string, valid, rendered time.Time) models.RenderRecord {
	return models.RenderRecord{
		Source:     satellite + "_OPER_SCA_L2B.h5",
		Satellite:  satellite,
		Box:        models.BoundingBox{LatMin: -40, LatMax: -25, LonMin: 150, LonMax: 165},
		ValidTime:  valid,
		MaxWind:    sql.NullFloat64{Float64: 35.5, Valid: true},
		Barbs:      1234,
		Output:     "/tmp/" + satellite + ".png",
		Format:     "png",
		Duration:   1500 * time.Millisecond,
		RenderedAt: rendered,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
}

func TestInsertAndListRenders(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2021, 7, 31, 1, 57, 38, 0, time.UTC)

	first := testRecord("HY-2B", base, base.Add(time.Hour))
	id, err := store.InsertRender(first)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Error("expected a row id")
	}

	second := testRecord("HY-2C", base.Add(2*time.Hour), base.Add(3*time.Hour))
	second.MaxWind = sql.NullFloat64{}
	if _, err := store.InsertRender(second); err != nil {
		t.Fatalf("insert: %v", err)
	}

	all, err := store.ListRenders("", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].Satellite != "HY-2C" {
		t.Errorf("newest first: got %s", all[0].Satellite)
	}
	if all[0].MaxWind.Valid {
		t.Error("missing max wind read back as valid")
	}

	got := all[1]
	if got.ID != id || got.Source != first.Source || got.Box != first.Box {
		t.Errorf("record = %+v", got)
	}
	if !got.ValidTime.Equal(first.ValidTime) || !got.RenderedAt.Equal(first.RenderedAt) {
		t.Errorf("times = %v / %v", got.ValidTime, got.RenderedAt)
	}
	if got.MaxWind != first.MaxWind || got.Barbs != 1234 || got.Format != "png" {
		t.Errorf("stats = %+v", got)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", got.Duration)
	}

	only, err := store.ListRenders("HY-2B", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 1 || only[0].Satellite != "HY-2B" {
		t.Errorf("filtered = %+v", only)
	}

	limited, err := store.ListRenders("", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d rows", len(limited))
	}
}

func TestLatestRender(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := store.LatestRender("HY-2B")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("empty catalog returned %+v", got)
	}

	// Rendered later but older swath.
	if _, err := store.InsertRender(testRecord("HY-2B", base, base.Add(5*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, err := store.InsertRender(testRecord("HY-2B", base.Add(time.Hour), base.Add(2*time.Hour))); err != nil {
		t.Fatal(err)
	}

	got, err = store.LatestRender("HY-2B")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.ValidTime.Equal(base.Add(time.Hour)) {
		t.Errorf("latest = %+v", got)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.InsertRender(testRecord("HY-2A", time.Now(), time.Now())); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	rows, err := store.ListRenders("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("rows after reopen = %d, want 1", len(rows))
	}
}
