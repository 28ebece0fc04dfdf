package repository

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
	"github.com/ny-randriantsarafara/chorographer/internal/model"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(path, 2, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return s
}

func testRoads(t *testing.T) []model.Road {
	t.Helper()
	r1, err := model.NewRoad(1, []geo.Coordinates{
		{Lat: -18.90, Lon: 47.50},
		{Lat: -18.91, Lon: 47.51},
	}, model.RoadPrimary)
	if err != nil {
		t.Fatal(err)
	}
	r1.Name = "Route Nationale 1"
	r1.Surface = model.SurfaceAsphalt

	r2, err := model.NewRoad(2, []geo.Coordinates{
		{Lat: -18.91, Lon: 47.51},
		{Lat: -18.92, Lon: 47.52},
	}, model.RoadTrack)
	if err != nil {
		t.Fatal(err)
	}
	r2.Surface = model.SurfaceDirt
	return []model.Road{r1, r2}
}

func stream[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func rowCount(t *testing.T, s *SQLite, table string) int {
	t.Helper()
	var n int
	if err := s.conn.QueryRow("SELECT count(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSQLite_SaveRoadsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.SaveRoads(ctx, stream(testRoads(t)))
	if err != nil {
		t.Fatalf("SaveRoads: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if got := rowCount(t, s, "roads"); got != 2 {
		t.Errorf("roads rows = %d, want 2", got)
	}

	var name string
	var penalized float64
	err = s.conn.QueryRow("SELECT name, penalized_speed_kmh FROM roads WHERE id = 1").Scan(&name, &penalized)
	if err != nil {
		t.Fatalf("query road 1: %v", err)
	}
	if name != "Route Nationale 1" {
		t.Errorf("name = %q", name)
	}
	// Primary road, asphalt, unknown smoothness: 80 x 1.0 x 0.7.
	if penalized != 56 {
		t.Errorf("penalized speed = %v, want 56", penalized)
	}
}

func TestSQLite_SaveRoads_UpsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	roads := testRoads(t)
	if _, err := s.SaveRoadsBatch(ctx, roads); err != nil {
		t.Fatalf("first save: %v", err)
	}

	roads[0].Name = "RN1 renamed"
	if _, err := s.SaveRoadsBatch(ctx, roads); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if got := rowCount(t, s, "roads"); got != 2 {
		t.Errorf("roads rows = %d after re-save, want 2", got)
	}
	var name string
	if err := s.conn.QueryRow("SELECT name FROM roads WHERE id = 1").Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "RN1 renamed" {
		t.Errorf("name = %q, upsert should have updated it", name)
	}
}

func TestSQLite_SaveSegments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seg := model.Segment{
		ID:     987654321,
		RoadID: 1,
		Start:  geo.Coordinates{Lat: -18.90, Lon: 47.50},
		End:    geo.Coordinates{Lat: -18.91, Lon: 47.51},
		Length: 1500,
		Penalty: model.RoadPenalty{
			SurfaceFactor: 1, SmoothnessFactor: 1, RainySeasonFactor: 1,
		},
		BaseSpeed: 60,
	}

	count, err := s.SaveSegmentsBatch(ctx, []model.Segment{seg})
	if err != nil {
		t.Fatalf("SaveSegmentsBatch: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	var travelTime float64
	if err := s.conn.QueryRow("SELECT travel_time_seconds FROM segments WHERE id = ?", seg.ID).Scan(&travelTime); err != nil {
		t.Fatal(err)
	}
	if travelTime != 90 {
		t.Errorf("travel time = %v, want 90 (1500 m at 60 km/h)", travelTime)
	}
}

func TestSQLite_SavePOIs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pois := []model.POI{
		{
			ID:           100,
			Coordinates:  geo.Coordinates{Lat: -18.9100, Lon: 47.5255},
			Category:     model.POIFood,
			Subcategory:  "restaurant",
			Name:         "La Varangue",
			OpeningHours: "24/7",
			Tags:         map[string]string{"amenity": "restaurant"},
		},
		{
			ID:          101,
			Coordinates: geo.Coordinates{Lat: -18.9120, Lon: 47.5260},
			Category:    model.POIHealth,
			Subcategory: "pharmacy",
		},
	}

	count, err := s.SavePOIs(ctx, stream(pois))
	if err != nil {
		t.Fatalf("SavePOIs: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	var is247, hasName bool
	var normalized string
	err = s.conn.QueryRow("SELECT is_24_7, has_name, name_normalized FROM pois WHERE id = 100").
		Scan(&is247, &hasName, &normalized)
	if err != nil {
		t.Fatal(err)
	}
	if !is247 || !hasName || normalized != "la varangue" {
		t.Errorf("derived columns = %v/%v/%q", is247, hasName, normalized)
	}

	// The unnamed POI still gets a search text from its category tag.
	var searchText string
	var name *string
	if err := s.conn.QueryRow("SELECT name, search_text FROM pois WHERE id = 101").Scan(&name, &searchText); err != nil {
		t.Fatal(err)
	}
	if name != nil {
		t.Errorf("unnamed poi name = %v, want NULL", *name)
	}
	if searchText != "unknown" {
		t.Errorf("search text = %q", searchText)
	}
}

func TestSQLite_SaveZones(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	zone, err := model.NewZone(7, []geo.Coordinates{
		{Lat: -18.90, Lon: 47.50},
		{Lat: -18.90, Lon: 47.55},
		{Lat: -18.85, Lon: 47.55},
		{Lat: -18.85, Lon: 47.50},
	}, model.ZoneCommune, 3, "Ambohimanarina")
	if err != nil {
		t.Fatal(err)
	}
	zone.Population = 50000

	count, err := s.SaveZonesBatch(ctx, []model.Zone{zone})
	if err != nil {
		t.Fatalf("SaveZonesBatch: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	var area float64
	var population int
	var parent *int64
	err = s.conn.QueryRow("SELECT area, population, parent_zone_id FROM zones WHERE id = 7").
		Scan(&area, &population, &parent)
	if err != nil {
		t.Fatal(err)
	}
	if area <= 0 {
		t.Errorf("area = %v, want positive", area)
	}
	if population != 50000 {
		t.Errorf("population = %d", population)
	}
	if parent != nil {
		t.Errorf("parent = %v, want NULL before hierarchy computation", *parent)
	}
}

func TestSQLite_StreamErrorKeepsFlushedBatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	streamErr := errors.New("source died")
	roads := testRoads(t)
	broken := func(yield func(model.Road, error) bool) {
		for _, r := range roads {
			if !yield(r, nil) {
				return
			}
		}
		yield(model.Road{}, streamErr)
	}

	// Batch size is 2, so the two good roads flush before the error hits.
	count, err := s.SaveRoads(ctx, iter.Seq2[model.Road, error](broken))
	if !errors.Is(err, streamErr) {
		t.Fatalf("error = %v, want the stream error", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want the flushed batch kept", count)
	}
	if got := rowCount(t, s, "roads"); got != 2 {
		t.Errorf("roads rows = %d, want 2", got)
	}
}

func TestSQLite_RecordRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := RunRecord{
		RunID:           "0d9a1c4e-0000-4000-8000-000000000001",
		StartedAt:       time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
		RoadsCount:      10,
		SegmentsCount:   25,
		DurationSeconds: 12.5,
	}
	if err := s.RecordRun(ctx, rec); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	var roads int
	var duration float64
	err := s.conn.QueryRow("SELECT roads_count, duration_seconds FROM import_runs WHERE run_id = ?", rec.RunID).
		Scan(&roads, &duration)
	if err != nil {
		t.Fatal(err)
	}
	if roads != 10 || duration != 12.5 {
		t.Errorf("stored run = %d/%v", roads, duration)
	}
}
