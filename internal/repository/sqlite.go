package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"iter"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
	"github.com/ny-randriantsarafara/chorographer/internal/model"
)

//go:embed schema_sqlite.sql
var sqliteSchemaSQL string

// SQLite persists entities into a local SQLite file. Geometry is stored as
// WKT text; there is no spatial engine, so zone hierarchy computation is
// not available here. Intended for local and test runs.
type SQLite struct {
	conn      *sql.DB
	batchSize int
	log       *zap.Logger

	// SQLite supports one writer at a time; the mutex serializes write
	// transactions on top of the single pooled connection.
	writeMu sync.Mutex
}

// NewSQLite opens the database with WAL mode enabled.
func NewSQLite(path string, batchSize int, log *zap.Logger) (*SQLite, error) {
	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if batchSize < 1 {
		batchSize = 1000
	}
	return &SQLite{conn: conn, batchSize: batchSize, log: log}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates tables if they don't exist.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.conn.ExecContext(ctx, sqliteSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRoads streams roads into the store in batches.
func (s *SQLite) SaveRoads(ctx context.Context, roads iter.Seq2[model.Road, error]) (int, error) {
	return saveStream(ctx, roads, s.batchSize, s.SaveRoadsBatch)
}

// SaveRoadsBatch upserts one pre-built batch of roads in a transaction.
func (s *SQLite) SaveRoadsBatch(ctx context.Context, roads []model.Road) (int, error) {
	if len(roads) == 0 {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO roads (
			id, geometry_wkt, road_type, surface, smoothness,
			name, lanes, oneway, max_speed,
			length, surface_factor, smoothness_factor,
			effective_speed_kmh, penalized_speed_kmh, tags,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			geometry_wkt = excluded.geometry_wkt,
			road_type = excluded.road_type,
			surface = excluded.surface,
			smoothness = excluded.smoothness,
			name = excluded.name,
			lanes = excluded.lanes,
			oneway = excluded.oneway,
			max_speed = excluded.max_speed,
			length = excluded.length,
			surface_factor = excluded.surface_factor,
			smoothness_factor = excluded.smoothness_factor,
			effective_speed_kmh = excluded.effective_speed_kmh,
			penalized_speed_kmh = excluded.penalized_speed_kmh,
			tags = excluded.tags,
			updated_at = datetime('now')
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare roads statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range roads {
		penalty := r.Penalty()
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			wktLineString(r.Geometry),
			string(r.Type),
			string(r.Surface),
			string(r.Smoothness),
			nullString(r.Name),
			r.Lanes,
			r.Oneway,
			nullInt(r.MaxSpeed),
			r.Length(),
			penalty.SurfaceFactor,
			penalty.SmoothnessFactor,
			r.EffectiveSpeedKmh(),
			r.PenalizedSpeedKmh(),
			tagsJSON(r.Tags),
		); err != nil {
			return 0, fmt.Errorf("failed to upsert road %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit roads: %w", err)
	}
	return len(roads), nil
}

// SaveSegments streams segments into the store in batches.
func (s *SQLite) SaveSegments(ctx context.Context, segments iter.Seq2[model.Segment, error]) (int, error) {
	return saveStream(ctx, segments, s.batchSize, s.SaveSegmentsBatch)
}

// SaveSegmentsBatch upserts one pre-built batch of segments.
func (s *SQLite) SaveSegmentsBatch(ctx context.Context, segments []model.Segment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (
			id, road_id, geometry_wkt, start_lat, start_lon, end_lat, end_lon,
			length, surface_factor, smoothness_factor, rainy_season_factor,
			oneway, base_speed, effective_speed_kmh, travel_time_seconds, cost,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			road_id = excluded.road_id,
			geometry_wkt = excluded.geometry_wkt,
			start_lat = excluded.start_lat,
			start_lon = excluded.start_lon,
			end_lat = excluded.end_lat,
			end_lon = excluded.end_lon,
			length = excluded.length,
			surface_factor = excluded.surface_factor,
			smoothness_factor = excluded.smoothness_factor,
			rainy_season_factor = excluded.rainy_season_factor,
			oneway = excluded.oneway,
			base_speed = excluded.base_speed,
			effective_speed_kmh = excluded.effective_speed_kmh,
			travel_time_seconds = excluded.travel_time_seconds,
			cost = excluded.cost,
			updated_at = datetime('now')
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare segments statement: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		if _, err := stmt.ExecContext(ctx,
			seg.ID,
			seg.RoadID,
			wktLineString([]geo.Coordinates{seg.Start, seg.End}),
			seg.Start.Lat,
			seg.Start.Lon,
			seg.End.Lat,
			seg.End.Lon,
			seg.Length,
			seg.Penalty.SurfaceFactor,
			seg.Penalty.SmoothnessFactor,
			seg.Penalty.RainySeasonFactor,
			seg.Oneway,
			seg.BaseSpeed,
			seg.EffectiveSpeedKmh(),
			seg.TravelTimeSeconds(),
			seg.Cost(),
		); err != nil {
			return 0, fmt.Errorf("failed to upsert segment %d: %w", seg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit segments: %w", err)
	}
	return len(segments), nil
}

// SavePOIs streams POIs into the store in batches.
func (s *SQLite) SavePOIs(ctx context.Context, pois iter.Seq2[model.POI, error]) (int, error) {
	return saveStream(ctx, pois, s.batchSize, s.SavePOIsBatch)
}

// SavePOIsBatch upserts one pre-built batch of POIs.
func (s *SQLite) SavePOIsBatch(ctx context.Context, pois []model.POI) (int, error) {
	if len(pois) == 0 {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pois (
			id, latitude, longitude, category, subcategory, name,
			address, phone, opening_hours, price_range, website,
			is_24_7, formatted_address,
			name_normalized, search_text, search_text_normalized, has_name, popularity,
			tags, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			category = excluded.category,
			subcategory = excluded.subcategory,
			name = excluded.name,
			address = excluded.address,
			phone = excluded.phone,
			opening_hours = excluded.opening_hours,
			price_range = excluded.price_range,
			website = excluded.website,
			is_24_7 = excluded.is_24_7,
			formatted_address = excluded.formatted_address,
			name_normalized = excluded.name_normalized,
			search_text = excluded.search_text,
			search_text_normalized = excluded.search_text_normalized,
			has_name = excluded.has_name,
			popularity = excluded.popularity,
			tags = excluded.tags,
			updated_at = datetime('now')
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare pois statement: %w", err)
	}
	defer stmt.Close()

	for _, poi := range pois {
		if _, err := stmt.ExecContext(ctx,
			poi.ID,
			poi.Coordinates.Lat,
			poi.Coordinates.Lon,
			string(poi.Category),
			poi.Subcategory,
			nullString(poi.Name),
			addressJSON(poi.Address),
			nullString(poi.Phone),
			nullString(poi.OpeningHours),
			nullInt(poi.PriceRange),
			nullString(poi.Website),
			poi.Is24x7(),
			nullString(poi.Address.Formatted()),
			nullString(poi.NameNormalized()),
			poi.SearchText(),
			poi.SearchTextNormalized(),
			poi.HasName(),
			poi.Popularity,
			tagsJSON(poi.Tags),
		); err != nil {
			return 0, fmt.Errorf("failed to upsert poi %d: %w", poi.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit pois: %w", err)
	}
	return len(pois), nil
}

// SaveZones streams zones into the store in batches.
func (s *SQLite) SaveZones(ctx context.Context, zones iter.Seq2[model.Zone, error]) (int, error) {
	return saveStream(ctx, zones, s.batchSize, s.SaveZonesBatch)
}

// SaveZonesBatch upserts one pre-built batch of zones.
func (s *SQLite) SaveZonesBatch(ctx context.Context, zones []model.Zone) (int, error) {
	if len(zones) == 0 {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO zones (
			id, geometry_wkt, zone_type, name, level, parent_zone_id,
			iso_code, population, area, centroid_lat, centroid_lon,
			tags, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			geometry_wkt = excluded.geometry_wkt,
			zone_type = excluded.zone_type,
			name = excluded.name,
			level = excluded.level,
			parent_zone_id = excluded.parent_zone_id,
			iso_code = excluded.iso_code,
			population = excluded.population,
			area = excluded.area,
			centroid_lat = excluded.centroid_lat,
			centroid_lon = excluded.centroid_lon,
			tags = excluded.tags,
			updated_at = datetime('now')
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare zones statement: %w", err)
	}
	defer stmt.Close()

	for _, z := range zones {
		centroid := z.Centroid()
		if _, err := stmt.ExecContext(ctx,
			z.ID,
			wktPolygon(z.Geometry),
			string(z.Type),
			z.Name,
			z.Level,
			nullInt64(z.ParentID),
			nullString(z.ISOCode),
			nullInt(z.Population),
			z.Area(),
			centroid.Lat,
			centroid.Lon,
			tagsJSON(z.Tags),
		); err != nil {
			return 0, fmt.Errorf("failed to upsert zone %d: %w", z.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit zones: %w", err)
	}
	return len(zones), nil
}

// RecordRun stores the outcome of one import run.
func (s *SQLite) RecordRun(ctx context.Context, rec RunRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO import_runs (
			run_id, started_at_utc, roads_count, pois_count,
			zones_count, segments_count, duration_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID, rec.StartedAt.UTC().Format(time.RFC3339), rec.RoadsCount,
		rec.POIsCount, rec.ZonesCount, rec.SegmentsCount, rec.DurationSeconds)
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}
