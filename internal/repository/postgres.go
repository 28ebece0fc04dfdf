package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
	"github.com/ny-randriantsarafara/chorographer/internal/model"
)

//go:embed schema_postgres.sql
var postgresSchemaSQL string

// Postgres persists entities into a PostGIS-enabled database via a pgx
// connection pool. Each batch save acquires its own connection from the
// pool; nothing is held across saves.
type Postgres struct {
	pool      *pgxpool.Pool
	batchSize int
	log       *zap.Logger
}

// NewPostgres opens a pool against databaseURL and verifies connectivity.
func NewPostgres(ctx context.Context, databaseURL string, batchSize int, log *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if batchSize < 1 {
		batchSize = 1000
	}
	return &Postgres{pool: pool, batchSize: batchSize, log: log}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Pool exposes the underlying pool for read-side consumers.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// EnsureSchema creates tables and indexes if they don't exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	p.log.Info("database schema ensured")
	return nil
}

const upsertRoadSQL = `
	INSERT INTO roads (
		id, geometry, road_type, surface, smoothness,
		name, lanes, oneway, max_speed,
		length, surface_factor, smoothness_factor,
		effective_speed_kmh, penalized_speed_kmh, tags
	)
	VALUES ($1, ST_GeomFromEWKT($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO UPDATE SET
		geometry = EXCLUDED.geometry,
		road_type = EXCLUDED.road_type,
		surface = EXCLUDED.surface,
		smoothness = EXCLUDED.smoothness,
		name = EXCLUDED.name,
		lanes = EXCLUDED.lanes,
		oneway = EXCLUDED.oneway,
		max_speed = EXCLUDED.max_speed,
		length = EXCLUDED.length,
		surface_factor = EXCLUDED.surface_factor,
		smoothness_factor = EXCLUDED.smoothness_factor,
		effective_speed_kmh = EXCLUDED.effective_speed_kmh,
		penalized_speed_kmh = EXCLUDED.penalized_speed_kmh,
		tags = EXCLUDED.tags,
		updated_at = NOW()
`

// SaveRoads streams roads into the store in batches.
func (p *Postgres) SaveRoads(ctx context.Context, roads iter.Seq2[model.Road, error]) (int, error) {
	count, err := saveStream(ctx, roads, p.batchSize, p.SaveRoadsBatch)
	if err == nil {
		p.log.Info("written roads", zap.Int("count", count))
	}
	return count, err
}

// SaveRoadsBatch upserts one pre-built batch of roads.
func (p *Postgres) SaveRoadsBatch(ctx context.Context, roads []model.Road) (int, error) {
	if len(roads) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, r := range roads {
		penalty := r.Penalty()
		b.Queue(upsertRoadSQL,
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
		)
	}
	if err := p.sendBatch(ctx, b); err != nil {
		return 0, fmt.Errorf("upsert roads: %w", err)
	}
	return len(roads), nil
}

const upsertSegmentSQL = `
	INSERT INTO segments (
		id, road_id, geometry, start_point, end_point, length,
		surface_factor, smoothness_factor, rainy_season_factor,
		oneway, base_speed, effective_speed_kmh, travel_time_seconds, cost
	)
	VALUES ($1, $2, ST_GeomFromEWKT($3), ST_GeomFromEWKT($4), ST_GeomFromEWKT($5),
	        $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO UPDATE SET
		road_id = EXCLUDED.road_id,
		geometry = EXCLUDED.geometry,
		start_point = EXCLUDED.start_point,
		end_point = EXCLUDED.end_point,
		length = EXCLUDED.length,
		surface_factor = EXCLUDED.surface_factor,
		smoothness_factor = EXCLUDED.smoothness_factor,
		rainy_season_factor = EXCLUDED.rainy_season_factor,
		oneway = EXCLUDED.oneway,
		base_speed = EXCLUDED.base_speed,
		effective_speed_kmh = EXCLUDED.effective_speed_kmh,
		travel_time_seconds = EXCLUDED.travel_time_seconds,
		cost = EXCLUDED.cost,
		updated_at = NOW()
`

// SaveSegments streams segments into the store in batches.
func (p *Postgres) SaveSegments(ctx context.Context, segments iter.Seq2[model.Segment, error]) (int, error) {
	count, err := saveStream(ctx, segments, p.batchSize, p.SaveSegmentsBatch)
	if err == nil {
		p.log.Info("written segments", zap.Int("count", count))
	}
	return count, err
}

// SaveSegmentsBatch upserts one pre-built batch of segments.
func (p *Postgres) SaveSegmentsBatch(ctx context.Context, segments []model.Segment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, s := range segments {
		b.Queue(upsertSegmentSQL,
			s.ID,
			s.RoadID,
			wktLineString([]geo.Coordinates{s.Start, s.End}),
			wktPoint(s.Start),
			wktPoint(s.End),
			s.Length,
			s.Penalty.SurfaceFactor,
			s.Penalty.SmoothnessFactor,
			s.Penalty.RainySeasonFactor,
			s.Oneway,
			s.BaseSpeed,
			s.EffectiveSpeedKmh(),
			s.TravelTimeSeconds(),
			s.Cost(),
		)
	}
	if err := p.sendBatch(ctx, b); err != nil {
		return 0, fmt.Errorf("upsert segments: %w", err)
	}
	return len(segments), nil
}

const upsertPOISQL = `
	INSERT INTO pois (
		id, geometry, category, subcategory, name,
		address, phone, opening_hours, price_range, website,
		is_24_7, formatted_address,
		name_normalized, search_text, search_text_normalized, has_name, popularity,
		tags
	)
	VALUES ($1, ST_GeomFromEWKT($2), $3, $4, $5, $6, $7, $8, $9, $10,
	        $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (id) DO UPDATE SET
		geometry = EXCLUDED.geometry,
		category = EXCLUDED.category,
		subcategory = EXCLUDED.subcategory,
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		phone = EXCLUDED.phone,
		opening_hours = EXCLUDED.opening_hours,
		price_range = EXCLUDED.price_range,
		website = EXCLUDED.website,
		is_24_7 = EXCLUDED.is_24_7,
		formatted_address = EXCLUDED.formatted_address,
		name_normalized = EXCLUDED.name_normalized,
		search_text = EXCLUDED.search_text,
		search_text_normalized = EXCLUDED.search_text_normalized,
		has_name = EXCLUDED.has_name,
		popularity = EXCLUDED.popularity,
		tags = EXCLUDED.tags,
		updated_at = NOW()
`

// SavePOIs streams POIs into the store in batches.
func (p *Postgres) SavePOIs(ctx context.Context, pois iter.Seq2[model.POI, error]) (int, error) {
	count, err := saveStream(ctx, pois, p.batchSize, p.SavePOIsBatch)
	if err == nil {
		p.log.Info("written POIs", zap.Int("count", count))
	}
	return count, err
}

// SavePOIsBatch upserts one pre-built batch of POIs.
func (p *Postgres) SavePOIsBatch(ctx context.Context, pois []model.POI) (int, error) {
	if len(pois) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, poi := range pois {
		b.Queue(upsertPOISQL,
			poi.ID,
			wktPoint(poi.Coordinates),
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
		)
	}
	if err := p.sendBatch(ctx, b); err != nil {
		return 0, fmt.Errorf("upsert pois: %w", err)
	}
	return len(pois), nil
}

const upsertZoneSQL = `
	INSERT INTO zones (
		id, geometry, zone_type, name, level, parent_zone_id,
		iso_code, population, area, centroid, tags
	)
	VALUES ($1, ST_Multi(ST_GeomFromEWKT($2)), $3, $4, $5, $6, $7, $8, $9,
	        ST_GeomFromEWKT($10), $11)
	ON CONFLICT (id) DO UPDATE SET
		geometry = EXCLUDED.geometry,
		zone_type = EXCLUDED.zone_type,
		name = EXCLUDED.name,
		level = EXCLUDED.level,
		parent_zone_id = EXCLUDED.parent_zone_id,
		iso_code = EXCLUDED.iso_code,
		population = EXCLUDED.population,
		area = EXCLUDED.area,
		centroid = EXCLUDED.centroid,
		tags = EXCLUDED.tags,
		updated_at = NOW()
`

// SaveZones streams zones into the store in batches.
func (p *Postgres) SaveZones(ctx context.Context, zones iter.Seq2[model.Zone, error]) (int, error) {
	count, err := saveStream(ctx, zones, p.batchSize, p.SaveZonesBatch)
	if err == nil {
		p.log.Info("written zones", zap.Int("count", count))
	}
	return count, err
}

// SaveZonesBatch upserts one pre-built batch of zones.
func (p *Postgres) SaveZonesBatch(ctx context.Context, zones []model.Zone) (int, error) {
	if len(zones) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, z := range zones {
		b.Queue(upsertZoneSQL,
			z.ID,
			wktPolygon(z.Geometry),
			string(z.Type),
			z.Name,
			z.Level,
			nullInt64(z.ParentID),
			nullString(z.ISOCode),
			nullInt(z.Population),
			z.Area(),
			wktPoint(z.Centroid()),
			tagsJSON(z.Tags),
		)
	}
	if err := p.sendBatch(ctx, b); err != nil {
		return 0, fmt.Errorf("upsert zones: %w", err)
	}
	return len(zones), nil
}

func (p *Postgres) sendBatch(ctx context.Context, b *pgx.Batch) error {
	br := p.pool.SendBatch(ctx, b)
	defer br.Close()
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// RunRecord is the bookkeeping row written after a pipeline run.
type RunRecord struct {
	RunID           string
	StartedAt       time.Time
	RoadsCount      int
	POIsCount       int
	ZonesCount      int
	SegmentsCount   int
	DurationSeconds float64
}

// RecordRun stores the outcome of one import run.
func (p *Postgres) RecordRun(ctx context.Context, rec RunRecord) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO import_runs (
			run_id, started_at_utc, roads_count, pois_count,
			zones_count, segments_count, duration_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.RunID, rec.StartedAt.UTC(), rec.RoadsCount, rec.POIsCount,
		rec.ZonesCount, rec.SegmentsCount, rec.DurationSeconds)
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}

// ComputeZoneHierarchy assigns parent_zone_id for every zone via spatial
// containment, bottom-up from fokontany (level 4) to region (level 1). A
// child's parent is the smallest zone one level up whose geometry contains
// the child's centroid. Returns the number of relationships established.
func (p *Postgres) ComputeZoneHierarchy(ctx context.Context) (int, error) {
	total := 0
	for level := 4; level > 1; level-- {
		tag, err := p.pool.Exec(ctx, `
			UPDATE zones AS child
			SET parent_zone_id = (
				SELECT parent.id
				FROM zones AS parent
				WHERE parent.level = $1
				  AND ST_Contains(parent.geometry, ST_Centroid(child.geometry))
				ORDER BY ST_Area(parent.geometry) ASC
				LIMIT 1
			)
			WHERE child.level = $2
		`, level-1, level)
		if err != nil {
			return total, fmt.Errorf("compute hierarchy at level %d: %w", level, err)
		}
		updated := int(tag.RowsAffected())
		total += updated
		p.log.Info("updated zone parents", zap.Int("level", level), zap.Int("count", updated))
	}
	return total, nil
}

func addressJSON(a model.Address) *string {
	if a.IsEmpty() {
		return nil
	}
	raw, err := json.Marshal(map[string]string{
		"street":      a.Street,
		"housenumber": a.Housenumber,
		"city":        a.City,
		"postcode":    a.Postcode,
	})
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}
