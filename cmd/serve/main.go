package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ny-randriantsarafara/chorographer/internal/config"
	"github.com/ny-randriantsarafara/chorographer/internal/logging"
	"github.com/ny-randriantsarafara/chorographer/internal/repository"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	db, err := repository.NewPostgres(ctx, cfg.PostgresDSN(), cfg.BatchSize, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	srv := &server{pool: db.Pool(), log: log}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", srv.health)
	r.Get("/stats", srv.stats)
	r.Get("/pois/near", srv.poisNear)

	log.Info("read API listening", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

type server struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "error",
			"database":  "disconnected",
			"timestamp": time.Now().UTC(),
			"error":     err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}

type statsResponse struct {
	Roads    int64      `json:"roads"`
	Segments int64      `json:"segments"`
	POIs     int64      `json:"pois"`
	Zones    int64      `json:"zones"`
	LastRun  *importRun `json:"lastRun,omitempty"`
}

type importRun struct {
	RunID           string    `json:"runId"`
	StartedAt       time.Time `json:"startedAt"`
	RoadsCount      int       `json:"roadsCount"`
	POIsCount       int       `json:"poisCount"`
	ZonesCount      int       `json:"zonesCount"`
	SegmentsCount   int       `json:"segmentsCount"`
	DurationSeconds float64   `json:"durationSeconds"`
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var resp statsResponse

	row := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM roads),
			(SELECT count(*) FROM segments),
			(SELECT count(*) FROM pois),
			(SELECT count(*) FROM zones)
	`)
	if err := row.Scan(&resp.Roads, &resp.Segments, &resp.POIs, &resp.Zones); err != nil {
		s.log.Error("stats query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to query stats"})
		return
	}

	var run importRun
	err := s.pool.QueryRow(ctx, `
		SELECT run_id, started_at_utc, roads_count, pois_count, zones_count, segments_count, duration_seconds
		FROM import_runs ORDER BY started_at_utc DESC LIMIT 1
	`).Scan(&run.RunID, &run.StartedAt, &run.RoadsCount, &run.POIsCount, &run.ZonesCount, &run.SegmentsCount, &run.DurationSeconds)
	if err == nil {
		resp.LastRun = &run
	}

	writeJSON(w, http.StatusOK, resp)
}

type poiResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name,omitempty"`
	Category       string  `json:"category"`
	Subcategory    string  `json:"subcategory,omitempty"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	DistanceMeters float64 `json:"distanceMeters"`
}

func (s *server) poisNear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lon query parameters are required"})
		return
	}
	radius := 500.0
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "radius must be a positive number of meters"})
			return
		}
		radius = parsed
	}

	rows, err := s.pool.Query(r.Context(), `
		SELECT id, COALESCE(name, ''), category, COALESCE(subcategory, ''),
			ST_Y(geometry), ST_X(geometry),
			ST_Distance(geometry::geography, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography)
		FROM pois
		WHERE ST_DWithin(geometry::geography, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)
		ORDER BY 7
		LIMIT 100
	`, lat, lon, radius)
	if err != nil {
		s.log.Error("pois near query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to query pois"})
		return
	}
	defer rows.Close()

	pois := []poiResponse{}
	for rows.Next() {
		var p poiResponse
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Subcategory, &p.Lat, &p.Lon, &p.DistanceMeters); err != nil {
			s.log.Error("pois near scan failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read pois"})
			return
		}
		pois = append(pois, p)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pois":  pois,
		"count": len(pois),
	})
}
