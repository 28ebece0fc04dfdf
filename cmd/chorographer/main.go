package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ny-randriantsarafara/chorographer/internal/config"
	"github.com/ny-randriantsarafara/chorographer/internal/logging"
	"github.com/ny-randriantsarafara/chorographer/internal/osm"
	"github.com/ny-randriantsarafara/chorographer/internal/pipeline"
	"github.com/ny-randriantsarafara/chorographer/internal/repository"
)

// store is the union of the repository port and the bookkeeping both
// backends provide.
type store interface {
	pipeline.Repository
	EnsureSchema(ctx context.Context) error
	RecordRun(ctx context.Context, rec repository.RunRecord) error
}

func main() {
	entityTypes := flag.String("entity-types", "", "Comma-separated entity types to process (roads,pois,zones,segments). Empty means all.")
	pbfPath := flag.String("pbf", "", "Path to the OSM PBF file (overrides OSM_FILE_PATH)")
	sequential := flag.Bool("sequential", false, "Force the sequential strategy even when parallel is enabled")
	flag.Parse()

	cfg := config.Load()
	if *pbfPath != "" {
		cfg.PBFPath = *pbfPath
	}
	if *sequential {
		cfg.EnableParallel = false
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	kinds, err := pipeline.ParseKinds(*entityTypes)
	if err != nil {
		log.Fatal("invalid -entity-types", zap.Error(err))
	}

	if err := run(context.Background(), cfg, kinds, log); err != nil {
		log.Fatal("pipeline failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, kinds pipeline.KindSet, log *zap.Logger) error {
	log.Info("starting chorographer ETL pipeline",
		zap.String("pbf", cfg.PBFPath),
		zap.String("store", cfg.Store),
		zap.Bool("parallel", cfg.EnableParallel),
	)

	extractor, err := osm.NewExtractor(cfg.PBFPath, log)
	if err != nil {
		return err
	}

	repo, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	startedAt := time.Now()
	p := pipeline.New(extractor, repo, pipeline.Options{
		BatchSize:  cfg.BatchSize,
		QueueDepth: cfg.QueueDepth,
		Parallel:   cfg.EnableParallel,
	}, log)

	result, err := p.Run(ctx, kinds)
	if err != nil {
		return err
	}

	log.Info("pipeline complete",
		zap.Int("roads", result.RoadsCount),
		zap.Int("pois", result.POIsCount),
		zap.Int("zones", result.ZonesCount),
		zap.Int("segments", result.SegmentsCount),
		zap.Duration("duration", result.Duration),
	)

	rec := repository.RunRecord{
		RunID:           uuid.New().String(),
		StartedAt:       startedAt,
		RoadsCount:      result.RoadsCount,
		POIsCount:       result.POIsCount,
		ZonesCount:      result.ZonesCount,
		SegmentsCount:   result.SegmentsCount,
		DurationSeconds: result.Duration.Seconds(),
	}
	if err := repo.RecordRun(ctx, rec); err != nil {
		// The data landed; a failed bookkeeping row should not fail the run.
		log.Warn("failed to record import run", zap.Error(err))
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store, func(), error) {
	switch cfg.Store {
	case "sqlite":
		db, err := repository.NewSQLite(cfg.SQLitePath, cfg.BatchSize, log)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case "postgres":
		db, err := repository.NewPostgres(ctx, cfg.PostgresDSN(), cfg.BatchSize, log)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q, use postgres or sqlite", cfg.Store)
	}
}
