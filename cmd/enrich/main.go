package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ny-randriantsarafara/chorographer/internal/config"
	"github.com/ny-randriantsarafara/chorographer/internal/logging"
	"github.com/ny-randriantsarafara/chorographer/internal/repository"
)

func main() {
	computeHierarchy := flag.Bool("compute-hierarchy", false, "Link each zone to its smallest containing parent zone")
	flag.Parse()

	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if !*computeHierarchy {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	db, err := repository.NewPostgres(ctx, cfg.PostgresDSN(), cfg.BatchSize, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	linked, err := db.ComputeZoneHierarchy(ctx)
	if err != nil {
		log.Fatal("failed to compute zone hierarchy", zap.Error(err))
	}
	log.Info("zone hierarchy computed", zap.Int("zones_linked", linked))
}
