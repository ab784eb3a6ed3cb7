// Command ingest runs one season ingestion: fetch, normalize, assemble,
// snapshot. It exits non-zero if the snapshot could not be written.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lshi/nbadaily/internal/cache"
	"github.com/lshi/nbadaily/internal/config"
	"github.com/lshi/nbadaily/internal/ingest"
	"github.com/lshi/nbadaily/internal/publisher"
	"github.com/lshi/nbadaily/internal/snapshot"
	"github.com/lshi/nbadaily/internal/store"
	"github.com/lshi/nbadaily/internal/upstream"
)

func main() {
	var (
		season     = flag.String("season", "", "season to ingest, e.g. 2018-19 (default from env)")
		fixtureDir = flag.String("fixtures", "", "also write fixture files into this directory")
		skipDB     = flag.Bool("skip-db", false, "build the snapshot and fixtures without touching the database")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *season != "" {
		cfg.Ingest.Season = *season
	}
	if *skipDB && *fixtureDir == "" {
		log.Fatal("-skip-db requires -fixtures")
	}

	runnerCfg := ingest.Config{
		Season:     cfg.Ingest.Season,
		FixtureDir: *fixtureDir,
		Client: upstream.NewClient(cfg.Upstream.BaseURL,
			upstream.WithTimeout(cfg.Upstream.Timeout),
			upstream.WithPacing(cfg.Ingest.Pacing),
			upstream.WithMaxRetries(cfg.Ingest.MaxRetries),
		),
	}

	var redisCache *cache.RedisCache
	if !*skipDB {
		db, err := store.NewDatabase(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		runnerCfg.Writer = snapshot.NewWriter(db, log.Default())

		// Status publishing is best-effort; ingestion works without Redis.
		if redisCache, err = cache.NewRedisCache(cfg.RedisURL); err != nil {
			log.Printf("Redis unavailable, status publishing disabled: %v", err)
		} else {
			defer redisCache.Close()
			runnerCfg.Publisher = publisher.NewRedisStreamPublisher(redisCache.Client())
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := ingest.NewRunner(runnerCfg).Run(ctx)
	if err != nil {
		log.Printf("Ingestion failed: %v", err)
		os.Exit(1)
	}

	if redisCache != nil {
		if err := redisCache.InvalidateSeason(ctx, cfg.Ingest.Season); err != nil {
			log.Printf("Cache invalidation failed: %v", err)
		}
	}

	for _, t := range report.Tables {
		log.Printf("  %s: %d rows", t.Kind, t.Rows)
	}
	log.Printf("✓ Season %s ingested", cfg.Ingest.Season)
}
