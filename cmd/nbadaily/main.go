package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lshi/nbadaily/internal/api/rest"
	"github.com/lshi/nbadaily/internal/api/websocket"
	"github.com/lshi/nbadaily/internal/cache"
	"github.com/lshi/nbadaily/internal/config"
	"github.com/lshi/nbadaily/internal/ingest"
	"github.com/lshi/nbadaily/internal/publisher"
	"github.com/lshi/nbadaily/internal/scheduler"
	"github.com/lshi/nbadaily/internal/snapshot"
	"github.com/lshi/nbadaily/internal/store"
	"github.com/lshi/nbadaily/internal/upstream"
)

const serviceName = "nbadaily"

func main() {
	log.Printf("Starting %s - NBA Daily Stats Service", serviceName)

	// .env is optional; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := store.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Initialize Redis with retry logic
	var redisCache *cache.RedisCache
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
	}
	defer redisCache.Close()

	log.Println("✓ Connected to Redis")

	statusPublisher := publisher.NewRedisStreamPublisher(redisCache.Client())

	// Nightly ingestion
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sched *scheduler.Scheduler
	if cfg.Ingest.EnableNightly {
		client := upstream.NewClient(cfg.Upstream.BaseURL,
			upstream.WithTimeout(cfg.Upstream.Timeout),
			upstream.WithPacing(cfg.Ingest.Pacing),
			upstream.WithMaxRetries(cfg.Ingest.MaxRetries),
		)
		runner := ingest.NewRunner(ingest.Config{
			Season:    cfg.Ingest.Season,
			Client:    client,
			Writer:    snapshot.NewWriter(db, log.Default()),
			Publisher: statusPublisher,
		})

		sched, err = scheduler.NewScheduler(runner, log.Default())
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		if err := sched.Start(cfg.Ingest.NightlyHour); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		log.Println("✓ Nightly ingestion scheduled")
	}

	// Initialize REST API server
	restServer := rest.NewServer(cfg.RESTPort, db, redisCache, cfg.Ingest.Season)
	go func() {
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ REST API server listening on :%s", cfg.RESTPort)

	// Initialize WebSocket server
	wsServer := websocket.NewServer(statusPublisher)
	go func() {
		if err := wsServer.Start(ctx, cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ WebSocket server listening on :%s", cfg.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			log.Printf("Scheduler shutdown error: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}
