package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	_ "muxminus-backend/docs"
	"muxminus-backend/internal/archive"
	"muxminus-backend/internal/config"
	"muxminus-backend/internal/media"
	"muxminus-backend/internal/metrics"
	"muxminus-backend/internal/queue"
	"muxminus-backend/internal/repository/postgresql"
	"muxminus-backend/internal/store"
	httptransport "muxminus-backend/internal/transport/http"
)

// @title MuxMinus Processing API
// @version 1.0.0
// @description Audio separation and transcription job service
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	for _, dir := range []string{cfg.UploadsDir, cfg.OutputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create dir %s: %v", dir, err)
		}
	}

	var sinks queue.MultiSink

	// Redis archive is optional: without it terminal jobs are only readable
	// until they are removed from the live registry.
	var arch *archive.RedisArchive
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis not available, archive disabled: %v", err)
		} else {
			arch = archive.NewRedisArchive(rdb, cfg.ArchiveTTL)
			sinks = append(sinks, arch)
		}
	}

	// Postgres history is optional; billing reads it out of band.
	if cfg.PostgresDSN != "" {
		pool, err := postgresql.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("pg: %v", err)
		}
		defer pool.Close()
		sinks = append(sinks, postgresql.NewHistoryRepository(pool))
	}

	var sink queue.Sink
	if len(sinks) > 0 {
		sink = sinks
	}

	processor := media.NewCLIProcessor(cfg.Device, cfg.MP3Bitrate)
	processor.DemucsBin = cfg.DemucsBin
	processor.WhisperBin = cfg.WhisperBin
	processor.WhisperModel = cfg.WhisperModel

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	sched := queue.New(store.New(), processor, queue.Options{
		MaxConcurrent: cfg.MaxConcurrentJobs,
		MaxQueueSize:  cfg.MaxQueueSize,
		OutputsDir:    cfg.OutputsDir,
		Metrics:       collector,
		Sink:          sink,
	})
	sched.Start()

	var handlerArchive httptransport.Archive
	if arch != nil {
		handlerArchive = arch
	}
	h := httptransport.NewHandler(sched, handlerArchive, cfg.UploadsDir, cfg.Device)
	router := httptransport.Routes(h, httptransport.RouterOptions{
		APIKey:      cfg.APIKey,
		RateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("server started addr=%s workers=%d max_queue_size=%d device=%s",
			cfg.HTTPAddr, cfg.MaxConcurrentJobs, cfg.MaxQueueSize, cfg.Device)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}

	// Workers finish their in-flight job before Stop returns.
	sched.Stop()

	log.Println("server stopped")
}
