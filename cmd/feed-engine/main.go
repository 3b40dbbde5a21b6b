// Command feed-engine wires a feed source, the wire decoder, the SPSC
// ring, and the book manager into a running pipeline, publishing
// snapshots to Redis and persisting ticks to Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/muhammadchandra19/exchange/services/feed-engine/internal/usecase/feedsource"
	"github.com/muhammadchandra19/exchange/services/feed-engine/internal/usecase/pipeline"
	"github.com/muhammadchandra19/exchange/services/feed-engine/internal/usecase/snapshotstore"
	"github.com/muhammadchandra19/exchange/services/feed-engine/internal/usecase/tickstore"
	"github.com/muhammadchandra19/exchange/services/feed-engine/pkg/config"
	"github.com/muhammadchandra19/exchange/services/feed-engine/pkg/logger"
)

func main() {
	runID := uuid.NewString()

	log, err := logger.New(logger.Options{Level: logger.InfoLevel})
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log = log.WithFields(logger.NewField("run_id", runID))

	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		log.Error(err, logger.NewField("operation", "config.Load"))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	snaps := snapshotstore.NewStore(redisClient, cfg.RedisConfig.KeyPrefix, log)

	ticks, err := tickstore.NewStore(ctx, cfg.PostgresConfig.DSN, log)
	if err != nil {
		log.Error(err, logger.NewField("operation", "tickstore.NewStore"))
		os.Exit(1)
	}
	defer ticks.Close()

	source := feedsource.NewReader(cfg.KafkaConfig, log)
	defer source.Close()

	opts := pipeline.DefaultOptions()
	opts.RingCapacity = cfg.RingCapacity

	feedKind := pipeline.FeedLengthPrefixed
	if cfg.Feed == "typed-header" {
		feedKind = pipeline.FeedTypedHeader
	}

	engine := pipeline.New(source, feedKind, snaps, ticks, log, opts)
	engine.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down feed-engine")
	cancel()
	engine.Stop()
	log.Info("feed-engine stopped", logger.NewField("messages_applied", engine.MessageCount()))
}
