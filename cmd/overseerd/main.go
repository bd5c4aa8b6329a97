// Command overseerd hosts the overseer engine for one aerie instance.
// It consumes the instance inbox from Redis, publishes events and
// replies, and persists periodic snapshots so the CLI can inspect state
// whether or not the daemon is up.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dyluth/aerie/internal/config"
	"github.com/dyluth/aerie/internal/daemon"
	"github.com/dyluth/aerie/internal/eventstream"
	"github.com/dyluth/aerie/internal/snapshot"
)

func main() {
	// Exit with appropriate code
	os.Exit(run())
}

// run contains the main logic and returns an exit code.
// This separation makes the logic testable and ensures deferred functions run.
func run() int {
	configPath := flag.String("config", config.DefaultFileName, "Path to the aerie configuration file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	zapCfg := zap.NewProductionConfig()
	if *verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration",
			zap.String("path", *configPath),
			zap.String("hint", "run 'aerie init' to scaffold one"),
			zap.Error(err))
		return 1
	}

	instanceName := cfg.InstanceName()

	redisOpts, err := redis.ParseURL(cfg.RedisURL())
	if err != nil {
		logger.Error("invalid Redis URL", zap.Error(err))
		return 1
	}

	stream, err := eventstream.New(redisOpts, instanceName)
	if err != nil {
		logger.Error("failed to create event stream", zap.Error(err))
		return 1
	}
	defer stream.Close()

	store, err := snapshot.NewStore(redisOpts, instanceName)
	if err != nil {
		logger.Error("failed to create snapshot store", zap.Error(err))
		return 1
	}
	defer store.Close()

	// Verify Redis connectivity before settling in
	if err := stream.Ping(context.Background()); err != nil {
		logger.Error("redis not accessible",
			zap.String("url", cfg.RedisURL()),
			zap.Error(err))
		return 1
	}

	engine := daemon.New(cfg, stream, store, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := engine.Run(runCtx); err != nil {
		logger.Error("overseer engine failed", zap.Error(err))
		return 1
	}

	logger.Info("overseer stopped")
	return 0
}
