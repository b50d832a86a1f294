package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/ordinate-io/sequencer/internal/allocator"
	"github.com/ordinate-io/sequencer/internal/client"
	"github.com/ordinate-io/sequencer/internal/config"
	"github.com/ordinate-io/sequencer/internal/conflictcache"
	"github.com/ordinate-io/sequencer/internal/handler"
	"github.com/ordinate-io/sequencer/internal/health"
	"github.com/ordinate-io/sequencer/internal/lease"
	"github.com/ordinate-io/sequencer/internal/leasestore"
	"github.com/ordinate-io/sequencer/internal/membership"
	"github.com/ordinate-io/sequencer/internal/metrics"
	"github.com/ordinate-io/sequencer/internal/server"
	"github.com/ordinate-io/sequencer/internal/streamindex"
	"github.com/ordinate-io/sequencer/internal/util/workerpool"
	"github.com/ordinate-io/sequencer/internal/validation"
	pb "github.com/ordinate-io/sequencer/pkg/sequencerpb"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.String("node_id", cfg.Server.NodeID),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("lease_backend", cfg.Lease.Backend),
		zap.String("conflict_cache_policy", cfg.ConflictCache.Policy))

	leaseStore, err := newLeaseStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize lease store", zap.Error(err))
	}
	defer leaseStore.Close()

	leaseMgr := lease.NewManager(leaseStore, cfg.Lease.LeaseLength, cfg.Lease.LeaseRenewalNotice, logger)
	index := streamindex.New()

	cache, err := newConflictCache(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize conflict cache", zap.Error(err))
	}

	alloc := allocator.New(leaseMgr, index, cache, logger)

	m := metrics.NewMetrics(cfg.Server.NodeID)
	alloc.SetMetrics(m)

	initialOverride := lease.NoInitialTokenOverride
	if cfg.Lease.InitialToken != nil {
		initialOverride = *cfg.Lease.InitialToken
	}

	if err := alloc.Initialize(context.Background(), initialOverride); err != nil {
		logger.Fatal("failed to initialize allocator", zap.Error(err))
	}

	validator := validation.NewValidator()
	sequencerHandler := handler.NewSequencerHandler(alloc, validator, logger)

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	healthChecker := health.NewHealthChecker(&health.HealthCheckConfig{NodeID: cfg.Server.NodeID}, alloc, leaseStore, logger)
	go healthChecker.Start(appCtx)

	if adaptiveCache, ok := cache.(*conflictcache.AdaptiveCache); ok {
		go runAdaptiveWeightAdjustment(appCtx, adaptiveCache, cfg.ConflictCache.AdaptiveWindow)
	}

	var advertiser *membership.Advertiser
	if cfg.Membership.Enabled {
		advertiser, err = membership.New(membership.Config{
			NodeID:         cfg.Server.NodeID,
			BindAddr:       cfg.Server.Host,
			BindPort:       cfg.Membership.BindPort,
			SeedNodes:      cfg.Membership.SeedNodes,
			GossipInterval: cfg.Membership.GossipInterval,
			ProbeTimeout:   cfg.Membership.ProbeTimeout,
			ProbeInterval:  cfg.Membership.ProbeInterval,
		}, alloc, logger)
		if err != nil {
			logger.Error("failed to initialize membership advertiser", zap.Error(err))
		} else {
			defer advertiser.Shutdown()
			logger.Info("membership advertiser initialized")
		}
	}

	backgroundPool := workerpool.NewWorkerPool(&workerpool.Config{
		Name:       "sequencer-background",
		MaxWorkers: 4,
		QueueSize:  16,
		Logger:     logger,
	})
	defer backgroundPool.Stop(cfg.Server.ShutdownTimeout)

	if cfg.Layout.Enabled {
		layoutClient := client.NewLayoutClient(cfg.Layout.BaseURL, logger)
		err := backgroundPool.SubmitWithContext(appCtx, workerpool.Task{
			ID:      "layout-registration",
			Context: appCtx,
			Fn: func(ctx context.Context) error {
				leaseEnd := leaseMgr.LeaseLimit()
				return layoutClient.RegisterWithRetry(ctx, cfg.Server.NodeID, cfg.Server.Host, cfg.Server.Port, leaseEnd, cfg.Layout.MaxRetries, cfg.Layout.RetryInterval)
			},
		})
		if err != nil {
			logger.Error("failed to submit layout registration task", zap.Error(err))
		}
	}

	var metricsServer *server.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = server.NewMetricsServer(&server.MetricsServerConfig{
			Port: cfg.Metrics.Port,
			Path: cfg.Metrics.Path,
		}, m, healthChecker, backgroundPool, logger)
		if err := metricsServer.Start(); err != nil {
			logger.Error("failed to start metrics server", zap.Error(err))
		} else {
			defer metricsServer.Stop()
		}
	}

	grpcServer := grpc.NewServer(
		grpc.MaxConcurrentStreams(uint32(cfg.Server.MaxConnections)),
	)
	pb.RegisterSequencerServiceServer(grpcServer, sequencerHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	logger.Info("sequencer service starting",
		zap.String("node_id", cfg.Server.NodeID),
		zap.String("address", addr),
		zap.Int64("global_tail", alloc.GlobalTail()))

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down gracefully")
		healthChecker.SetReadiness(false)
		cancelApp()
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(listener); err != nil {
		logger.Fatal("failed to serve", zap.Error(err))
	}
}

func newLeaseStore(cfg *config.Config, logger *zap.Logger) (leasestore.Store, error) {
	switch cfg.Lease.Backend {
	case "bolt":
		return leasestore.NewBoltStore(cfg.Lease.BoltPath)
	case "redis":
		return leasestore.NewRedisStore(cfg.Lease.RedisHost, cfg.Lease.RedisPort, cfg.Lease.RedisPassword, cfg.Lease.RedisDB, logger)
	case "postgres":
		return leasestore.NewPostgresStore(cfg.Lease.PostgresHost, cfg.Lease.PostgresPort, cfg.Lease.PostgresDatabase, cfg.Lease.PostgresUser, cfg.Lease.PostgresPassword, logger)
	case "memory":
		return leasestore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown lease backend %q", cfg.Lease.Backend)
	}
}

func newConflictCache(cfg *config.Config, logger *zap.Logger) (conflictcache.Cache, error) {
	switch cfg.ConflictCache.Policy {
	case "adaptive":
		return conflictcache.NewAdaptiveCache(cfg.ConflictCache.MaxSize, cfg.ConflictCache.FrequencyWeight, cfg.ConflictCache.RecencyWeight, logger), nil
	case "lru":
		return conflictcache.NewLRUCache(cfg.ConflictCache.MaxSize)
	default:
		return nil, fmt.Errorf("unknown conflict cache policy %q", cfg.ConflictCache.Policy)
	}
}

// runAdaptiveWeightAdjustment retunes the conflict cache's frequency/recency
// blend once per window until ctx is cancelled.
func runAdaptiveWeightAdjustment(ctx context.Context, cache *conflictcache.AdaptiveCache, window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cache.AdjustWeights(window)
		case <-ctx.Done():
			return
		}
	}
}

func initLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}
