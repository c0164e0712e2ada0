package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/fullstack/catalog-sync/internal/api"
	"github.com/fullstack/catalog-sync/internal/clock/system"
	"github.com/fullstack/catalog-sync/internal/config"
	"github.com/fullstack/catalog-sync/internal/fetcher/httpjson"
	"github.com/fullstack/catalog-sync/internal/logging"
	"github.com/fullstack/catalog-sync/internal/metrics"
	"github.com/fullstack/catalog-sync/internal/progress"
	progresssinks "github.com/fullstack/catalog-sync/internal/progress/sinks"
	pubsubpublisher "github.com/fullstack/catalog-sync/internal/publisher/pubsub"
	"github.com/fullstack/catalog-sync/internal/snapshot"
	gcssnapshot "github.com/fullstack/catalog-sync/internal/snapshot/gcs"
	localsnapshot "github.com/fullstack/catalog-sync/internal/snapshot/local"
	"github.com/fullstack/catalog-sync/internal/store"
	"github.com/fullstack/catalog-sync/internal/store/memory"
	"github.com/fullstack/catalog-sync/internal/store/postgres"
	"github.com/fullstack/catalog-sync/internal/syncer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()
	clk := system.New()

	st, err := newStore(ctx, cfg, clk, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer st.Close()

	archive, err := newArchive(ctx, cfg)
	if err != nil {
		logger.Fatal("snapshot archive init failed", zap.Error(err))
	}

	promSink, err := progresssinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("cycle metrics init failed", zap.Error(err))
	}
	sinks := []progress.Sink{
		progresssinks.NewLogSink(logger.Named("progress")),
		promSink,
	}
	if cfg.PubSub.ProjectID != "" {
		pub, pubErr := pubsubpublisher.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
		if pubErr != nil {
			logger.Fatal("pubsub publisher init failed", zap.Error(pubErr))
		}
		sinks = append(sinks, progresssinks.NewPublishSink(pub))
	}
	hub := progress.NewHub(progress.Config{Logger: logger.Named("hub")}, sinks...)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if hubErr := hub.Close(closeCtx); hubErr != nil {
			logger.Error("progress hub close failed", zap.Error(hubErr))
		}
	}()

	fetcher, err := httpjson.New(httpjson.Config{
		URL:            cfg.Sync.URL,
		ConnectTimeout: cfg.ConnectTimeout(),
		ReadTimeout:    cfg.ReadTimeout(),
	})
	if err != nil {
		logger.Fatal("fetcher init failed", zap.Error(err))
	}

	catalogSyncer := syncer.New(fetcher, st, clk, syncer.Config{
		MaxProducts: cfg.Sync.MaxProducts,
		Archive:     archive,
		Emitter:     hub,
		Logger:      logger.Named("syncer"),
	})

	if cfg.Sync.ClearOnRestart {
		if err := catalogSyncer.ClearOnStart(ctx); err != nil {
			logger.Fatal("clear on restart failed", zap.Error(err))
		}
	}

	scheduler := syncer.NewScheduler(catalogSyncer, cfg.SyncInterval(), logger.Named("scheduler"))
	go scheduler.Run(ctx)

	apiServer := api.NewServer(st, catalogSyncer, api.Options{Logger: logger.Named("api")})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newStore(ctx context.Context, cfg config.Config, clk *system.Clock, logger *zap.Logger) (store.Store, error) {
	if cfg.DB.DSN == "" {
		logger.Warn("no database DSN configured, using in-memory store")
		return memory.New(clk), nil
	}
	return postgres.New(ctx, postgres.Config{
		DSN:             cfg.DB.DSN,
		MaxConns:        int32(cfg.DB.MaxConns),
		MinConns:        int32(cfg.DB.MinConns),
		MaxConnLifetime: cfg.ConnLifetime(),
	}, clk, logger.Named("store"))
}

func newArchive(ctx context.Context, cfg config.Config) (snapshot.Archive, error) {
	switch cfg.Snapshot.Backend {
	case "", "none":
		return snapshot.Noop{}, nil
	case "local":
		return localsnapshot.New(localsnapshot.Config{
			BaseDir: cfg.Snapshot.LocalDir,
			Prefix:  cfg.Snapshot.Prefix,
		})
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		return gcssnapshot.New(client, gcssnapshot.Config{
			Bucket: cfg.Snapshot.GCSBucket,
			Prefix: cfg.Snapshot.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
}
