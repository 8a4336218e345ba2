// Package main implements the entry point for vhubd, the media-hub control
// daemon: it accepts device and client connections on one TCP listener,
// serves the REST surface on a second, and brokers get-stream requests
// between the two.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mediahub/vhub/config"
	"github.com/mediahub/vhub/dispatch"
	"github.com/mediahub/vhub/events"
	"github.com/mediahub/vhub/health"
	"github.com/mediahub/vhub/metric"
	"github.com/mediahub/vhub/registry"
	"github.com/mediahub/vhub/relay"
	"github.com/mediahub/vhub/restapi"
	"github.com/mediahub/vhub/session"
	"github.com/mediahub/vhub/snapshot"
	"github.com/mediahub/vhub/telemetry"
)

const Version = "0.1.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("vhubd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit := initializeCLI()
	if shouldExit {
		return nil
	}
	slog.SetDefault(logger)

	configManager, err := config.NewManager(cliCfg.ConfigPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer configManager.Close()
	cfg := configManager.Config().Get()

	tp, err := telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		ServiceName:  "vhubd",
		Endpoint:     cfg.Telemetry.Endpoint,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	reg := registry.New()
	hub := events.NewHub(logger)
	reg.AddListener(hub)

	hooks, closeHooks, err := buildRelayHooks(cfg, logger)
	if err != nil {
		return err
	}
	defer closeHooks()

	snapStore, err := buildSnapshotStore(cfg, logger)
	if err != nil {
		return err
	}

	d := dispatch.New(reg, hooks, snapStore, cfg.Auth.DeviceTokenHashes,
		cfg.Timeouts.GetStreamTimeout, cfg.Timeouts.PollInterval, logger)

	monitor := health.NewMonitor()
	metricsRegistry := metric.NewMetricsRegistry()

	rest := &restapi.Server{
		Dispatcher:       d,
		Health:           monitor,
		Metrics:          metricsRegistry,
		Events:           hub,
		Logger:           logger,
		GetStreamTimeout: cfg.Timeouts.GetStreamTimeout,
		PollInterval:     cfg.Timeouts.PollInterval,
	}
	router, err := rest.Router()
	if err != nil {
		return fmt.Errorf("build rest router: %w", err)
	}

	ctx, stop := newShutdownContext()
	defer stop()

	return runServers(ctx, cfg, logger, monitor, d, router)
}

func initializeCLI() (*CLIConfig, *slog.Logger, bool) {
	cliCfg := parseFlags()
	if cliCfg.ShowVersion {
		fmt.Printf("vhubd version %s\n", Version)
		return nil, nil, true
	}
	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	logger.Info("starting vhubd", "version", Version, "config_path", cliCfg.ConfigPath)
	return cliCfg, logger, false
}

func buildRelayHooks(cfg *config.Config, logger *slog.Logger) (relay.Hooks, func(), error) {
	if cfg.RelayStore.Addr == "" {
		logger.Warn("relay_store.addr unset; running with no-op relay hooks")
		return relay.NoopHooks{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RelayStore.Addr,
		Password: cfg.RelayStore.Password,
		DB:       cfg.RelayStore.DB,
	})
	return relay.NewRedisHooks(client), func() { _ = client.Close() }, nil
}

func buildSnapshotStore(cfg *config.Config, logger *slog.Logger) (*snapshot.Store, error) {
	var index *snapshot.Index
	if cfg.Snapshot.IndexPath != "" {
		idx, err := snapshot.OpenIndex(cfg.Snapshot.IndexPath)
		if err != nil {
			return nil, fmt.Errorf("open snapshot index: %w", err)
		}
		index = idx
	}

	var s3Sink *snapshot.S3Sink
	if cfg.Snapshot.S3.Enabled {
		sink, err := snapshot.NewS3Sink(context.Background(),
			cfg.Snapshot.S3.Bucket, cfg.Snapshot.S3.Region, cfg.Snapshot.S3.Endpoint, cfg.Snapshot.S3.Prefix,
			cfg.Snapshot.S3.AccessKey, cfg.Snapshot.S3.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("create s3 snapshot mirror: %w", err)
		}
		s3Sink = sink
	}

	return snapshot.NewStore(cfg.Snapshot.LocalRoot, cfg.Snapshot.WebRoot, index, s3Sink, logger), nil
}

// runServers starts the device/client listener and the REST server, and
// waits for either to fail or for ctx to be canceled by a shutdown signal.
func runServers(ctx context.Context, cfg *config.Config, logger *slog.Logger, monitor *health.Monitor, d *dispatch.Dispatcher, router http.Handler) error {
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Listen, err)
	}
	if cfg.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("load tls keypair: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{Certificates: []tls.Certificate{cert}})
	}

	httpServer := &http.Server{Addr: cfg.RESTAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		monitor.UpdateHealthy("session_listener", "accepting connections")
		err := session.Accept(gctx, ln, cfg.Timeouts.IdleTimeout, logger, func(s *session.Session) {
			s.Run(gctx, d, cfg.Timeouts.PollInterval)
		})
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		monitor.UpdateHealthy("rest_server", "listening on "+cfg.RESTAddr)
		logger.Info("rest api listening", "addr", cfg.RESTAddr)
		var err error
		if cfg.TLS.Enabled {
			err = httpServer.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, draining servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = ln.Close()
		return nil
	})

	return g.Wait()
}
