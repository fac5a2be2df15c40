package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"slotbook/internal/config"
	"slotbook/internal/metrics"
	"slotbook/internal/service/booking"
	"slotbook/internal/store"
	"slotbook/internal/store/memory"
	"slotbook/internal/store/postgres"
	"slotbook/internal/store/sqlite"
	grpcTransport "slotbook/internal/transport/grpc"
	"slotbook/internal/transport/httpadmin"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup completes before exit.
func run() int {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "slotbook-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		return 1
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "slotbook-server"),
	)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, log, cfg)
}

// serve runs the gRPC and admin servers until ctx is done or one of them
// fails, then closes the store.
func serve(ctx context.Context, log *slog.Logger, cfg config.Config) int {
	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	repo, closeStore, err := openStore(ctx, log, cfg)
	if err != nil {
		log.Error("store open failed", slog.Any("err", err), slog.String("storage_driver", cfg.StorageDriver))
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("store close failed", slog.Any("err", err))
		}
	}()

	m := metrics.New(nil)
	svc := booking.NewService(repo, booking.Options{
		Window: booking.Window{
			Start: cfg.BookingWindowStart,
			End:   cfg.BookingWindowEnd,
		},
		MaxActivePerUser: cfg.MaxActivePerUser,
		Recorder:         m,
	})

	limiter := grpcTransport.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	grpcServer := grpcTransport.NewServer(svc, log, grpcTransport.ServerOptions{
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.GRPCRequestTimeout,
		Limiter:        limiter,
		Metrics:        m,
	})

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		return 1
	}

	adminServer := httpadmin.NewServer(cfg.HTTPAddr, httpadmin.NewHandler(repo, m.Registry, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("grpc server started", slog.String("grpc_addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("admin http server started", slog.String("http_addr", cfg.HTTPAddr))
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			log.Info("shutdown signal received")
		}
		shutdown(log, grpcServer, adminServer, cfg.ShutdownTimeout)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		return 1
	}
	return 0
}

func openStore(ctx context.Context, log *slog.Logger, cfg config.Config) (store.AppointmentRepository, func() error, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		db, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewAppointmentRepo(db), func() error { return postgres.Close(db) }, nil
	case config.DriverSQLite:
		log.Info("opening sqlite database", slog.String("path", cfg.SQLitePath))
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.DriverMemory:
		log.Warn("using in-memory store; appointments are lost on restart")
		return memory.NewAppointmentRepo(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, admin *http.Server, timeout time.Duration) {
	log.Info("shutting down servers", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := admin.Shutdown(ctx); err != nil {
		log.Warn("admin http shutdown failed", slog.Any("err", err))
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
