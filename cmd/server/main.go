package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostel-complaints-backend-go/internal/config"
	"hostel-complaints-backend-go/internal/db"
	httpapi "hostel-complaints-backend-go/internal/http"
	"hostel-complaints-backend-go/internal/logger"
	"hostel-complaints-backend-go/internal/migrations"
	"hostel-complaints-backend-go/internal/services"
	"hostel-complaints-backend-go/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	cleanupLogs, err := logger.Setup(logger.Config{
		Level:         cfg.LogLevel,
		Dir:           cfg.LogDir,
		RetentionDays: cfg.LogRetentionDays,
	})
	if err != nil {
		slog.Warn("file logging disabled", "error", err)
	}
	defer cleanupLogs()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if _, err := services.EnsureStoragePath(cfg.MediaStoragePath, services.BucketComplaints); err != nil {
		slog.Error("media storage", "path", cfg.MediaStoragePath, "error", err)
		os.Exit(1)
	}

	hub := services.NewHealthHub()
	go hub.Run(ctx)
	go services.SampleLoop(ctx, hub, cfg.MediaStoragePath, time.Duration(cfg.MetricsSampleSeconds)*time.Second)

	server := httpapi.NewServer(cfg, st, hub)
	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", addr, "store", cfg.StoreDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	slog.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	case config.DriverPostgres:
		database, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := migrations.Apply(ctx, database, cfg.MigrationsDir); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return store.NewPostgres(database), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
