package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-touristsafety/internal/config"
	"backend-touristsafety/internal/db"
	"backend-touristsafety/internal/logger"
	"backend-touristsafety/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain
var newServer = server.NewServer

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadEnv         func() error
	loadConfig      func() config.Config
	setupLogger     func(level, format string) *slog.Logger
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadEnv:         func() error { return godotenv.Load() },
		loadConfig:      config.Load,
		setupLogger:     logger.Setup,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	var envErr error
	if deps.loadEnv != nil {
		envErr = deps.loadEnv()
	}
	cfg := deps.loadConfig()
	setup := deps.setupLogger
	if setup == nil {
		setup = logger.Setup
	}
	log := setup(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn("dotenv_load_failed", "err", envErr)
	}

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		if errors.Is(err, db.ErrNoPostgres) {
			log.Info("postgres_disabled")
		} else {
			log.Error("postgres_connect_failed", "err", err)
		}
		pg = nil
	}

	rdb := deps.connectRedis(cfg)
	if rdb == nil {
		log.Info("redis_disabled")
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	log.Info("server_starting", "addr", cfg.ServerPort, "zone_source", cfg.ZoneSource)
	if err := deps.run(context.Background(), cfg, pg, rdb, signals, nil); err != nil {
		log.Error("server_exited", "err", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	srv := newServer(cfg, pg, rdb)
	defer srv.Close()

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.L().Info("server_stopped")
	return nil
}
