package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/common/logtrace"
	"github.com/nautobot/nautobot-sub011/internal/config"
	"github.com/nautobot/nautobot-sub011/internal/core/extras/pgstore"
	"github.com/nautobot/nautobot-sub011/internal/core/users"
	"github.com/nautobot/nautobot-sub011/internal/fixtures"
	"github.com/nautobot/nautobot-sub011/internal/server"
)

// EnvConfigFile names the config file when --config is not given.
const EnvConfigFile = "NAUTOBOT_TABLES_CONFIG"

const DefaultConfigFile = "/etc/nautobot/tables.conf"

type cmdoptions struct {
	configFile string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logtrace.InitLogger("")
	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// a missing .env file is fine
	_ = godotenv.Load()
	opt := parseFlags()

	slog := log.With().Str("state", "init").Logger()
	slog.Info().Str("config_file", opt.configFile).Msg("loading config file")
	if err := config.LoadConfig(opt.configFile); err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	cfg := config.Config()
	logtrace.InitLogger(cfg.LogLevel)
	ctx = log.Logger.WithContext(ctx)

	backend, closeBackend, err := createBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	serverErrors, shutdownServer, err := createTableServer(ctx, cfg, backend)
	if err != nil {
		return fmt.Errorf("creating table server: %w", err)
	}

	// Channel to listen for an interrupt or terminate signal from the OS.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		slog.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		shutdownServer()
	}

	slog.Info().Msg("server stopped")
	return nil
}

// createBackend loads the fixture file. With a database configured, feature definitions
// and saved column selections come from PostgreSQL.
func createBackend(ctx context.Context, cfg *config.ConfigParam) (server.Backend, func(), error) {
	if cfg.Fixtures.Path == "" {
		return server.Backend{}, nil, fmt.Errorf("fixtures.path is required")
	}
	var (
		db   *sql.DB
		opts []fixtures.Option
	)
	closeDB := func() {}
	if cfg.HasDB() {
		var err error
		db, err = pgstore.Open(ctx, cfg.DSN())
		if err != nil {
			return server.Backend{}, nil, err
		}
		closeDB = func() { db.Close() }
		store, err := pgstore.New(db, cfg.DB.Schema)
		if err != nil {
			closeDB()
			return server.Backend{}, nil, err
		}
		reg, err := store.Load(ctx)
		if err != nil {
			closeDB()
			return server.Backend{}, nil, err
		}
		opts = append(opts, fixtures.WithExtras(reg))
	}

	ds, err := fixtures.Load(ctx, cfg.Fixtures.Path, opts...)
	if err != nil {
		closeDB()
		return server.Backend{}, nil, err
	}
	backend := server.Backend{Data: ds}
	if db != nil {
		backend.Preferences = users.NewPostgresStore(db)
	}
	return backend, closeDB, nil
}

func createTableServer(ctx context.Context, cfg *config.ConfigParam, backend server.Backend) (chan error, func(), error) {
	slog := log.With().Str("state", "init").Logger()
	s, err := server.CreateNewServer(cfg, backend)
	if err != nil {
		return nil, nil, fmt.Errorf("creating server: %w", err)
	}
	s.MountHandlers()

	srv := &http.Server{
		Addr:              cfg.ServerHostName + ":" + cfg.ServerPort,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info().Str("addr", srv.Addr).Msg("server started")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := func() {
		// Give outstanding requests 5 seconds to complete and initiate the shutdown.
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error().Err(err).Msg("could not stop server gracefully")
			if err := srv.Close(); err != nil {
				slog.Error().Err(err).Msg("could not stop server")
			}
		}
	}
	return serverErrors, shutdown, nil
}

func parseFlags() cmdoptions {
	var opt cmdoptions
	defaultConfig := DefaultConfigFile
	if v := os.Getenv(EnvConfigFile); v != "" {
		defaultConfig = v
	}
	flag.StringVar(&opt.configFile, "config", defaultConfig, "Path to the config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
