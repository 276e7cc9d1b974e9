//	@title			imagedrop relay API
//	@version		1.0
//	@description	Receives dropzone uploads and relays them to object storage.
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						session
//	@description				HS256 session token issued by the surrounding application.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imagedrop/service/internal/config"
	"github.com/imagedrop/service/internal/db"
	"github.com/imagedrop/service/internal/ledger"
	"github.com/imagedrop/service/internal/logger"
	"github.com/imagedrop/service/internal/server"
	"github.com/imagedrop/service/internal/storage"
)

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		logger.NewLogger(role).Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg)
	logger.SetLevel(cfg.App.LogLevel)
	if !dotenv {
		log.Info().Msg("no .env file found, reading from environment")
	}

	// Storage is built on the first request that needs it.
	store := storage.NewLazy(storageFactory(cfg, log))

	ledgerSvc := ledger.NewService(nil)
	if cfg.LedgerEnabled() {
		pool, err := openLedger(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("upload ledger init failed")
		}
		defer pool.Close()
		ledgerSvc = ledger.NewService(ledger.NewRepository(pool))
		log.Info().Msg("upload ledger enabled")
	}

	router := server.NewRouter(server.Deps{
		Config: cfg,
		Logger: log,
		Store:  store,
		Ledger: ledgerSvc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("env", cfg.App.Env).
			Str("upload_path", cfg.Relay.Path).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

const role = "imagedrop-relay"

func newLogger(cfg *config.Config) *logger.Logger {
	if cfg.IsProduction() {
		return logger.NewLogger(role)
	}
	return logger.NewConsoleLogger(role)
}

func storageFactory(cfg *config.Config, log *logger.Logger) storage.Factory {
	if cfg.Storage.Driver == config.DriverMemory {
		return func(context.Context) (storage.Storage, error) {
			log.Warn().Msg("using in-memory storage, uploads are lost on restart")
			return storage.NewMemoryStorage(cfg.Storage.PublicBase), nil
		}
	}

	return func(ctx context.Context) (storage.Storage, error) {
		s, err := storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:   cfg.Storage.Endpoint,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			Bucket:     cfg.Storage.Bucket,
			PublicBase: cfg.Storage.PublicBase,
			UseSSL:     cfg.Storage.UseSSL,
			PublicRead: cfg.Storage.PublicRead,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.Storage.Bucket).Msg("object storage ready")
		return s, nil
	}
}

func openLedger(databaseURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(databaseURL); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
