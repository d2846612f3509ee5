package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mediatracker/mediatracker-go/internal/config"
	"github.com/mediatracker/mediatracker-go/internal/crypto"
	"github.com/mediatracker/mediatracker-go/internal/handler"
	"github.com/mediatracker/mediatracker-go/internal/repository"
	"github.com/mediatracker/mediatracker-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg, os.Stdout))

	users, media, closeStore, err := openStores(cfg)
	if err != nil {
		slog.Error("database setup failed", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	tokens := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry, nil)
	authService := service.NewAuthService(users, tokens)
	mediaService := service.NewMediaService(media)

	if cfg.SingleUser() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := authService.EnsureUser(ctx, handler.DefaultIdentity(cfg))
		cancel()
		if err != nil {
			slog.Error("default user setup failed", "user_id", cfg.DefaultUserID, "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(cfg, authService, mediaService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.DatabaseDriver, "auth_mode", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStores returns the user and media stores for the configured driver and a
// function that releases them.
func openStores(cfg config.Config) (service.UserStore, service.MediaStore, func(), error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryUserRepository(), repository.NewMemoryMediaRepository(), func() {}, nil
	}

	db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := repository.Migrate(db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Error("closing database", "error", err)
		}
	}
	return repository.NewUserRepository(db), repository.NewMediaRepository(db), closeDB, nil
}
