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

	"go.uber.org/zap"

	"livechess/internal/auth"
	"livechess/internal/config"
	"livechess/internal/game"
	"livechess/internal/handlers"
	"livechess/internal/logging"
	"livechess/internal/storage"
)

type store interface {
	auth.UserStore
	game.GameStore
	handlers.Games
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store = storage.NewMemory()
	if cfg.DatabaseURL != "" {
		db, err := storage.New(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		st = storage.NewStore(db)
		log.Info("using postgres storage")
	} else {
		log.Info("using in-memory storage")
	}

	var sessions auth.SessionStore = auth.NewMemorySessions()
	if cfg.RedisURL != "" {
		rs, err := auth.NewRedisSessions(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rs.Close()
		sessions = rs
		log.Info("using redis sessions")
	}

	accounts := auth.NewService(st, sessions, cfg.JWTSecret, cfg.TokenTTL)
	hub := game.NewHub(accounts, st, log.Named("hub"))

	h := handlers.NewHandler(accounts, st, hub, log.Named("http"))
	h.Origins = cfg.Origins
	h.Version = map[string]string{"commit": commit, "buildDate": buildDate}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("livechess listening",
			zap.String("addr", cfg.Addr),
			zap.String("commit", commit),
			zap.String("buildDate", buildDate),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		hub.Close()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
