package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/animequiz/internal/catalog"
	"github.com/playperu/animequiz/internal/config"
	"github.com/playperu/animequiz/internal/database"
	"github.com/playperu/animequiz/internal/game"
	"github.com/playperu/animequiz/internal/handler/health"
	"github.com/playperu/animequiz/internal/imagelookup"
	"github.com/playperu/animequiz/internal/leaderboard"
	"github.com/playperu/animequiz/internal/migrations"
	"github.com/playperu/animequiz/internal/progress"
	"github.com/playperu/animequiz/internal/server"
	"github.com/playperu/animequiz/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Catalog ---
	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("catalog loaded", "items", cat.Len(), "with_quotes", len(cat.WithQuotes()))

	// --- Game ---
	store := progress.NewSQLiteStore(db)
	engine := progress.NewEngine(store, cat, progress.Rules{
		StreakBonusXP:  cfg.Game.StreakBonusXP,
		MaxStreakBonus: cfg.Game.MaxStreakBonus,
		SpeedBonusTime: cfg.Game.SpeedBonusTime,
		DailyBonusXP:   cfg.Game.DailyBonusXP,
	}, logger)
	sessions := session.NewManager(cat, cfg.Game.OptionsCount, cfg.Game.RoundTTL)
	images := imagelookup.New(cfg.Jikan.BaseURL, cfg.Jikan.Concurrency, cfg.Jikan.Timeout, cfg.Jikan.Retries, logger)

	checks := map[string]health.Checker{
		"sqlite": health.CheckFunc(store.Ping),
	}

	gameCfg := game.Config{
		Sessions: sessions,
		Engine:   engine,
		Store:    store,
		Catalog:  cat,
		Images:   images,
		Location: cfg.Game.Location(),
		Logger:   logger,
	}

	// --- Redis (optional) ---
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		mirror := leaderboard.New(rdb, leaderboard.DefaultKey)
		gameCfg.Ranking = mirror
		checks["redis"] = mirror
	}

	svc := game.New(gameCfg)
	if gameCfg.Ranking != nil {
		if err := svc.SyncLeaderboard(ctx); err != nil {
			logger.Warn("leaderboard sync failed", "error", err)
		}
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, svc, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
