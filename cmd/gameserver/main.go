package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aethelvnly/HEAVENSWORN/internal/cache"
	"github.com/Aethelvnly/HEAVENSWORN/internal/clock"
	"github.com/Aethelvnly/HEAVENSWORN/internal/config"
	"github.com/Aethelvnly/HEAVENSWORN/internal/db"
	"github.com/Aethelvnly/HEAVENSWORN/internal/events"
	"github.com/Aethelvnly/HEAVENSWORN/internal/world"
)

const GameConfigPath = "config/gameserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := GameConfigPath
	if p := os.Getenv("HEAVENSWORN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGameServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("heavensworn gameplay core starting", "log_level", cfg.LogLevel)

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close()
	entityRepo := db.NewEntityRepository(database.Pool())

	var snapCache *cache.SnapshotCache
	if cfg.Cache.Addr != "" {
		snapCache = cache.New(cfg.Cache.Addr, cfg.Cache.TTL())
		if err := snapCache.Ping(ctx); err != nil {
			return fmt.Errorf("snapshot cache: %w", err)
		}
		defer snapCache.Close()
		slog.Info("snapshot cache connected", "addr", cfg.Cache.Addr)
	}

	bus := events.NewBus()
	bus.Subscribe(events.LogPublisher{}.Publish)

	srv := &server{
		world: world.New(),
		sched: clock.NewWallScheduler(),
		bus:   bus,
		repo:  entityRepo,
		cache: snapCache,
	}

	for _, id := range cfg.BootEntities {
		if _, err := srv.SpawnEntity(ctx, id); err != nil {
			return fmt.Errorf("spawning boot entity %s: %w", id, err)
		}
	}
	slog.Info("boot entities spawned", "count", len(cfg.BootEntities))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.regenLoop(ctx, cfg.RegenInterval()) })
	g.Go(func() error { return srv.autosaveLoop(ctx, cfg.AutosaveInterval()) })

	slog.Info("gameplay core running",
		"regen_interval", cfg.RegenInterval(),
		"autosave_interval", cfg.AutosaveInterval())

	err = g.Wait()

	// Final flush so no dirty entity is lost on shutdown.
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, id := range cfg.BootEntities {
		srv.DespawnEntity(flushCtx, id)
	}
	srv.saveDirty(flushCtx)

	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
