package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/config"
	"courtside/db"
	"courtside/handlers"
	"courtside/logging"
	"courtside/nba"
	"courtside/roster"
	"courtside/scrape"
	"courtside/stats"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Prod)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("courtside exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client := nba.NewClient(
		nba.WithBaseURL(cfg.UpstreamURL),
		nba.WithTimeout(cfg.UpstreamTimeout),
		nba.WithPacer(nba.NewMinIntervalPacer(cfg.Pace)),
		nba.WithSeasonType(cfg.SeasonType),
		nba.WithPerMode(cfg.PerMode),
		nba.WithLogger(logger),
	)

	if cfg.SyncRoster {
		return syncRoster(ctx, cfg, client, logger)
	}

	teams, players, err := loadRoster(cfg.RosterDB)
	if err != nil {
		return err
	}
	if cfg.PlayersFile != "" {
		if players, err = roster.LoadFile("player", cfg.PlayersFile); err != nil {
			return err
		}
	}
	logger.Info("roster loaded",
		zap.String("source", rosterSource(cfg.RosterDB)),
		zap.String("players_file", cfg.PlayersFile),
		zap.Int("teams", teams.Len()),
		zap.Int("players", players.Len()))

	h := handlers.NewHandler(teams, players, stats.NewFetcher(client), logger)
	e := handlers.NewServer(h, logging.RequestLogger(logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func loadRoster(path string) (teams, players *roster.Table, err error) {
	if path != "" {
		return db.LoadRoster(path)
	}
	if teams, err = roster.Teams(); err != nil {
		return nil, nil, err
	}
	if players, err = roster.Players(); err != nil {
		return nil, nil, err
	}
	return teams, players, nil
}

func rosterSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

func syncRoster(ctx context.Context, cfg *config.Config, client *nba.Client, logger *zap.Logger) error {
	store, err := db.Open(cfg.RosterDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RunMigrations(); err != nil {
		return err
	}
	n, err := scrape.SyncPlayers(ctx, client, store, cfg.SyncSeason, logger)
	if err != nil {
		return fmt.Errorf("sync roster: %w", err)
	}
	logger.Info("roster written", zap.String("path", cfg.RosterDB), zap.Int("players", n))
	return nil
}
