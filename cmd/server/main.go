package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mapleins/community/internal/api"
	"github.com/mapleins/community/internal/config"
	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/feed"
	"github.com/mapleins/community/internal/geo"
	"github.com/mapleins/community/internal/stats"
	"github.com/mapleins/community/internal/waitlist"
	"github.com/mapleins/community/internal/web"
)

var envFile string

func newLogger(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level.SetLevel(zapcore.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Development = false
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level.SetLevel(zapcore.InfoLevel)
	}
	cfg.OutputPaths = []string{"stdout"}

	return cfg.Build()
}

func main() {
	flag.StringVar(&envFile, "env-file", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err != nil {
		// the logger depends on config, so fall back to a plain one
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPgRepository(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("db close", zap.Error(err))
		}
	}()

	if err := database.Migrate(db.DB()); err != nil {
		return err
	}

	if cfg.SeedRooms {
		n, err := db.SeedRooms(ctx, geo.CatalogRooms())
		if err != nil {
			return err
		}
		logger.Info("room catalog seeded", zap.Int("inserted", n))
	}

	statsUpdater := stats.NewStatsUpdater()
	statsUpdater.Run()
	defer statsUpdater.Stop()

	hub := feed.NewHub(logger.Named("hub"), db, statsUpdater)
	go hub.Run()

	listener := feed.NewListener(cfg.DatabaseDSN, database.NotifyChannel, db, hub, logger.Named("listener"))
	listenerErr := make(chan error, 1)
	go func() {
		listenerErr <- listener.Run(ctx)
	}()

	sink, err := waitlist.NewSink(ctx, cfg.Waitlist.WebhookURL, cfg.Waitlist.SheetId, cfg.Waitlist.SheetRange, cfg.Waitlist.CredentialsFile)
	if err != nil {
		return err
	}
	if sink == nil {
		logger.Warn("no waitlist sink configured, submissions will fail")
	}
	wl := waitlist.NewService(sink, logger.Named("waitlist"), statsUpdater)

	pages, err := web.NewTemplateCache()
	if err != nil {
		return err
	}

	srv := api.NewApp(logger, hub, db, wl, pages, statsUpdater, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", zap.Error(err))
		}
	case err := <-listenerErr:
		logger.Error("notification listener stopped", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	hub.Shutdown()
	return nil
}

