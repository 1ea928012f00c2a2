package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/programme-lv/ojuzman/internal/config"
	"github.com/programme-lv/ojuzman/internal/logging"
	"github.com/programme-lv/ojuzman/internal/pool"
	"github.com/programme-lv/ojuzman/internal/submitter"
	"github.com/urfave/cli/v3"
)

type app struct {
	cfg  *config.Config
	log  *slog.Logger
	pool *pool.Manager
}

// loadApp reads configuration and builds the pool without logging in.
func loadApp(cmd *cli.Command) (*app, error) {
	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log, err := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	return &app{
		cfg:  cfg,
		log:  log,
		pool: pool.New(cfg.OjuzSite(), cfg.OjuzOptions(), log),
	}, nil
}

// startApp loads the app and logs every configured account in.
func startApp(ctx context.Context, cmd *cli.Command) (*app, error) {
	a, err := loadApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.pool.Initialize(ctx, a.cfg.Credentials()); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.pool.Shutdown(ctx); err != nil {
		a.log.Warn("pool shutdown", tint.Err(err))
	}
}

func (a *app) submitter() *submitter.Submitter {
	return submitter.New(a.pool, submitter.WatchOptions{
		Interval:       a.cfg.Watch.Interval.Duration,
		MaxPolls:       a.cfg.Watch.MaxPolls,
		PendingMarkers: a.cfg.Watch.PendingMarkers,
	}, a.log)
}
