package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/contribd/internal/config"
	"github.com/sandeepkv93/contribd/internal/editor"
	"github.com/sandeepkv93/contribd/internal/install"
	"github.com/sandeepkv93/contribd/internal/listing"
	"github.com/sandeepkv93/contribd/internal/logging"
	"github.com/sandeepkv93/contribd/internal/scheduler"
	"github.com/sandeepkv93/contribd/internal/storage"
	"github.com/sandeepkv93/contribd/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "contribd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Configure(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	repo, err := storage.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, err := listing.NewFetcher(cfg.Listing.URL, cfg.Listing.Timeout)
	if err != nil {
		return err
	}
	catalog := listing.New(fetcher, listing.WithCache(repo), listing.WithLogger(logger))
	defer catalog.Close()
	unsubscribe := catalog.Subscribe(func(ev listing.Event) {
		logger.Debug("listing changed", "kind", ev.Kind, "key", ev.Entry.Contribution().Key())
	})
	defer unsubscribe()
	if err := catalog.LoadCache(ctx); err != nil {
		logger.Warn("listing cache not loaded", "err", err)
	}

	sketchbook := editor.NewSketchbook(cfg.Sketchbook.Path, cfg.Sketchbook.Mode, logger)
	installer := install.New(sketchbook, repo, logger)

	engine := scheduler.NewEngine(cfg.Scheduler.Buffer)
	engine.Start()
	defer engine.Stop()

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.Notify.Desktop {
		notifier = update.ExecDesktopNotifier{}
	}

	logger.Info("contribd starting", "sketchbook", cfg.Sketchbook.Path, "listing", cfg.Listing.URL)
	m := update.NewModel(update.Deps{
		Context:    ctx,
		Listing:    catalog,
		Editor:     sketchbook,
		Installer:  installer,
		Scheduler:  engine,
		Notifier:   notifier,
		Logger:     logger,
		Sketchbook: cfg.Sketchbook.Path,
		Mode:       cfg.Sketchbook.Mode,
		Config:     update.RuntimeConfigFrom(update.DefaultRuntimeConfig(), cfg),
	})

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}
	logger.Info("contribd stopped")
	return nil
}
