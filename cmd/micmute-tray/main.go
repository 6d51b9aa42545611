package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shasankp000/micmute-tray/internal/app"
	"github.com/shasankp000/micmute-tray/internal/audio"
	"github.com/shasankp000/micmute-tray/internal/config"
	"github.com/shasankp000/micmute-tray/internal/hotkey"
	"github.com/shasankp000/micmute-tray/internal/logging"
	"github.com/shasankp000/micmute-tray/internal/notify"
	"github.com/shasankp000/micmute-tray/internal/platform"
	"github.com/shasankp000/micmute-tray/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	// Load config from APPDATA/XDG; malformed files fall back to defaults
	cfg := config.Load()

	log := logging.New()

	plat := platform.New(log)
	notifier := notify.New()

	// Second launch: notify best-effort and exit cleanly
	if !plat.TryAcquireSingleton() {
		log.Warn().Msg("Another instance is already running")
		if err := notifier.Info("micmute-tray", "Already running"); err != nil {
			log.Debug().Err(err).Msg("Notification failed")
		}
		return
	}
	defer plat.ReleaseSingleton()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the Core Audio endpoint controller
	ctrl, err := audio.New(log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open audio controller")
	}
	defer ctrl.Close()

	// Initialize hotkey manager
	hkManager, err := hotkey.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize hotkeys")
	}
	defer hkManager.Close()

	// Create tray UI first (we'll pass it to app)
	trayUI := tray.New(nil, cfg, Version, Commit) // App reference set below

	application := app.New(app.Config{
		Audio:         ctrl,
		Notifier:      notifier,
		Platform:      plat,
		Hotkeys:       hkManager,
		Config:        cfg,
		Logger:        log,
		StatusUpdater: trayUI,
	})

	// Set app reference in tray
	trayUI.SetApp(application)

	// Register global hotkey; the tray menu still toggles if this fails
	if err := hkManager.Register(cfg.Hotkey, application.OnHotkey); err != nil {
		log.Error().Err(err).Str("hotkey", cfg.Hotkey).Msg("Failed to register hotkey")
	}

	// Make the on-disk mute state the live state before the UI shows
	application.RestoreLastState()

	log.Info().Str("hotkey", cfg.Hotkey).Msg("micmute-tray starting...")

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		application.Shutdown()
		hkManager.Close()
		plat.ReleaseSingleton()
		os.Exit(0)
	}()

	// Start tray UI - MUST run on main thread
	if err := trayUI.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Tray error")
	}

	// Quit was selected from the tray menu
	application.Shutdown()
}
