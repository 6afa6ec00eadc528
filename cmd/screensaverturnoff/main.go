// Package main is the entry point for the screensaver turn-off daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"screensaverturnoff/internal/config"
	"screensaverturnoff/internal/driver"
	"screensaverturnoff/internal/executor"
	"screensaverturnoff/internal/kodi"
	"screensaverturnoff/internal/logger"
	"screensaverturnoff/internal/methods"
	"screensaverturnoff/internal/metrics"
	"screensaverturnoff/internal/network"
	"screensaverturnoff/internal/service"
	"screensaverturnoff/internal/session"
	"screensaverturnoff/internal/status"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const startupErrorLogDir = "log/screensaverturnoff"

func main() {
	var (
		configPath   = flag.String("config", "conf/screensaverturnoff/config.json", "Path to main configuration file")
		settingsPath = flag.String("settings", "conf/screensaverturnoff/settings.json", "Path to add-on settings file")
		loggingPath  = flag.String("logging", "conf/screensaverturnoff/logging.json", "Path to logging configuration file")
		showVersion  = flag.Bool("version", false, "Show version information")
		listMethods  = flag.Bool("list", false, "List display and power methods with their setting index")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("screensaverturnoff %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}
	if *listMethods {
		printCatalog(&methods.Display)
		printCatalog(&methods.Power)
		os.Exit(0)
	}

	if service.IsService() {
		logger.SetServiceMode(true)
	}

	cfg, settings, lc, err := config.LoadAll(*configPath, *settingsPath, *loggingPath)
	if err != nil {
		service.WriteStartupErrorFile(startupErrorLogDir, err)
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(*lc); err != nil {
		service.WriteStartupErrorFile(startupErrorLogDir, err)
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	errorLogDir := filepath.Dir(lc.FilePath)

	log := logger.WithComponent("main")
	log.Info().
		Str("version", version).
		Str("config", *configPath).
		Str("settings", *settingsPath).
		Str("logging", *loggingPath).
		Str("kodi", cfg.Kodi.HTTPAddress()).
		Msg("Starting screensaverturnoff")

	svc := service.New(func(ctx context.Context) error {
		return run(ctx, cfg, settings, *settingsPath, *loggingPath)
	})

	if err := svc.Run(context.Background()); err != nil {
		code := executor.ExitCode(err)
		if code == 0 {
			code = 1
		}
		service.WriteExitErrorFile(errorLogDir, code, err)
		log.Error().Err(err).Int("exit_code", code).Msg("Exiting after fatal error")
		os.Exit(code)
	}

	log.Info().Msg("screensaverturnoff stopped")
}

func printCatalog(c *methods.Catalog) {
	fmt.Printf("%s methods:\n", c.Name)
	for i, e := range c.Entries {
		fmt.Printf("  %2d  %-20s %-9s %s\n", i, e.ID, e.Strategy(), e.Title)
	}
}

// components holds everything wired from the configuration.
type components struct {
	client   *kodi.Client
	events   *kodi.Events
	executor *executor.Executor
	notifier *kodi.Notifier
	status   *status.Publisher
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	addon    *logger.AddonLogger
}

func setupComponents(cfg *config.Config) (*components, error) {
	log := logger.WithComponent("main")

	dial, err := network.DialContext(cfg.SOCKSProxy.Host, cfg.SOCKSProxy.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS dialer: %w", err)
	}
	if dial != nil {
		log.Info().
			Str("socks_host", cfg.SOCKSProxy.Host).
			Int("socks_port", cfg.SOCKSProxy.Port).
			Msg("SOCKS proxy configured")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &components{
		client:   kodi.NewClient(cfg.Kodi, dial),
		events:   kodi.NewEvents(cfg.Kodi.WebSocketAddress(), dial, cfg.Kodi.ReconnectMax),
		metrics:  metrics.New(registry),
		registry: registry,
		addon:    logger.NewAddonLogger(cfg.Addon.ID),
	}
	c.notifier = kodi.NewNotifier(c.client, cfg.Addon.ID, cfg.Addon.Icon)

	if cfg.Redis.Enabled {
		c.status = status.NewPublisher(cfg.Redis, dial, clock.New())
		log.Info().Str("redis_addr", cfg.Redis.Addr).Str("key", cfg.Redis.Key).Msg("Status publishing enabled")
	}

	c.executor = executor.New(executor.Options{
		RPC:      c.client,
		Builtins: kodi.NewEventServer(cfg.Kodi.EventServerAddress(), cfg.Addon.Name),
		Notifier: c.notifier,
		Addon:    c.addon,
		Metrics:  c.metrics,
	})
	return c, nil
}

// setupWatchers hot-reloads the add-on settings and the logging config.
// Returns a cleanup function that stops all started watchers.
func setupWatchers(store *config.SettingsStore, addon *logger.AddonLogger, settingsPath, loggingPath string) func() {
	log := logger.WithComponent("main")
	var watcherMu sync.Mutex
	var cleanups []func()

	start := func(name string, fw *config.FileWatcher, err error) {
		if err != nil {
			log.Warn().Err(err).Str("watcher", name).Msg("Failed to create watcher, hot reload disabled")
			return
		}
		if err := fw.Start(); err != nil {
			log.Warn().Err(err).Str("watcher", name).Msg("Failed to start watcher")
			return
		}
		cleanups = append(cleanups, func() {
			if err := fw.Stop(); err != nil {
				log.Error().Err(err).Str("watcher", name).Msg("Error stopping watcher")
			}
		})
	}

	settingsWatcher, err := config.NewSettingsWatcher(settingsPath, func(s config.Settings) {
		watcherMu.Lock()
		defer watcherMu.Unlock()

		store.Set(s)
		addon.SetMaxLevel(s.MaxLogLevel)
		log.Info().
			Int("display_method", s.DisplayMethod).
			Int("power_method", s.PowerMethod).
			Bool("logoff", s.Logoff).
			Bool("mute", s.Mute).
			Msg("Settings updated, applied from the next session")
	})
	start("settings", settingsWatcher, err)

	loggingWatcher, err := config.NewLoggingWatcher(loggingPath, func(lc *logger.Config) {
		watcherMu.Lock()
		defer watcherMu.Unlock()

		if err := logger.Init(*lc); err != nil {
			log.Error().Err(err).Msg("Failed to update logging configuration")
			return
		}
		log.Info().Msg("Logging configuration updated")
	})
	start("logging", loggingWatcher, err)

	return func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
}

func run(ctx context.Context, cfg *config.Config, settings config.Settings, settingsPath, loggingPath string) error {
	log := logger.WithComponent("main")

	c, err := setupComponents(cfg)
	if err != nil {
		return err
	}
	if c.status != nil {
		defer c.status.Close()
	}

	store := config.NewSettingsStore(settings)
	c.addon.SetMaxLevel(settings.MaxLogLevel)
	if debug, err := c.client.DebugLogging(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not read Kodi debug logging flag")
	} else {
		c.addon.SetDebug(debug)
	}

	cleanupWatchers := setupWatchers(store, c.addon, settingsPath, loggingPath)
	defer cleanupWatchers()

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Metrics.Listen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, c.registry); err != nil {
				log.Error().Err(err).Msg("Metrics listener failed")
			}
		}()
	}

	events := make(chan kodi.Event)
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.events.Run(ctx, events)
	}()

	var publisher session.StatusPublisher
	if c.status != nil {
		publisher = c.status
	}

	d := driver.New(driver.Options{
		Events: events,
		NewSession: func() *session.Session {
			return session.New(session.Deps{
				Runner:  c.executor,
				Host:    c.client,
				Status:  publisher,
				Metrics: c.metrics,
				Addon:   c.addon,
			})
		},
		Settings: store.Get,
		Probe:    c.client,
		Notifier: c.notifier,
	})

	log.Info().Str("addon", cfg.Addon.ID).Msg("Waiting for screensaver events")
	return d.Run(ctx)
}
