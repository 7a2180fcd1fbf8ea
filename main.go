package main

import (
	"codeberg.org/miketth/escswitch/pkg/config"
	"codeberg.org/miketth/escswitch/pkg/escswitch"
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"codeberg.org/miketth/escswitch/pkg/prefstore/json"
	"codeberg.org/miketth/escswitch/pkg/prefstore/memory"
	"codeberg.org/miketth/escswitch/pkg/prefstore/sqlite"
	"context"
	"errors"
	"flag"
	"fmt"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gen2brain/beeep"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() (err error) {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	list := flag.Bool("list", false, "list input sources and exit")
	selectID := flag.String("select", "", "switch to an input source, remember it and exit")
	shiftSwitch := flag.String("shift-switch", "", "persistently turn the shift tap on or off and exit")
	flag.Parse()

	level := zap.NewAtomicLevel()
	log, err := newLogger(level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	loader := config.NewLoader(*configPath, log)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setLevel(level, *debug || cfg.Debug)

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := newBackend(cfg, log)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", cfg.ResolvedBackend(), err)
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(closeBackend))

	store, closeStore, err := newStore(cfg, log)
	if err != nil {
		return fmt.Errorf("create preference store: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(closeStore))
	prefs := escswitch.NewPreferences(store)

	catalog := inputsource.NewCatalog(backend, cfg.LatinSourceID(), log)
	if err := catalog.Refresh(); err != nil {
		return fmt.Errorf("refresh input sources: %w", err)
	}

	if *list {
		return printSources(os.Stdout, catalog)
	}

	if *shiftSwitch != "" {
		enabled, err := parseSwitch(*shiftSwitch)
		if err != nil {
			return err
		}
		return prefs.SetShiftSwitch(enabled)
	}

	enabled, err := prefs.ShiftSwitch(cfg.ShiftSwitch)
	if err != nil {
		log.Warnw("could not read shift switch preference", "error", err)
	}
	shift := escswitch.NewShiftSwitch(enabled)

	activeApp, trackApps, err := newActiveApp(cfg, log)
	if err != nil {
		return fmt.Errorf("track active app: %w", err)
	}
	filter := escswitch.NewAppFilter(activeApp, cfg.AllowedApps)

	notifier := escswitch.NewNotifier()
	switcher := inputsource.NewSwitcher(catalog, backend, log, inputsource.WithSettleInterval(cfg.SettleInterval()))
	coordinator := escswitch.NewCoordinator(catalog, switcher, filter, shift, notifier, log)

	restoreMemory(coordinator, catalog, prefs, log)

	if *selectID != "" {
		return selectSource(coordinator, prefs, *selectID, log)
	}

	shiftConfig := &shiftSwitchConfig{shift: shift, last: cfg.ShiftSwitch}
	loader.OnChange(func(c *config.Config) {
		if shiftConfig.apply(c.ShiftSwitch) {
			log.Infow("shift switch changed in config", "enabled", c.ShiftSwitch)
		}
		filter.SetAllowed(c.AllowedApps)
		setLevel(level, *debug || c.Debug)
		log.Debugw("applied config", "shift_switch", c.ShiftSwitch, "allowed_apps", c.AllowedApps)
	})

	source, err := newEventSource(cfg, log)
	if err != nil {
		return fmt.Errorf("create event source: %w", err)
	}
	engine := escswitch.NewEngine(gesture.NewDetector(cfg.TapThreshold()), coordinator, log)

	log.Infow("started escswitch",
		"backend", cfg.ResolvedBackend(),
		"latin", cfg.LatinSourceID(),
		"sources", len(catalog.Sources()),
	)

	tasks := map[string]func(context.Context) error{
		"run engine": func(ctx context.Context) error {
			return engine.Run(ctx, source)
		},
		"watch config": loader.Watch,
		"report changes": func(ctx context.Context) error {
			return reportChanges(ctx, notifier.C(), coordinator, catalog, prefs, cfg.Notify, log)
		},
		"systemd notify": systemdNotifyLoop,
	}
	if trackApps != nil {
		tasks["track active app"] = trackApps
	}
	if looper, ok := store.(interface{ SaveLooper(context.Context) error }); ok {
		tasks["save preferences"] = looper.SaveLooper
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))

	for name, task := range tasks {
		go func(name string, task func(context.Context) error) {
			defer wg.Done()
			err := task(ctx)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", name, err)
			}
		}(name, task)
	}

	err = <-errChan
	engine.Disable()
	cancel()
	wg.Wait()
	persistMemory(coordinator, prefs, log)

	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		return nil
	case err != nil:
		return err
	}

	return nil
}

// restoreMemory loads the remembered source, or seeds it with the first
// non-latin source so the first shift tap has somewhere to go.
func restoreMemory(
	coordinator *escswitch.Coordinator,
	catalog *inputsource.Catalog,
	prefs *escswitch.Preferences,
	log *zap.SugaredLogger,
) {
	id, found, err := prefs.LastNonLatinSource()
	if err != nil {
		log.Warnw("could not read remembered source", "error", err)
	}

	if found {
		if _, ok := catalog.Find(id); ok && coordinator.Restore(id) {
			log.Debugw("restored remembered source", "source", id)
			return
		}
		log.Infow("remembered source is gone", "source", id)
	}

	if src, ok := catalog.FirstNonLatin(); ok && coordinator.Restore(src.ID) {
		log.Debugw("seeded remembered source", "source", src.ID)
	}
}

// selectSource switches to id and persists it. A switch that lands without
// confirmation is only a warning.
func selectSource(coordinator *escswitch.Coordinator, prefs *escswitch.Preferences, id string, log *zap.SugaredLogger) error {
	err := coordinator.SetPreferredSource(id)
	persistMemory(coordinator, prefs, log)

	if errors.Is(err, inputsource.ErrSwitchUnconfirmed) {
		log.Warnw("switch not confirmed", "source", id, "error", err)
		return nil
	}
	return err
}

// shiftSwitchConfig applies shift_switch from reloaded configs only when the
// value in the file changes.
type shiftSwitchConfig struct {
	shift *escswitch.ShiftSwitch
	last  bool
}

func (s *shiftSwitchConfig) apply(enabled bool) bool {
	if enabled == s.last {
		return false
	}
	s.last = enabled
	s.shift.Set(enabled)
	return true
}

func persistMemory(coordinator *escswitch.Coordinator, prefs *escswitch.Preferences, log *zap.SugaredLogger) {
	id, ok := coordinator.LastNonLatinSource()
	if !ok {
		return
	}
	if err := prefs.SetLastNonLatinSource(id); err != nil {
		log.Warnw("could not persist remembered source", "source", id, "error", err)
	}
}

func reportChanges(
	ctx context.Context,
	changes <-chan struct{},
	coordinator *escswitch.Coordinator,
	catalog *inputsource.Catalog,
	prefs *escswitch.Preferences,
	notify bool,
	log *zap.SugaredLogger,
) error {
	var lastPersisted, lastReported string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
		}

		if id, ok := coordinator.LastNonLatinSource(); ok && id != lastPersisted {
			persistMemory(coordinator, prefs, log)
			lastPersisted = id
		}

		current, err := catalog.CurrentSource()
		if err != nil {
			log.Debugw("could not read current source", "error", err)
			continue
		}
		if current.ID == lastReported {
			continue
		}
		lastReported = current.ID

		_, _ = daemon.SdNotify(false, "STATUS=Input source: "+current.DisplayName)

		if notify {
			if err := beeep.Notify("escswitch", current.DisplayName, ""); err != nil {
				log.Warnw("could not send notification", "error", err)
			}
		}
	}
}

func newStore(cfg *config.Config, log *zap.SugaredLogger) (escswitch.PreferenceStore, func() error, error) {
	if cfg.Store.Type == config.StoreMemory {
		return memory.NewPreferenceStore(), noClose, nil
	}

	path, err := cfg.StorePath()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Store.Type {
	case config.StoreJSON:
		store, err := json.NewPreferenceStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		return store, store.Close, nil

	case config.StoreSQLite:
		store, err := sqlite.NewPreferenceStore(path, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
}

func noClose() error { return nil }

func printSources(w io.Writer, catalog *inputsource.Catalog) error {
	current, err := catalog.CurrentSource()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, src := range catalog.Sources() {
		marker := " "
		switch {
		case src.ID == current.ID:
			marker = "*"
		case src.ID == catalog.LatinID():
			marker = "L"
		}

		cjkv := ""
		if src.IsCJKV() {
			cjkv = "cjkv"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%s\n", marker, src.ID, src.DisplayName, src.LanguageTags, cjkv)
	}

	return tw.Flush()
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid shift switch value %q, use on or off", s)
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Watching for Escape and Shift")

	// notify watchdog
	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(level zap.AtomicLevel) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.Level = level
	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}

func setLevel(level zap.AtomicLevel, debug bool) {
	if debug {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}
