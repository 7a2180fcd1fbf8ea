//go:build linux

package main

import (
	"codeberg.org/miketth/escswitch/pkg/config"
	"codeberg.org/miketth/escswitch/pkg/escswitch"
	"codeberg.org/miketth/escswitch/pkg/evdev"
	"codeberg.org/miketth/escswitch/pkg/hyprland"
	"codeberg.org/miketth/escswitch/pkg/ibus"
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"codeberg.org/miketth/escswitch/pkg/xkblayouts"
	"context"
	"fmt"
	"go.uber.org/zap"
	"slices"
)

func newBackend(cfg *config.Config, log *zap.SugaredLogger) (inputsource.Backend, func() error, error) {
	switch cfg.ResolvedBackend() {
	case config.BackendHyprland:
		registry, err := xkblayouts.ParseLayouts(cfg.Hyprland.EvdevXMLPath)
		if err != nil {
			return nil, nil, fmt.Errorf("parse layouts: %w", err)
		}

		hyprctl, err := hyprland.NewHyprctl()
		if err != nil {
			return nil, nil, fmt.Errorf("connect hyprctl: %w", err)
		}

		return hyprland.NewBackend(hyprctl, registry, cfg.Hyprland.Keyboard), noClose, nil

	case config.BackendIBus:
		addr, err := ibus.ResolveAddress(cfg.IBus.Address)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve ibus address: %w", err)
		}

		conn, err := ibus.Dial(addr)
		if err != nil {
			return nil, nil, err
		}
		log.Debugw("connected to ibus", "address", addr)

		engines := cfg.IBus.Engines
		if !slices.Contains(engines, cfg.LatinSourceID()) {
			engines = append([]string{cfg.LatinSourceID()}, engines...)
		}

		return ibus.NewBackend(conn, engines), conn.Close, nil
	}

	return nil, nil, fmt.Errorf("backend %q is not available on linux", cfg.ResolvedBackend())
}

func newEventSource(cfg *config.Config, log *zap.SugaredLogger) (escswitch.EventSource, error) {
	return evdev.NewSource(cfg.Evdev.Devices, log), nil
}

// newActiveApp follows the focused window class on hyprland. IBus has no
// notion of windows, so there every context is eligible.
func newActiveApp(cfg *config.Config, log *zap.SugaredLogger) (escswitch.ActiveApp, func(context.Context) error, error) {
	if cfg.ResolvedBackend() != config.BackendHyprland {
		return nil, nil, nil
	}

	client, err := hyprland.Connect()
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	tracker := hyprland.NewWindowTracker(client, log)
	run := func(ctx context.Context) error {
		defer client.Close()
		return tracker.ProcessLines(ctx)
	}

	return tracker, run, nil
}
