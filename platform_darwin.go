//go:build darwin

package main

import (
	"codeberg.org/miketth/escswitch/pkg/config"
	"codeberg.org/miketth/escswitch/pkg/darwin"
	"codeberg.org/miketth/escswitch/pkg/escswitch"
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"context"
	"fmt"
	"go.uber.org/zap"
)

func newBackend(cfg *config.Config, log *zap.SugaredLogger) (inputsource.Backend, func() error, error) {
	if cfg.ResolvedBackend() != config.BackendTIS {
		return nil, nil, fmt.Errorf("backend %q is not available on macOS", cfg.ResolvedBackend())
	}
	return darwin.NewTISBackend(), noClose, nil
}

func newEventSource(cfg *config.Config, log *zap.SugaredLogger) (escswitch.EventSource, error) {
	if !darwin.CheckAccessibility(false) {
		log.Warn("accessibility permission missing, macOS will ask for it")
	}
	return darwin.NewEventTap(log), nil
}

func newActiveApp(cfg *config.Config, log *zap.SugaredLogger) (escswitch.ActiveApp, func(context.Context) error, error) {
	return darwin.FrontmostApp{}, nil, nil
}
