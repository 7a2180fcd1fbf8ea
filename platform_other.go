//go:build !linux && !darwin

package main

import (
	"codeberg.org/miketth/escswitch/pkg/config"
	"codeberg.org/miketth/escswitch/pkg/escswitch"
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"context"
	"errors"
	"go.uber.org/zap"
)

var errUnsupported = errors.New("this platform is not supported")

func newBackend(cfg *config.Config, log *zap.SugaredLogger) (inputsource.Backend, func() error, error) {
	return nil, nil, errUnsupported
}

func newEventSource(cfg *config.Config, log *zap.SugaredLogger) (escswitch.EventSource, error) {
	return nil, errUnsupported
}

func newActiveApp(cfg *config.Config, log *zap.SugaredLogger) (escswitch.ActiveApp, func(context.Context) error, error) {
	return nil, nil, errUnsupported
}
