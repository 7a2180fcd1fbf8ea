package escswitch

import (
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"context"
	"fmt"
	"go.uber.org/zap"
	"sync"
	"sync/atomic"
)

// Engine feeds events from one source through the detector and hands the
// resulting signals to the coordinator. It starts no goroutines; the event
// source calls HandleEvent on its own.
type Engine struct {
	detector    *gesture.Detector
	coordinator *Coordinator
	log         *zap.SugaredLogger

	disabled atomic.Bool
	mu       sync.Mutex
	cancel   context.CancelFunc
}

func NewEngine(detector *gesture.Detector, coordinator *Coordinator, log *zap.SugaredLogger) *Engine {
	return &Engine{
		detector:    detector,
		coordinator: coordinator,
		log:         log,
	}
}

// HandleEvent is the event callback. It returns an error only when no further
// decision is possible.
func (e *Engine) HandleEvent(ev gesture.Event) error {
	if e.disabled.Load() {
		return nil
	}

	sig := e.detector.OnEvent(ev)
	if sig == gesture.SignalNone {
		return nil
	}

	e.log.Debugw("gesture recognised", "signal", sig)

	if err := e.coordinator.HandleSignal(sig); err != nil {
		return fmt.Errorf("handle %s: %w", sig, err)
	}

	return nil
}

// Run delivers events from src until ctx is done, Disable is called or a
// fatal error occurs.
func (e *Engine) Run(ctx context.Context, src EventSource) error {
	if e.disabled.Load() {
		return context.Canceled
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	err := src.Run(ctx, e.HandleEvent)
	if err != nil {
		return fmt.Errorf("event source: %w", err)
	}

	return ctx.Err()
}

// Disable stops event delivery. A switch already in progress completes.
func (e *Engine) Disable() {
	e.disabled.Store(true)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}
