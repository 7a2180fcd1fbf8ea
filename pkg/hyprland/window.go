package hyprland

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	"strings"
	"sync"
)

type EventListener interface {
	ReadLine() (string, error)
}

// WindowTracker follows activewindow events and remembers the class of the
// focused window.
type WindowTracker struct {
	listener EventListener
	log      *zap.SugaredLogger

	mu    sync.RWMutex
	class string
}

func NewWindowTracker(listener EventListener, log *zap.SugaredLogger) *WindowTracker {
	return &WindowTracker{
		listener: listener,
		log:      log,
	}
}

func (w *WindowTracker) ActiveApp() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.class
}

func (w *WindowTracker) ProcessLines(ctx context.Context) error {
	for {
		resultCh := make(chan string, 1)
		errCh := make(chan error, 1)
		go func() {
			line, err := w.listener.ReadLine()
			if err != nil {
				errCh <- err
				return
			}
			resultCh <- line
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-resultCh:
			err := w.processLine(line)
			if err != nil {
				return fmt.Errorf("process line: %w", err)
			}
		case err := <-errCh:
			return fmt.Errorf("get line: %w", err)
		}
	}
}

func (w *WindowTracker) processLine(line string) error {
	evType, evData, found := strings.Cut(line, ">>")
	if !found {
		return fmt.Errorf("invalid line: %q", line)
	}

	switch evType {
	case "activewindow":
		w.processWindowChange(evData)
	case "activelayout":
		w.log.Debugw("layout changed", "data", evData)
	}

	return nil
}

func (w *WindowTracker) processWindowChange(data string) {
	class, _, _ := strings.Cut(data, ",")

	w.mu.Lock()
	w.class = class
	w.mu.Unlock()

	w.log.Debugw("active window changed", "class", class)
}
