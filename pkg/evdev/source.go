//go:build linux

// Package evdev reads keyboard events from /dev/input. The user needs read
// access to the devices, usually through the input group.
package evdev

import (
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"context"
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
	"sync"
)

var ErrNoKeyboards = errors.New("no readable keyboard devices")

type Source struct {
	paths []string
	log   *zap.SugaredLogger
}

// NewSource reads from the given device paths, or from every keyboard when
// paths is empty.
func NewSource(paths []string, log *zap.SugaredLogger) *Source {
	return &Source{
		paths: paths,
		log:   log,
	}
}

type deviceEvent struct {
	ev  *evdev.InputEvent
	err error
	dev string
}

func (s *Source) Run(ctx context.Context, handle func(gesture.Event) error) error {
	devices, err := s.open()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan deviceEvent)
	var wg sync.WaitGroup
	for _, dev := range devices {
		wg.Add(1)
		go func(dev *evdev.InputDevice) {
			defer wg.Done()
			readDevice(ctx, dev, events)
		}(dev)
	}

	defer func() {
		cancel()
		for _, dev := range devices {
			_ = dev.Close()
		}
		wg.Wait()
	}()

	t := newTranslator()
	remaining := len(devices)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case de := <-events:
			if de.err != nil {
				s.log.Warnw("keyboard device gone", "device", de.dev, "error", de.err)
				remaining--
				if remaining == 0 {
					return fmt.Errorf("read events: %w", ErrNoKeyboards)
				}
				continue
			}

			ev, ok := t.translate(de.ev)
			if !ok {
				continue
			}
			if err := handle(ev); err != nil {
				return err
			}
		}
	}
}

func readDevice(ctx context.Context, dev *evdev.InputDevice, events chan<- deviceEvent) {
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			select {
			case events <- deviceEvent{err: err, dev: dev.Path()}:
			case <-ctx.Done():
			}
			return
		}

		select {
		case events <- deviceEvent{ev: ev, dev: dev.Path()}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Source) open() ([]*evdev.InputDevice, error) {
	paths := s.paths
	if len(paths) == 0 {
		inputPaths, err := evdev.ListDevicePaths()
		if err != nil {
			return nil, fmt.Errorf("list devices: %w", err)
		}
		for _, p := range inputPaths {
			paths = append(paths, p.Path)
		}
	}

	var devices []*evdev.InputDevice
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			s.log.Debugw("skip device", "device", path, "error", err)
			continue
		}

		// explicitly configured devices are trusted as is
		if len(s.paths) == 0 && !isKeyboard(dev) {
			_ = dev.Close()
			continue
		}

		name, _ := dev.Name()
		s.log.Infow("reading keyboard", "device", path, "name", name)
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, ErrNoKeyboards
	}

	return devices, nil
}

func isKeyboard(dev *evdev.InputDevice) bool {
	var hasEsc, hasShift bool
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case evdev.KEY_ESC:
			hasEsc = true
		case evdev.KEY_LEFTSHIFT:
			hasShift = true
		}
	}
	return hasEsc && hasShift
}
