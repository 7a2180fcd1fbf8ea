//go:build darwin

package darwin

/*
#cgo LDFLAGS: -framework ApplicationServices -framework Carbon -framework CoreFoundation

#include <ApplicationServices/ApplicationServices.h>
#include <Carbon/Carbon.h>
#include <stdint.h>

int escswitchStartTap(uintptr_t handle);
void escswitchStopTap(void);
int escswitchAccessibilityTrusted(int prompt);
*/
import "C"

import (
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"runtime/cgo"
	"time"
)

var (
	ErrAccessibility = errors.New("accessibility permission required: System Settings > Privacy & Security > Accessibility")
	ErrTapRunning    = errors.New("event tap already running")
)

var codes = &tapCodes{
	keyDown:      int(C.kCGEventKeyDown),
	keyUp:        int(C.kCGEventKeyUp),
	flagsChanged: int(C.kCGEventFlagsChanged),
	escape:       int64(C.kVK_Escape),
	masks: []flagMask{
		{uint64(C.kCGEventFlagMaskShift), gesture.FlagShift},
		{uint64(C.kCGEventFlagMaskControl), gesture.FlagControl},
		{uint64(C.kCGEventFlagMaskAlternate), gesture.FlagOption},
		{uint64(C.kCGEventFlagMaskCommand), gesture.FlagCommand},
		{uint64(C.kCGEventFlagMaskSecondaryFn), gesture.FlagFunction},
		{uint64(C.kCGEventFlagMaskAlphaShift), gesture.FlagCapsLock},
	},
}

// EventTap observes key and modifier events session wide with a listen only
// CGEventTap. Only one tap can run per process.
type EventTap struct {
	log    *zap.SugaredLogger
	events chan gesture.Event
	done   chan struct{}
}

func NewEventTap(log *zap.SugaredLogger) *EventTap {
	return &EventTap{log: log}
}

func CheckAccessibility(prompt bool) bool {
	p := C.int(0)
	if prompt {
		p = 1
	}
	return C.escswitchAccessibilityTrusted(p) == 1
}

func (t *EventTap) Run(ctx context.Context, handle func(gesture.Event) error) error {
	if !CheckAccessibility(true) {
		return ErrAccessibility
	}

	t.events = make(chan gesture.Event, 64)
	t.done = make(chan struct{})

	h := cgo.NewHandle(t)
	defer h.Delete()

	switch res := C.escswitchStartTap(C.uintptr_t(h)); res {
	case 0:
	case 1:
		return ErrTapRunning
	case -1:
		return ErrAccessibility
	default:
		return fmt.Errorf("start event tap: code %d", int(res))
	}
	// the tap thread may be blocked handing over an event, release it first
	defer C.escswitchStopTap()
	defer close(t.done)

	t.log.Info("event tap started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-t.events:
			if err := handle(ev); err != nil {
				return err
			}
		}
	}
}

//export escswitchTapEvent
func escswitchTapEvent(handle C.uintptr_t, eventType C.int, keycode C.int64_t, flags C.uint64_t) {
	t := cgo.Handle(handle).Value().(*EventTap)

	ev, ok := codes.translateEvent(int(eventType), int64(keycode), uint64(flags), time.Now())
	if !ok {
		return
	}

	select {
	case t.events <- ev:
	case <-t.done:
	}
}

//export escswitchTapReenabled
func escswitchTapReenabled(handle C.uintptr_t) {
	t := cgo.Handle(handle).Value().(*EventTap)
	t.log.Warn("event tap was disabled by the system, re-enabled")
}
