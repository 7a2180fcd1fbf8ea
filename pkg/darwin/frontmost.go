//go:build darwin

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework CoreGraphics

#include <AppKit/AppKit.h>
#include <CoreGraphics/CoreGraphics.h>
#include <stdlib.h>

// NSWorkspace only refreshes frontmostApplication on a running main run
// loop, so look at the topmost normal window first.
static char *frontmostBundleID(void) {
    @autoreleasepool {
        pid_t pid = 0;

        CFArrayRef windows = CGWindowListCopyWindowInfo(
            kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements, kCGNullWindowID);
        if (windows != NULL) {
            for (NSDictionary *w in (__bridge NSArray *)windows) {
                if ([w[(__bridge NSString *)kCGWindowLayer] intValue] == 0) {
                    pid = [w[(__bridge NSString *)kCGWindowOwnerPID] intValue];
                    break;
                }
            }
            CFRelease(windows);
        }

        NSRunningApplication *app = nil;
        if (pid != 0) {
            app = [NSRunningApplication runningApplicationWithProcessIdentifier:pid];
        }
        if (app == nil) {
            app = [[NSWorkspace sharedWorkspace] frontmostApplication];
        }
        if (app == nil || app.bundleIdentifier == nil) {
            return NULL;
        }

        return strdup([app.bundleIdentifier UTF8String]);
    }
}
*/
import "C"

import "unsafe"

// FrontmostApp reports the bundle id of the focused application.
type FrontmostApp struct{}

func (FrontmostApp) ActiveApp() string {
	id := C.frontmostBundleID()
	if id == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(id))

	return C.GoString(id)
}
