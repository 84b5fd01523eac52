//go:build darwin
// +build darwin

package foreground

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework Cocoa
#include <Cocoa/Cocoa.h>
#include <stdlib.h>
#include <string.h>

static char *frontmostExecutable(void) {
    @autoreleasepool {
        NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
        if (app == nil || app.executableURL == nil) {
            return NULL;
        }
        const char *path = app.executableURL.path.UTF8String;
        if (path == NULL) {
            return NULL;
        }
        return strdup(path);
    }
}
*/
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// NewProbe returns a probe reading the executable of NSWorkspace's frontmost
// application.
func NewProbe() Probe {
	return ProbeFunc(frontmostExecutable)
}

func frontmostExecutable() (string, error) {
	cpath := C.frontmostExecutable()
	if cpath == nil {
		return "", fmt.Errorf("%w: no frontmost application", model.ErrResolution)
	}
	defer C.free(unsafe.Pointer(cpath))
	return C.GoString(cpath), nil
}
