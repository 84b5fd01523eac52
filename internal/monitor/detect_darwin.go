//go:build darwin
// +build darwin

package monitor

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>

static int activeDisplays(CGDirectDisplayID *ids, int max) {
    uint32_t count = 0;
    if (CGGetActiveDisplayList((uint32_t)max, ids, &count) != kCGErrorSuccess) {
        return -1;
    }
    return (int)count;
}

static void displayInfo(CGDirectDisplayID id, double *x, double *y, double *w, double *h, double *wmm, double *hmm) {
    CGRect bounds = CGDisplayBounds(id);
    CGSize size = CGDisplayScreenSize(id);
    *x = bounds.origin.x;
    *y = bounds.origin.y;
    *w = bounds.size.width;
    *h = bounds.size.height;
    *wmm = size.width;
    *hmm = size.height;
}
*/
import "C"
import "errors"

const maxDisplays = 16

// Detect queries CoreGraphics for the active displays.
func Detect() ([]Monitor, error) {
	var ids [maxDisplays]C.CGDirectDisplayID
	n := int(C.activeDisplays(&ids[0], C.int(maxDisplays)))
	if n <= 0 {
		return nil, errors.New("no active displays reported")
	}

	monitors := make([]Monitor, 0, n)
	for i := 0; i < n; i++ {
		var x, y, w, h, wmm, hmm C.double
		C.displayInfo(ids[i], &x, &y, &w, &h, &wmm, &hmm)
		monitors = append(monitors, Monitor{
			ID:       i,
			X:        int(x),
			Y:        int(y),
			Width:    int(w),
			Height:   int(h),
			WidthMM:  float64(wmm),
			HeightMM: float64(hmm),
		})
	}
	return monitors, nil
}
