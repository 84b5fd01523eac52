//go:build windows

package foreground

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// NewProbe returns a probe reading the image path of the process owning the
// foreground window.
func NewProbe() Probe {
	return ProbeFunc(foregroundImage)
}

func foregroundImage() (string, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return "", fmt.Errorf("%w: no foreground window", model.ErrResolution)
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid == 0 {
		return "", fmt.Errorf("%w: no owning process: %v", model.ErrResolution, err)
	}

	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", fmt.Errorf("%w: open process %d: %v", model.ErrResolution, pid, err)
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("%w: image name of %d: %v", model.ErrResolution, pid, err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}
