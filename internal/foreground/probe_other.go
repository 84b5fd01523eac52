//go:build !darwin && !windows

package foreground

import (
	"fmt"
	"runtime"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// NewProbe returns a probe that never resolves; every span is tagged unknown.
func NewProbe() Probe {
	return ProbeFunc(func() (string, error) {
		return "", fmt.Errorf("%w: no foreground probe on %s", model.ErrResolution, runtime.GOOS)
	})
}
