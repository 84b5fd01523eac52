//go:build !darwin && !windows

package monitor

import "errors"

// Detect is unsupported here; monitors come from configuration.
func Detect() ([]Monitor, error) {
	return nil, errors.New("monitor detection not supported on this platform")
}
