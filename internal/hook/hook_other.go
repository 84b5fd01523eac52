//go:build !darwin && !windows

package hook

import (
	"fmt"
	"runtime"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

type unsupported struct{}

func newPlatform(Options) Listener { return unsupported{} }

func (unsupported) Start(Callback) error {
	return fmt.Errorf("%w: no input hooks on %s", model.ErrCaptureUnavailable, runtime.GOOS)
}

func (unsupported) Stop() {}
