package model

import "errors"

var (
	// ErrCaptureUnavailable is returned when OS hooks cannot be installed.
	// Capture degrades to off; the rest of the system keeps running.
	ErrCaptureUnavailable = errors.New("input capture unavailable")

	// ErrEventDropped marks an event lost to queue overflow. It is only ever
	// counted, never returned on the capture path.
	ErrEventDropped = errors.New("event dropped: queue full")

	// ErrResolution marks a foreground process whose path could not be read.
	ErrResolution = errors.New("process path unresolved")

	// ErrPersistence wraps storage write failures.
	ErrPersistence = errors.New("persistence failure")

	// ErrClockAnomaly marks an out-of-order focus transition.
	ErrClockAnomaly = errors.New("focus transition out of order")

	// ErrUnknownGroup rejects an app group outside AppGroups.
	ErrUnknownGroup = errors.New("unknown app group")
)
