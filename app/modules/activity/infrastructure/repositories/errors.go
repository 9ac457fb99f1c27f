package activitydb

import "errors"

var (
	// ErrNotFound is returned when a user has no recorded activity.
	ErrNotFound = errors.New("activity counters not found")

	// ErrUnknownCounter is returned for a counter name outside the known set.
	ErrUnknownCounter = errors.New("unknown activity counter")
)
