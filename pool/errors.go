package pool

import "errors"

var (
	// ErrInvalidPoolSize is returned when the pool size is <= 0.
	ErrInvalidPoolSize = errors.New("pool size must be greater than 0")

	// ErrLimiterReleased is returned when using a limiter after Release.
	ErrLimiterReleased = errors.New("limiter has been released")

	// ErrTaskPanicked wraps the value recovered from a panicking task.
	ErrTaskPanicked = errors.New("task panicked")
)
