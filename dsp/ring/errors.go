package ring

import (
	"errors"
	"fmt"
)

// Statuses reported by Buffer operations.
var (
	ErrAlreadyInitialized = errors.New("ring: buffer already initialized")
	ErrNotInitialized     = errors.New("ring: buffer not initialized")
	ErrFull               = errors.New("ring: buffer is full")
	ErrEmpty              = errors.New("ring: buffer is empty")
	ErrNotReady           = errors.New("ring: buffer not at capacity")
	ErrBadArgument        = errors.New("ring: offset out of range")
)

func validateCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("ring capacity must be > 0: %d", capacity)
	}
	return nil
}
