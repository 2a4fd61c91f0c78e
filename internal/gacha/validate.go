package gacha

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks a call that broke the engine's input contract.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState marks an operation issued in a state that does not allow it.
	ErrInvalidState = errors.New("invalid state")
)

func validatePity(p PityState) error {
	if p.Threshold <= 0 {
		return fmt.Errorf("%w: pity threshold must be > 0, got %d", ErrInvalidArgument, p.Threshold)
	}
	if p.Counter < 0 {
		return fmt.Errorf("%w: pity counter must be >= 0, got %d", ErrInvalidArgument, p.Counter)
	}
	return nil
}

func validateBatch(count int) error {
	if count != BatchSingle && count != BatchTen {
		return fmt.Errorf("%w: batch count must be %d or %d, got %d", ErrInvalidArgument, BatchSingle, BatchTen, count)
	}
	return nil
}
