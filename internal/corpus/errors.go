package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn means a declared field has no column in the corpus header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrDisallowedByRobots means the corpus host's robots.txt forbids the download.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
)

// LoadError is returned when the corpus cannot be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load corpus: %v", e.Err)
	}
	return fmt.Sprintf("failed to load corpus %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
