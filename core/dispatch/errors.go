package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingLocation is returned by CreateJob when the booking has no
	// location to look candidates up by.
	ErrMissingLocation = errors.New("dispatch: location is required")

	// ErrNoCandidates is returned by CreateJob when the directory has no
	// candidates for the location. No job is stored in that case.
	ErrNoCandidates = errors.New("dispatch: no candidates found for location")

	// ErrJobNotFound is returned by stores when no job matches a lookup.
	ErrJobNotFound = errors.New("dispatch: job not found")
)

// DeliveryError indicates an outbound notification could not be sent. It is
// never fatal: the state transition it follows has already been committed,
// so callers log it and move on.
type DeliveryError struct {
	Address string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("dispatch: delivery to %s failed: %v", e.Address, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
