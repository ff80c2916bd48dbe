package dispatch

import (
	"context"

	"booking-dispatcher/core/models"
)

// Store holds one Job record per job ID. Implementations must make Update
// linearizable per job: two concurrent Updates on the same job never
// interleave, and FindAwaiting never observes a job mid-transition.
// Different jobs proceed fully in parallel.
type Store interface {
	// Create stores a new job. The job's ID must be set by the caller.
	Create(ctx context.Context, job *models.Job) error

	// Get returns the job with the given ID, or ErrJobNotFound.
	Get(ctx context.Context, id string) (*models.Job, error)

	// FindAwaiting returns the job currently awaiting a reply from the
	// given contact address, or ErrJobNotFound. At most one job should be
	// awaiting any address at a time; if the store ever holds more than
	// one it returns the most recently created and logs an anomaly.
	FindAwaiting(ctx context.Context, address string) (*models.Job, error)

	// Update applies mutate to the stored job under per-job exclusion and
	// commits the result atomically. If the job's status changed, the
	// transition is recorded as a JobEvent with the given reason. The
	// returned job reflects the committed state.
	Update(ctx context.Context, id, reason string, mutate func(*models.Job) error) (*models.Job, error)
}

// Directory is the candidate directory collaborator: given a location it
// returns an ordered list of candidates. A failed lookup is treated by the
// engine the same as an empty result.
type Directory interface {
	Lookup(ctx context.Context, location string) ([]models.Candidate, error)
}

// Notifier is the outbound notification channel. Send returns the channel's
// delivery ID. The engine never retries a failed send.
type Notifier interface {
	Send(ctx context.Context, address, text string) (string, error)
}
