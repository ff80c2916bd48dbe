package dispatch

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"booking-dispatcher/core/models"

	"github.com/google/uuid"
)

// Engine is the job-dispatch state machine. It creates jobs, offers them to
// one candidate at a time, applies accept/decline replies, and decides
// terminal outcomes. All job state lives in the Store; the engine holds no
// state of its own, so it is safe to invoke concurrently from any number of
// inbound webhook deliveries.
type Engine struct {
	store     Store
	directory Directory
	notifier  Notifier
}

// NewEngine creates a new dispatch engine
func NewEngine(store Store, directory Directory, notifier Notifier) *Engine {
	return &Engine{
		store:     store,
		directory: directory,
		notifier:  notifier,
	}
}

// outbound is a notification decided inside a committed transition and sent
// after the job lock is released.
type outbound struct {
	address string
	text    string
}

// CreateJob snapshots the directory's candidates for the booking's location,
// stores a new job, advances it to the first candidate, and sends the offer.
// Returns ErrMissingLocation for an empty location and ErrNoCandidates when
// the directory has nobody for it (nothing is stored then). A failed offer
// send is logged but does not undo the transition.
func (e *Engine) CreateJob(ctx context.Context, location string, booking models.BookingDetails) (*models.Job, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrMissingLocation
	}

	candidates, err := e.directory.Lookup(ctx, location)
	if err != nil {
		log.Printf("dispatch: directory lookup for %q failed: %v", location, err)
		candidates = nil
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	job := &models.Job{
		ID:         uuid.NewString(),
		Location:   location,
		Candidates: candidates,
		Cursor:     0,
		Status:     models.JobStatusPending,
		Booking:    booking,
		CreatedAt:  time.Now(),
	}
	if err := e.store.Create(ctx, job); err != nil {
		return nil, err
	}

	var offer *outbound
	job, err = e.store.Update(ctx, job.ID, "offer_sent", func(j *models.Job) error {
		offer = advance(j)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.send(ctx, offer)
	return job, nil
}

// ApplyReply applies one inbound reply from a candidate address. Replies are
// idempotent: duplicates, late arrivals, and texts with no awaiting job never
// mutate any stored state and only produce a notice back to the sender.
func (e *Engine) ApplyReply(ctx context.Context, address, text string) (Outcome, error) {
	kind := ClassifyReply(text)

	job, err := e.store.FindAwaiting(ctx, address)
	if errors.Is(err, ErrJobNotFound) {
		e.send(ctx, &outbound{address: address, text: noActiveJobNotice()})
		return OutcomeNoActiveJob, nil
	}
	if err != nil {
		return "", err
	}

	if kind == ReplyUnrecognized {
		e.send(ctx, &outbound{address: address, text: instructionsNotice()})
		return OutcomeUnrecognized, nil
	}

	// The FindAwaiting result may be stale by the time the job lock is
	// taken, so the awaiting check is repeated inside the transition.
	// First committer wins; later replies observe the new state here and
	// fall out as stale.
	var (
		stale       bool
		staleStatus models.JobStatus
		accepted    models.Candidate
		nextOffer   *outbound
		exhausted   bool
	)

	reason := "candidate_accepted"
	if kind == ReplyDecline {
		reason = "candidate_declined"
	}

	_, err = e.store.Update(ctx, job.ID, reason, func(j *models.Job) error {
		if j.Status != models.JobStatusAwaiting || j.CurrentCandidate == nil || j.CurrentCandidate.Address != address {
			stale = true
			staleStatus = j.Status
			return nil
		}

		if kind == ReplyAccept {
			c := *j.CurrentCandidate
			j.Status = models.JobStatusAccepted
			j.AcceptedBy = &c
			j.CurrentCandidate = nil
			accepted = c
			return nil
		}

		// Decline: the cursor only ever moves forward, past candidates
		// are never re-offered.
		j.Cursor++
		nextOffer = advance(j)
		exhausted = nextOffer == nil
		return nil
	})
	if err != nil {
		return "", err
	}

	if stale {
		e.send(ctx, &outbound{address: address, text: staleNotice(staleStatus)})
		return OutcomeStale, nil
	}

	if kind == ReplyAccept {
		e.send(ctx, &outbound{address: address, text: acceptConfirmation(accepted)})
		return OutcomeAccepted, nil
	}

	if exhausted {
		e.send(ctx, &outbound{address: address, text: exhaustedNotice()})
		return OutcomeExhausted, nil
	}
	e.send(ctx, nextOffer)
	e.send(ctx, &outbound{address: address, text: declineRecordedNotice()})
	return OutcomeDeclined, nil
}

// advance moves the job to the candidate at the cursor, or to a terminal
// state when the cursor is past the end. It must run inside a Store.Update
// mutation. Returns the offer to send once the transition commits, or nil
// when the job reached a terminal state.
func advance(j *models.Job) *outbound {
	if j.Status.Terminal() {
		return nil
	}
	if j.Cursor >= len(j.Candidates) {
		if len(j.Candidates) == 0 {
			j.Status = models.JobStatusNoCandidates
		} else {
			j.Status = models.JobStatusExhausted
		}
		j.CurrentCandidate = nil
		return nil
	}

	c := j.Candidates[j.Cursor]
	j.CurrentCandidate = &c
	j.Status = models.JobStatusAwaiting
	return &outbound{address: c.Address, text: offerMessage(c, j.Booking)}
}

// send delivers a notification after the state transition that decided it
// has committed. Failures are logged, never retried, and never affect job
// state.
func (e *Engine) send(ctx context.Context, out *outbound) {
	if out == nil {
		return
	}
	if _, err := e.notifier.Send(ctx, out.address, out.text); err != nil {
		log.Printf("%v", &DeliveryError{Address: out.address, Err: err})
	}
}
