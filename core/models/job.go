package models

import "time"

// Job represents one dispatch attempt for a single booking request. It tracks
// which candidate provider is currently being offered the job.
type Job struct {
	ID               string
	Location         string
	Candidates       []Candidate
	Cursor           int // index of the candidate currently or next offered
	Status           JobStatus
	CurrentCandidate *Candidate
	AcceptedBy       *Candidate
	Booking          BookingDetails
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// JobStatus represents the current status of a job
type JobStatus string

const (
	JobStatusPending      JobStatus = "pending"
	JobStatusAwaiting     JobStatus = "awaiting_response"
	JobStatusAccepted     JobStatus = "accepted"
	JobStatusExhausted    JobStatus = "exhausted"
	JobStatusNoCandidates JobStatus = "no_candidates"
)

// Terminal reports whether the status is absorbing: once reached, no reply or
// advance may mutate the job again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusAccepted, JobStatusExhausted, JobStatusNoCandidates:
		return true
	}
	return false
}

// Candidate is a provider who may fulfill a job, identified by the contact
// address SMS is sent to. Status is informational only; the dispatch engine
// never filters on it.
type Candidate struct {
	Name        string
	Address     string
	LocationTag string
	Status      string
}

// BookingDetails carries the mapped booking-form fields. The engine never
// interprets them beyond filling message templates.
type BookingDetails struct {
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ServiceType string `json:"service_type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    string `json:"duration"`
	City        string `json:"city"`
	Notes       string `json:"notes"`
}
