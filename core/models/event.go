package models

import "time"

// JobEvent records one status transition of a job
type JobEvent struct {
	ID         int64
	JobID      string
	FromStatus *JobStatus
	ToStatus   JobStatus
	Reason     string
	At         time.Time
}
