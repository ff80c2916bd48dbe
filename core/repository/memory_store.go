package repository

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"booking-dispatcher/core/dispatch"
	"booking-dispatcher/core/models"
)

// MemoryStore is an in-memory job store, used when no database is
// configured. A per-job mutex serializes Update calls on the same job while
// leaving different jobs fully parallel, and an address index gives O(1)
// reply lookup. Get and FindAwaiting hand out copies so callers can never
// mutate stored state directly.
type MemoryStore struct {
	mu       sync.RWMutex
	jobs     map[string]*models.Job
	locks    map[string]*sync.Mutex
	awaiting map[string]string // contact address -> job ID
	events   map[string][]models.JobEvent
	eventSeq int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:     make(map[string]*models.Job),
		locks:    make(map[string]*sync.Mutex),
		awaiting: make(map[string]string),
		events:   make(map[string][]models.JobEvent),
	}
}

// Create stores a new job
func (s *MemoryStore) Create(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.UpdatedAt = job.CreatedAt

	s.jobs[job.ID] = cloneJob(job)
	s.locks[job.ID] = &sync.Mutex{}
	s.indexLocked(s.jobs[job.ID])
	s.appendEventLocked(job.ID, nil, job.Status, "job_created")
	return nil
}

// Get returns a copy of the job with the given ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, dispatch.ErrJobNotFound
	}
	return cloneJob(job), nil
}

// FindAwaiting returns a copy of the job awaiting a reply from the address
func (s *MemoryStore) FindAwaiting(ctx context.Context, address string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.awaiting[address]
	if !ok {
		return nil, dispatch.ErrJobNotFound
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, dispatch.ErrJobNotFound
	}
	return cloneJob(job), nil
}

// Update applies mutate under the job's mutex and commits the result along
// with the address index and, on a status change, a job event.
func (s *MemoryStore) Update(ctx context.Context, id, reason string, mutate func(*models.Job) error) (*models.Job, error) {
	s.mu.RLock()
	lock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, dispatch.ErrJobNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	stored := s.jobs[id]
	s.mu.RUnlock()
	if stored == nil {
		return nil, dispatch.ErrJobNotFound
	}

	job := cloneJob(stored)
	before := job.Status
	if err := mutate(job); err != nil {
		return nil, err
	}
	job.UpdatedAt = time.Now()

	s.mu.Lock()
	if _, ok := s.jobs[id]; !ok {
		// Swept away while the mutation ran; don't resurrect it.
		s.mu.Unlock()
		return nil, dispatch.ErrJobNotFound
	}
	s.unindexLocked(stored)
	s.jobs[id] = job
	s.indexLocked(job)
	if job.Status != before {
		s.appendEventLocked(id, &before, job.Status, reason)
	}
	s.mu.Unlock()

	return cloneJob(job), nil
}

// List lists jobs, newest first, optionally filtered by status
func (s *MemoryStore) List(ctx context.Context, status *models.JobStatus, limit int) ([]*models.Job, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []*models.Job
	for _, job := range s.jobs {
		if status != nil && job.Status != *status {
			continue
		}
		jobs = append(jobs, cloneJob(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// Events retrieves the transition log for a job, newest first
func (s *MemoryStore) Events(ctx context.Context, jobID string, limit int) ([]models.JobEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.events[jobID]
	var events []models.JobEvent
	for i := len(stored) - 1; i >= 0 && len(events) < limit; i-- {
		events = append(events, stored[i])
	}
	return events, nil
}

// CountByStatus returns job counts grouped by status
func (s *MemoryStore) CountByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.JobStatus]int)
	for _, job := range s.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

// DeleteFinishedBefore removes terminal jobs created before the cutoff
func (s *MemoryStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.CreatedAt.Before(cutoff) {
			s.unindexLocked(job)
			delete(s.jobs, id)
			delete(s.locks, id)
			delete(s.events, id)
			removed++
		}
	}
	return removed, nil
}

// indexLocked records the job in the awaiting index. Caller holds mu. If the
// address is already claimed by another job the newest one wins, which must
// not happen by construction and is logged as an anomaly.
func (s *MemoryStore) indexLocked(job *models.Job) {
	if job.Status != models.JobStatusAwaiting || job.CurrentCandidate == nil {
		return
	}
	addr := job.CurrentCandidate.Address
	if other, ok := s.awaiting[addr]; ok && other != job.ID {
		log.Printf("repository: anomaly: jobs %s and %s both awaiting reply from %s", other, job.ID, addr)
		if prev := s.jobs[other]; prev != nil && prev.CreatedAt.After(job.CreatedAt) {
			return
		}
	}
	s.awaiting[addr] = job.ID
}

func (s *MemoryStore) unindexLocked(job *models.Job) {
	if job.Status != models.JobStatusAwaiting || job.CurrentCandidate == nil {
		return
	}
	if s.awaiting[job.CurrentCandidate.Address] == job.ID {
		delete(s.awaiting, job.CurrentCandidate.Address)
	}
}

func (s *MemoryStore) appendEventLocked(jobID string, from *models.JobStatus, to models.JobStatus, reason string) {
	s.eventSeq++
	s.events[jobID] = append(s.events[jobID], models.JobEvent{
		ID:         s.eventSeq,
		JobID:      jobID,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		At:         time.Now(),
	})
}

func cloneJob(job *models.Job) *models.Job {
	c := *job
	c.Candidates = append([]models.Candidate(nil), job.Candidates...)
	if job.CurrentCandidate != nil {
		cc := *job.CurrentCandidate
		c.CurrentCandidate = &cc
	}
	if job.AcceptedBy != nil {
		ab := *job.AcceptedBy
		c.AcceptedBy = &ab
	}
	return &c
}
