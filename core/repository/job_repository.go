package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"booking-dispatcher/core/dispatch"
	"booking-dispatcher/core/models"
)

// JobRepository is the Postgres-backed job store. Update runs inside a
// transaction with SELECT ... FOR UPDATE, which gives the per-job
// linearizability the dispatch engine relies on.
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, location, candidates, cursor_index, status,
	current_candidate, current_address, accepted_by, booking, created_at, updated_at`

// Create stores a new job
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (
			id, location, candidates, cursor_index, status,
			current_candidate, current_address, accepted_by, booking,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	candidates, err := json.Marshal(job.Candidates)
	if err != nil {
		return err
	}
	booking, err := json.Marshal(job.Booking)
	if err != nil {
		return err
	}

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, query,
		job.ID,
		job.Location,
		candidates,
		job.Cursor,
		job.Status,
		nullCandidate(job.CurrentCandidate),
		nullAddress(job),
		nullCandidate(job.AcceptedBy),
		booking,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertEvent(ctx, tx, job.ID, nil, job.Status, "job_created"); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a job by ID
func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, dispatch.ErrJobNotFound
	}
	return job, err
}

// FindAwaiting returns the job awaiting a reply from the given address. The
// partial unique index makes more than one match impossible by construction;
// if one ever shows up anyway the newest job wins and an anomaly is logged.
func (r *JobRepository) FindAwaiting(ctx context.Context, address string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs
		WHERE status = $1 AND current_address = $2
		ORDER BY created_at DESC
		LIMIT 2`

	rows, err := r.db.QueryContext(ctx, query, models.JobStatusAwaiting, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		return nil, dispatch.ErrJobNotFound
	}
	if len(jobs) > 1 {
		log.Printf("repository: anomaly: %d jobs awaiting reply from %s, using newest %s", len(jobs), address, jobs[0].ID)
	}
	return jobs[0], nil
}

// Update applies mutate to the job inside a transaction holding a row lock,
// then writes the result back. A status change is recorded as a job event in
// the same transaction.
func (r *JobRepository) Update(ctx context.Context, id, reason string, mutate func(*models.Job) error) (*models.Job, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, dispatch.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	before := job.Status
	if err := mutate(job); err != nil {
		return nil, err
	}
	job.UpdatedAt = time.Now()

	// Booking details are immutable after creation, so only the dispatch
	// state columns are written back.
	candidates, err := json.Marshal(job.Candidates)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs SET
			candidates = $1,
			cursor_index = $2,
			status = $3,
			current_candidate = $4,
			current_address = $5,
			accepted_by = $6,
			updated_at = $7
		WHERE id = $8
	`,
		candidates,
		job.Cursor,
		job.Status,
		nullCandidate(job.CurrentCandidate),
		nullAddress(job),
		nullCandidate(job.AcceptedBy),
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return nil, err
	}

	if job.Status != before {
		if err := insertEvent(ctx, tx, job.ID, &before, job.Status, reason); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return job, nil
}

// List lists jobs, newest first, optionally filtered by status
func (r *JobRepository) List(ctx context.Context, status *models.JobStatus, limit int) ([]*models.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, *status, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Events retrieves the transition log for a job, newest first
func (r *JobRepository) Events(ctx context.Context, jobID string, limit int) ([]models.JobEvent, error) {
	query := `
		SELECT id, job_id, from_status, to_status, reason, at
		FROM job_events
		WHERE job_id = $1
		ORDER BY at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.JobEvent
	for rows.Next() {
		var ev models.JobEvent
		var from sql.NullString
		if err := rows.Scan(&ev.ID, &ev.JobID, &from, &ev.ToStatus, &ev.Reason, &ev.At); err != nil {
			return nil, err
		}
		if from.Valid {
			s := models.JobStatus(from.String)
			ev.FromStatus = &s
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountByStatus returns job counts grouped by status
func (r *JobRepository) CountByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.JobStatus]int)
	for rows.Next() {
		var status models.JobStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// DeleteFinishedBefore removes terminal jobs created before the cutoff.
// Events go with them via ON DELETE CASCADE.
func (r *JobRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM jobs
		WHERE status IN ($1, $2, $3) AND created_at < $4
	`, models.JobStatusAccepted, models.JobStatusExhausted, models.JobStatusNoCandidates, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insertEvent(ctx context.Context, tx *sql.Tx, jobID string, from *models.JobStatus, to models.JobStatus, reason string) error {
	var fromStr *string
	if from != nil {
		s := string(*from)
		fromStr = &s
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO job_events (job_id, from_status, to_status, reason)
		VALUES ($1, $2, $3, $4)
	`, jobID, fromStr, to, reason)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	var candidates, booking []byte
	var current, accepted []byte
	var currentAddress sql.NullString

	err := row.Scan(
		&job.ID,
		&job.Location,
		&candidates,
		&job.Cursor,
		&job.Status,
		&current,
		&currentAddress,
		&accepted,
		&booking,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(candidates, &job.Candidates); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(booking, &job.Booking); err != nil {
		return nil, err
	}
	if len(current) > 0 {
		var c models.Candidate
		if err := json.Unmarshal(current, &c); err != nil {
			return nil, err
		}
		job.CurrentCandidate = &c
	}
	if len(accepted) > 0 {
		var c models.Candidate
		if err := json.Unmarshal(accepted, &c); err != nil {
			return nil, err
		}
		job.AcceptedBy = &c
	}
	return &job, nil
}

func nullCandidate(c *models.Candidate) interface{} {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	return b
}

// nullAddress is the value for the indexed current_address column: set only
// while the job is awaiting a reply, so the partial unique index applies.
func nullAddress(job *models.Job) interface{} {
	if job.Status == models.JobStatusAwaiting && job.CurrentCandidate != nil {
		return job.CurrentCandidate.Address
	}
	return nil
}
