package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/tournament.archive/internal/platform/errors"
	"github.com/louisbranch/tournament.archive/internal/services/automation/storage"
)

const jobColumns = `
	id,
	kind,
	tournament_id,
	status,
	attempt_count,
	next_attempt_at,
	lease_owner,
	lease_expires_at,
	last_error,
	created_at,
	updated_at`

// EnqueueJob stores a pending job due at NextAttemptAt, or immediately.
func (s *Store) EnqueueJob(ctx context.Context, job storage.Job) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	job.ID = strings.TrimSpace(job.ID)
	job.Kind = strings.TrimSpace(job.Kind)
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if !storage.IsJobKind(job.Kind) {
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if job.TournamentID == 0 {
		return fmt.Errorf("tournament id is required")
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.NextAttemptAt.IsZero() {
		job.NextAttemptAt = job.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO automation_jobs (
	id,
	kind,
	tournament_id,
	status,
	attempt_count,
	next_attempt_at,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, 0, ?, ?, ?)
`,
		job.ID,
		job.Kind,
		job.TournamentID,
		storage.JobStatusPending,
		toMillis(job.NextAttemptAt),
		toMillis(job.CreatedAt),
		toMillis(job.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return nil
}

// LeaseNextJob claims the oldest due job for consumer and bumps its attempt count.
func (s *Store) LeaseNextJob(ctx context.Context, consumer string, now time.Time, leaseTTL time.Duration) (storage.Job, bool, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Job{}, false, err
	}
	consumer = strings.TrimSpace(consumer)
	if consumer == "" {
		return storage.Job{}, false, fmt.Errorf("consumer is required")
	}
	if leaseTTL <= 0 {
		return storage.Job{}, false, fmt.Errorf("lease ttl must be greater than zero")
	}
	nowMillis := toMillis(now)

	var job storage.Job
	var found bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, `
SELECT id
FROM automation_jobs
WHERE (status = ? AND next_attempt_at <= ?)
   OR (status = ? AND lease_expires_at <= ?)
ORDER BY next_attempt_at, created_at, id
LIMIT 1
`,
			storage.JobStatusPending, nowMillis,
			storage.JobStatusLeased, nowMillis,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("select due job: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE automation_jobs
SET status = ?, lease_owner = ?, lease_expires_at = ?, attempt_count = attempt_count + 1, updated_at = ?
WHERE id = ?
`,
			storage.JobStatusLeased,
			consumer,
			toMillis(now.Add(leaseTTL)),
			nowMillis,
			id,
		); err != nil {
			return fmt.Errorf("lease job %s: %w", id, err)
		}
		job, err = scanJob(tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM automation_jobs WHERE id = ?`, id))
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return storage.Job{}, false, err
	}
	return job, found, nil
}

// CompleteJob marks a job as succeeded.
func (s *Store) CompleteJob(ctx context.Context, id string, now time.Time) error {
	return s.finishJob(ctx, id, storage.JobStatusSucceeded, now, now, "")
}

// RetryJob returns a job to the queue, due at nextAttemptAt.
func (s *Store) RetryJob(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error {
	return s.finishJob(ctx, id, storage.JobStatusPending, nextAttemptAt, time.Now().UTC(), lastError)
}

// DeadJob parks a job that will not be retried.
func (s *Store) DeadJob(ctx context.Context, id string, now time.Time, lastError string) error {
	return s.finishJob(ctx, id, storage.JobStatusDead, now, now, lastError)
}

func (s *Store) finishJob(ctx context.Context, id, status string, nextAttemptAt, now time.Time, lastError string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE automation_jobs
SET status = ?, next_attempt_at = ?, lease_owner = '', lease_expires_at = 0, last_error = ?, updated_at = ?
WHERE id = ?
`,
		status,
		toMillis(nextAttemptAt),
		strings.TrimSpace(lastError),
		toMillis(now),
		id,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("job %s not found", id))
	}
	return nil
}

// GetJob loads one job by id.
func (s *Store) GetJob(ctx context.Context, id string) (storage.Job, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Job{}, err
	}
	job, err := scanJob(s.sqlDB.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM automation_jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Job{}, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("job %s not found", id)).WithCause(err)
	}
	return job, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (storage.Job, error) {
	var job storage.Job
	var nextAttemptAt, leaseExpiresAt, createdAt, updatedAt int64
	if err := row.Scan(
		&job.ID,
		&job.Kind,
		&job.TournamentID,
		&job.Status,
		&job.AttemptCount,
		&nextAttemptAt,
		&job.LeaseOwner,
		&leaseExpiresAt,
		&job.LastError,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Job{}, err
		}
		return storage.Job{}, fmt.Errorf("scan job: %w", err)
	}
	job.NextAttemptAt = fromMillis(nextAttemptAt)
	job.LeaseExpiresAt = fromMillis(leaseExpiresAt)
	job.CreatedAt = fromMillis(createdAt)
	job.UpdatedAt = fromMillis(updatedAt)
	return job, nil
}
