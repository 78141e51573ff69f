package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/louisbranch/tournament.archive/internal/platform/errors"
	"github.com/louisbranch/tournament.archive/internal/services/automation/checks"
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/stats"
	"github.com/louisbranch/tournament.archive/internal/services/automation/storage"
	"google.golang.org/grpc/status"
)

const (
	defaultConsumer      = "automation-worker"
	defaultPollInterval  = 2 * time.Second
	defaultLeaseTTL      = time.Minute
	defaultMaxAttempts   = 8
	defaultRetryBackoff  = time.Second
	defaultRetryMaxDelay = 5 * time.Minute
)

// Attempt outcomes recorded per processed job.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRetry     = "retry"
	OutcomeDead      = "dead"
)

// Config controls job leasing and retry behavior.
type Config struct {
	Consumer      string
	PollInterval  time.Duration
	LeaseTTL      time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
}

func (c Config) normalized() Config {
	c.Consumer = strings.TrimSpace(c.Consumer)
	if c.Consumer == "" {
		c.Consumer = defaultConsumer
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = defaultLeaseTTL
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = defaultRetryMaxDelay
	}
	if c.RetryMaxDelay < c.RetryBackoff {
		c.RetryMaxDelay = c.RetryBackoff
	}
	return c
}

// retryDelay doubles the base delay per attempt up to the configured maximum.
func (c Config) retryDelay(attempt int32) time.Duration {
	delay := c.RetryBackoff
	for i := int32(1); i < attempt; i++ {
		delay *= 2
		if delay >= c.RetryMaxDelay {
			return c.RetryMaxDelay
		}
	}
	return delay
}

// JobProcessor executes leased jobs.
type JobProcessor interface {
	RunChecks(ctx context.Context, tournamentID int64, override bool) (checks.Report, error)
	RunStatistics(ctx context.Context, tournamentID int64) (stats.Result, error)
	ApplyReview(ctx context.Context, tournamentID int64, status domain.VerificationStatus) (domain.CascadeResult, error)
}

// Loop leases jobs from the queue and runs them one at a time.
type Loop struct {
	jobs      storage.JobStore
	attempts  storage.AttemptStore
	processor JobProcessor
	cfg       Config
	now       func() time.Time
}

// New builds a loop. A nil attempts store skips attempt records.
func New(jobs storage.JobStore, attempts storage.AttemptStore, processor JobProcessor, cfg Config) *Loop {
	return &Loop{
		jobs:      jobs,
		attempts:  attempts,
		processor: processor,
		cfg:       cfg.normalized(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run drains due jobs, then polls until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	log.Printf("automation loop started consumer=%s poll=%s", l.cfg.Consumer, l.cfg.PollInterval)
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()
	for {
		for {
			processed, err := l.RunOnce(ctx)
			if err != nil {
				log.Printf("automation loop: %v", err)
				break
			}
			if !processed || ctx.Err() != nil {
				break
			}
		}
		select {
		case <-ctx.Done():
			log.Printf("automation loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce processes at most one due job and reports whether it found one.
func (l *Loop) RunOnce(ctx context.Context) (bool, error) {
	job, ok, err := l.jobs.LeaseNextJob(ctx, l.cfg.Consumer, l.now(), l.cfg.LeaseTTL)
	if err != nil {
		return false, fmt.Errorf("lease job: %w", err)
	}
	if !ok {
		return false, nil
	}

	runErr := l.dispatch(ctx, job)
	now := l.now()
	outcome := OutcomeSucceeded
	lastError := ""
	switch {
	case runErr == nil:
		err = l.jobs.CompleteJob(ctx, job.ID, now)
	case isPermanent(runErr) || int(job.AttemptCount) >= l.cfg.MaxAttempts:
		outcome, lastError = OutcomeDead, describeError(runErr)
		err = l.jobs.DeadJob(ctx, job.ID, now, lastError)
	default:
		outcome, lastError = OutcomeRetry, describeError(runErr)
		err = l.jobs.RetryJob(ctx, job.ID, now.Add(l.cfg.retryDelay(job.AttemptCount)), lastError)
	}
	if err != nil {
		return true, fmt.Errorf("mark job %s %s: %w", job.ID, outcome, err)
	}
	if runErr != nil {
		log.Printf("job %s (%s, tournament %d) attempt %d: %s grpc=%s: %v",
			job.ID, job.Kind, job.TournamentID, job.AttemptCount, outcome, status.Code(runErr), runErr)
	}

	if l.attempts != nil {
		if err := l.attempts.RecordAttempt(ctx, storage.AttemptRecord{
			JobID:        job.ID,
			JobKind:      job.Kind,
			TournamentID: job.TournamentID,
			Consumer:     l.cfg.Consumer,
			Outcome:      outcome,
			AttemptCount: job.AttemptCount,
			LastError:    lastError,
			CreatedAt:    now,
		}); err != nil {
			log.Printf("record attempt for job %s: %v", job.ID, err)
		}
	}
	return true, nil
}

func (l *Loop) dispatch(ctx context.Context, job storage.Job) error {
	switch job.Kind {
	case storage.JobKindChecks:
		_, err := l.processor.RunChecks(ctx, job.TournamentID, false)
		return err
	case storage.JobKindChecksOverride:
		_, err := l.processor.RunChecks(ctx, job.TournamentID, true)
		return err
	case storage.JobKindStats:
		_, err := l.processor.RunStatistics(ctx, job.TournamentID)
		return err
	case storage.JobKindReviewVerified:
		_, err := l.processor.ApplyReview(ctx, job.TournamentID, domain.StatusVerified)
		return err
	case storage.JobKindReviewRejected:
		_, err := l.processor.ApplyReview(ctx, job.TournamentID, domain.StatusRejected)
		return err
	default:
		return domain.Permanent(fmt.Errorf("unknown job kind %q", job.Kind))
	}
}

// describeError prefixes coded failures with their status reason for the
// job record.
func describeError(err error) string {
	reason := apperrors.ReasonOf(err)
	if reason == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", reason, err)
}

// isPermanent reports whether retrying the job cannot change its outcome.
// Missing rating data is retried because ratings are processed separately and
// may still arrive.
func isPermanent(err error) bool {
	if domain.IsPermanent(err) {
		return true
	}
	switch apperrors.CodeOf(err) {
	case apperrors.CodeTournamentNotVerified,
		apperrors.CodeNoVerifiedMatches,
		apperrors.CodeMatchNoGameRosters,
		apperrors.CodeReviewInvalidStatus,
		apperrors.CodeNotFound:
		return true
	default:
		return false
	}
}
