// Package storage defines persistence contracts for the automation service.
package storage

import (
	"context"
	"time"

	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
)

// Job kinds dispatched by the automation loop.
const (
	JobKindChecks         = "checks"
	JobKindChecksOverride = "checks_override"
	JobKindStats          = "stats"
	// Review kinds apply a reviewer's final decision to the tournament.
	JobKindReviewVerified = "review_verified"
	JobKindReviewRejected = "review_rejected"
)

// IsJobKind reports whether kind is dispatched by the automation loop.
func IsJobKind(kind string) bool {
	switch kind {
	case JobKindChecks, JobKindChecksOverride, JobKindStats, JobKindReviewVerified, JobKindReviewRejected:
		return true
	default:
		return false
	}
}

// Job states.
const (
	JobStatusPending   = "pending"
	JobStatusLeased    = "leased"
	JobStatusSucceeded = "succeeded"
	JobStatusDead      = "dead"
)

// Statistics is the full set of derived records for one tournament.
type Statistics struct {
	TournamentID          int64
	GameRosters           []domain.GameRoster
	MatchRosters          []domain.MatchRoster
	PlayerMatchStats      []domain.PlayerMatchStats
	PlayerTournamentStats []domain.PlayerTournamentStats
}

// TournamentStore loads tournament aggregates and persists automation output.
// Every write covers one tournament and is applied atomically.
type TournamentStore interface {
	// PutTournament inserts or replaces a tournament and all of its
	// descendants and mappool.
	PutTournament(ctx context.Context, t *domain.Tournament) error
	// GetTournament loads the full aggregate. Missing tournaments return a
	// CodeNotFound error.
	GetTournament(ctx context.Context, id int64) (*domain.Tournament, error)
	// SaveAutomation writes statuses, reasons, warnings and converted teams.
	SaveAutomation(ctx context.Context, t *domain.Tournament) error
	PutRatingAdjustments(ctx context.Context, adjustments []domain.RatingAdjustment) error
	ListRatingAdjustments(ctx context.Context, tournamentID int64) ([]domain.RatingAdjustment, error)
	// ReplaceStatistics deletes earlier rosters and statistics for the
	// tournament and inserts stats.
	ReplaceStatistics(ctx context.Context, stats Statistics) error
	GetStatistics(ctx context.Context, tournamentID int64) (Statistics, error)
}

// Job is one queued automation request for a tournament.
type Job struct {
	ID             string
	Kind           string
	TournamentID   int64
	Status         string
	AttemptCount   int32
	NextAttemptAt  time.Time
	LeaseOwner     string
	LeaseExpiresAt time.Time
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// JobStore is the durable queue feeding the automation loop.
type JobStore interface {
	EnqueueJob(ctx context.Context, job Job) error
	// LeaseNextJob claims the oldest due job, including jobs whose lease has
	// expired. ok is false when nothing is due.
	LeaseNextJob(ctx context.Context, consumer string, now time.Time, leaseTTL time.Duration) (job Job, ok bool, err error)
	CompleteJob(ctx context.Context, id string, now time.Time) error
	RetryJob(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error
	DeadJob(ctx context.Context, id string, now time.Time, lastError string) error
	GetJob(ctx context.Context, id string) (Job, error)
}

// AttemptRecord is one durable job processing outcome record.
type AttemptRecord struct {
	ID           int64
	JobID        string
	JobKind      string
	TournamentID int64
	Consumer     string
	Outcome      string
	AttemptCount int32
	LastError    string
	CreatedAt    time.Time
}

// AttemptStore persists job processing attempt records.
type AttemptStore interface {
	RecordAttempt(ctx context.Context, attempt AttemptRecord) error
	ListAttempts(ctx context.Context, limit int) ([]AttemptRecord, error)
}
