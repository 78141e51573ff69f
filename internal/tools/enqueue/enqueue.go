// Package enqueue queues one automation job for a tournament.
package enqueue

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/storage"
)

// Config holds configuration for queueing a job.
type Config struct {
	DBPath       string `env:"TOURNAMENT_ARCHIVE_AUTOMATION_DB_PATH" envDefault:"data/automation.db"`
	Kind         string
	Review       string
	TournamentID int64
}

// ParseConfig parses flags into a Config. cfg carries environment defaults.
func ParseConfig(fs *flag.FlagSet, args []string, cfg Config) (Config, error) {
	if cfg.Kind == "" {
		cfg.Kind = storage.JobKindChecks
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The automation SQLite database path")
	fs.StringVar(&cfg.Kind, "kind", cfg.Kind, "Job kind: checks, checks_override, stats, review_verified or review_rejected")
	fs.StringVar(&cfg.Review, "review", cfg.Review, "Queue a review job for the given status (verified or rejected); overrides -kind")
	fs.Int64Var(&cfg.TournamentID, "tournament", cfg.TournamentID, "Tournament id")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run validates cfg, queues the job and writes its id to out.
func Run(ctx context.Context, cfg Config, jobs storage.JobStore, out io.Writer) error {
	if jobs == nil {
		return errors.New("job store is required")
	}
	if out == nil {
		return errors.New("output is required")
	}
	kind := strings.TrimSpace(cfg.Kind)
	if strings.TrimSpace(cfg.Review) != "" {
		reviewKind, err := reviewJobKind(cfg.Review)
		if err != nil {
			return err
		}
		kind = reviewKind
	}
	if !storage.IsJobKind(kind) {
		return fmt.Errorf("unknown job kind %q", cfg.Kind)
	}
	if cfg.TournamentID <= 0 {
		return errors.New("tournament id must be greater than zero")
	}

	id := uuid.NewString()
	if err := jobs.EnqueueJob(ctx, storage.Job{
		ID:           id,
		Kind:         kind,
		TournamentID: cfg.TournamentID,
	}); err != nil {
		return fmt.Errorf("enqueue %s job: %w", kind, err)
	}
	_, err := fmt.Fprintf(out, "%s %s %d\n", id, kind, cfg.TournamentID)
	return err
}

// reviewJobKind maps a reviewer decision to its job kind. Only the locked
// statuses are reviewer decisions.
func reviewJobKind(value string) (string, error) {
	status, ok := domain.ParseVerificationStatus(value)
	if !ok {
		return "", fmt.Errorf("unknown review status %q", value)
	}
	switch status {
	case domain.StatusVerified:
		return storage.JobKindReviewVerified, nil
	case domain.StatusRejected:
		return storage.JobKindReviewRejected, nil
	default:
		return "", fmt.Errorf("review status must be verified or rejected, got %s", status)
	}
}
