package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/tournament.archive/internal/platform/errors"
	"github.com/louisbranch/tournament.archive/internal/platform/timeouts"
	"github.com/louisbranch/tournament.archive/internal/services/automation/checks"
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/stats"
	"github.com/louisbranch/tournament.archive/internal/services/automation/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/tournament.archive/internal/services/automation/app"

// Processor runs automation for one tournament at a time: it loads the
// aggregate, applies the pure checks or statistics, and writes the outcome
// back in a single store call.
type Processor struct {
	tournaments storage.TournamentStore
	guard       PendingGuard
	publisher   EventPublisher
	tracer      trace.Tracer
	now         func() time.Time
	newRunID    func() string
}

// NewProcessor wires a processor. A nil guard uses an in-process guard and a
// nil publisher drops events.
func NewProcessor(tournaments storage.TournamentStore, guard PendingGuard, publisher EventPublisher) *Processor {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Processor{
		tournaments: tournaments,
		guard:       guard,
		publisher:   publisher,
		tracer:      otel.Tracer(tracerName),
		now:         func() time.Time { return time.Now().UTC() },
		newRunID:    uuid.NewString,
	}
}

// RunChecks runs the automation checks and persists their outcome. When
// override is set, locked entities are reset and re-checked.
func (p *Processor) RunChecks(ctx context.Context, tournamentID int64, override bool) (checks.Report, error) {
	runID := p.newRunID()
	ctx, span := p.tracer.Start(ctx, "automation.run_checks", trace.WithAttributes(
		attribute.Int64("tournament.id", tournamentID),
		attribute.String("automation.run_id", runID),
		attribute.Bool("automation.override", override),
	))
	defer span.End()

	var report checks.Report
	err := p.guarded(ctx, tournamentID, runID, func() error {
		t, err := p.tournaments.GetTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		report = checks.Run(t, override)
		if err := p.tournaments.SaveAutomation(ctx, t); err != nil {
			return fmt.Errorf("save automation for tournament %d: %w", tournamentID, err)
		}
		p.publish(ctx, Event{
			Type:         EventTournamentChecked,
			RunID:        runID,
			TournamentID: tournamentID,
			Status:       report.Tournament.String(),
			Summary:      report,
		})
		return nil
	})
	if err != nil {
		recordError(span, err)
		return checks.Report{}, err
	}
	span.SetAttributes(attribute.String("tournament.status", report.Tournament.String()))
	return report, nil
}

// RunStatistics calculates and stores rosters and statistics for a verified
// tournament. Failed preconditions leave earlier statistics untouched.
func (p *Processor) RunStatistics(ctx context.Context, tournamentID int64) (stats.Result, error) {
	runID := p.newRunID()
	ctx, span := p.tracer.Start(ctx, "automation.run_statistics", trace.WithAttributes(
		attribute.Int64("tournament.id", tournamentID),
		attribute.String("automation.run_id", runID),
	))
	defer span.End()

	var result stats.Result
	err := p.guarded(ctx, tournamentID, runID, func() error {
		t, err := p.tournaments.GetTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		adjustments, err := p.tournaments.ListRatingAdjustments(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list rating adjustments for tournament %d: %w", tournamentID, err)
		}
		result, err = stats.CalculateAll(t, adjustments)
		if err != nil {
			return err
		}
		if err := p.tournaments.ReplaceStatistics(ctx, storage.Statistics{
			TournamentID:          result.TournamentID,
			GameRosters:           result.GameRosters,
			MatchRosters:          result.MatchRosters,
			PlayerMatchStats:      result.PlayerMatchStats,
			PlayerTournamentStats: result.PlayerTournamentStats,
		}); err != nil {
			return fmt.Errorf("replace statistics for tournament %d: %w", tournamentID, err)
		}
		p.publish(ctx, Event{
			Type:         EventTournamentStatsCalculated,
			RunID:        runID,
			TournamentID: tournamentID,
			Status:       domain.StatusVerified.String(),
			Summary: map[string]int{
				"game_rosters":            len(result.GameRosters),
				"match_rosters":           len(result.MatchRosters),
				"player_match_stats":      len(result.PlayerMatchStats),
				"player_tournament_stats": len(result.PlayerTournamentStats),
			},
		})
		return nil
	})
	if err != nil {
		recordError(span, err)
		return stats.Result{}, err
	}
	return result, nil
}

// ApplyReview records a reviewer's final decision on a tournament and
// cascades it: Rejected rejects every descendant, Verified promotes every
// descendant that is not already rejected.
func (p *Processor) ApplyReview(ctx context.Context, tournamentID int64, status domain.VerificationStatus) (domain.CascadeResult, error) {
	if !domain.IsLocked(status) {
		return domain.CascadeResult{}, apperrors.WithMetadata(apperrors.CodeReviewInvalidStatus,
			fmt.Sprintf("review status must be verified or rejected, got %s", status),
			map[string]string{"Status": status.String()})
	}

	runID := p.newRunID()
	ctx, span := p.tracer.Start(ctx, "automation.apply_review", trace.WithAttributes(
		attribute.Int64("tournament.id", tournamentID),
		attribute.String("automation.run_id", runID),
		attribute.String("review.status", status.String()),
	))
	defer span.End()

	var changed domain.CascadeResult
	err := p.guarded(ctx, tournamentID, runID, func() error {
		t, err := p.tournaments.GetTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if status == domain.StatusRejected {
			changed = domain.RejectTournament(t)
		} else {
			changed = domain.VerifyTournament(t)
		}
		if err := p.tournaments.SaveAutomation(ctx, t); err != nil {
			return fmt.Errorf("save review for tournament %d: %w", tournamentID, err)
		}
		p.publish(ctx, Event{
			Type:         EventTournamentReviewed,
			RunID:        runID,
			TournamentID: tournamentID,
			Status:       status.String(),
			Summary:      changed,
		})
		return nil
	})
	if err != nil {
		recordError(span, err)
		return domain.CascadeResult{}, err
	}
	return changed, nil
}

// guarded runs fn while holding the tournament's pending guard. The guard is
// released whether fn succeeds, fails or panics.
func (p *Processor) guarded(ctx context.Context, tournamentID int64, runID string, fn func() error) error {
	acquired, err := p.guard.Acquire(ctx, tournamentID, runID)
	if err != nil {
		return err
	}
	if !acquired {
		return apperrors.WithMetadata(apperrors.CodeAutomationPending,
			fmt.Sprintf("automation already pending for tournament %d", tournamentID),
			map[string]string{"TournamentID": fmt.Sprint(tournamentID)})
	}
	defer func() {
		// Release must outlive a cancelled run context.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.GuardRelease)
		defer cancel()
		if err := p.guard.Release(releaseCtx, tournamentID, runID); err != nil {
			log.Printf("release pending guard for tournament %d: %v", tournamentID, err)
		}
	}()
	return fn()
}

// publish reports committed results. Delivery failures are only logged.
func (p *Processor) publish(ctx context.Context, event Event) {
	event.OccurredAt = p.now()
	if err := p.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish %s for tournament %d: %v", event.Type, event.TournamentID, err)
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.code", string(apperrors.CodeOf(err))))
}
