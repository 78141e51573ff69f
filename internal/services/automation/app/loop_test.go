package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/tournament.archive/internal/platform/errors"
	"github.com/louisbranch/tournament.archive/internal/services/automation/checks"
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/stats"
	"github.com/louisbranch/tournament.archive/internal/services/automation/storage"
	automationsqlite "github.com/louisbranch/tournament.archive/internal/services/automation/storage/sqlite"
)

type call struct {
	kind         string
	tournamentID int64
}

type fakeProcessor struct {
	calls []call
	err   error
}

func (f *fakeProcessor) RunChecks(_ context.Context, tournamentID int64, override bool) (checks.Report, error) {
	kind := storage.JobKindChecks
	if override {
		kind = storage.JobKindChecksOverride
	}
	f.calls = append(f.calls, call{kind: kind, tournamentID: tournamentID})
	return checks.Report{}, f.err
}

func (f *fakeProcessor) RunStatistics(_ context.Context, tournamentID int64) (stats.Result, error) {
	f.calls = append(f.calls, call{kind: storage.JobKindStats, tournamentID: tournamentID})
	return stats.Result{}, f.err
}

func (f *fakeProcessor) ApplyReview(_ context.Context, tournamentID int64, status domain.VerificationStatus) (domain.CascadeResult, error) {
	kind := storage.JobKindReviewVerified
	if status == domain.StatusRejected {
		kind = storage.JobKindReviewRejected
	}
	f.calls = append(f.calls, call{kind: kind, tournamentID: tournamentID})
	return domain.CascadeResult{}, f.err
}

var loopNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestLoop(t *testing.T, processor JobProcessor, cfg Config) (*Loop, *automationsqlite.Store) {
	t.Helper()
	store, err := automationsqlite.Open(filepath.Join(t.TempDir(), "automation.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	loop := New(store, store, processor, cfg)
	loop.now = func() time.Time { return loopNow }
	return loop, store
}

func enqueue(t *testing.T, store storage.JobStore, id, kind string, tournamentID int64) {
	t.Helper()
	if err := store.EnqueueJob(context.Background(), storage.Job{
		ID:           id,
		Kind:         kind,
		TournamentID: tournamentID,
		CreatedAt:    loopNow.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("enqueue %s: %v", id, err)
	}
}

func TestRunOnceDispatchesByKind(t *testing.T) {
	processor := &fakeProcessor{}
	loop, store := newTestLoop(t, processor, Config{Consumer: "automation-1"})
	enqueue(t, store, "job-1", storage.JobKindChecks, 1)
	enqueue(t, store, "job-2", storage.JobKindChecksOverride, 2)
	enqueue(t, store, "job-3", storage.JobKindStats, 3)
	enqueue(t, store, "job-4", storage.JobKindReviewVerified, 4)
	enqueue(t, store, "job-5", storage.JobKindReviewRejected, 5)

	for i := 0; i < 5; i++ {
		processed, err := loop.RunOnce(context.Background())
		if err != nil || !processed {
			t.Fatalf("run %d: processed=%v err=%v", i, processed, err)
		}
	}
	processed, err := loop.RunOnce(context.Background())
	if err != nil || processed {
		t.Fatalf("empty queue: processed=%v err=%v", processed, err)
	}

	want := []call{
		{kind: storage.JobKindChecks, tournamentID: 1},
		{kind: storage.JobKindChecksOverride, tournamentID: 2},
		{kind: storage.JobKindStats, tournamentID: 3},
		{kind: storage.JobKindReviewVerified, tournamentID: 4},
		{kind: storage.JobKindReviewRejected, tournamentID: 5},
	}
	if len(processor.calls) != len(want) {
		t.Fatalf("calls = %+v, want %+v", processor.calls, want)
	}
	for i := range want {
		if processor.calls[i] != want[i] {
			t.Fatalf("call[%d] = %+v, want %+v", i, processor.calls[i], want[i])
		}
	}

	job, err := store.GetJob(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != storage.JobStatusSucceeded {
		t.Fatalf("job status = %s, want succeeded", job.Status)
	}
	attempts, err := store.ListAttempts(context.Background(), 10)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 5 || attempts[0].Outcome != OutcomeSucceeded || attempts[0].Consumer != "automation-1" {
		t.Fatalf("attempts = %+v, want five succeeded records", attempts)
	}
}

func TestRunOnceRetriesTransientFailure(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("database is locked")}
	loop, store := newTestLoop(t, processor, Config{RetryBackoff: 10 * time.Second, MaxAttempts: 3})
	enqueue(t, store, "job-1", storage.JobKindChecks, 1)

	if _, err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	job, err := store.GetJob(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != storage.JobStatusPending || job.LastError != "database is locked" {
		t.Fatalf("job = %+v, want pending retry", job)
	}
	if want := loopNow.Add(10 * time.Second); !job.NextAttemptAt.Equal(want) {
		t.Fatalf("next attempt = %v, want %v", job.NextAttemptAt, want)
	}

	attempts, _ := store.ListAttempts(context.Background(), 10)
	if len(attempts) != 1 || attempts[0].Outcome != OutcomeRetry {
		t.Fatalf("attempts = %+v, want one retry", attempts)
	}
}

func TestRunOnceDeadLettersAfterMaxAttempts(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("database is locked")}
	loop, store := newTestLoop(t, processor, Config{RetryBackoff: time.Second, MaxAttempts: 2})
	enqueue(t, store, "job-1", storage.JobKindStats, 1)

	if _, err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	loop.now = func() time.Time { return loopNow.Add(time.Minute) }
	if _, err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	job, _ := store.GetJob(context.Background(), "job-1")
	if job.Status != storage.JobStatusDead || job.AttemptCount != 2 {
		t.Fatalf("job = %+v, want dead after 2 attempts", job)
	}
}

func TestRunOnceDeadLettersPermanentFailure(t *testing.T) {
	processor := &fakeProcessor{err: apperrors.New(apperrors.CodeTournamentNotVerified, "tournament 1 is not verified")}
	loop, store := newTestLoop(t, processor, Config{})
	enqueue(t, store, "job-1", storage.JobKindStats, 1)

	if _, err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	job, _ := store.GetJob(context.Background(), "job-1")
	if job.Status != storage.JobStatusDead || job.LastError != "TOURNAMENT_NOT_VERIFIED: tournament 1 is not verified" {
		t.Fatalf("job = %+v, want dead with precondition error", job)
	}
}

func TestIsPermanent(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "marked", err: domain.Permanent(errors.New("boom")), want: true},
		{name: "not verified", err: apperrors.New(apperrors.CodeTournamentNotVerified, "x"), want: true},
		{name: "not found", err: apperrors.New(apperrors.CodeNotFound, "x"), want: true},
		{name: "missing ratings", err: apperrors.New(apperrors.CodeMissingProcessorData, "x"), want: false},
		{name: "pending", err: apperrors.New(apperrors.CodeAutomationPending, "x"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isPermanent(tc.err); got != tc.want {
				t.Fatalf("isPermanent = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDispatchUnknownKindIsPermanent(t *testing.T) {
	loop := New(nil, nil, &fakeProcessor{}, Config{})
	err := loop.dispatch(context.Background(), storage.Job{Kind: "rebuild"})
	if !domain.IsPermanent(err) {
		t.Fatalf("err = %v, want permanent", err)
	}
}

func TestConfigRetryDelay(t *testing.T) {
	cfg := Config{RetryBackoff: time.Second, RetryMaxDelay: 10 * time.Second}.normalized()
	cases := map[int32]time.Duration{
		0:  time.Second,
		1:  time.Second,
		2:  2 * time.Second,
		4:  8 * time.Second,
		5:  10 * time.Second,
		60: 10 * time.Second,
	}
	for attempt, want := range cases {
		if got := cfg.retryDelay(attempt); got != want {
			t.Fatalf("retryDelay(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestConfigNormalizedDefaults(t *testing.T) {
	cfg := Config{Consumer: "  "}.normalized()
	if cfg.Consumer != defaultConsumer {
		t.Fatalf("consumer = %q, want %q", cfg.Consumer, defaultConsumer)
	}
	if cfg.PollInterval != defaultPollInterval || cfg.LeaseTTL != defaultLeaseTTL || cfg.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
	if cfg.RetryBackoff != defaultRetryBackoff || cfg.RetryMaxDelay != defaultRetryMaxDelay {
		t.Fatalf("cfg = %+v, want default backoff", cfg)
	}
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	processor := &fakeProcessor{}
	loop, store := newTestLoop(t, processor, Config{PollInterval: 10 * time.Millisecond})
	enqueue(t, store, "job-1", storage.JobKindChecks, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		job, err := store.GetJob(context.Background(), "job-1")
		if err == nil && job.Status == storage.JobStatusSucceeded {
			break
		}
		select {
		case <-deadline:
			t.Fatal("job was not processed")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
