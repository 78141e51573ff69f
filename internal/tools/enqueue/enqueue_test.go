package enqueue

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/tournament.archive/internal/services/automation/storage"
	automationsqlite "github.com/louisbranch/tournament.archive/internal/services/automation/storage/sqlite"
)

func openStore(t *testing.T) *automationsqlite.Store {
	t.Helper()
	store, err := automationsqlite.Open(filepath.Join(t.TempDir(), "automation.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, Config{DBPath: "data/automation.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Kind != storage.JobKindChecks {
		t.Fatalf("kind = %q, want %q", cfg.Kind, storage.JobKindChecks)
	}
	if cfg.DBPath != "data/automation.db" {
		t.Fatalf("db path = %q, want data/automation.db", cfg.DBPath)
	}
}

func TestParseConfigOverride(t *testing.T) {
	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-kind", "stats", "-tournament", "42"}, Config{})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Kind != storage.JobKindStats || cfg.TournamentID != 42 {
		t.Fatalf("cfg = %+v, want stats for tournament 42", cfg)
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := Run(ctx, Config{Kind: "rebuild", TournamentID: 1}, store, &bytes.Buffer{}); err == nil {
		t.Fatal("expected unknown kind error")
	}
	if err := Run(ctx, Config{Kind: storage.JobKindChecks}, store, &bytes.Buffer{}); err == nil {
		t.Fatal("expected missing tournament error")
	}
	if err := Run(ctx, Config{Kind: storage.JobKindChecks, TournamentID: 1}, nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected missing store error")
	}
	if err := Run(ctx, Config{Kind: storage.JobKindChecks, TournamentID: 1}, store, nil); err == nil {
		t.Fatal("expected missing output error")
	}
}

func TestRunQueuesPendingJob(t *testing.T) {
	store := openStore(t)
	buf := &bytes.Buffer{}

	if err := Run(context.Background(), Config{Kind: storage.JobKindChecksOverride, TournamentID: 7}, store, buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	fields := strings.Fields(buf.String())
	if len(fields) != 3 {
		t.Fatalf("output = %q, want id kind tournament", buf.String())
	}
	job, err := store.GetJob(context.Background(), fields[0])
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Kind != storage.JobKindChecksOverride || job.TournamentID != 7 || job.Status != storage.JobStatusPending {
		t.Fatalf("job = %+v, want pending checks_override for tournament 7", job)
	}
}

func TestReviewJobKind(t *testing.T) {
	cases := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{value: "verified", want: storage.JobKindReviewVerified},
		{value: " Rejected ", want: storage.JobKindReviewRejected},
		{value: "pre_verified", wantErr: true},
		{value: "none", wantErr: true},
		{value: "approved", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			got, err := reviewJobKind(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("reviewJobKind(%q) = %q, want error", tc.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("reviewJobKind(%q): %v", tc.value, err)
			}
			if got != tc.want {
				t.Fatalf("reviewJobKind(%q) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestRunQueuesReviewJob(t *testing.T) {
	store := openStore(t)
	buf := &bytes.Buffer{}

	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-review", "rejected", "-tournament", "3"}, Config{})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if err := Run(context.Background(), cfg, store, buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	fields := strings.Fields(buf.String())
	if len(fields) != 3 {
		t.Fatalf("output = %q, want id kind tournament", buf.String())
	}
	job, err := store.GetJob(context.Background(), fields[0])
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Kind != storage.JobKindReviewRejected || job.TournamentID != 3 {
		t.Fatalf("job = %+v, want review_rejected for tournament 3", job)
	}

	if err := Run(context.Background(), Config{Review: "pre_rejected", TournamentID: 3}, store, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for non-reviewer status")
	}
}
