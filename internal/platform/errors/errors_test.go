package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCodeGRPCCode(t *testing.T) {
	cases := map[Code]codes.Code{
		CodeTournamentNotVerified: codes.FailedPrecondition,
		CodeMissingProcessorData:  codes.FailedPrecondition,
		CodeReviewInvalidStatus:   codes.InvalidArgument,
		CodeAutomationPending:     codes.Aborted,
		CodeNotFound:              codes.NotFound,
		CodeUnknown:               codes.Internal,
	}
	for code, want := range cases {
		if got := code.GRPCCode(); got != want {
			t.Fatalf("%s.GRPCCode() = %v, want %v", code, got, want)
		}
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("stats: %w", New(CodeNoVerifiedMatches, "tournament 4 has no verified matches"))

	if !stderrors.Is(err, &Error{Code: CodeNoVerifiedMatches}) {
		t.Fatal("expected wrapped error to match by code")
	}
	if stderrors.Is(err, &Error{Code: CodeNotFound}) {
		t.Fatal("expected different code not to match")
	}
	if got := CodeOf(err); got != CodeNoVerifiedMatches {
		t.Fatalf("CodeOf = %s, want %s", got, CodeNoVerifiedMatches)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %s, want %s", got, CodeUnknown)
	}
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := stderrors.New("no rows")
	err := New(CodeNotFound, "job j-1 not found").WithCause(cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if err.Error() != "job j-1 not found" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "job j-1 not found")
	}
}

func TestGRPCStatusAttachesErrorInfo(t *testing.T) {
	err := fmt.Errorf("stats job: %w", WithMetadata(CodeTournamentNotVerified, "tournament 7 is not verified", map[string]string{"TournamentID": "7"}))

	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected wrapped coded error to carry a gRPC status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("code = %v, want %v", st.Code(), codes.FailedPrecondition)
	}

	var info *errdetails.ErrorInfo
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.ErrorInfo); ok {
			info = d
		}
	}
	if info == nil {
		t.Fatal("expected ErrorInfo detail")
	}
	if info.Reason != string(CodeTournamentNotVerified) || info.Domain != Domain {
		t.Fatalf("info = %s/%s, want %s/%s", info.Reason, info.Domain, CodeTournamentNotVerified, Domain)
	}
	if info.Metadata["TournamentID"] != "7" {
		t.Fatalf("metadata = %v, want TournamentID 7", info.Metadata)
	}
}

func TestReasonOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "plain", err: stderrors.New("database is locked"), want: ""},
		{name: "coded", err: New(CodeAutomationPending, "pending"), want: string(CodeAutomationPending)},
		{name: "wrapped", err: fmt.Errorf("run: %w", New(CodeNotFound, "missing")), want: string(CodeNotFound)},
		{name: "foreign status", err: status.Error(codes.Unavailable, "down"), want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ReasonOf(tc.err); got != tc.want {
				t.Fatalf("ReasonOf = %q, want %q", got, tc.want)
			}
		})
	}
}
