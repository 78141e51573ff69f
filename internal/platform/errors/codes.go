// Package errors provides structured error handling for automation failures.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Statistics preconditions
	CodeTournamentNotVerified Code = "TOURNAMENT_NOT_VERIFIED"
	CodeNoVerifiedMatches     Code = "NO_VERIFIED_MATCHES"
	CodeMatchNoGameRosters    Code = "MATCH_NO_GAME_ROSTERS"
	CodeMissingProcessorData  Code = "MISSING_PROCESSOR_DATA"

	// Review errors
	CodeReviewInvalidStatus Code = "REVIEW_INVALID_STATUS"

	// Automation run errors
	CodeAutomationPending Code = "AUTOMATION_PENDING"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeReviewInvalidStatus:
		return codes.InvalidArgument

	// FailedPrecondition - aggregate state doesn't allow the operation
	case CodeTournamentNotVerified,
		CodeNoVerifiedMatches,
		CodeMatchNoGameRosters,
		CodeMissingProcessorData:
		return codes.FailedPrecondition

	// Aborted - another run holds the tournament
	case CodeAutomationPending:
		return codes.Aborted

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
