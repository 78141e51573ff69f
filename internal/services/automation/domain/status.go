package domain

import (
	"strings"
	"time"
)

// VerificationStatus is the lifecycle stage of an archived entity.
type VerificationStatus uint8

const (
	// StatusNone means automation has not evaluated the entity yet.
	StatusNone VerificationStatus = 0
	// StatusPreRejected means automation found at least one rejection reason.
	StatusPreRejected VerificationStatus = 1
	// StatusPreVerified means automation found no rejection reason.
	StatusPreVerified VerificationStatus = 2
	// StatusRejected is a locked reviewer decision.
	StatusRejected VerificationStatus = 3
	// StatusVerified is a locked reviewer decision.
	StatusVerified VerificationStatus = 4
)

// IsLocked reports whether automation must leave the status alone.
func IsLocked(status VerificationStatus) bool {
	return status == StatusVerified || status == StatusRejected
}

// IsValid reports whether the status counts as passing for parent checks.
func IsValid(status VerificationStatus) bool {
	return status == StatusPreVerified || status == StatusVerified
}

// ParseVerificationStatus resolves a status name, ignoring case.
func ParseVerificationStatus(value string) (VerificationStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return StatusNone, true
	case "prerejected", "pre_rejected":
		return StatusPreRejected, true
	case "preverified", "pre_verified":
		return StatusPreVerified, true
	case "rejected":
		return StatusRejected, true
	case "verified":
		return StatusVerified, true
	default:
		return StatusNone, false
	}
}

func (s VerificationStatus) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusPreRejected:
		return "pre_rejected"
	case StatusPreVerified:
		return "pre_verified"
	case StatusRejected:
		return "rejected"
	case StatusVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// statusFromOutcome maps a check outcome onto a non-locked status.
func statusFromOutcome(current VerificationStatus, rejected bool) VerificationStatus {
	if IsLocked(current) {
		return current
	}
	if rejected {
		return StatusPreRejected
	}
	return StatusPreVerified
}

var epoch = time.Unix(0, 0).UTC()

// KnownTime reports whether t carries a real timestamp. Zero values and
// anything at or before the Unix epoch are ingestion placeholders.
func KnownTime(t time.Time) bool {
	return !t.IsZero() && t.After(epoch)
}
