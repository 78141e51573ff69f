package checks

import "github.com/louisbranch/tournament.archive/internal/services/automation/domain"

// MinimumScore is the highest score value still rejected as BelowMinimum.
const MinimumScore = 1000

// CheckScore evaluates a single score against the tournament ruleset.
func CheckScore(score *domain.Score, ruleset domain.Ruleset) domain.ScoreRejectionReason {
	reason := domain.ScoreRejectionNone
	if score.Score <= MinimumScore {
		reason |= domain.ScoreRejectionBelowMinimum
	}
	if score.Mods.HasDisallowed() {
		reason |= domain.ScoreRejectionInvalidMods
	}
	if score.Ruleset != ruleset {
		reason |= domain.ScoreRejectionRulesetMismatch
	}
	return reason
}
