package checks

import "github.com/louisbranch/tournament.archive/internal/services/automation/domain"

// MinimumVerifiedRatio is the share of played matches that must pass.
const MinimumVerifiedRatio = 0.8

// CheckTournament evaluates a tournament from its matches' outcomes. Matches
// without games are ignored.
func CheckTournament(t *domain.Tournament) domain.TournamentRejectionReason {
	considered, valid := 0, 0
	for _, match := range t.Matches {
		if len(match.Games) == 0 {
			continue
		}
		considered++
		if domain.IsValid(match.VerificationStatus) {
			valid++
		}
	}
	if considered == 0 || valid == 0 {
		return domain.TournamentRejectionNoVerifiedMatches
	}
	if float64(valid)/float64(considered) < MinimumVerifiedRatio {
		return domain.TournamentRejectionNotEnoughVerifiedMatches
	}
	return domain.TournamentRejectionNone
}
