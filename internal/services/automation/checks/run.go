package checks

import "github.com/louisbranch/tournament.archive/internal/services/automation/domain"

// Report summarizes one automation pass over a tournament.
type Report struct {
	Reset       domain.CascadeResult
	Cascaded    domain.CascadeResult
	Converted   int
	Checked     Counts
	PreVerified Counts
	PreRejected Counts
	Tournament  domain.VerificationStatus
}

// Counts tallies entities per level.
type Counts struct {
	Matches int
	Games   int
	Scores  int
}

// Run executes the automation pass over t in place: reset, head-to-head
// conversion, cascade of existing rejections, then score, game, match and
// tournament checks. Locked entities keep their status, reasons and warnings.
func Run(t *domain.Tournament, override bool) Report {
	var report Report
	report.Reset = domain.ResetAutomation(t, override)

	for _, match := range t.Matches {
		if ConvertHeadToHead(match, t) {
			report.Converted++
		}
	}

	report.Cascaded = domain.CascadeRejections(t)

	for _, match := range t.Matches {
		for _, game := range match.Games {
			for _, score := range game.Scores {
				if domain.IsLocked(score.VerificationStatus) {
					continue
				}
				score.ApplyOutcome(CheckScore(score, t.Ruleset))
				report.Checked.Scores++
				tally(&report, score.VerificationStatus, func(c *Counts) { c.Scores++ })
			}
		}
	}

	usage := t.BeatmapUsage()
	for _, match := range t.Matches {
		for _, game := range match.Games {
			if domain.IsLocked(game.VerificationStatus) {
				continue
			}
			carried := game.RejectionReason & (domain.GameRejectionFailedTeamVsConversion | domain.GameRejectionLobbySizeMismatch)
			game.ApplyOutcome(checkGame(game, t, usage) | carried)
			report.Checked.Games++
			tally(&report, game.VerificationStatus, func(c *Counts) { c.Games++ })
		}
	}

	for _, match := range t.Matches {
		if domain.IsLocked(match.VerificationStatus) {
			continue
		}
		carried := match.RejectionReason & domain.MatchRejectionFailedTeamVsConversion
		match.ApplyOutcome(CheckMatch(match, t) | carried)
		report.Checked.Matches++
		tally(&report, match.VerificationStatus, func(c *Counts) { c.Matches++ })
	}

	if !domain.IsLocked(t.VerificationStatus) {
		t.ApplyOutcome(CheckTournament(t))
	}
	report.Tournament = t.VerificationStatus
	return report
}

func tally(report *Report, status domain.VerificationStatus, inc func(*Counts)) {
	switch status {
	case domain.StatusPreVerified:
		inc(&report.PreVerified)
	case domain.StatusPreRejected:
		inc(&report.PreRejected)
	}
}
