package checks

import (
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/roster"
)

const (
	// warmupGames is how many opening games may use beatmaps outside the pool.
	warmupGames = 2
	// lowGameCount is the largest valid game count that still warns.
	lowGameCount = 4
	// unexpectedGameCount is the largest valid game count that rejects.
	unexpectedGameCount = 2
)

// CheckMatch evaluates a match against its tournament and recomputes the
// match's warnings. Games must already carry their own check outcome.
func CheckMatch(match *domain.Match, t *domain.Tournament) domain.MatchRejectionReason {
	match.WarningFlags = matchWarnings(match)
	reason := domain.MatchRejectionNone

	if !domain.KnownTime(match.EndTime) {
		reason |= domain.MatchRejectionNoEndTime
	}

	valid := match.ValidGames()
	switch {
	case len(match.Games) == 0:
		reason |= domain.MatchRejectionNoGames
	case len(valid) == 0:
		reason |= domain.MatchRejectionNoValidGames
	case len(valid) <= unexpectedGameCount:
		reason |= domain.MatchRejectionUnexpectedGameCount
	case len(valid) <= lowGameCount:
		match.WarningFlags |= domain.MatchWarningLowGameCount
	}

	if !HasAbbreviationPrefix(match.Name, t.Abbreviation) {
		reason |= domain.MatchRejectionNamePrefixMismatch
	}
	return reason
}

func matchWarnings(match *domain.Match) domain.MatchWarningFlags {
	warnings := domain.MatchWarningNone

	ordered := domain.SortGamesByStartTime(match.Games)
	if len(ordered) > warmupGames {
		for _, game := range ordered[warmupGames:] {
			if game.RejectionReason.Has(domain.GameRejectionBeatmapNotPooled) {
				warnings |= domain.MatchWarningUnexpectedBeatmapsFound
				break
			}
		}
	}

	if !IsRecognizedMatchName(match.Name) {
		warnings |= domain.MatchWarningUnexpectedNameFormat
	}

	if len(roster.Overlapping(validMatchRosters(match))) > 0 {
		warnings |= domain.MatchWarningOverlappingRosters
	}
	return warnings
}

func validMatchRosters(match *domain.Match) []domain.MatchRoster {
	valid := match.ValidGames()
	games := make([][]domain.GameRoster, 0, len(valid))
	for _, game := range valid {
		games = append(games, roster.BuildGameRosters(game.ID, game.ValidScores()))
	}
	return roster.BuildMatchRosters(match.ID, games)
}
