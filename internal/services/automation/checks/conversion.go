package checks

import (
	"sort"

	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
)

// ConvertHeadToHead retags 1v1 head-to-head games as TeamVs so they can pass
// the lobby rule. Players are assigned Red and Blue from the middle game of the
// match, which is least likely to be a warmup or a substitute lobby.
//
// Conversion only applies to 1v1 tournaments that are not locked, and never to
// locked matches or games. It reports whether any game was converted. A failed
// conversion leaves teams untouched and flags FailedTeamVsConversion on the
// unlocked games involved.
func ConvertHeadToHead(match *domain.Match, t *domain.Tournament) bool {
	if t.LobbySize != 1 || domain.IsLocked(t.VerificationStatus) || domain.IsLocked(match.VerificationStatus) {
		return false
	}

	var candidates []*domain.Game
	for _, game := range match.Games {
		if domain.IsLocked(game.VerificationStatus) || game.TeamType != domain.TeamTypeHeadToHead {
			continue
		}
		if n := len(game.NonRejectedScores()); n == 1 || n == 2 {
			candidates = append(candidates, game)
		}
	}
	if len(candidates) == 0 {
		return false
	}

	pair := matchPlayerIDs(match)
	if len(pair) != 2 {
		match.RejectionReason |= domain.MatchRejectionFailedTeamVsConversion
		for _, game := range candidates {
			game.RejectionReason |= domain.GameRejectionFailedTeamVsConversion
		}
		return false
	}

	for _, game := range match.Games {
		if game.VerificationStatus == domain.StatusRejected {
			continue
		}
		if !scoresWithinPair(game.NonRejectedScores(), pair) {
			if !domain.IsLocked(game.VerificationStatus) {
				game.RejectionReason |= domain.GameRejectionFailedTeamVsConversion | domain.GameRejectionLobbySizeMismatch
			}
			return false
		}
	}

	ordered := domain.SortGamesByStartTime(candidates)
	red, blue := assignTeams(ordered[len(ordered)/2], pair)
	for _, game := range candidates {
		for _, score := range game.NonRejectedScores() {
			switch score.PlayerID {
			case red:
				score.Team = domain.TeamRed
			case blue:
				score.Team = domain.TeamBlue
			}
		}
		game.TeamType = domain.TeamTypeTeamVs
	}
	return true
}

// matchPlayerIDs returns the ascending distinct players across every
// non-rejected score of every non-rejected game.
func matchPlayerIDs(match *domain.Match) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, game := range match.Games {
		if game.VerificationStatus == domain.StatusRejected {
			continue
		}
		for _, score := range game.NonRejectedScores() {
			if _, ok := seen[score.PlayerID]; ok {
				continue
			}
			seen[score.PlayerID] = struct{}{}
			ids = append(ids, score.PlayerID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func scoresWithinPair(scores []*domain.Score, pair []int64) bool {
	if len(scores) > 2 {
		return false
	}
	for _, score := range scores {
		if score.PlayerID != pair[0] && score.PlayerID != pair[1] {
			return false
		}
	}
	return true
}

// assignTeams picks Red and Blue players from the source game, falling back to
// the ascending global pair.
func assignTeams(source *domain.Game, pair []int64) (red, blue int64) {
	scores := source.NonRejectedScores()
	switch {
	case len(scores) >= 2:
		ids := []int64{scores[0].PlayerID, scores[1].PlayerID}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		if ids[0] != ids[1] {
			return ids[0], ids[1]
		}
	case len(scores) == 1:
		only := scores[0].PlayerID
		if only == pair[0] {
			return pair[0], pair[1]
		}
		return pair[1], pair[0]
	}
	return pair[0], pair[1]
}
