// Package automationfakes provides tournament fixtures and in-memory seams for
// automation service tests.
//
// Fixtures start out shaped like a clean, checkable tournament so each test only
// mutates the fields it is exercising.
package automationfakes

import (
	"time"

	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
)

// BaseTime anchors every fixture timestamp.
var BaseTime = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// Tournament builds an osu! tournament with abbreviation "OWC".
func Tournament(lobbySize int, matches ...*domain.Match) *domain.Tournament {
	t := &domain.Tournament{
		ID:           1,
		Name:         "osu! World Cup",
		Abbreviation: "OWC",
		Ruleset:      domain.RulesetOsu,
		LobbySize:    lobbySize,
	}
	for _, match := range matches {
		match.TournamentID = t.ID
	}
	t.Matches = matches
	return t
}

// Match builds a match named "OWC: (Red) vs (Blue)" that ended after its games.
func Match(id int64, games ...*domain.Game) *domain.Match {
	m := &domain.Match{
		ID:        id,
		Name:      "OWC: (Red) vs (Blue)",
		StartTime: BaseTime,
		EndTime:   BaseTime.Add(2 * time.Hour),
	}
	for _, game := range games {
		game.MatchID = id
	}
	m.Games = games
	return m
}

// Game builds a ScoreV2 TeamVs game starting offset minutes after BaseTime.
func Game(id int64, offset int, scores ...*domain.Score) *domain.Game {
	start := BaseTime.Add(time.Duration(offset) * time.Minute)
	g := &domain.Game{
		ID:          id,
		BeatmapID:   1000 + id,
		Ruleset:     domain.RulesetOsu,
		ScoringType: domain.ScoringScoreV2,
		TeamType:    domain.TeamTypeTeamVs,
		StartTime:   start,
		EndTime:     start.Add(4 * time.Minute),
	}
	for _, score := range scores {
		score.GameID = id
	}
	g.Scores = scores
	return g
}

// Score builds a passing score for playerID on team.
func Score(id, playerID, value int64, team domain.Team) *domain.Score {
	return &domain.Score{
		ID:        id,
		PlayerID:  playerID,
		Score:     value,
		Team:      team,
		Ruleset:   domain.RulesetOsu,
		MaxCombo:  500,
		Count300:  480,
		Count100:  15,
		Count50:   3,
		CountMiss: 2,
	}
}

// SetStatus sets status on the tournament and every descendant.
func SetStatus(t *domain.Tournament, status domain.VerificationStatus) {
	t.VerificationStatus = status
	for _, match := range t.Matches {
		match.VerificationStatus = status
		for _, game := range match.Games {
			game.VerificationStatus = status
			for _, score := range game.Scores {
				score.VerificationStatus = status
			}
		}
	}
}

// VerifiedTwoVersusTwo builds the reference Verified tournament: lobby size 2,
// one match with two games, players 1 and 2 on Red at 100000/95000 and players
// 3 and 4 on Blue at 90000/85000 in both games.
func VerifiedTwoVersusTwo() *domain.Tournament {
	games := make([]*domain.Game, 0, 2)
	for i := int64(0); i < 2; i++ {
		base := i * 10
		games = append(games, Game(i+1, int(i)*10,
			Score(base+1, 1, 100000, domain.TeamRed),
			Score(base+2, 2, 95000, domain.TeamRed),
			Score(base+3, 3, 90000, domain.TeamBlue),
			Score(base+4, 4, 85000, domain.TeamBlue),
		))
	}
	t := Tournament(2, Match(1, games...))
	SetStatus(t, domain.StatusVerified)
	return t
}

// Adjustments builds one rating adjustment per player for matchID.
func Adjustments(matchID int64, deltas map[int64]float64) []domain.RatingAdjustment {
	out := make([]domain.RatingAdjustment, 0, len(deltas))
	for playerID, delta := range deltas {
		out = append(out, domain.RatingAdjustment{
			PlayerID:     playerID,
			MatchID:      matchID,
			RatingBefore: 1000,
			RatingAfter:  1000 + delta,
			Timestamp:    BaseTime.Add(3 * time.Hour),
		})
	}
	return out
}
