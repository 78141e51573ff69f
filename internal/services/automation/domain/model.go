package domain

import (
	"sort"
	"time"
)

// Tournament is the root of the archive aggregate.
type Tournament struct {
	ID                 int64
	Name               string
	Abbreviation       string
	Ruleset            Ruleset
	LobbySize          int
	VerificationStatus VerificationStatus
	RejectionReason    TournamentRejectionReason
	// PooledBeatmapIDs is the mappool; empty means no restriction.
	PooledBeatmapIDs []int64
	Matches          []*Match
}

// Match is one series played between two sides of a tournament.
type Match struct {
	ID                 int64
	TournamentID       int64
	Name               string
	StartTime          time.Time
	EndTime            time.Time
	VerificationStatus VerificationStatus
	RejectionReason    MatchRejectionReason
	WarningFlags       MatchWarningFlags
	Games              []*Game
	Rosters            []MatchRoster
}

// Game is one beatmap played inside a match.
type Game struct {
	ID                 int64
	MatchID            int64
	BeatmapID          int64
	Ruleset            Ruleset
	ScoringType        ScoringType
	TeamType           TeamType
	Mods               Mods
	StartTime          time.Time
	EndTime            time.Time
	VerificationStatus VerificationStatus
	RejectionReason    GameRejectionReason
	WarningFlags       GameWarningFlags
	Scores             []*Score
	Rosters            []GameRoster
}

// Score is one player's result in a game.
type Score struct {
	ID                 int64
	GameID             int64
	PlayerID           int64
	Score              int64
	Team               Team
	Ruleset            Ruleset
	Mods               Mods
	MaxCombo           int
	Count300           int
	Count100           int
	Count50            int
	CountGeki          int
	CountKatu          int
	CountMiss          int
	VerificationStatus VerificationStatus
	RejectionReason    ScoreRejectionReason
}

// GameRoster is the derived lineup of one team in one game.
type GameRoster struct {
	GameID    int64
	Team      Team
	PlayerIDs []int64
	Score     int64
}

// MatchRoster is the derived lineup of one team across a match.
type MatchRoster struct {
	MatchID   int64
	Team      Team
	PlayerIDs []int64
	// Points is the number of games the team won.
	Points int
}

// RatingAdjustment is one externally computed rating change attributed to a match.
type RatingAdjustment struct {
	PlayerID         int64
	MatchID          int64
	RatingBefore     float64
	RatingAfter      float64
	VolatilityBefore float64
	VolatilityAfter  float64
	Timestamp        time.Time
}

// Delta returns the rating change of the adjustment.
func (a RatingAdjustment) Delta() float64 {
	return a.RatingAfter - a.RatingBefore
}

// HasBeatmapPool reports whether the tournament restricts beatmaps.
func (t *Tournament) HasBeatmapPool() bool {
	return len(t.PooledBeatmapIDs) > 0
}

// IsPooled reports whether beatmapID belongs to the mappool.
func (t *Tournament) IsPooled(beatmapID int64) bool {
	for _, id := range t.PooledBeatmapIDs {
		if id == beatmapID {
			return true
		}
	}
	return false
}

// BeatmapUsage counts games per beatmap across the tournament.
func (t *Tournament) BeatmapUsage() map[int64]int {
	usage := make(map[int64]int)
	for _, match := range t.Matches {
		for _, game := range match.Games {
			if game.BeatmapID == 0 {
				continue
			}
			usage[game.BeatmapID]++
		}
	}
	return usage
}

// ValidScores returns scores that are PreVerified or Verified.
func (g *Game) ValidScores() []*Score {
	return filterScores(g.Scores, func(s *Score) bool { return IsValid(s.VerificationStatus) })
}

// VerifiedScores returns scores that are Verified.
func (g *Game) VerifiedScores() []*Score {
	return filterScores(g.Scores, func(s *Score) bool { return s.VerificationStatus == StatusVerified })
}

// NonRejectedScores returns scores not locked as Rejected.
func (g *Game) NonRejectedScores() []*Score {
	return filterScores(g.Scores, func(s *Score) bool { return s.VerificationStatus != StatusRejected })
}

func filterScores(scores []*Score, keep func(*Score) bool) []*Score {
	out := make([]*Score, 0, len(scores))
	for _, score := range scores {
		if keep(score) {
			out = append(out, score)
		}
	}
	return out
}

// ValidGames returns games that are PreVerified or Verified.
func (m *Match) ValidGames() []*Game {
	return filterGames(m.Games, func(g *Game) bool { return IsValid(g.VerificationStatus) })
}

// VerifiedGames returns games that are Verified.
func (m *Match) VerifiedGames() []*Game {
	return filterGames(m.Games, func(g *Game) bool { return g.VerificationStatus == StatusVerified })
}

func filterGames(games []*Game, keep func(*Game) bool) []*Game {
	out := make([]*Game, 0, len(games))
	for _, game := range games {
		if keep(game) {
			out = append(out, game)
		}
	}
	return out
}

// SortGamesByStartTime returns a copy of games ordered by start time, then id.
func SortGamesByStartTime(games []*Game) []*Game {
	sorted := make([]*Game, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// VerifiedMatches returns matches that are Verified.
func (t *Tournament) VerifiedMatches() []*Match {
	out := make([]*Match, 0, len(t.Matches))
	for _, match := range t.Matches {
		if match.VerificationStatus == StatusVerified {
			out = append(out, match)
		}
	}
	return out
}
