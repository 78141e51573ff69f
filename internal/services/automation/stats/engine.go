package stats

import (
	"fmt"
	"sort"
	"strconv"

	apperrors "github.com/louisbranch/tournament.archive/internal/platform/errors"
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/roster"
)

// Result holds every record derived for one verified tournament. Records
// replace any earlier results stored for the same tournament.
type Result struct {
	TournamentID          int64
	GameRosters           []domain.GameRoster
	MatchRosters          []domain.MatchRoster
	PlayerMatchStats      []domain.PlayerMatchStats
	PlayerTournamentStats []domain.PlayerTournamentStats
}

// CalculateAll derives rosters and player statistics for a verified
// tournament. Adjustments are the rating changes recorded for its matches;
// every verified match needs at least one.
func CalculateAll(t *domain.Tournament, adjustments []domain.RatingAdjustment) (Result, error) {
	if t.VerificationStatus != domain.StatusVerified {
		return Result{}, tournamentError(apperrors.CodeTournamentNotVerified, t.ID,
			fmt.Sprintf("tournament %d is not verified", t.ID))
	}
	matches := t.VerifiedMatches()
	if len(matches) == 0 {
		return Result{}, tournamentError(apperrors.CodeNoVerifiedMatches, t.ID,
			fmt.Sprintf("tournament %d has no verified matches", t.ID))
	}

	byMatch := make(map[int64][]domain.RatingAdjustment)
	for _, adj := range adjustments {
		byMatch[adj.MatchID] = append(byMatch[adj.MatchID], adj)
	}
	for _, match := range matches {
		if len(byMatch[match.ID]) == 0 {
			return Result{}, apperrors.WithMetadata(apperrors.CodeMissingProcessorData,
				fmt.Sprintf("Missing processor data for match %d of tournament %d", match.ID, t.ID),
				map[string]string{
					"TournamentID": strconv.FormatInt(t.ID, 10),
					"MatchID":      strconv.FormatInt(match.ID, 10),
				})
		}
	}

	result := Result{TournamentID: t.ID}
	for _, match := range matches {
		computed, err := calculateMatch(match)
		if err != nil {
			return Result{}, err
		}
		result.GameRosters = append(result.GameRosters, computed.gameRosters...)
		result.MatchRosters = append(result.MatchRosters, computed.matchRosters...)
		result.PlayerMatchStats = append(result.PlayerMatchStats, computed.players...)
	}

	var verified []domain.RatingAdjustment
	for _, match := range matches {
		verified = append(verified, byMatch[match.ID]...)
	}
	result.PlayerTournamentStats = aggregateTournament(t.ID, result.PlayerMatchStats, verified)
	return result, nil
}

func tournamentError(code apperrors.Code, tournamentID int64, message string) error {
	return apperrors.WithMetadata(code, message, map[string]string{
		"TournamentID": strconv.FormatInt(tournamentID, 10),
	})
}

type matchResult struct {
	gameRosters  []domain.GameRoster
	matchRosters []domain.MatchRoster
	players      []domain.PlayerMatchStats
}

// playerGames collects one player's verified scores in a match.
type playerGames struct {
	games      map[int64]struct{}
	scores     []float64
	placements []float64
	misses     []float64
	accuracies []float64
	won, lost  int
}

func calculateMatch(match *domain.Match) (matchResult, error) {
	games := domain.SortGamesByStartTime(match.VerifiedGames())

	var out matchResult
	perGame := make([][]domain.GameRoster, 0, len(games))
	players := make(map[int64]*playerGames)
	for _, game := range games {
		scores := sortedByScore(game.VerifiedScores())
		rosters := roster.BuildGameRosters(game.ID, scores)
		if len(rosters) == 0 {
			continue
		}
		perGame = append(perGame, rosters)
		out.gameRosters = append(out.gameRosters, rosters...)
		winner, _ := roster.Winner(rosters)

		for i, score := range scores {
			p, ok := players[score.PlayerID]
			if !ok {
				p = &playerGames{games: make(map[int64]struct{})}
				players[score.PlayerID] = p
			}
			p.games[game.ID] = struct{}{}
			p.scores = append(p.scores, float64(score.Score))
			p.placements = append(p.placements, float64(i+1))
			p.misses = append(p.misses, float64(score.CountMiss))
			p.accuracies = append(p.accuracies, Accuracy(score))
			if score.Team == winner {
				p.won++
			} else {
				p.lost++
			}
		}
	}
	if len(out.gameRosters) == 0 {
		return matchResult{}, apperrors.WithMetadata(apperrors.CodeMatchNoGameRosters,
			fmt.Sprintf("match %d has no game rosters", match.ID),
			map[string]string{"MatchID": strconv.FormatInt(match.ID, 10)})
	}

	out.matchRosters = roster.BuildMatchRosters(match.ID, perGame)
	maxPoints := 0
	for _, r := range out.matchRosters {
		if r.Points > maxPoints {
			maxPoints = r.Points
		}
	}

	costs := MatchCosts(games)
	for _, playerID := range sortedPlayerIDs(players) {
		p := players[playerID]
		stats := domain.PlayerMatchStats{
			PlayerID:         playerID,
			MatchID:          match.ID,
			MatchCost:        costs[playerID],
			AverageScore:     Mean(p.scores),
			AveragePlacement: Mean(p.placements),
			AverageMisses:    Mean(p.misses),
			AverageAccuracy:  Mean(p.accuracies),
			GamesPlayed:      len(p.games),
			GamesWon:         p.won,
			GamesLost:        p.lost,
		}
		if team, ok := roster.TeamOf(out.matchRosters, playerID); ok {
			stats.Won = team.Points == maxPoints
			stats.TeammateIDs = without(team.PlayerIDs, playerID)
			stats.OpponentIDs = opponents(out.matchRosters, team.Team, playerID)
		}
		out.players = append(out.players, stats)
	}
	return out, nil
}

// sortedByScore orders scores by descending value, breaking ties by id.
func sortedByScore(scores []*domain.Score) []*domain.Score {
	sorted := make([]*domain.Score, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func opponents(rosters []domain.MatchRoster, team domain.Team, playerID int64) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, r := range rosters {
		if r.Team == team {
			continue
		}
		for _, id := range r.PlayerIDs {
			if id == playerID {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func without(ids []int64, drop int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func sortedPlayerIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
