package stats

import (
	"sort"

	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
)

// aggregateTournament summarizes match statistics per player. Players without
// a rating change in the tournament are left out.
func aggregateTournament(tournamentID int64, matches []domain.PlayerMatchStats, adjustments []domain.RatingAdjustment) []domain.PlayerTournamentStats {
	deltas := make(map[int64][]float64)
	for _, adj := range adjustments {
		deltas[adj.PlayerID] = append(deltas[adj.PlayerID], adj.Delta())
	}
	byPlayer := make(map[int64][]domain.PlayerMatchStats)
	for _, m := range matches {
		byPlayer[m.PlayerID] = append(byPlayer[m.PlayerID], m)
	}

	var out []domain.PlayerTournamentStats
	for _, playerID := range sortedPlayerIDs(byPlayer) {
		played := byPlayer[playerID]
		if len(deltas[playerID]) == 0 {
			continue
		}

		stats := domain.PlayerTournamentStats{
			PlayerID:           playerID,
			TournamentID:       tournamentID,
			AverageRatingDelta: Mean(deltas[playerID]),
			MatchesPlayed:      len(played),
		}
		var costs, scores, placements, accuracies []float64
		teammates := make(map[int64]struct{})
		for _, m := range played {
			costs = append(costs, m.MatchCost)
			scores = append(scores, m.AverageScore)
			placements = append(placements, m.AveragePlacement)
			accuracies = append(accuracies, m.AverageAccuracy)
			stats.GamesPlayed += m.GamesPlayed
			stats.GamesWon += m.GamesWon
			stats.GamesLost += m.GamesLost
			if m.Won {
				stats.MatchesWon++
			} else {
				stats.MatchesLost++
			}
			for _, id := range m.TeammateIDs {
				teammates[id] = struct{}{}
			}
		}
		stats.AverageMatchCost = Mean(costs)
		stats.AverageScore = int64(Mean(scores))
		stats.AveragePlacement = Mean(placements)
		stats.AverageAccuracy = Mean(accuracies)
		stats.MatchWinRate = float64(stats.MatchesWon) / float64(stats.MatchesPlayed)
		stats.TeammateIDs = sortedSet(teammates)
		out = append(out, stats)
	}
	return out
}

func sortedSet(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
