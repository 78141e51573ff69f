package stats

import (
	"math"

	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
)

const consistencyBonus = 0.3

// MatchCosts returns the match cost of every player with a verified score in
// games. Each game's scores are standardized, players are ranked by the mean
// normal percentile of their z-scores, and players appearing in more of the
// games receive up to a 30% bonus.
func MatchCosts(games []*domain.Game) map[int64]float64 {
	percentiles := make(map[int64][]float64)
	played := make(map[int64]map[int64]struct{})
	for _, game := range games {
		scores := game.VerifiedScores()
		values := make([]float64, len(scores))
		for i, score := range scores {
			values[i] = float64(score.Score)
		}
		mean, sd := Mean(values), StdDev(values)
		for _, score := range scores {
			z := (float64(score.Score) - mean) / sd
			percentiles[score.PlayerID] = append(percentiles[score.PlayerID], NormalCDF(z))
			if played[score.PlayerID] == nil {
				played[score.PlayerID] = make(map[int64]struct{})
			}
			played[score.PlayerID][game.ID] = struct{}{}
		}
	}

	total := float64(len(games) - 1)
	if total < 1 {
		total = 1
	}
	costs := make(map[int64]float64, len(percentiles))
	for playerID, values := range percentiles {
		g := float64(len(played[playerID]))
		bonus := 1 + consistencyBonus*math.Sqrt((g-1)/total)
		costs[playerID] = (Mean(values) + 0.5) * bonus
	}
	return costs
}
