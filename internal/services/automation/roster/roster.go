// Package roster derives team lineups from scores.
//
// Rosters are never ingested: the checks use them to validate lobby shape and
// overlapping teams, and the statistics engine persists them for verified
// tournaments.
package roster

import (
	"sort"

	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
)

// BuildGameRosters groups scores by team, ordered by team value.
func BuildGameRosters(gameID int64, scores []*domain.Score) []domain.GameRoster {
	if len(scores) == 0 {
		return nil
	}
	players := make(map[domain.Team]map[int64]struct{})
	totals := make(map[domain.Team]int64)
	for _, score := range scores {
		set, ok := players[score.Team]
		if !ok {
			set = make(map[int64]struct{})
			players[score.Team] = set
		}
		set[score.PlayerID] = struct{}{}
		totals[score.Team] += score.Score
	}

	rosters := make([]domain.GameRoster, 0, len(players))
	for _, team := range sortedTeams(players) {
		rosters = append(rosters, domain.GameRoster{
			GameID:    gameID,
			Team:      team,
			PlayerIDs: sortedIDs(players[team]),
			Score:     totals[team],
		})
	}
	return rosters
}

// Winner returns the team with the greatest summed score. Ties go to the lower
// team value so the result never depends on input order.
func Winner(rosters []domain.GameRoster) (domain.Team, bool) {
	if len(rosters) == 0 {
		return domain.TeamNone, false
	}
	best := rosters[0]
	for _, r := range rosters[1:] {
		if r.Score > best.Score || (r.Score == best.Score && r.Team < best.Team) {
			best = r
		}
	}
	return best.Team, true
}

// BuildMatchRosters unions each team's players across games and awards one
// point per game won.
func BuildMatchRosters(matchID int64, games [][]domain.GameRoster) []domain.MatchRoster {
	players := make(map[domain.Team]map[int64]struct{})
	points := make(map[domain.Team]int)
	for _, rosters := range games {
		for _, r := range rosters {
			set, ok := players[r.Team]
			if !ok {
				set = make(map[int64]struct{})
				players[r.Team] = set
			}
			for _, id := range r.PlayerIDs {
				set[id] = struct{}{}
			}
		}
		if winner, ok := Winner(rosters); ok {
			points[winner]++
		}
	}
	if len(players) == 0 {
		return nil
	}

	rosters := make([]domain.MatchRoster, 0, len(players))
	for _, team := range sortedTeams(players) {
		rosters = append(rosters, domain.MatchRoster{
			MatchID:   matchID,
			Team:      team,
			PlayerIDs: sortedIDs(players[team]),
			Points:    points[team],
		})
	}
	return rosters
}

// Overlapping returns, in ascending order, the players found on more than one team.
func Overlapping(rosters []domain.MatchRoster) []int64 {
	seen := make(map[int64]int)
	for _, r := range rosters {
		for _, id := range r.PlayerIDs {
			seen[id]++
		}
	}
	overlap := make(map[int64]struct{})
	for id, count := range seen {
		if count > 1 {
			overlap[id] = struct{}{}
		}
	}
	if len(overlap) == 0 {
		return nil
	}
	return sortedIDs(overlap)
}

// TeamOf returns the team whose roster contains playerID.
func TeamOf(rosters []domain.MatchRoster, playerID int64) (domain.MatchRoster, bool) {
	for _, r := range rosters {
		for _, id := range r.PlayerIDs {
			if id == playerID {
				return r, true
			}
		}
	}
	return domain.MatchRoster{}, false
}

func sortedTeams[V any](byTeam map[domain.Team]V) []domain.Team {
	teams := make([]domain.Team, 0, len(byTeam))
	for team := range byTeam {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	return teams
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
