package checks

import (
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/roster"
)

// teamCount is the number of sides every rated game must have.
const teamCount = 2

// CheckGame evaluates a game against its tournament and recomputes the game's
// warnings. Scores must already carry their own check outcome.
func CheckGame(game *domain.Game, t *domain.Tournament) domain.GameRejectionReason {
	return checkGame(game, t, t.BeatmapUsage())
}

func checkGame(game *domain.Game, t *domain.Tournament, beatmapUsage map[int64]int) domain.GameRejectionReason {
	game.WarningFlags = domain.GameWarningNone
	reason := domain.GameRejectionNone

	if game.TeamType != domain.TeamTypeTeamVs && game.TeamType != domain.TeamTypeHeadToHead {
		reason |= domain.GameRejectionInvalidTeamType
	}
	if game.ScoringType != domain.ScoringScoreV2 && game.ScoringType != domain.ScoringLazer {
		reason |= domain.GameRejectionInvalidScoringType
	}
	if game.Ruleset != t.Ruleset {
		reason |= domain.GameRejectionRulesetMismatch
	}
	if game.Mods.HasDisallowed() {
		reason |= domain.GameRejectionInvalidMods
	}
	if !domain.KnownTime(game.EndTime) {
		reason |= domain.GameRejectionNoEndTime
	}

	reason |= checkGameLobby(game, t.LobbySize)
	reason |= checkGameBeatmap(game, t, beatmapUsage)
	return reason
}

func checkGameLobby(game *domain.Game, lobbySize int) domain.GameRejectionReason {
	if len(game.Scores) == 0 {
		return domain.GameRejectionNoScores
	}
	valid := game.ValidScores()
	if len(valid) == 0 {
		return domain.GameRejectionNoValidScores
	}
	if len(valid)%2 != 0 {
		return domain.GameRejectionLobbySizeMismatch
	}
	rosters := roster.BuildGameRosters(game.ID, valid)
	if len(rosters) != teamCount {
		return domain.GameRejectionLobbySizeMismatch
	}
	for _, r := range rosters {
		if len(r.PlayerIDs) != lobbySize {
			return domain.GameRejectionLobbySizeMismatch
		}
	}
	return domain.GameRejectionNone
}

func checkGameBeatmap(game *domain.Game, t *domain.Tournament, beatmapUsage map[int64]int) domain.GameRejectionReason {
	if game.BeatmapID == 0 {
		return domain.GameRejectionNone
	}
	if t.HasBeatmapPool() {
		if !t.IsPooled(game.BeatmapID) {
			return domain.GameRejectionBeatmapNotPooled
		}
		return domain.GameRejectionNone
	}
	if beatmapUsage[game.BeatmapID] == 1 {
		game.WarningFlags |= domain.GameWarningBeatmapUsedOnce
	}
	return domain.GameRejectionNone
}
