package domain

import "strings"

// flagSet is the constraint shared by every rejection reason and warning type.
type flagSet interface {
	~uint32
}

// HasFlag reports whether every bit of flag is set in set.
func HasFlag[T flagSet](set, flag T) bool {
	return flag != 0 && set&flag == flag
}

func flagNames[T flagSet](set T, names []string) string {
	if set == 0 {
		return "none"
	}
	parts := make([]string, 0, len(names))
	for i, name := range names {
		if set&(T(1)<<uint(i)) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// ScoreRejectionReason records why automation rejected a score.
type ScoreRejectionReason uint32

const (
	ScoreRejectionNone            ScoreRejectionReason = 0
	ScoreRejectionBelowMinimum    ScoreRejectionReason = 1 << 0
	ScoreRejectionInvalidMods     ScoreRejectionReason = 1 << 1
	ScoreRejectionRulesetMismatch ScoreRejectionReason = 1 << 2
	ScoreRejectionRejectedGame    ScoreRejectionReason = 1 << 3
)

var scoreRejectionNames = []string{"below_minimum", "invalid_mods", "ruleset_mismatch", "rejected_game"}

func (r ScoreRejectionReason) Has(flag ScoreRejectionReason) bool { return HasFlag(r, flag) }
func (r ScoreRejectionReason) String() string                     { return flagNames(r, scoreRejectionNames) }

// GameRejectionReason records why automation rejected a game.
type GameRejectionReason uint32

const (
	GameRejectionNone                   GameRejectionReason = 0
	GameRejectionNoScores               GameRejectionReason = 1 << 0
	GameRejectionInvalidMods            GameRejectionReason = 1 << 1
	GameRejectionRulesetMismatch        GameRejectionReason = 1 << 2
	GameRejectionInvalidScoringType     GameRejectionReason = 1 << 3
	GameRejectionInvalidTeamType        GameRejectionReason = 1 << 4
	GameRejectionLobbySizeMismatch      GameRejectionReason = 1 << 5
	GameRejectionNoValidScores          GameRejectionReason = 1 << 6
	GameRejectionNoEndTime              GameRejectionReason = 1 << 7
	GameRejectionRejectedMatch          GameRejectionReason = 1 << 8
	GameRejectionBeatmapNotPooled       GameRejectionReason = 1 << 9
	GameRejectionFailedTeamVsConversion GameRejectionReason = 1 << 10
)

var gameRejectionNames = []string{
	"no_scores", "invalid_mods", "ruleset_mismatch", "invalid_scoring_type", "invalid_team_type",
	"lobby_size_mismatch", "no_valid_scores", "no_end_time", "rejected_match", "beatmap_not_pooled",
	"failed_team_vs_conversion",
}

func (r GameRejectionReason) Has(flag GameRejectionReason) bool { return HasFlag(r, flag) }
func (r GameRejectionReason) String() string                    { return flagNames(r, gameRejectionNames) }

// GameWarningFlags are non-blocking observations about a game.
type GameWarningFlags uint32

const (
	GameWarningNone            GameWarningFlags = 0
	GameWarningBeatmapUsedOnce GameWarningFlags = 1 << 0
)

func (w GameWarningFlags) Has(flag GameWarningFlags) bool { return HasFlag(w, flag) }
func (w GameWarningFlags) String() string                 { return flagNames(w, []string{"beatmap_used_once"}) }

// MatchRejectionReason records why automation rejected a match.
type MatchRejectionReason uint32

const (
	MatchRejectionNone                   MatchRejectionReason = 0
	MatchRejectionNoGames                MatchRejectionReason = 1 << 0
	MatchRejectionNamePrefixMismatch     MatchRejectionReason = 1 << 1
	MatchRejectionFailedTeamVsConversion MatchRejectionReason = 1 << 2
	MatchRejectionNoValidGames           MatchRejectionReason = 1 << 3
	MatchRejectionUnexpectedGameCount    MatchRejectionReason = 1 << 4
	MatchRejectionNoEndTime              MatchRejectionReason = 1 << 5
	MatchRejectionRejectedTournament     MatchRejectionReason = 1 << 6
)

var matchRejectionNames = []string{
	"no_games", "name_prefix_mismatch", "failed_team_vs_conversion", "no_valid_games",
	"unexpected_game_count", "no_end_time", "rejected_tournament",
}

func (r MatchRejectionReason) Has(flag MatchRejectionReason) bool { return HasFlag(r, flag) }
func (r MatchRejectionReason) String() string                     { return flagNames(r, matchRejectionNames) }

// MatchWarningFlags are non-blocking observations about a match.
type MatchWarningFlags uint32

const (
	MatchWarningNone                    MatchWarningFlags = 0
	MatchWarningUnexpectedBeatmapsFound MatchWarningFlags = 1 << 0
	MatchWarningUnexpectedNameFormat    MatchWarningFlags = 1 << 1
	MatchWarningLowGameCount            MatchWarningFlags = 1 << 2
	MatchWarningOverlappingRosters      MatchWarningFlags = 1 << 3
)

var matchWarningNames = []string{
	"unexpected_beatmaps_found", "unexpected_name_format", "low_game_count", "overlapping_rosters",
}

func (w MatchWarningFlags) Has(flag MatchWarningFlags) bool { return HasFlag(w, flag) }
func (w MatchWarningFlags) String() string                  { return flagNames(w, matchWarningNames) }

// TournamentRejectionReason records why automation rejected a tournament.
type TournamentRejectionReason uint32

const (
	TournamentRejectionNone                     TournamentRejectionReason = 0
	TournamentRejectionNoVerifiedMatches        TournamentRejectionReason = 1 << 0
	TournamentRejectionNotEnoughVerifiedMatches TournamentRejectionReason = 1 << 1
)

func (r TournamentRejectionReason) Has(flag TournamentRejectionReason) bool { return HasFlag(r, flag) }
func (r TournamentRejectionReason) String() string {
	return flagNames(r, []string{"no_verified_matches", "not_enough_verified_matches"})
}
