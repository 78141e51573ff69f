package domain

// Ruleset is the game mode a tournament, game or score is played in.
type Ruleset uint8

const (
	RulesetOsu        Ruleset = 0
	RulesetTaiko      Ruleset = 1
	RulesetCatch      Ruleset = 2
	RulesetManiaOther Ruleset = 3
	RulesetMania4k    Ruleset = 4
	RulesetMania7k    Ruleset = 5
)

// IsMania reports whether the ruleset is any mania key variant.
func (r Ruleset) IsMania() bool {
	return r == RulesetManiaOther || r == RulesetMania4k || r == RulesetMania7k
}

// ScoringType is the win condition configured for a game lobby.
type ScoringType uint8

const (
	ScoringScore    ScoringType = 0
	ScoringAccuracy ScoringType = 1
	ScoringCombo    ScoringType = 2
	ScoringScoreV2  ScoringType = 3
	ScoringLazer    ScoringType = 4
)

// TeamType is the team mode configured for a game lobby.
type TeamType uint8

const (
	TeamTypeHeadToHead TeamType = 0
	TeamTypeTagCoop    TeamType = 1
	TeamTypeTeamVs     TeamType = 2
	TeamTypeTagTeamVs  TeamType = 3
)

// Team is the side a score was submitted for.
type Team uint8

const (
	TeamNone Team = 0
	TeamBlue Team = 1
	TeamRed  Team = 2
)

func (t Team) String() string {
	switch t {
	case TeamNone:
		return "none"
	case TeamBlue:
		return "blue"
	case TeamRed:
		return "red"
	default:
		return "unknown"
	}
}

// Mods is the bitwise set of gameplay modifiers applied to a game or score.
type Mods uint32

const (
	ModNone        Mods = 0
	ModNoFail      Mods = 1 << 0
	ModEasy        Mods = 1 << 1
	ModTouchDevice Mods = 1 << 2
	ModHidden      Mods = 1 << 3
	ModHardRock    Mods = 1 << 4
	ModSuddenDeath Mods = 1 << 5
	ModDoubleTime  Mods = 1 << 6
	ModRelax       Mods = 1 << 7
	ModHalfTime    Mods = 1 << 8
	ModNightcore   Mods = 1 << 9
	ModFlashlight  Mods = 1 << 10
	ModAutoplay    Mods = 1 << 11
	ModSpunOut     Mods = 1 << 12
	ModRelax2      Mods = 1 << 13
	ModPerfect     Mods = 1 << 14
	ModKey4        Mods = 1 << 15
	ModKey5        Mods = 1 << 16
	ModKey6        Mods = 1 << 17
	ModKey7        Mods = 1 << 18
	ModKey8        Mods = 1 << 19
	ModFadeIn      Mods = 1 << 20
	ModRandom      Mods = 1 << 21
	ModCinema      Mods = 1 << 22
	ModTarget      Mods = 1 << 23
	ModKey9        Mods = 1 << 24
	ModKeyCoop     Mods = 1 << 25
	ModKey1        Mods = 1 << 26
	ModKey3        Mods = 1 << 27
	ModKey2        Mods = 1 << 28
	ModScoreV2     Mods = 1 << 29
	ModMirror      Mods = 1 << 30
)

// DisallowedMods are modifiers that make a score or game ineligible for rating.
const DisallowedMods = ModSuddenDeath | ModPerfect | ModRelax | ModAutoplay | ModRelax2

// Has reports whether any bit of other is present in m.
func (m Mods) Has(other Mods) bool {
	return m&other != 0
}

// HasDisallowed reports whether m contains any disallowed modifier.
func (m Mods) HasDisallowed() bool {
	return m.Has(DisallowedMods)
}
