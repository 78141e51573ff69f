package domain

// PlayerMatchStats is one player's performance summary for a verified match.
type PlayerMatchStats struct {
	PlayerID         int64
	MatchID          int64
	MatchCost        float64
	AverageScore     float64
	AveragePlacement float64
	AverageMisses    float64
	AverageAccuracy  float64
	GamesPlayed      int
	GamesWon         int
	GamesLost        int
	Won              bool
	TeammateIDs      []int64
	OpponentIDs      []int64
}

// PlayerTournamentStats is one player's summary across a verified tournament.
type PlayerTournamentStats struct {
	PlayerID           int64
	TournamentID       int64
	AverageRatingDelta float64
	AverageMatchCost   float64
	AverageScore       int64
	AveragePlacement   float64
	AverageAccuracy    float64
	MatchesPlayed      int
	MatchesWon         int
	MatchesLost        int
	GamesPlayed        int
	GamesWon           int
	GamesLost          int
	MatchWinRate       float64
	TeammateIDs        []int64
}
