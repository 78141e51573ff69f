package stats

import (
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/tournament.archive/internal/platform/errors"
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/test/mock/automationfakes"
)

func referenceAdjustments() []domain.RatingAdjustment {
	return automationfakes.Adjustments(1, map[int64]float64{1: 10, 2: 5, 3: -5, 4: -10})
}

func playerMatch(t *testing.T, result Result, playerID int64) domain.PlayerMatchStats {
	t.Helper()
	for _, s := range result.PlayerMatchStats {
		if s.PlayerID == playerID {
			return s
		}
	}
	t.Fatalf("no match stats for player %d", playerID)
	return domain.PlayerMatchStats{}
}

func playerTournament(t *testing.T, result Result, playerID int64) domain.PlayerTournamentStats {
	t.Helper()
	for _, s := range result.PlayerTournamentStats {
		if s.PlayerID == playerID {
			return s
		}
	}
	t.Fatalf("no tournament stats for player %d", playerID)
	return domain.PlayerTournamentStats{}
}

func TestCalculateAll_ReferenceTournament(t *testing.T) {
	tournament := automationfakes.VerifiedTwoVersusTwo()

	result, err := CalculateAll(tournament, referenceAdjustments())
	if err != nil {
		t.Fatalf("CalculateAll: %v", err)
	}

	if len(result.GameRosters) != 4 {
		t.Fatalf("game rosters = %d, want 4", len(result.GameRosters))
	}
	wantRosters := []domain.MatchRoster{
		{MatchID: 1, Team: domain.TeamBlue, PlayerIDs: []int64{3, 4}, Points: 0},
		{MatchID: 1, Team: domain.TeamRed, PlayerIDs: []int64{1, 2}, Points: 2},
	}
	if !reflect.DeepEqual(result.MatchRosters, wantRosters) {
		t.Fatalf("match rosters = %+v, want %+v", result.MatchRosters, wantRosters)
	}

	first := playerMatch(t, result, 1)
	if !first.Won || first.GamesPlayed != 2 || first.GamesWon != 2 || first.GamesLost != 0 {
		t.Fatalf("player 1 match stats = %+v, want won 2/2", first)
	}
	if first.AverageScore != 100000 || first.AveragePlacement != 1 || first.AverageMisses != 2 {
		t.Fatalf("player 1 averages = %v/%v/%v, want 100000/1/2", first.AverageScore, first.AveragePlacement, first.AverageMisses)
	}
	if !reflect.DeepEqual(first.TeammateIDs, []int64{2}) || !reflect.DeepEqual(first.OpponentIDs, []int64{3, 4}) {
		t.Fatalf("player 1 teammates/opponents = %v/%v, want [2]/[3 4]", first.TeammateIDs, first.OpponentIDs)
	}

	last := playerMatch(t, result, 4)
	if last.Won || last.GamesLost != 2 || last.AveragePlacement != 4 {
		t.Fatalf("player 4 match stats = %+v, want lost 2 at placement 4", last)
	}

	summary := playerTournament(t, result, 1)
	if summary.MatchWinRate != 1 {
		t.Fatalf("match win rate = %v, want 1", summary.MatchWinRate)
	}
	if !approx(summary.AverageRatingDelta, 10, 1e-9) {
		t.Fatalf("average rating delta = %v, want 10", summary.AverageRatingDelta)
	}
	if summary.AverageScore != 100000 || summary.MatchesPlayed != 1 || summary.GamesWon != 2 {
		t.Fatalf("player 1 summary = %+v", summary)
	}
	if summary.TournamentID != tournament.ID {
		t.Fatalf("tournament id = %d, want %d", summary.TournamentID, tournament.ID)
	}
	if loser := playerTournament(t, result, 3); loser.MatchWinRate != 0 || loser.MatchesLost != 1 {
		t.Fatalf("player 3 summary = %+v, want one loss", loser)
	}
}

func TestCalculateAll_NotVerified(t *testing.T) {
	for _, status := range []domain.VerificationStatus{domain.StatusNone, domain.StatusPreVerified, domain.StatusRejected} {
		tournament := automationfakes.VerifiedTwoVersusTwo()
		tournament.VerificationStatus = status

		result, err := CalculateAll(tournament, referenceAdjustments())
		if err == nil {
			t.Fatalf("%s: expected error", status)
		}
		if !strings.Contains(err.Error(), "is not verified") {
			t.Fatalf("%s: error = %q, want 'is not verified'", status, err)
		}
		if apperrors.CodeOf(err) != apperrors.CodeTournamentNotVerified {
			t.Fatalf("%s: code = %s", status, apperrors.CodeOf(err))
		}
		if result.PlayerMatchStats != nil || result.TournamentID != 0 {
			t.Fatalf("%s: expected empty result, got %+v", status, result)
		}
	}
}

func TestCalculateAll_NoVerifiedMatches(t *testing.T) {
	tournament := automationfakes.VerifiedTwoVersusTwo()
	tournament.Matches[0].VerificationStatus = domain.StatusPreVerified

	_, err := CalculateAll(tournament, referenceAdjustments())
	if apperrors.CodeOf(err) != apperrors.CodeNoVerifiedMatches {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeNoVerifiedMatches)
	}
}

func TestCalculateAll_MissingProcessorData(t *testing.T) {
	tournament := automationfakes.VerifiedTwoVersusTwo()
	other := automationfakes.Adjustments(99, map[int64]float64{1: 3})

	for _, adjustments := range [][]domain.RatingAdjustment{nil, other} {
		_, err := CalculateAll(tournament, adjustments)
		if err == nil || !strings.Contains(err.Error(), "Missing processor data") {
			t.Fatalf("err = %v, want 'Missing processor data'", err)
		}
		if apperrors.CodeOf(err) != apperrors.CodeMissingProcessorData {
			t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeMissingProcessorData)
		}
	}
}

func TestCalculateAll_MatchWithoutRostersFailsRun(t *testing.T) {
	tournament := automationfakes.VerifiedTwoVersusTwo()
	for _, game := range tournament.Matches[0].Games {
		for _, score := range game.Scores {
			score.VerificationStatus = domain.StatusRejected
		}
	}

	result, err := CalculateAll(tournament, referenceAdjustments())
	if apperrors.CodeOf(err) != apperrors.CodeMatchNoGameRosters {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeMatchNoGameRosters)
	}
	if result.GameRosters != nil {
		t.Fatalf("expected no partial rosters, got %+v", result.GameRosters)
	}
}

func TestCalculateAll_IgnoresUnverifiedEntities(t *testing.T) {
	tournament := automationfakes.VerifiedTwoVersusTwo()
	match := tournament.Matches[0]
	upset := automationfakes.Game(3, 20,
		automationfakes.Score(31, 1, 1000, domain.TeamRed),
		automationfakes.Score(32, 3, 900000, domain.TeamBlue),
	)
	upset.VerificationStatus = domain.StatusPreRejected
	match.Games = append(match.Games, upset)
	match.Games[0].Scores[0].VerificationStatus = domain.StatusRejected

	result, err := CalculateAll(tournament, referenceAdjustments())
	if err != nil {
		t.Fatalf("CalculateAll: %v", err)
	}
	if first := playerMatch(t, result, 1); first.GamesPlayed != 1 {
		t.Fatalf("player 1 games played = %d, want 1", first.GamesPlayed)
	}
	if len(result.GameRosters) != 4 {
		t.Fatalf("game rosters = %d, want 4", len(result.GameRosters))
	}
}

func TestCalculateAll_PlayersWithoutRatingChangeSkipSummary(t *testing.T) {
	tournament := automationfakes.VerifiedTwoVersusTwo()
	adjustments := automationfakes.Adjustments(1, map[int64]float64{1: 10})

	result, err := CalculateAll(tournament, adjustments)
	if err != nil {
		t.Fatalf("CalculateAll: %v", err)
	}
	if len(result.PlayerMatchStats) != 4 {
		t.Fatalf("match stats = %d, want 4", len(result.PlayerMatchStats))
	}
	if len(result.PlayerTournamentStats) != 1 || result.PlayerTournamentStats[0].PlayerID != 1 {
		t.Fatalf("tournament stats = %+v, want only player 1", result.PlayerTournamentStats)
	}
}

func TestCalculateAll_TiedGameGoesToLowerTeam(t *testing.T) {
	tournament := automationfakes.VerifiedTwoVersusTwo()
	for _, game := range tournament.Matches[0].Games {
		for _, score := range game.Scores {
			score.Score = 50000
		}
	}

	result, err := CalculateAll(tournament, referenceAdjustments())
	if err != nil {
		t.Fatalf("CalculateAll: %v", err)
	}
	if blue := playerMatch(t, result, 3); !blue.Won || blue.GamesWon != 2 {
		t.Fatalf("blue player = %+v, want tied games awarded to blue", blue)
	}
	if red := playerMatch(t, result, 1); red.Won {
		t.Fatalf("red player = %+v, want loss", red)
	}
}
