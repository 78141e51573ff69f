package checks

import (
	"testing"

	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/test/mock/automationfakes"
)

func matchesWithStatuses(statuses ...domain.VerificationStatus) []*domain.Match {
	matches := make([]*domain.Match, 0, len(statuses))
	for i, status := range statuses {
		match := automationfakes.Match(int64(i+1), automationfakes.Game(int64(i+1), i))
		match.VerificationStatus = status
		matches = append(matches, match)
	}
	return matches
}

func TestCheckTournament(t *testing.T) {
	v, pv, pr := domain.StatusVerified, domain.StatusPreVerified, domain.StatusPreRejected
	cases := []struct {
		name    string
		matches []*domain.Match
		want    domain.TournamentRejectionReason
	}{
		{name: "no matches", want: domain.TournamentRejectionNoVerifiedMatches},
		{name: "no valid matches", matches: matchesWithStatuses(pr, pr), want: domain.TournamentRejectionNoVerifiedMatches},
		{name: "below ratio", matches: matchesWithStatuses(v, pv, pv, pr, pr), want: domain.TournamentRejectionNotEnoughVerifiedMatches},
		{name: "exactly ratio", matches: matchesWithStatuses(v, pv, pv, pv, pr), want: domain.TournamentRejectionNone},
		{name: "all valid", matches: matchesWithStatuses(v, pv), want: domain.TournamentRejectionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tournament := automationfakes.Tournament(1, tc.matches...)
			if got := CheckTournament(tournament); got != tc.want {
				t.Fatalf("reason = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCheckTournament_IgnoresMatchesWithoutGames(t *testing.T) {
	empty := automationfakes.Match(9)
	empty.VerificationStatus = domain.StatusPreRejected
	matches := append(matchesWithStatuses(domain.StatusVerified), empty)
	tournament := automationfakes.Tournament(1, matches...)

	if got := CheckTournament(tournament); got != domain.TournamentRejectionNone {
		t.Fatalf("reason = %s, want none", got)
	}

	only := automationfakes.Tournament(1, automationfakes.Match(1))
	if got := CheckTournament(only); got != domain.TournamentRejectionNoVerifiedMatches {
		t.Fatalf("reason = %s, want no_verified_matches", got)
	}
}

func TestCheckTournament_VerifiedReference(t *testing.T) {
	if got := CheckTournament(automationfakes.VerifiedTwoVersusTwo()); got != domain.TournamentRejectionNone {
		t.Fatalf("reason = %s, want none", got)
	}
}
