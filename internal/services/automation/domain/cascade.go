package domain

// CascadeResult counts the entities whose state changed at each level.
type CascadeResult struct {
	Matches int
	Games   int
	Scores  int
}

// Add merges other into r.
func (r *CascadeResult) Add(other CascadeResult) {
	r.Matches += other.Matches
	r.Games += other.Games
	r.Scores += other.Scores
}

// Total returns the number of changed entities across every level.
func (r CascadeResult) Total() int {
	return r.Matches + r.Games + r.Scores
}

// RejectTournament rejects the tournament and every descendant.
func RejectTournament(t *Tournament) CascadeResult {
	t.VerificationStatus = StatusRejected
	var result CascadeResult
	for _, match := range t.Matches {
		reason := match.RejectionReason | MatchRejectionRejectedTournament
		if match.VerificationStatus != StatusRejected || match.RejectionReason != reason {
			result.Matches++
		}
		match.RejectionReason = reason
		result.Add(RejectMatch(match))
	}
	return result
}

// RejectMatch rejects the match and every game and score below it.
func RejectMatch(m *Match) CascadeResult {
	m.VerificationStatus = StatusRejected
	var result CascadeResult
	for _, game := range m.Games {
		reason := game.RejectionReason | GameRejectionRejectedMatch
		if game.VerificationStatus != StatusRejected || game.RejectionReason != reason {
			result.Games++
		}
		game.RejectionReason = reason
		result.Add(RejectGame(game))
	}
	return result
}

// RejectGame rejects the game and every score below it.
func RejectGame(g *Game) CascadeResult {
	g.VerificationStatus = StatusRejected
	var result CascadeResult
	for _, score := range g.Scores {
		reason := score.RejectionReason | ScoreRejectionRejectedGame
		if score.VerificationStatus != StatusRejected || score.RejectionReason != reason {
			result.Scores++
		}
		score.VerificationStatus = StatusRejected
		score.RejectionReason = reason
	}
	return result
}

// VerifyTournament verifies the tournament and promotes every non-locked
// descendant. Subtrees under a Rejected entity are left alone.
func VerifyTournament(t *Tournament) CascadeResult {
	t.VerificationStatus = StatusVerified
	t.RejectionReason = TournamentRejectionNone
	var result CascadeResult
	for _, match := range t.Matches {
		switch match.VerificationStatus {
		case StatusRejected:
			continue
		case StatusVerified:
		default:
			match.RejectionReason = MatchRejectionNone
			match.WarningFlags = MatchWarningNone
			match.VerificationStatus = StatusVerified
			result.Matches++
		}
		result.Add(verifyGames(match))
	}
	return result
}

// VerifyMatch verifies the match and promotes every non-locked game and score.
func VerifyMatch(m *Match) CascadeResult {
	m.VerificationStatus = StatusVerified
	m.RejectionReason = MatchRejectionNone
	m.WarningFlags = MatchWarningNone
	return verifyGames(m)
}

func verifyGames(m *Match) CascadeResult {
	var result CascadeResult
	for _, game := range m.Games {
		switch game.VerificationStatus {
		case StatusRejected:
			continue
		case StatusVerified:
		default:
			game.RejectionReason = GameRejectionNone
			game.WarningFlags = GameWarningNone
			game.VerificationStatus = StatusVerified
			result.Games++
		}
		result.Add(verifyScores(game))
	}
	return result
}

// VerifyGame verifies the game and promotes every non-locked score.
func VerifyGame(g *Game) CascadeResult {
	g.VerificationStatus = StatusVerified
	g.RejectionReason = GameRejectionNone
	g.WarningFlags = GameWarningNone
	return verifyScores(g)
}

func verifyScores(g *Game) CascadeResult {
	var result CascadeResult
	for _, score := range g.Scores {
		if IsLocked(score.VerificationStatus) {
			continue
		}
		score.RejectionReason = ScoreRejectionNone
		score.VerificationStatus = StatusVerified
		result.Scores++
	}
	return result
}

// CascadeRejections re-applies the rejection cascade below every entity that
// is already Rejected, starting from the highest level.
func CascadeRejections(t *Tournament) CascadeResult {
	if t.VerificationStatus == StatusRejected {
		return RejectTournament(t)
	}
	var result CascadeResult
	for _, match := range t.Matches {
		if match.VerificationStatus == StatusRejected {
			result.Add(RejectMatch(match))
			continue
		}
		for _, game := range match.Games {
			if game.VerificationStatus == StatusRejected {
				result.Add(RejectGame(game))
			}
		}
	}
	return result
}

// ResetAutomation clears automation results so the checks can run again.
// Locked entities are only reset when override is set.
func ResetAutomation(t *Tournament, override bool) CascadeResult {
	var result CascadeResult
	eligible := func(status VerificationStatus) bool {
		return override || !IsLocked(status)
	}
	if eligible(t.VerificationStatus) {
		t.VerificationStatus = StatusNone
		t.RejectionReason = TournamentRejectionNone
	}
	for _, match := range t.Matches {
		if eligible(match.VerificationStatus) {
			match.VerificationStatus = StatusNone
			match.RejectionReason = MatchRejectionNone
			match.WarningFlags = MatchWarningNone
			result.Matches++
		}
		for _, game := range match.Games {
			if eligible(game.VerificationStatus) {
				game.VerificationStatus = StatusNone
				game.RejectionReason = GameRejectionNone
				game.WarningFlags = GameWarningNone
				result.Games++
			}
			for _, score := range game.Scores {
				if eligible(score.VerificationStatus) {
					score.VerificationStatus = StatusNone
					score.RejectionReason = ScoreRejectionNone
					result.Scores++
				}
			}
		}
	}
	return result
}

// ApplyOutcome stores a check outcome on a non-locked score.
func (s *Score) ApplyOutcome(reason ScoreRejectionReason) {
	if IsLocked(s.VerificationStatus) {
		return
	}
	s.RejectionReason = reason
	s.VerificationStatus = statusFromOutcome(s.VerificationStatus, reason != ScoreRejectionNone)
}

// ApplyOutcome stores a check outcome on a non-locked game.
func (g *Game) ApplyOutcome(reason GameRejectionReason) {
	if IsLocked(g.VerificationStatus) {
		return
	}
	g.RejectionReason = reason
	g.VerificationStatus = statusFromOutcome(g.VerificationStatus, reason != GameRejectionNone)
}

// ApplyOutcome stores a check outcome on a non-locked match.
func (m *Match) ApplyOutcome(reason MatchRejectionReason) {
	if IsLocked(m.VerificationStatus) {
		return
	}
	m.RejectionReason = reason
	m.VerificationStatus = statusFromOutcome(m.VerificationStatus, reason != MatchRejectionNone)
}

// ApplyOutcome stores a check outcome on a non-locked tournament.
func (t *Tournament) ApplyOutcome(reason TournamentRejectionReason) {
	if IsLocked(t.VerificationStatus) {
		return
	}
	t.RejectionReason = reason
	t.VerificationStatus = statusFromOutcome(t.VerificationStatus, reason != TournamentRejectionNone)
}
