package stats

import "github.com/louisbranch/tournament.archive/internal/services/automation/domain"

// Accuracy returns the hit accuracy of a score as a percentage in [0, 100]
// using the formula of the score's ruleset. A score without judgements has
// zero accuracy.
func Accuracy(s *domain.Score) float64 {
	var num, den float64
	switch {
	case s.Ruleset == domain.RulesetTaiko:
		num = float64(s.Count300) + 0.5*float64(s.Count100)
		den = float64(s.Count300 + s.Count100 + s.CountMiss)
	case s.Ruleset == domain.RulesetCatch:
		num = float64(s.Count300 + s.Count100 + s.Count50)
		den = float64(s.Count300 + s.Count100 + s.Count50 + s.CountKatu + s.CountMiss)
	case s.Ruleset.IsMania():
		num = 300*float64(s.CountGeki+s.Count300) + 200*float64(s.CountKatu) + 100*float64(s.Count100) + 50*float64(s.Count50)
		den = 300 * float64(s.CountGeki+s.Count300+s.CountKatu+s.Count100+s.Count50+s.CountMiss)
	default:
		num = 300*float64(s.Count300) + 100*float64(s.Count100) + 50*float64(s.Count50)
		den = 300 * float64(s.Count300+s.Count100+s.Count50+s.CountMiss)
	}
	if den == 0 {
		return 0
	}
	return 100 * num / den
}
