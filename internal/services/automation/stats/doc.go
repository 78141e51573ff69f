// Package stats computes rosters and player statistics for verified
// tournaments.
//
// CalculateAll is all-or-nothing: it either returns every roster and
// statistic record for the tournament or a typed *errors.Error describing the
// failed precondition, never a partial result. The tournament is read only.
package stats
