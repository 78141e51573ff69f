// Package checks implements the automation rules that decide whether ingested
// tournament data can be pre-verified.
//
// Each check returns the full set of rejection reasons for one entity and
// recomputes its warnings; no rule short-circuits another. Run applies the
// checks bottom-up over a whole tournament aggregate.
package checks
