// Package domain defines the tournament aggregate consumed by the automation
// checks and the statistics engine, plus the verification lifecycle and the
// cascades that move decisions down the tournament -> match -> game -> score
// hierarchy.
//
// The aggregate is owned by the tournament: matches, games and scores are
// reachable only through their parent, so sibling lookups always go through
// the tournament instead of back-pointers.
package domain
