package checks

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// matchNamePatterns are the lobby title layouts used by tournament referees.
var matchNamePatterns = []*regexp.Regexp{
	// OWC: (Team A) vs (Team B)
	regexp.MustCompile(`(?i)^[^:]+:\s*\(.+\)\s+vs\.?\s+\(.+\)$`),
	// OWC: Team A vs Team B
	regexp.MustCompile(`(?i)^[^:]+:\s*\S.*\s+vs\.?\s+\S.*$`),
	// OWC (Team A) vs (Team B)
	regexp.MustCompile(`(?i)^\S+\s+\(.+\)\s+vs\.?\s+\(.+\)$`),
	// OWC - Team A vs Team B
	regexp.MustCompile(`(?i)^\S+\s+-\s+\S.*\s+vs\.?\s+\S.*$`),
}

// IsRecognizedMatchName reports whether name follows one of the
// "(team) vs (team)" layouts.
func IsRecognizedMatchName(name string) bool {
	name = strings.TrimSpace(name)
	for _, pattern := range matchNamePatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// HasAbbreviationPrefix reports whether name starts with the tournament
// abbreviation under Unicode case folding.
func HasAbbreviationPrefix(name, abbreviation string) bool {
	fold := cases.Fold()
	return strings.HasPrefix(
		fold.String(strings.TrimSpace(name)),
		fold.String(strings.TrimSpace(abbreviation)),
	)
}
