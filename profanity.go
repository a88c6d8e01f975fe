package studyassist

import "strings"

// offensiveWords is the fixed blocklist applied to every submission. It
// mixes languages and severities and is matched by plain substring, so
// phrases hidden inside unrelated words will also match. That imprecision
// is kept for compatibility with the deployed page.
var offensiveWords = []string{
	"tang ina mo", "fuck you", "putanginamo", "tangina mo", "shet", "motherfucker",
	"tanginamo", "putang ina mo", "putangina mo", "putang ina", "putangina", "tangina",
	"shit", "fuck", "damn", "asshole", "bastard", "dickhead", "piss off", "nigga", "nigger",
}

// ContainsProfanity reports whether text contains any blocklisted phrase,
// case-insensitively.
func ContainsProfanity(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range offensiveWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
