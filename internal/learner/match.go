package learner

import "strings"

// MatchTopic resolves free-text topic-selection input against the known
// subtopic names: exact case-insensitive equality first, then a
// case-insensitive substring match. First match in subtopic order wins.
func MatchTopic(input string, subtopics []string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return "", false
	}

	for _, s := range subtopics {
		if strings.ToLower(s) == needle {
			return s, true
		}
	}
	for _, s := range subtopics {
		if strings.Contains(strings.ToLower(s), needle) {
			return s, true
		}
	}
	return "", false
}
