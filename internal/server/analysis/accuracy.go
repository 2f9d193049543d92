package analysis

import "strings"

// AccuracyScore rates an answer from 0 to 100. It starts at confidence and
// adds 30 when the source is the dataset, 25 when document context was used
// and 10 for answers longer than 100 characters.
func AccuracyScore(answer string, confidence int, source string, hasContext bool) int {
	score := confidence
	src := strings.ToLower(source)
	if strings.Contains(src, "dataset") {
		score += 30
	}
	if strings.Contains(src, "pdf") || hasContext {
		score += 25
	}
	if len(answer) > 100 {
		score += 10
	}
	return min(max(score, 0), 100)
}
