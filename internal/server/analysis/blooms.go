package analysis

import (
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// bloomsKeywords is checked top to bottom; the first family with a keyword
// contained in the question decides the level.
var bloomsKeywords = []struct {
	level    string
	keywords []string
}{
	{models.BloomCreate, []string{"create", "design", "compose", "develop", "plan", "construct", "produce", "formulate", "invent", "synthesize"}},
	{models.BloomEvaluate, []string{"evaluate", "judge", "critique", "assess", "recommend", "justify", "argue", "support", "value", "appraise"}},
	{models.BloomAnalyze, []string{"analyze", "compare", "contrast", "differentiate", "examine", "test", "categorize", "investigate", "organize"}},
	{models.BloomApply, []string{"apply", "demonstrate", "use", "execute", "implement", "solve", "show", "perform", "experiment", "illustrate"}},
	{models.BloomUnderstand, []string{"explain", "describe", "summarize", "paraphrase", "interpret", "classify", "discuss", "identify", "report"}},
	{models.BloomRemember, []string{"define", "list", "recall", "state", "name", "label", "repeat", "who", "what", "when", "where"}},
}

// BloomsLevel guesses the cognitive level a question asks for. Questions
// without any marker default to understand.
func BloomsLevel(question string) string {
	q := strings.ToLower(question)
	for _, family := range bloomsKeywords {
		for _, kw := range family.keywords {
			if strings.Contains(q, kw) {
				return family.level
			}
		}
	}
	return models.BloomUnderstand
}
