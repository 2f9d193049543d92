package analysis

import "strings"

// Classifier assigns a subject label to a document's text.
type Classifier interface {
	Classify(text string) string
}

// Subject is one row of a keyword classification table.
type Subject struct {
	Name     string
	Keywords []string
}

// DefaultSubjects is the built-in classification table.
var DefaultSubjects = []Subject{
	{"mathematics", []string{"equation", "theorem", "proof", "calculus", "algebra", "geometry", "derivative", "integral", "matrix", "vector"}},
	{"physics", []string{"force", "energy", "momentum", "velocity", "acceleration", "mass", "gravity", "quantum", "thermodynamics", "wave"}},
	{"chemistry", []string{"molecule", "atom", "reaction", "compound", "element", "periodic", "bond", "ion", "catalyst", "solution"}},
	{"biology", []string{"cell", "organism", "gene", "protein", "evolution", "species", "dna", "enzyme", "tissue", "ecosystem"}},
	{"programming", []string{"function", "variable", "algorithm", "code", "programming", "software", "data structure", "class", "method", "loop"}},
	{"history", []string{"war", "empire", "civilization", "century", "revolution", "ancient", "medieval", "dynasty", "culture", "society"}},
	{"literature", []string{"poem", "novel", "author", "character", "plot", "theme", "narrative", "metaphor", "symbolism", "genre"}},
	{"economics", []string{"market", "supply", "demand", "price", "economics", "trade", "money", "inflation", "gdp", "business"}},
	{"psychology", []string{"behavior", "mind", "cognitive", "psychology", "mental", "brain", "emotion", "learning", "memory", "personality"}},
}

// KeywordClassifier scores each subject by how often its keywords occur in
// the lower-cased text, counting overlapping matches. The single highest
// score wins; a tie for first place or no match at all gives Fallback.
type KeywordClassifier struct {
	Subjects []Subject
	Fallback string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{Subjects: DefaultSubjects, Fallback: "general"}
}

func (c *KeywordClassifier) Classify(text string) string {
	lower := strings.ToLower(text)

	best, bestScore, tied := c.Fallback, 0, false
	for _, s := range c.Subjects {
		score := 0
		for _, kw := range s.Keywords {
			score += countOverlapping(lower, kw)
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = s.Name, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return c.Fallback
	}
	return best
}

// Scores returns the per-subject score table, for diagnostics.
func (c *KeywordClassifier) Scores(text string) map[string]int {
	lower := strings.ToLower(text)
	out := make(map[string]int, len(c.Subjects))
	for _, s := range c.Subjects {
		for _, kw := range s.Keywords {
			out[s.Name] += countOverlapping(lower, kw)
		}
	}
	return out
}

func countOverlapping(s, sub string) int {
	if sub == "" {
		return 0
	}
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
