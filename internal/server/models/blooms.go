package models

// Bloom's taxonomy levels, lowest to highest.
const (
	BloomRemember   = "remember"
	BloomUnderstand = "understand"
	BloomApply      = "apply"
	BloomAnalyze    = "analyze"
	BloomEvaluate   = "evaluate"
	BloomCreate     = "create"
)

// BloomLevels lists every recognised level in taxonomy order.
var BloomLevels = []string{BloomRemember, BloomUnderstand, BloomApply, BloomAnalyze, BloomEvaluate, BloomCreate}

// IsBloomLevel reports whether level is one of BloomLevels.
func IsBloomLevel(level string) bool {
	for _, l := range BloomLevels {
		if l == level {
			return true
		}
	}
	return false
}

// BloomsTally counts questions per Bloom's level.
type BloomsTally map[string]int

// NewBloomsTally returns a tally with every level present at zero.
func NewBloomsTally() BloomsTally {
	t := make(BloomsTally, len(BloomLevels))
	for _, l := range BloomLevels {
		t[l] = 0
	}
	return t
}
