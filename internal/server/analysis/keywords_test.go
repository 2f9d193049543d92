package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	text := "The mitochondria is the powerhouse of the cell. Cells divide through mitosis."
	got := ExtractKeywords(text, 15)

	assert.Contains(t, got, "mitochondria")
	assert.Contains(t, got, "cell")
	assert.NotContains(t, got, "the", "short words are dropped")
}

func TestExtractKeywords_OrderAndStopWords(t *testing.T) {
	text := "enzyme enzyme enzyme protein protein this this this that with cell"
	got := ExtractKeywords(text, 0)

	assert.Equal(t, []string{"enzyme", "protein", "cell"}, got)
}

func TestExtractKeywords_Limit(t *testing.T) {
	words := []string{"alpha", "bravo", "charlie", "delta", "echo1", "foxtrot"}
	got := ExtractKeywords(strings.Join(words, " "), 4)
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"}, got)
}

func TestExtractKeywords_Empty(t *testing.T) {
	assert.Empty(t, ExtractKeywords("a an the of", 15))
}
