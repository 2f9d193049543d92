package analysis

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultKeywordLimit is the number of keywords kept per document.
const DefaultKeywordLimit = 15

var wordPattern = regexp.MustCompile(`\b\w{4,}\b`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`this that with have will from they know want been
		good much some time very when come here just like long make many over
		such take than them well were`) {
		stopWords[w] = struct{}{}
	}
}

// ExtractKeywords returns up to limit of the most frequent words of four or
// more characters, excluding stop words. Equal counts keep the order in
// which the words first appear.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	counts := map[string]int{}
	var order []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
