package compiler

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxTypoDistance is the largest edit distance still reported as a likely
// misspelling.
const maxTypoDistance = 2

// suggest returns the candidate word most likely meant by word, or "" when
// nothing is close. Subsequence matches ("consructor" in "constructor")
// win; otherwise the nearest candidate by edit distance is used.
func suggest(word string, candidates []string) string {
	if word == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(word, candidates)
	sort.Sort(ranks)
	for _, r := range ranks {
		if r.Distance <= maxTypoDistance && r.Target != word {
			return r.Target
		}
	}

	best, bestDistance := "", maxTypoDistance+1
	for _, c := range candidates {
		if c == word {
			continue
		}
		if d := fuzzy.LevenshteinDistance(word, c); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}
