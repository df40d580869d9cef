package news

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
)

// DefaultSimilarityThreshold is the similarity above which two titles are
// treated as the same story.
const DefaultSimilarityThreshold = 0.85

var hamming = metrics.NewHamming()

// Similarity scores two titles in [0, 1]. Runes are compared position by
// position after lowercasing; the share of matching positions is reduced by
// the relative length difference, capped at 0.5. Two empty strings score 1.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)

	lenA, lenB := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := max(lenA, lenB)
	if maxLen == 0 {
		return 1
	}

	// Hamming distance counts the length difference plus every mismatched
	// position in the shared range.
	matches := maxLen - hamming.Distance(a, b)

	base := float64(matches) / float64(maxLen)
	lengthDiff := lenA - lenB
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	penalty := min(float64(lengthDiff)/float64(maxLen), 0.5)

	return max(0, base-penalty)
}

// FilterDuplicates keeps the first article of every group of similar titles.
// An article is dropped when its title scores above threshold against any
// article already kept. Order is preserved.
func FilterDuplicates(items []Article, threshold float64) []Article {
	kept := make([]Article, 0, len(items))
	for _, item := range items {
		dup := false
		for _, k := range kept {
			if Similarity(item.Title, k.Title) > threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, item)
		}
	}
	return kept
}

// SortByRecency orders articles newest first. Ties keep their input order and
// undated articles sink to the end.
func SortByRecency(items []Article) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt().After(items[j].PublishedAt())
	})
}
