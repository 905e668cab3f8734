package similarity

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	textlev "github.com/texttheater/golang-levenshtein/levenshtein"
)

// charRatio is the standard edit-distance-derived similarity ratio:
// 1 - normalized edit distance, scaled to [0, 1]. Grounded on the
// teacher's calculateLevenshteinSimilarity, using the same library.
func charRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	distance := levenshtein.ComputeDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// partialRatio finds the best-aligned substring match between the
// shorter and longer string: the highest character ratio over any
// window of the longer string the length of the shorter one. It uses
// a second, independent Levenshtein implementation so partial ratio's
// scoring path doesn't share rounding behavior with charRatio.
func partialRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return textRatio(short, long)
	}

	best := 0.0
	shortRunes := []rune(short)
	longRunes := []rune(long)
	window := len(shortRunes)

	for start := 0; start+window <= len(longRunes); start++ {
		candidate := string(longRunes[start : start+window])
		if r := textRatio(short, candidate); r > best {
			best = r
		}
	}
	return best
}

// textRatio computes a ratio via texttheater/golang-levenshtein, the
// teacher's second distance library (kept for partial-ratio style
// windowed comparisons rather than full-string ratio).
func textRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return textlev.RatioForStrings([]rune(a), []rune(b), textlev.DefaultOptions)
}

// tokenize splits on whitespace; callers are expected to have already
// passed normalized (lowercased, whitespace-collapsed) text.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

// tokenSortRatio sorts each string's tokens before comparing, so word
// order differences ("John Smith" vs "Smith John") don't depress the
// score.
func tokenSortRatio(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	sort.Strings(ta)
	sort.Strings(tb)
	return charRatio(strings.Join(ta, " "), strings.Join(tb, " "))
}

// tokenSetRatio compares the intersection and union of each string's
// token set (Jaccard-style, as the teacher's calculateTokenSimilarity
// does), so repeated or extra tokens on one side don't depress the
// score as much as a raw character ratio would.
func tokenSetRatio(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	setA := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 1.0
	}

	sorted := func(set map[string]struct{}) []string {
		out := make([]string, 0, len(set))
		for t := range set {
			out = append(out, t)
		}
		sort.Strings(out)
		return out
	}

	jaccard := float64(intersection) / float64(union)
	charScore := charRatio(strings.Join(sorted(setA), " "), strings.Join(sorted(setB), " "))

	if jaccard > charScore {
		return jaccard
	}
	return charScore
}
