// Package similarity provides the string-distance primitives the analyzers
// score candidate domains with. All functions are pure and deterministic.
package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Weights blends the four metrics into the combined score. The values must
// sum to 1.0.
type Weights struct {
	Levenshtein float64 `yaml:"levenshtein"`
	JaroWinkler float64 `yaml:"jaro_winkler"`
	Token       float64 `yaml:"token"`
	LCS         float64 `yaml:"lcs"`
}

// DefaultWeights returns the tuned default blend.
func DefaultWeights() Weights {
	return Weights{
		Levenshtein: 0.3,
		JaroWinkler: 0.35,
		Token:       0.2,
		LCS:         0.15,
	}
}

// Breakdown holds the individual metric scores alongside the weighted blend.
type Breakdown struct {
	Levenshtein float64 `json:"levenshtein"`
	JaroWinkler float64 `json:"jaro_winkler"`
	Token       float64 `json:"token"`
	LCS         float64 `json:"lcs"`
	Weighted    float64 `json:"weighted"`
}

// Combined computes all four metrics and their weighted blend. The blend is
// rounded to four decimals: the default weights do not sum to exactly 1.0 in
// floating point, and callers compare the blend against 1.0 to separate
// identical strings from lookalikes.
func Combined(a, b string, w Weights) Breakdown {
	d := Breakdown{
		Levenshtein: Levenshtein(a, b),
		JaroWinkler: JaroWinkler(a, b),
		Token:       TokenSimilarity(a, b),
		LCS:         LCSSimilarity(a, b),
	}
	d.Weighted = round4(w.Levenshtein*d.Levenshtein +
		w.JaroWinkler*d.JaroWinkler +
		w.Token*d.Token +
		w.LCS*d.LCS)
	return d
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// LevenshteinDistance is the classic edit distance between a and b.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Levenshtein normalizes edit distance into a similarity in [0,1].
// Two empty strings are identical, similarity 1.0.
func Levenshtein(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	return 1.0 - float64(LevenshteinDistance(a, b))/float64(longest)
}

// Winkler prefix bonus parameters, per the standard algorithm.
const (
	winklerPrefixCap = 4
	winklerScale     = 0.1
)

// Jaro computes the Jaro similarity between a and b.
func Jaro(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 && lb == 0 {
		return 1.0
	}
	if la == 0 || lb == 0 {
		return 0.0
	}

	window := maxInt(la, lb)/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, la)
	matchedB := make([]bool, lb)
	matches := 0
	for i := range ra {
		lo := maxInt(0, i-window)
		hi := minInt2(lb-1, i+window)
		for j := lo; j <= hi; j++ {
			if matchedB[j] || ra[i] != rb[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0.0
	}

	// Count transpositions among matched characters.
	transpositions := 0
	j := 0
	for i := range ra {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if ra[i] != rb[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2.0
	return (m/float64(la) + m/float64(lb) + (m-t)/m) / 3.0
}

// JaroWinkler adds the Winkler shared-prefix bonus to the Jaro similarity.
// The bonus rewards common prefixes, which makes it effective against
// typosquats that differ only in trailing characters.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)
	prefix := 0
	ra, rb := []rune(a), []rune(b)
	for i := 0; i < len(ra) && i < len(rb) && i < winklerPrefixCap; i++ {
		if ra[i] != rb[i] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*winklerScale*(1.0-j)
}

// TokenSimilarity splits both strings on non-alphanumeric boundaries and
// returns the Jaccard overlap of the token sets. Tokens count as overlapping
// when they are identical after homoglyph normalization, so "paypa1" and
// "paypal" overlap even though the raw bytes differ.
func TokenSimilarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[NormalizeHomoglyphs(tok)] = struct{}{}
	}
	return set
}

// LCSLength is the length of the longest common subsequence of a and b.
func LCSLength(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = maxInt(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return prev[len(rb)]
}

// LCSSimilarity normalizes LCS length by the longer string's length.
func LCSSimilarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}
	longest := maxInt(la, lb)
	return float64(LCSLength(a, b)) / float64(longest)
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func minInt2(a, b int) int {
	if b < a {
		return b
	}
	return a
}

func maxInt(a, b int) int {
	if b > a {
		return b
	}
	return a
}
