package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phishguard/phishguard/internal/domain"
)

// Classification thresholds: inclusive lower bound, exclusive upper.
const (
	suspiciousThreshold = 0.3
	dangerousThreshold  = 0.6
)

// Confidence bands: high when the score sits decisively near 0 or 1,
// medium when it is close to a threshold, low in the ambiguous middle.
const (
	highConfidenceLow  = 0.15
	highConfidenceHigh = 0.75
)

const explanationComponents = 3

// Aggregate combines the five component results into the final score,
// classification, confidence and explanation.
func Aggregate(domainR, subdomainR, pathR, queryR, heuristicsR *domain.ComponentResult, w AggregatorWeights) *domain.AggregatedResult {
	components := map[string]domain.ComponentBreakdown{
		domain.ComponentDomain:     breakdown(domainR, w.Domain),
		domain.ComponentSubdomain:  breakdown(subdomainR, w.Subdomain),
		domain.ComponentPath:       breakdown(pathR, w.Path),
		domain.ComponentQuery:      breakdown(queryR, w.Query),
		domain.ComponentHeuristics: breakdown(heuristicsR, w.Heuristics),
	}

	var total float64
	for _, b := range components {
		total += b.Weighted
	}
	finalScore := round4(clamp01(total))

	definitelyDangerous := anyExactPhishingMatch(domainR, subdomainR, pathR, queryR, heuristicsR)

	classification := Classify(finalScore)
	confidence := Confidence(finalScore)
	if definitelyDangerous {
		// A known phishing domain is never diluted into "suspicious" by a
		// low heuristic total.
		classification = domain.ClassificationDangerous
		confidence = domain.ConfidenceHigh
	}

	return &domain.AggregatedResult{
		FinalScore:          finalScore,
		Classification:      classification,
		Confidence:          confidence,
		Components:          components,
		Explanation:         explain(classification, finalScore, components),
		DefinitelyDangerous: definitelyDangerous,
	}
}

// Classify maps a final score onto the three labels.
func Classify(score float64) string {
	switch {
	case score < suspiciousThreshold:
		return domain.ClassificationSafe
	case score < dangerousThreshold:
		return domain.ClassificationSuspicious
	default:
		return domain.ClassificationDangerous
	}
}

// Confidence derives the presentation-only confidence label from how
// decisively the score sits relative to the classification thresholds.
func Confidence(score float64) string {
	switch {
	case score < highConfidenceLow || score >= highConfidenceHigh:
		return domain.ConfidenceHigh
	case score < suspiciousThreshold || score >= dangerousThreshold:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// IsDefinitelyDangerous reports whether any component recorded an exact
// phishing match, independent of the weighted total.
func IsDefinitelyDangerous(results ...*domain.ComponentResult) bool {
	return anyExactPhishingMatch(results...)
}

func anyExactPhishingMatch(results ...*domain.ComponentResult) bool {
	for _, r := range results {
		if r != nil && r.HasFlag(domain.FlagExactPhishingMatch) {
			return true
		}
	}
	return false
}

func breakdown(r *domain.ComponentResult, weight float64) domain.ComponentBreakdown {
	return domain.ComponentBreakdown{
		Score:    r.Score,
		Weight:   weight,
		Weighted: round4(r.Score * weight),
		Flags:    r.Flags,
	}
}

// explain concatenates the highest-contributing components' flags into a
// short human-readable string. Presentation only; it never feeds back into
// the numeric classification.
func explain(classification string, finalScore float64, components map[string]domain.ComponentBreakdown) string {
	type contributor struct {
		name string
		b    domain.ComponentBreakdown
	}
	var contributors []contributor
	for name, b := range components {
		if b.Score > 0 && len(b.Flags) > 0 {
			contributors = append(contributors, contributor{name, b})
		}
	}
	if len(contributors) == 0 {
		return fmt.Sprintf("%s (score %.4f): no risk indicators detected", classification, finalScore)
	}

	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].b.Weighted != contributors[j].b.Weighted {
			return contributors[i].b.Weighted > contributors[j].b.Weighted
		}
		return contributors[i].name < contributors[j].name
	})
	if len(contributors) > explanationComponents {
		contributors = contributors[:explanationComponents]
	}

	parts := make([]string, 0, len(contributors))
	for _, c := range contributors {
		parts = append(parts, fmt.Sprintf("%s %.2f [%s]", c.name, c.b.Score, strings.Join(c.b.Flags, ", ")))
	}
	return fmt.Sprintf("%s (score %.4f): %s", classification, finalScore, strings.Join(parts, "; "))
}
