// Package analyzer implements the per-component risk analyzers and the
// score aggregator. Each analyzer is a pure function of the parsed URL
// components and a read-only pattern repository; they carry no state across
// scans and may run in parallel.
package analyzer

import (
	"math"

	"github.com/phishguard/phishguard/internal/similarity"
)

// ScoringWeights is the injected tuning surface for the engine: aggregator
// component weights, the similarity blend, and the domain-analyzer bands.
type ScoringWeights struct {
	Aggregator AggregatorWeights  `yaml:"aggregator"`
	Similarity similarity.Weights `yaml:"similarity"`
	// TyposquatLow is the lower bound of the "close but not identical"
	// similarity band.
	TyposquatLow float64 `yaml:"typosquat_low"`
	// WildcardFloor is the minimum score a wildcard pattern match raises
	// the domain score to.
	WildcardFloor float64 `yaml:"wildcard_floor"`
}

// AggregatorWeights multiplies each component score into the final total.
// The values must sum to 1.0; domain carries the most weight.
type AggregatorWeights struct {
	Domain     float64 `yaml:"domain"`
	Subdomain  float64 `yaml:"subdomain"`
	Path       float64 `yaml:"path"`
	Query      float64 `yaml:"query"`
	Heuristics float64 `yaml:"heuristics"`
}

// DefaultWeights returns the tuned defaults.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Aggregator: AggregatorWeights{
			Domain:     0.40,
			Subdomain:  0.15,
			Path:       0.15,
			Query:      0.10,
			Heuristics: 0.20,
		},
		Similarity:    similarity.DefaultWeights(),
		TyposquatLow:  0.75,
		WildcardFloor: 0.85,
	}
}

// round4 rounds to the 4-decimal precision every reported score uses.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// clamp01 clamps x into [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
