package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/telemetry"
)

const (
	queryParamPoints  = 0.25
	embeddedURLPoints = 0.3
	longQueryPoints   = 0.15
	longQueryChars    = 100
)

// embeddedURLMarkers flags querystrings smuggling an absolute URL, plain or
// percent-encoded.
var embeddedURLMarkers = []string{
	"http://", "https://", "http%3a%2f%2f", "https%3a%2f%2f",
}

// QueryAnalyzer scores the query string for open-redirect parameter names,
// embedded absolute URLs, and abnormal length.
type QueryAnalyzer struct {
	telemetry *telemetry.Provider
}

// NewQueryAnalyzer creates a query analyzer.
func NewQueryAnalyzer(tp *telemetry.Provider) *QueryAnalyzer {
	return &QueryAnalyzer{telemetry: tp}
}

// Analyze scores the query string, additively, capped at 1.0.
func (a *QueryAnalyzer) Analyze(_ context.Context, c *domain.URLComponents) *domain.ComponentResult {
	start := time.Now()
	defer func() {
		a.telemetry.RecordAnalyzer(domain.ComponentQuery, time.Since(start))
	}()

	if c.Query == "" {
		return &domain.ComponentResult{
			Component: domain.ComponentQuery,
			Score:     0.0,
			Flags:     []string{domain.FlagNoQueryParams},
		}
	}

	var (
		score float64
		flags []string
	)

	query := strings.ToLower(c.Query)
	for _, name := range queryParamNames {
		if strings.Contains(query, name+"=") {
			score += queryParamPoints
			if len(flags) == 0 || flags[len(flags)-1] != domain.FlagSuspiciousQueryParam {
				flags = append(flags, domain.FlagSuspiciousQueryParam)
			}
		}
	}

	for _, marker := range embeddedURLMarkers {
		if strings.Contains(query, marker) {
			score += embeddedURLPoints
			flags = append(flags, domain.FlagEmbeddedURL)
			break
		}
	}

	if len(c.Query) > longQueryChars {
		score += longQueryPoints
		flags = append(flags, domain.FlagLongQuery)
	}

	return &domain.ComponentResult{
		Component: domain.ComponentQuery,
		Score:     round4(clamp01(score)),
		Flags:     flags,
	}
}
