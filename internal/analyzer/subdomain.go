package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/logger"
	"github.com/phishguard/phishguard/internal/telemetry"
)

const (
	subdomainKeywordPoints = 0.15
	brandInSubdomainPoints = 0.35
	longSubdomainPoints    = 0.2
	subdomainLevelPoints   = 0.1
	longSubdomainChars     = 30
	minBrandLength         = 4
)

// SubdomainAnalyzer scores the subdomain portion of the hostname. The
// classic catch is "brand.subdomain.attacker.tld": a known brand name in
// the subdomain while the registrable domain is someone else's.
type SubdomainAnalyzer struct {
	matcher   *keywordMatcher
	logger    logger.Logger
	telemetry *telemetry.Provider
}

// NewSubdomainAnalyzer creates a subdomain analyzer.
func NewSubdomainAnalyzer(log logger.Logger, tp *telemetry.Provider) *SubdomainAnalyzer {
	return &SubdomainAnalyzer{
		matcher:   newKeywordMatcher(subdomainKeywords),
		logger:    log,
		telemetry: tp,
	}
}

// Analyze scores the subdomain, additively, capped at 1.0.
func (a *SubdomainAnalyzer) Analyze(ctx context.Context, c *domain.URLComponents, repo domain.PatternRepository) (*domain.ComponentResult, error) {
	start := time.Now()
	defer func() {
		a.telemetry.RecordAnalyzer(domain.ComponentSubdomain, time.Since(start))
	}()

	if c.Subdomain == "" {
		return &domain.ComponentResult{
			Component: domain.ComponentSubdomain,
			Score:     0.0,
			Flags:     []string{domain.FlagNoSubdomain},
		}, nil
	}

	var (
		score   float64
		flags   []string
		matches []domain.MatchEvidence
	)

	labels := c.SubdomainLabels()
	keywordHits := 0
	for _, label := range labels {
		keywordHits += a.matcher.Count(label)
	}
	if keywordHits > 0 {
		score += subdomainKeywordPoints * float64(keywordHits)
		flags = append(flags, domain.FlagSuspiciousSubdomainWord)
	}

	brand, err := a.brandInSubdomain(ctx, c, repo)
	if err != nil {
		return nil, err
	}
	if brand != "" {
		score += brandInSubdomainPoints
		flags = append(flags, domain.FlagBrandInSubdomain)
		matches = append(matches, domain.MatchEvidence{
			Type:  domain.EvidenceLegitimateDomain,
			Value: brand,
		})
	}

	if len(c.Subdomain) > longSubdomainChars {
		score += longSubdomainPoints
		flags = append(flags, domain.FlagLongSubdomain)
	}

	if len(labels) > 1 {
		score += subdomainLevelPoints * float64(len(labels))
		flags = append(flags, domain.FlagMultipleSubdomainLevels)
	}

	return &domain.ComponentResult{
		Component: domain.ComponentSubdomain,
		Score:     round4(clamp01(score)),
		Flags:     flags,
		Matches:   matches,
	}, nil
}

// brandInSubdomain returns the first legitimate brand name found in the
// subdomain but absent from the registrable domain. Very short brand names
// are skipped, they would match almost anything as substrings.
func (a *SubdomainAnalyzer) brandInSubdomain(ctx context.Context, c *domain.URLComponents, repo domain.PatternRepository) (string, error) {
	legit, err := repo.AllLegitimateDomains(ctx)
	if err != nil {
		return "", fmt.Errorf("list legitimate domains: %w", err)
	}
	for _, l := range legit {
		brand := secondLevel(l)
		if len(brand) < minBrandLength {
			continue
		}
		if strings.Contains(c.Subdomain, brand) && !strings.Contains(c.Domain, brand) {
			return l, nil
		}
	}
	return "", nil
}
