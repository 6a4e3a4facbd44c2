package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/telemetry"
)

// Heuristic point values. Unlike the domain analyzer these are additive:
// every triggered check contributes, with the total capped at 1.0.
const (
	httpFinancialPoints    = 0.40
	plainHTTPPoints        = 0.15
	ipHostnamePoints       = 0.50
	suspiciousTLDPoints    = 0.30
	nonStandardPortPoints  = 0.20
	longURLPoints          = 0.15
	atSymbolPoints         = 0.50
	manySubdomainPoints    = 0.25
	hostnameHyphenPoints   = 0.20
	mixedCasePoints        = 0.10
	phishingKeywordPoints  = 0.20
	longURLChars           = 75
	manySubdomainLabels    = 3
	phishingKeywordMinimum = 3
)

// HeuristicAnalyzer runs structural checks against the full parsed record:
// scheme, port, hostname shape, length, and phishing vocabulary.
type HeuristicAnalyzer struct {
	financial *keywordMatcher
	phishing  *keywordMatcher
	telemetry *telemetry.Provider
}

// NewHeuristicAnalyzer creates a heuristic analyzer.
func NewHeuristicAnalyzer(tp *telemetry.Provider) *HeuristicAnalyzer {
	return &HeuristicAnalyzer{
		financial: newKeywordMatcher(financialKeywords),
		phishing:  newKeywordMatcher(phishingKeywords),
		telemetry: tp,
	}
}

// Analyze sums the triggered checks and caps the total at 1.0.
func (a *HeuristicAnalyzer) Analyze(_ context.Context, c *domain.URLComponents) *domain.ComponentResult {
	start := time.Now()
	defer func() {
		a.telemetry.RecordAnalyzer(domain.ComponentHeuristics, time.Since(start))
	}()

	var (
		score float64
		flags []string
	)
	add := func(points float64, flag string) {
		score += points
		flags = append(flags, flag)
	}

	if c.Scheme == "http" {
		if a.financialKeywordPresent(c) {
			add(httpFinancialPoints, domain.FlagHTTPWithFinancialKeyword)
		} else {
			add(plainHTTPPoints, domain.FlagPlainHTTP)
		}
	}

	if c.IsIP {
		add(ipHostnamePoints, domain.FlagIPHostname)
	}

	if suspiciousTLDs[c.TLD] {
		add(suspiciousTLDPoints, domain.FlagSuspiciousTLD)
	}

	if c.Port != "" && c.Port != "80" && c.Port != "443" {
		add(nonStandardPortPoints, domain.FlagNonStandardPort)
	}

	if c.URLLength > longURLChars {
		add(longURLPoints, domain.FlagLongURL)
	}

	// user@host is the classic trick of hiding the real host behind
	// what looks like a path.
	if strings.Contains(c.Original, "@") {
		add(atSymbolPoints, domain.FlagCredentialTrick)
	}

	if len(c.SubdomainLabels()) > manySubdomainLabels {
		add(manySubdomainPoints, domain.FlagManySubdomainLabels)
	}

	if strings.Count(c.Hostname, "-") >= hyphenThreshold {
		add(hostnameHyphenPoints, domain.FlagHyphenatedHostname)
	}

	if c.OriginalHostname != strings.ToLower(c.OriginalHostname) {
		add(mixedCasePoints, domain.FlagMixedCaseHostname)
	}

	if a.phishing.Count(c.Normalized) >= phishingKeywordMinimum {
		add(phishingKeywordPoints, domain.FlagPhishingKeywords)
	}

	return &domain.ComponentResult{
		Component: domain.ComponentHeuristics,
		Score:     round4(clamp01(score)),
		Flags:     flags,
	}
}

func (a *HeuristicAnalyzer) financialKeywordPresent(c *domain.URLComponents) bool {
	return a.financial.Count(c.Domain) > 0 ||
		a.financial.Count(c.Subdomain) > 0 ||
		a.financial.Count(c.Path) > 0
}
