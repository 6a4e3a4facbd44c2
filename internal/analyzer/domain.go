package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/logger"
	"github.com/phishguard/phishguard/internal/similarity"
	"github.com/phishguard/phishguard/internal/telemetry"
)

// Domain analyzer point floors. Each heuristic bump only ever raises the
// running score via max, never lowers it.
const (
	suspiciousTLDFloor     = 0.3
	excessiveHyphensFloor  = 0.2
	consecutiveDigitsFloor = 0.15
	hyphenThreshold        = 3
)

// DomainAnalyzer scores the registrable domain. Its decision logic is an
// explicit ordered rule list: legitimacy is checked before phishing so a
// known-safe domain can never be flagged by a stale pattern, exact phishing
// matches short-circuit at 1.0, and the remaining rules accumulate a running
// maximum.
type DomainAnalyzer struct {
	weights   ScoringWeights
	rules     []domainRule
	logger    logger.Logger
	telemetry *telemetry.Provider
}

// domainScan carries the running state through the rule list.
type domainScan struct {
	components *domain.URLComponents
	repo       domain.PatternRepository

	score   float64
	flags   []string
	matches []domain.MatchEvidence

	bestMatch      string
	bestSimilarity float64
}

// domainRule evaluates one decision step. A non-nil result terminates the
// list (short-circuit); otherwise the rule may have raised the running score.
type domainRule func(ctx context.Context, s *domainScan) (*domain.ComponentResult, error)

// NewDomainAnalyzer creates a domain analyzer with the given weights.
func NewDomainAnalyzer(log logger.Logger, tp *telemetry.Provider, w ScoringWeights) *DomainAnalyzer {
	a := &DomainAnalyzer{
		weights:   w,
		logger:    log,
		telemetry: tp,
	}
	a.rules = []domainRule{
		a.checkKnownLegitimate,
		a.checkExactPhishing,
		a.computeBestSimilarity,
		a.checkWildcardPatterns,
		a.checkTyposquat,
		a.checkSuspiciousTLD,
		a.checkExcessiveHyphens,
		a.checkConsecutiveDigits,
	}
	return a
}

// Analyze runs the rule list in order and returns the component result.
// Repository failures propagate; they must not be downgraded to a score.
func (a *DomainAnalyzer) Analyze(ctx context.Context, c *domain.URLComponents, repo domain.PatternRepository) (*domain.ComponentResult, error) {
	start := time.Now()
	defer func() {
		a.telemetry.RecordAnalyzer(domain.ComponentDomain, time.Since(start))
	}()

	s := &domainScan{components: c, repo: repo}
	for _, rule := range a.rules {
		result, err := rule(ctx, s)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}

	return &domain.ComponentResult{
		Component: domain.ComponentDomain,
		Score:     round4(clamp01(s.score)),
		Flags:     s.flags,
		Matches:   s.matches,
	}, nil
}

func (a *DomainAnalyzer) checkKnownLegitimate(ctx context.Context, s *domainScan) (*domain.ComponentResult, error) {
	ok, err := s.repo.LookupLegitimate(ctx, s.components.Domain)
	if err != nil {
		return nil, fmt.Errorf("lookup legitimate: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &domain.ComponentResult{
		Component: domain.ComponentDomain,
		Score:     0.0,
		Flags:     []string{domain.FlagKnownLegitimateDomain},
		Matches: []domain.MatchEvidence{{
			Type:  domain.EvidenceLegitimateDomain,
			Value: s.components.Domain,
		}},
	}, nil
}

func (a *DomainAnalyzer) checkExactPhishing(ctx context.Context, s *domainScan) (*domain.ComponentResult, error) {
	p, err := s.repo.LookupExactPhishing(ctx, s.components.Domain)
	if err != nil {
		return nil, fmt.Errorf("lookup phishing pattern: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return &domain.ComponentResult{
		Component: domain.ComponentDomain,
		Score:     1.0,
		Flags:     []string{domain.FlagExactPhishingMatch},
		Matches: []domain.MatchEvidence{{
			Type:        domain.EvidencePhishingPattern,
			Value:       p.Pattern,
			PatternID:   p.ID,
			Severity:    p.Severity,
			TargetBrand: p.TargetBrand,
		}},
	}, nil
}

// computeBestSimilarity tracks the maximum combined similarity between the
// candidate and every legitimate domain. The candidate is compared whole,
// by its second-level label, and by each hyphen-separated token of that
// label, so "paypa1-secure-login.tk" is measured against "paypal" directly.
// A sub-comparison that reaches 1.0 against a non-identical domain (exact
// token or homoglyph collapse) is held just below 1.0: the identical case
// was already short-circuited by the legitimacy rule, so at this point it is
// still a lookalike.
func (a *DomainAnalyzer) computeBestSimilarity(ctx context.Context, s *domainScan) (*domain.ComponentResult, error) {
	legit, err := s.repo.AllLegitimateDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list legitimate domains: %w", err)
	}

	cand := s.components.Domain
	candSLD := secondLevel(cand)
	tokens := strings.Split(candSLD, "-")

	for _, l := range legit {
		sim := similarity.Combined(cand, l, a.weights.Similarity).Weighted
		lSLD := secondLevel(l)
		if v := similarity.Combined(candSLD, lSLD, a.weights.Similarity).Weighted; v > sim {
			sim = v
		}
		if len(tokens) > 1 {
			for _, tok := range tokens {
				if v := similarity.Combined(tok, lSLD, a.weights.Similarity).Weighted; v > sim {
					sim = v
				}
			}
		}
		if sim >= 1.0 && cand != l {
			sim = 0.99
		}
		if sim > s.bestSimilarity {
			s.bestSimilarity = sim
			s.bestMatch = l
		}
	}
	return nil, nil
}

func (a *DomainAnalyzer) checkWildcardPatterns(ctx context.Context, s *domainScan) (*domain.ComponentResult, error) {
	patterns, err := s.repo.AllActivePatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active patterns: %w", err)
	}

	for i := range patterns {
		p := &patterns[i]
		re, compileErr := compileWildcard(p.Pattern)
		if compileErr != nil {
			// Data-quality problem in the pattern store; skip the pattern
			// rather than failing the scan.
			a.telemetry.RecordPatternSkipped()
			a.logger.Warn("skipping invalid phishing pattern",
				logger.Int("pattern_id", p.ID),
				logger.String("pattern", p.Pattern),
				logger.Error(compileErr),
			)
			continue
		}
		if !re.MatchString(s.components.Domain) {
			continue
		}
		legit, lookupErr := s.repo.LookupLegitimate(ctx, s.components.Domain)
		if lookupErr != nil {
			return nil, fmt.Errorf("lookup legitimate: %w", lookupErr)
		}
		if legit {
			continue
		}
		s.addFlag(domain.FlagPatternMatch)
		s.raise(a.weights.WildcardFloor)
		s.matches = append(s.matches, domain.MatchEvidence{
			Type:        domain.EvidencePhishingPattern,
			Value:       p.Pattern,
			PatternID:   p.ID,
			Severity:    p.Severity,
			TargetBrand: p.TargetBrand,
		})
	}
	return nil, nil
}

// checkTyposquat is the core typosquat detector: a best match that is high
// but not exact raises the score to at least the similarity value.
func (a *DomainAnalyzer) checkTyposquat(_ context.Context, s *domainScan) (*domain.ComponentResult, error) {
	if s.bestSimilarity < a.weights.TyposquatLow || s.bestSimilarity >= 1.0 {
		return nil, nil
	}
	s.addFlag(domain.FlagHighSimilarityToLegitimate)
	s.raise(s.bestSimilarity)
	s.matches = append(s.matches, domain.MatchEvidence{
		Type:       domain.EvidenceSimilarDomain,
		Value:      s.bestMatch,
		Similarity: round4(s.bestSimilarity),
	})
	return nil, nil
}

func (a *DomainAnalyzer) checkSuspiciousTLD(_ context.Context, s *domainScan) (*domain.ComponentResult, error) {
	if suspiciousTLDs[s.components.TLD] {
		s.addFlag(domain.FlagSuspiciousTLD)
		s.raise(suspiciousTLDFloor)
	}
	return nil, nil
}

func (a *DomainAnalyzer) checkExcessiveHyphens(_ context.Context, s *domainScan) (*domain.ComponentResult, error) {
	if strings.Count(s.components.Domain, "-") >= hyphenThreshold {
		s.addFlag(domain.FlagExcessiveHyphens)
		s.raise(excessiveHyphensFloor)
	}
	return nil, nil
}

func (a *DomainAnalyzer) checkConsecutiveDigits(_ context.Context, s *domainScan) (*domain.ComponentResult, error) {
	if hasConsecutiveDigits(s.components.Domain, 2) {
		s.addFlag(domain.FlagConsecutiveDigits)
		s.raise(consecutiveDigitsFloor)
	}
	return nil, nil
}

func (s *domainScan) raise(floor float64) {
	if floor > s.score {
		s.score = floor
	}
}

func (s *domainScan) addFlag(flag string) {
	for _, f := range s.flags {
		if f == flag {
			return
		}
	}
	s.flags = append(s.flags, flag)
}

// compileWildcard converts a stored glob-style pattern into an anchored,
// case-insensitive regex: `*` matches any run, `?` a single character.
// Everything else, dots included, is taken literally.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	translated := strings.NewReplacer(".", `\.`, "*", ".*", "?", ".").Replace(pattern)
	return regexp.Compile("(?i)^" + translated + "$")
}

// secondLevel strips the TLD from a registrable domain.
func secondLevel(d string) string {
	if i := strings.IndexByte(d, '.'); i > 0 {
		return d[:i]
	}
	return d
}

func hasConsecutiveDigits(s string, n int) bool {
	run := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
