package analyzer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/telemetry"
)

const (
	pathKeywordPoints = 0.2
	deepPathPoints    = 0.2
	encodedCharPoints = 0.05
	encodedCharCap    = 0.2
	deepPathSegments  = 5
)

var percentEncoded = regexp.MustCompile(`%[0-9a-fA-F]{2}`)

// PathAnalyzer scores the URL path for credential-harvesting vocabulary,
// excessive depth, and percent-encoding tricks.
type PathAnalyzer struct {
	matcher   *keywordMatcher
	telemetry *telemetry.Provider
}

// NewPathAnalyzer creates a path analyzer.
func NewPathAnalyzer(tp *telemetry.Provider) *PathAnalyzer {
	return &PathAnalyzer{
		matcher:   newKeywordMatcher(pathKeywords),
		telemetry: tp,
	}
}

// Analyze scores the path, additively, capped at 1.0.
func (a *PathAnalyzer) Analyze(_ context.Context, c *domain.URLComponents) *domain.ComponentResult {
	start := time.Now()
	defer func() {
		a.telemetry.RecordAnalyzer(domain.ComponentPath, time.Since(start))
	}()

	if c.Path == "" || c.Path == "/" {
		return &domain.ComponentResult{
			Component: domain.ComponentPath,
			Score:     0.0,
			Flags:     []string{domain.FlagRootPath},
		}
	}

	var (
		score float64
		flags []string
	)

	if hits := a.matcher.Count(c.Path); hits > 0 {
		score += pathKeywordPoints * float64(hits)
		flags = append(flags, domain.FlagSuspiciousPathWord)
	}

	if pathDepth(c.Path) > deepPathSegments {
		score += deepPathPoints
		flags = append(flags, domain.FlagDeepPath)
	}

	if n := len(percentEncoded.FindAllString(c.Path, -1)); n > 0 {
		contribution := encodedCharPoints * float64(n)
		if contribution > encodedCharCap {
			contribution = encodedCharCap
		}
		score += contribution
		flags = append(flags, domain.FlagEncodedCharacters)
	}

	return &domain.ComponentResult{
		Component: domain.ComponentPath,
		Score:     round4(clamp01(score)),
		Flags:     flags,
	}
}

func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}
