package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/phishguard/phishguard/internal/analyzer"
	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/logger"
	"github.com/phishguard/phishguard/internal/testhelpers"
	"github.com/phishguard/phishguard/internal/urlparse"
)

func newEngine() *Engine {
	return New(logger.NewNop(), nil, analyzer.DefaultWeights())
}

func newRepo() *testhelpers.MockPatternRepository {
	return testhelpers.NewMockPatternRepository().
		AddLegitimate("paypal.com", "google.com", "amazon.com", "microsoft.com", "bit.ly")
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScan_TyposquatOverHTTP(t *testing.T) {
	e := newEngine()

	result, err := e.Scan(context.Background(), "http://paypa1-secure-login.tk/verify/account", newRepo())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if !almostEqual(result.FinalScore, 0.6007) {
		t.Errorf("FinalScore = %v, want 0.6007", result.FinalScore)
	}
	if result.Classification != domain.ClassificationDangerous {
		t.Errorf("Classification = %s, want dangerous", result.Classification)
	}
	if result.Confidence != domain.ConfidenceMedium {
		t.Errorf("Confidence = %s, want medium", result.Confidence)
	}
	if result.DefinitelyDangerous {
		t.Error("DefinitelyDangerous = true, similarity alone must not be definitive")
	}

	dom := result.Components[domain.ComponentDomain]
	if !almostEqual(dom.Score, 0.9017) {
		t.Errorf("domain Score = %v, want 0.9017", dom.Score)
	}
	heur := result.Components[domain.ComponentHeuristics]
	if !almostEqual(heur.Score, 0.9) {
		t.Errorf("heuristics Score = %v, want 0.9", heur.Score)
	}
	path := result.Components[domain.ComponentPath]
	if !almostEqual(path.Score, 0.4) {
		t.Errorf("path Score = %v, want 0.4", path.Score)
	}

	if len(result.URLHash) != 64 {
		t.Errorf("URLHash = %q, want 64 hex characters", result.URLHash)
	}
	if result.URL != "http://paypa1-secure-login.tk/verify/account" {
		t.Errorf("URL = %q, want the original input", result.URL)
	}
	if result.ScannedAt.IsZero() {
		t.Error("ScannedAt is zero")
	}
}

func TestScan_KnownLegitimate(t *testing.T) {
	e := newEngine()

	result, err := e.Scan(context.Background(), "https://www.google.com", newRepo())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if result.FinalScore != 0 {
		t.Errorf("FinalScore = %v, want 0", result.FinalScore)
	}
	if result.Classification != domain.ClassificationSafe {
		t.Errorf("Classification = %s, want safe", result.Classification)
	}
	if result.Confidence != domain.ConfidenceHigh {
		t.Errorf("Confidence = %s, want high", result.Confidence)
	}
	domFlags := result.Components[domain.ComponentDomain].Flags
	if len(domFlags) != 1 || domFlags[0] != domain.FlagKnownLegitimateDomain {
		t.Errorf("domain flags = %v, want [known_legitimate_domain]", domFlags)
	}
}

func TestScan_ShortenerScoredOnStructureOnly(t *testing.T) {
	e := newEngine()

	result, err := e.Scan(context.Background(), "https://bit.ly/abc123", newRepo())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if result.FinalScore != 0 {
		t.Errorf("FinalScore = %v, want 0", result.FinalScore)
	}
	if result.Classification != domain.ClassificationSafe {
		t.Errorf("Classification = %s, want safe", result.Classification)
	}
}

func TestScan_ExactPhishingMatch(t *testing.T) {
	e := newEngine()
	repo := newRepo().AddPattern(domain.PhishingPattern{
		Pattern:     "paypal-login.tk",
		Severity:    domain.SeverityHigh,
		TargetBrand: "paypal",
		Active:      true,
	})

	result, err := e.Scan(context.Background(), "https://paypal-login.tk/", repo)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if !result.DefinitelyDangerous {
		t.Error("DefinitelyDangerous = false, want true")
	}
	if result.Classification != domain.ClassificationDangerous {
		t.Errorf("Classification = %s, want dangerous", result.Classification)
	}
	if result.Confidence != domain.ConfidenceHigh {
		t.Errorf("Confidence = %s, want high", result.Confidence)
	}
}

func TestScan_InvalidInput(t *testing.T) {
	e := newEngine()

	result, err := e.Scan(context.Background(), "http://exa mple.com", newRepo())
	if result != nil {
		t.Fatal("Scan returned a result for invalid input")
	}
	var parseErr *urlparse.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *urlparse.ParseError", err)
	}
}

func TestScan_RepositoryFailure(t *testing.T) {
	e := newEngine()
	repo := newRepo()
	repo.Err = errors.New("connection refused")

	_, err := e.Scan(context.Background(), "https://example.com", repo)
	if err == nil {
		t.Fatal("Scan returned nil error with a failing repository")
	}
	if !errors.Is(err, ErrRepository) {
		t.Errorf("errors.Is(err, ErrRepository) = false for %v", err)
	}
	var repoErr *RepositoryError
	if !errors.As(err, &repoErr) {
		t.Fatalf("error = %v, want *RepositoryError", err)
	}
	if repoErr.Component == "" {
		t.Error("RepositoryError.Component is empty")
	}
}

func TestScan_CanceledContext(t *testing.T) {
	e := newEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Scan(ctx, "https://example.com", newRepo())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParseURL(t *testing.T) {
	e := newEngine()

	c, err := e.ParseURL("Example.COM/path/")
	if err != nil {
		t.Fatalf("ParseURL returned error: %v", err)
	}
	if c.Hostname != "example.com" {
		t.Errorf("Hostname = %q, want example.com", c.Hostname)
	}
	if c.Normalized != "https://example.com/path" {
		t.Errorf("Normalized = %q", c.Normalized)
	}
}
