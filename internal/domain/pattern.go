package domain

import (
	"context"
	"time"
)

// Severity levels for phishing patterns.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// PhishingPattern is a stored phishing-domain template. Pattern may contain
// glob-style wildcards: `*` matches any run of characters, `?` a single one.
type PhishingPattern struct {
	ID          int       `db:"id"           json:"id"`
	Pattern     string    `db:"pattern"      json:"pattern"`
	Severity    string    `db:"severity"     json:"severity"`
	TargetBrand string    `db:"target_brand" json:"target_brand,omitempty"`
	Active      bool      `db:"active"       json:"active"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// PatternRepository is the read-only lookup surface the engine scans against.
// Implementations must be safe for concurrent use: the five analyzers read
// from it in parallel during a scan. The engine never mutates it.
type PatternRepository interface {
	// LookupLegitimate reports whether domain is in the known-safe set.
	LookupLegitimate(ctx context.Context, domain string) (bool, error)
	// AllLegitimateDomains returns every known-safe domain.
	AllLegitimateDomains(ctx context.Context) ([]string, error)
	// LookupExactPhishing returns the active pattern exactly matching domain,
	// or nil when none exists.
	LookupExactPhishing(ctx context.Context, domain string) (*PhishingPattern, error)
	// AllActivePatterns returns every active phishing pattern.
	AllActivePatterns(ctx context.Context) ([]PhishingPattern, error)
}
