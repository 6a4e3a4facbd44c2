package domain

import "time"

// Component names used in results and breakdowns.
const (
	ComponentDomain     = "domain"
	ComponentSubdomain  = "subdomain"
	ComponentPath       = "path"
	ComponentQuery      = "query"
	ComponentHeuristics = "heuristics"
)

// Classification labels.
const (
	ClassificationSafe       = "safe"
	ClassificationSuspicious = "suspicious"
	ClassificationDangerous  = "dangerous"
)

// Confidence labels. Presentation only, never used in scoring logic.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Machine-readable reason codes attached to component results.
const (
	FlagKnownLegitimateDomain      = "known_legitimate_domain"
	FlagExactPhishingMatch         = "exact_phishing_match"
	FlagPatternMatch               = "pattern_match"
	FlagHighSimilarityToLegitimate = "high_similarity_to_legitimate"
	FlagSuspiciousTLD              = "suspicious_tld"
	FlagExcessiveHyphens           = "excessive_hyphens"
	FlagConsecutiveDigits          = "consecutive_digits"

	FlagNoSubdomain             = "no_subdomain"
	FlagSuspiciousSubdomainWord = "suspicious_subdomain_keyword"
	FlagBrandInSubdomain        = "brand_in_subdomain"
	FlagLongSubdomain           = "long_subdomain"
	FlagMultipleSubdomainLevels = "multiple_subdomain_levels"

	FlagRootPath           = "root_path"
	FlagSuspiciousPathWord = "suspicious_path_keyword"
	FlagDeepPath           = "deep_path"
	FlagEncodedCharacters  = "encoded_characters"

	FlagNoQueryParams        = "no_query_params"
	FlagSuspiciousQueryParam = "suspicious_query_param"
	FlagEmbeddedURL          = "embedded_url"
	FlagLongQuery            = "long_query"

	FlagHTTPWithFinancialKeyword = "http_with_financial_keyword"
	FlagPlainHTTP                = "plain_http"
	FlagIPHostname               = "ip_hostname"
	FlagNonStandardPort          = "non_standard_port"
	FlagLongURL                  = "long_url"
	FlagCredentialTrick          = "at_symbol_in_url"
	FlagManySubdomainLabels      = "many_subdomain_labels"
	FlagHyphenatedHostname       = "hyphenated_hostname"
	FlagMixedCaseHostname        = "mixed_case_hostname"
	FlagPhishingKeywords         = "phishing_keywords"
)

// Evidence types carried in MatchEvidence.
const (
	EvidencePhishingPattern  = "phishing_pattern"
	EvidenceLegitimateDomain = "legitimate_domain"
	EvidenceSimilarDomain    = "similar_domain"
)

// MatchEvidence records which stored pattern or legitimate domain a
// component matched, for explanation and audit purposes.
type MatchEvidence struct {
	Type        string  `json:"type"`
	Value       string  `json:"value"`
	PatternID   int     `json:"pattern_id,omitempty"`
	Severity    string  `json:"severity,omitempty"`
	TargetBrand string  `json:"target_brand,omitempty"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// ComponentResult is the output of a single analyzer: a score in [0,1] and
// the ordered reason codes that produced it.
type ComponentResult struct {
	Component string          `json:"component"`
	Score     float64         `json:"score"`
	Flags     []string        `json:"flags"`
	Matches   []MatchEvidence `json:"matches,omitempty"`
}

// HasFlag reports whether the result carries the given reason code.
func (r *ComponentResult) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// ComponentBreakdown is one row of the per-component weighted breakdown in
// an aggregated result.
type ComponentBreakdown struct {
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Weighted float64  `json:"weighted"`
	Flags    []string `json:"flags"`
}

// AggregatedResult is the final output of a scan.
type AggregatedResult struct {
	URLHash string `json:"url_hash"`
	URL     string `json:"url"`
	// FinalScore is the weighted sum of component scores, clamped to [0,1]
	// and rounded to 4 decimals.
	FinalScore     float64                       `json:"final_score"`
	Classification string                        `json:"classification"`
	Confidence     string                        `json:"confidence"`
	Components     map[string]ComponentBreakdown `json:"components"`
	Explanation    string                        `json:"explanation"`
	// DefinitelyDangerous is true when any component reported an exact
	// phishing match, independent of the weighted total.
	DefinitelyDangerous bool      `json:"definitely_dangerous"`
	ProcessingTimeMs    int64     `json:"processing_time_ms"`
	ScannedAt           time.Time `json:"scanned_at"`
}

// ScanRecord is the persisted history row for a completed scan.
type ScanRecord struct {
	ID               string    `db:"id"                 json:"id"`
	URLHash          string    `db:"url_hash"           json:"url_hash"`
	URL              string    `db:"url"                json:"url"`
	FinalScore       float64   `db:"final_score"        json:"final_score"`
	Classification   string    `db:"classification"     json:"classification"`
	Confidence       string    `db:"confidence"         json:"confidence"`
	Flags            []string  `db:"flags"              json:"flags"`
	ProcessingTimeMs int64     `db:"processing_time_ms" json:"processing_time_ms"`
	ScannedAt        time.Time `db:"scanned_at"         json:"scanned_at"`
}
