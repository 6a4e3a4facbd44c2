package api

import (
	"github.com/phishguard/phishguard/internal/domain"
)

// ScanRequest represents a single URL scan request.
type ScanRequest struct {
	URL string `json:"url" binding:"required"`
}

// ScanResponse represents a scan response.
type ScanResponse struct {
	Result *domain.AggregatedResult `json:"result,omitempty"`
	Cached bool                     `json:"cached"`
	Error  string                   `json:"error,omitempty"`
}

// BatchScanRequest represents a batch scan request.
type BatchScanRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,max=100"`
}

// BatchScanItem is one entry in a batch scan response. Failed URLs
// carry an error message instead of a result.
type BatchScanItem struct {
	URL    string                   `json:"url"`
	Result *domain.AggregatedResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// BatchScanResponse represents a batch scan response.
type BatchScanResponse struct {
	Results []BatchScanItem `json:"results"`
	Total   int             `json:"total"`
	Success int             `json:"success"`
	Failed  int             `json:"failed"`
}

// ValidateRequest represents a URL validation request.
type ValidateRequest struct {
	URL string `json:"url" binding:"required"`
}

// ValidateResponse reports parse validity and the normalized form.
type ValidateResponse struct {
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized,omitempty"`
	URLHash    string `json:"url_hash,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// CreatePatternRequest represents a request to create a phishing pattern.
type CreatePatternRequest struct {
	Pattern     string `json:"pattern" binding:"required"`
	Severity    string `json:"severity" binding:"required,oneof=low medium high critical"`
	TargetBrand string `json:"target_brand"`
	Active      *bool  `json:"active"`
}

// UpdatePatternRequest represents a request to update a phishing pattern.
type UpdatePatternRequest struct {
	Pattern     string  `json:"pattern"`
	Severity    string  `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	TargetBrand *string `json:"target_brand"`
	Active      *bool   `json:"active"`
}

// PatternsListResponse represents a list of phishing patterns.
type PatternsListResponse struct {
	Patterns []domain.PhishingPattern `json:"patterns"`
	Total    int                      `json:"total"`
}

// CreateLegitimateDomainRequest represents a request to add a
// known-safe domain.
type CreateLegitimateDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// ScansListResponse represents a page of scan history.
type ScansListResponse struct {
	Scans []domain.ScanRecord `json:"scans"`
	Total int                 `json:"total"`
}
