package domain

// URLComponents is the structured record produced by parsing a raw URL.
// It is built once per scan and never mutated afterwards.
type URLComponents struct {
	// Original is the trimmed input with its case preserved.
	Original string `json:"original"`
	// Normalized is the canonical form used for hashing:
	// scheme://hostname/path with sorted query parameters, no fragment.
	Normalized string `json:"normalized"`
	// URLHash is the SHA-256 hex digest of Normalized. Stable across
	// fragment-only differences, so callers can use it for deduplication.
	URLHash string `json:"url_hash"`

	Scheme   string `json:"scheme"`
	Hostname string `json:"hostname"`
	// Domain is the registrable domain: second-level label + TLD.
	// Non-empty whenever the hostname parses.
	Domain string `json:"domain"`
	// Subdomain is every label left of the registrable domain, joined with
	// dots. Empty when the hostname has two labels or fewer.
	Subdomain string `json:"subdomain"`
	TLD       string `json:"tld"`
	Port      string `json:"port,omitempty"`
	Path      string `json:"path"`
	Query     string `json:"query,omitempty"`
	Fragment  string `json:"fragment,omitempty"`

	// OriginalHostname keeps the pre-lowercasing hostname so heuristics can
	// detect mixed-case tricks.
	OriginalHostname string `json:"original_hostname,omitempty"`

	IsIP         bool `json:"is_ip"`
	HasSubdomain bool `json:"has_subdomain"`
	URLLength    int  `json:"url_length"`
}

// SubdomainLabels returns the individual subdomain labels, leftmost first.
func (c *URLComponents) SubdomainLabels() []string {
	if c.Subdomain == "" {
		return nil
	}
	return splitLabels(c.Subdomain)
}

func splitLabels(s string) []string {
	var labels []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			labels = append(labels, s[start:i])
			start = i + 1
		}
	}
	return append(labels, s[start:])
}
