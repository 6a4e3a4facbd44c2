package analyzer

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Keyword lists the analyzers scan for. Matching is substring-based over
// lowercased input, so "login" hits "secure-login" and "loginpage" alike.
var (
	subdomainKeywords = []string{
		"secure", "login", "verify", "account", "update", "confirm",
		"banking", "wallet",
	}

	pathKeywords = []string{
		"verify", "confirm", "update", "secure", "account", "signin",
		"login", "password", "reset",
	}

	// Open-redirect indicators; matched as "name=" within the query string.
	queryParamNames = []string{
		"redirect", "return", "goto", "url", "link", "next",
	}

	phishingKeywords = []string{
		"verify", "secure", "account", "update", "login", "signin",
		"confirm", "suspended", "locked",
	}

	financialKeywords = []string{
		"bank", "banking", "pay", "paypal", "wallet", "secure",
		"login", "signin", "account", "verify",
	}

	suspiciousTLDs = map[string]bool{
		"tk": true, "ml": true, "ga": true, "cf": true,
		"gq": true, "xyz": true, "top": true, "club": true,
	}
)

// keywordMatcher wraps an Aho-Corasick automaton for single-pass substring
// matching of a fixed keyword list.
type keywordMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

func newKeywordMatcher(keywords []string) *keywordMatcher {
	return &keywordMatcher{
		matcher:  ahocorasick.NewStringMatcher(keywords),
		keywords: keywords,
	}
}

// Hits returns the distinct keywords present in s, in list order.
func (m *keywordMatcher) Hits(s string) []string {
	if s == "" {
		return nil
	}
	indices := m.matcher.Match([]byte(s))
	if len(indices) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		seen[i] = true
	}
	hits := make([]string, 0, len(seen))
	for i, kw := range m.keywords {
		if seen[i] {
			hits = append(hits, kw)
		}
	}
	return hits
}

// Count returns the number of distinct keywords present in s.
func (m *keywordMatcher) Count(s string) int {
	return len(m.Hits(s))
}
