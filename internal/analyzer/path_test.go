package analyzer

import (
	"context"
	"testing"

	"github.com/phishguard/phishguard/internal/domain"
)

func TestPathAnalyzer(t *testing.T) {
	a := NewPathAnalyzer(nil)

	testCases := []struct {
		name      string
		url       string
		wantScore float64
		wantFlags []string
	}{
		{
			name:      "root path is neutral",
			url:       "https://example.com/",
			wantScore: 0.0,
			wantFlags: []string{domain.FlagRootPath},
		},
		{
			name:      "missing path is root",
			url:       "https://example.com",
			wantScore: 0.0,
			wantFlags: []string{domain.FlagRootPath},
		},
		{
			name:      "single keyword",
			url:       "https://example.com/login",
			wantScore: pathKeywordPoints,
			wantFlags: []string{domain.FlagSuspiciousPathWord},
		},
		{
			name:      "two distinct keywords",
			url:       "https://example.com/account/verify",
			wantScore: 2 * pathKeywordPoints,
			wantFlags: []string{domain.FlagSuspiciousPathWord},
		},
		{
			name:      "deep path",
			url:       "https://example.com/a/b/c/d/e/f",
			wantScore: deepPathPoints,
			wantFlags: []string{domain.FlagDeepPath},
		},
		{
			name:      "encoded characters",
			url:       "https://example.com/p%41ge%42",
			wantScore: 2 * encodedCharPoints,
			wantFlags: []string{domain.FlagEncodedCharacters},
		},
		{
			name:      "encoded characters capped",
			url:       "https://example.com/%41%42%43%44%45%46",
			wantScore: encodedCharCap,
			wantFlags: []string{domain.FlagEncodedCharacters},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := a.Analyze(context.Background(), mustParse(t, tc.url))
			if !scoreEqual(result.Score, tc.wantScore) {
				t.Errorf("Score = %v, want %v", result.Score, tc.wantScore)
			}
			for _, f := range tc.wantFlags {
				if !result.HasFlag(f) {
					t.Errorf("flags = %v, want %s", result.Flags, f)
				}
			}
		})
	}
}
