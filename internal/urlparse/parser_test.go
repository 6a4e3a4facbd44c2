package urlparse

import (
	"errors"
	"testing"
)

func TestParse_Normalization(t *testing.T) {
	testCases := []struct {
		name           string
		raw            string
		wantNormalized string
	}{
		{
			name:           "bare domain gets scheme and root path",
			raw:            "example.com",
			wantNormalized: "https://example.com/",
		},
		{
			name:           "uppercase input is lowered",
			raw:            "HTTPS://PayPal.COM/Login",
			wantNormalized: "https://paypal.com/login",
		},
		{
			name:           "trailing slash stripped from non-root path",
			raw:            "https://example.com/path/",
			wantNormalized: "https://example.com/path",
		},
		{
			name:           "root trailing slash preserved",
			raw:            "https://example.com/",
			wantNormalized: "https://example.com/",
		},
		{
			name:           "query parameters sorted by key",
			raw:            "https://example.com/p?b=2&a=1&c=3",
			wantNormalized: "https://example.com/p?a=1&b=2&c=3",
		},
		{
			name:           "fragment excluded from normalized form",
			raw:            "https://example.com/page#section",
			wantNormalized: "https://example.com/page",
		},
		{
			name:           "http scheme preserved",
			raw:            "http://example.com",
			wantNormalized: "http://example.com/",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Normalized != tc.wantNormalized {
				t.Errorf("Normalized = %q, want %q", c.Normalized, tc.wantNormalized)
			}
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	first, err := Parse("HTTPS://Secure.PayPal.com/Login/?b=2&a=1#frag")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := Parse(first.Normalized)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}

	if second.Normalized != first.Normalized {
		t.Errorf("normalization not idempotent: %q then %q", first.Normalized, second.Normalized)
	}
	if second.URLHash != first.URLHash {
		t.Errorf("hash not stable across reparse: %q then %q", first.URLHash, second.URLHash)
	}
}

func TestParse_HashIgnoresFragmentAndCase(t *testing.T) {
	a, err := Parse("https://example.com/page?x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Parse("HTTPS://EXAMPLE.com/page?x=1#anchor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.URLHash != b.URLHash {
		t.Errorf("hashes differ for equivalent URLs: %q vs %q", a.URLHash, b.URLHash)
	}
	if len(a.URLHash) != 64 {
		t.Errorf("URLHash length = %d, want 64 hex chars", len(a.URLHash))
	}
}

func TestParse_Components(t *testing.T) {
	c, err := Parse("https://Secure.Login.PayPal.com:8443/account/verify?next=home#top")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Scheme != "https" {
		t.Errorf("Scheme = %q", c.Scheme)
	}
	if c.Hostname != "secure.login.paypal.com" {
		t.Errorf("Hostname = %q", c.Hostname)
	}
	if c.Domain != "paypal.com" {
		t.Errorf("Domain = %q", c.Domain)
	}
	if c.Subdomain != "secure.login" {
		t.Errorf("Subdomain = %q", c.Subdomain)
	}
	if c.TLD != "com" {
		t.Errorf("TLD = %q", c.TLD)
	}
	if c.Port != "8443" {
		t.Errorf("Port = %q", c.Port)
	}
	if c.Path != "/account/verify" {
		t.Errorf("Path = %q", c.Path)
	}
	if c.Query != "next=home" {
		t.Errorf("Query = %q", c.Query)
	}
	if c.Fragment != "top" {
		t.Errorf("Fragment = %q", c.Fragment)
	}
	if !c.HasSubdomain {
		t.Error("HasSubdomain = false")
	}
	if c.OriginalHostname != "Secure.Login.PayPal.com" {
		t.Errorf("OriginalHostname = %q", c.OriginalHostname)
	}
}

func TestParse_IPLiteral(t *testing.T) {
	c, err := Parse("http://192.168.1.10/login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsIP {
		t.Error("IsIP = false for dotted quad")
	}
	if c.Domain != "192.168.1.10" {
		t.Errorf("Domain = %q", c.Domain)
	}
	if c.Subdomain != "" {
		t.Errorf("Subdomain = %q, want empty", c.Subdomain)
	}

	// Out-of-range octets are not an IP literal.
	c, err = Parse("http://999.168.1.10/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.IsIP {
		t.Error("IsIP = true for out-of-range octet")
	}
}

func TestParse_IDNAHostFolding(t *testing.T) {
	c, err := Parse("https://münchen.de/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Hostname != "xn--mnchen-3ya.de" {
		t.Errorf("Hostname = %q, want punycode form", c.Hostname)
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "whitespace only", raw: "   "},
		{name: "unsupported scheme", raw: "ftp://example.com/file"},
		{name: "missing host", raw: "https://"},
		{name: "space in host", raw: "https://exa mple.com"},
		{name: "leading dot in host", raw: "https://.example.com"},
		{name: "consecutive dots in host", raw: "https://a..example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("error %T is not *ParseError", err)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("example.com") {
		t.Error("IsValid(example.com) = false")
	}
	if IsValid("") {
		t.Error("IsValid(empty) = true")
	}
}
