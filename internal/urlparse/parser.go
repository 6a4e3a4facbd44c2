// Package urlparse normalizes raw URL strings into the structured component
// record the analyzers consume, and derives a stable content hash for
// deduplication.
package urlparse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/phishguard/phishguard/internal/domain"
)

// ParseError reports input that cannot be interpreted as a URL even after
// scheme prefixing. Callers should treat it as an input-validation failure
// and never retry.
type ParseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse url %q: %s: %v", e.Raw, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse url %q: %s", e.Raw, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

var ipv4Pattern = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)

// Parse turns a raw string into a URLComponents record. The input is
// trimmed and lower-cased; https:// is prepended when no http(s) scheme is
// present. The hash covers scheme, hostname, path (trailing slash stripped
// unless root) and lexicographically sorted query parameters. Fragments are
// excluded so anchor-only differences do not create duplicate identities.
func Parse(raw string) (*domain.URLComponents, error) {
	original := strings.TrimSpace(raw)
	if original == "" {
		return nil, &ParseError{Raw: raw, Reason: "empty input"}
	}

	lowered := strings.ToLower(original)
	withScheme := ensureScheme(lowered)

	u, err := url.Parse(withScheme)
	if err != nil {
		return nil, &ParseError{Raw: raw, Reason: "not a valid url", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ParseError{Raw: raw, Reason: "unsupported scheme " + u.Scheme}
	}

	hostname := u.Hostname()
	if hostname == "" {
		return nil, &ParseError{Raw: raw, Reason: "empty host"}
	}
	if !validHostname(hostname) {
		return nil, &ParseError{Raw: raw, Reason: "invalid characters in host"}
	}

	// Internationalized hostnames are folded to their ASCII (punycode) form
	// before label splitting so the registrable domain is stable.
	if ascii, idnaErr := idna.Lookup.ToASCII(hostname); idnaErr == nil && ascii != "" {
		hostname = ascii
	}

	isIP := ipv4Literal(hostname)
	dom, sub, tld := splitHost(hostname, isIP)

	normalized := normalize(u.Scheme, hostname, u.EscapedPath(), u.RawQuery)
	sum := sha256.Sum256([]byte(normalized))

	return &domain.URLComponents{
		Original:         original,
		Normalized:       normalized,
		URLHash:          hex.EncodeToString(sum[:]),
		Scheme:           u.Scheme,
		Hostname:         hostname,
		Domain:           dom,
		Subdomain:        sub,
		TLD:              tld,
		Port:             u.Port(),
		Path:             u.EscapedPath(),
		Query:            u.RawQuery,
		Fragment:         u.Fragment,
		OriginalHostname: originalHostname(original, hostname),
		IsIP:             isIP,
		HasSubdomain:     sub != "",
		URLLength:        len(original),
	}, nil
}

// IsValid runs the same parse attempt as Parse, swallowing the error.
// Use it for cheap pre-validation when the full record is not needed.
func IsValid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// ensureScheme prepends https:// to scheme-less input. Input that already
// carries some scheme is left alone so non-http schemes are rejected
// instead of being reinterpreted as hostnames.
func ensureScheme(s string) string {
	if strings.Contains(s, "://") {
		return s
	}
	return "https://" + s
}

func validHostname(host string) bool {
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
		case r > 127: // non-ASCII handled by IDNA below
		default:
			return false
		}
	}
	return !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".") &&
		!strings.Contains(host, "..")
}

// ipv4Literal reports whether host is a strict four-octet numeric address.
func ipv4Literal(host string) bool {
	m := ipv4Pattern.FindStringSubmatch(host)
	if m == nil {
		return false
	}
	for _, octet := range m[1:] {
		n, err := strconv.Atoi(octet)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}

// splitHost derives tld, registrable domain and subdomain from hostname
// labels. TLD is the last label, domain the last two joined, subdomain
// whatever leads them. IP literals have no labels to split.
func splitHost(hostname string, isIP bool) (dom, sub, tld string) {
	if isIP {
		return hostname, "", ""
	}
	labels := strings.Split(hostname, ".")
	switch len(labels) {
	case 1:
		return labels[0], "", labels[0]
	case 2:
		return labels[0] + "." + labels[1], "", labels[1]
	default:
		n := len(labels)
		return labels[n-2] + "." + labels[n-1],
			strings.Join(labels[:n-2], "."),
			labels[n-1]
	}
}

// normalize builds the canonical form the hash is computed over.
func normalize(scheme, hostname, path, rawQuery string) string {
	if path == "" {
		path = "/"
	}
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(hostname)
	b.WriteString(path)
	if q := sortQuery(rawQuery); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	return b.String()
}

// sortQuery orders parameters by key, preserving values and the relative
// order of repeated keys. Values are deliberately not re-encoded so the
// normalization stays idempotent.
func sortQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	pairs := strings.Split(rawQuery, "&")
	sort.SliceStable(pairs, func(i, j int) bool {
		return queryKey(pairs[i]) < queryKey(pairs[j])
	})
	return strings.Join(pairs, "&")
}

func queryKey(pair string) string {
	if i := strings.IndexByte(pair, '='); i >= 0 {
		return pair[:i]
	}
	return pair
}

// originalHostname extracts the case-preserved hostname from the trimmed
// input. Falls back to the normalized hostname when the original does not
// reparse (it always should, parsing is case-insensitive).
func originalHostname(original, normalizedHost string) string {
	u, err := url.Parse(ensureScheme(originalWithLowerScheme(original)))
	if err != nil || u.Hostname() == "" {
		return normalizedHost
	}
	return u.Hostname()
}

// originalWithLowerScheme lowercases just the scheme prefix so mixed-case
// schemes like HtTp:// still parse, without touching the rest of the URL.
func originalWithLowerScheme(s string) string {
	if i := strings.Index(s, "://"); i > 0 {
		return strings.ToLower(s[:i]) + s[i:]
	}
	return s
}
