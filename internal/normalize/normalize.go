// Package normalize turns raw identity strings into canonical comparison
// keys. Every function is pure and total: bad input yields the zero value,
// never an error or panic, so callers can normalize unconditionally at the
// ingestion boundary.
package normalize

import (
	"strings"
)

// legalSuffixes are stripped from company names as whole tokens only.
// Substring stripping would corrupt names like "Concord" or "Silco".
var legalSuffixes = map[string]bool{
	"inc":     true,
	"llc":     true,
	"corp":    true,
	"ltd":     true,
	"co":      true,
	"company": true,
	"the":     true,
}

// Email lowercases and trims an email address. Returns "" for input that
// cannot be an address (no "@" or no local part / domain around it).
func Email(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return ""
	}
	return s
}

// Domain canonicalizes a host for comparison: protocol, "www." prefix,
// path, query and trailing slashes are stripped and the result lowercased.
func Domain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "/")
}

// CompanyName produces the canonical comparison key for a company name:
// lowercase, legal suffixes removed as whole tokens, punctuation and runs
// of whitespace collapsed to single spaces.
//
// If stripping leaves nothing (e.g. "The Co"), the lowercased original is
// returned instead so the caller never compares against an empty key.
func CompanyName(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	kept := make([]string, 0, 4)
	for _, tok := range strings.Fields(b.String()) {
		if legalSuffixes[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return strings.Join(strings.Fields(lower), " ")
	}
	return strings.Join(kept, " ")
}

// Title produces the canonical comparison key for a job title: lowercase
// with runs of whitespace collapsed. Punctuation is kept; unlike company
// names, hyphens in titles are significant ("co-founder" is not "founder").
func Title(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return ""
	}
	return strings.Join(strings.Fields(lower), " ")
}

// LinkedInSlug extracts the profile slug from a LinkedIn URL, i.e. the path
// segment following "/in/". Returns "" when the URL does not have that shape.
func LinkedInSlug(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	const marker = "/in/"
	i := strings.Index(s, marker)
	if i < 0 {
		return ""
	}
	slug := s[i+len(marker):]
	if j := strings.IndexAny(slug, "/?#"); j >= 0 {
		slug = slug[:j]
	}
	return slug
}
