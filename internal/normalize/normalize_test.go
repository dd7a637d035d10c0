package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  Jane.Doe@Example.COM ", "jane.doe@example.com"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"missing at sign", "jane.doe", ""},
		{"missing local part", "@example.com", ""},
		{"missing domain", "jane@", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.in))
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain", "acme.com", "acme.com"},
		{"strips protocol and www", "https://www.acme.com", "acme.com"},
		{"strips path and query", "http://acme.com/about?ref=x", "acme.com"},
		{"strips trailing slash", "acme.com/", "acme.com"},
		{"lowercases", "ACME.COM", "acme.com"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Domain(tt.in))
		})
	}
}

func TestCompanyName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips punctuation and suffix", "Acme, Inc.", "acme"},
		{"case insensitive", "ACME INC", "acme"},
		{"strips multiple suffixes", "The Acme Company LLC", "acme"},
		{"whole tokens only", "Concord Capital", "concord capital"},
		{"retains meaningful words", "The Trade Desk", "trade desk"},
		{"collapses whitespace", "Acme   Labs", "acme labs"},
		{"all suffixes falls back to original", "The Co", "the co"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompanyName(tt.in))
		})
	}
}

func TestCompanyNameDeterminism(t *testing.T) {
	// Equivalent raw spellings must land on the same key.
	assert.Equal(t, CompanyName("Acme, Inc."), CompanyName("ACME INC"))
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  Head of Product ", "head of product"},
		{"collapses whitespace", "VP,   Engineering", "vp, engineering"},
		{"keeps punctuation", "Co-Founder & CEO", "co-founder & ceo"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.in))
		})
	}
}

func TestLinkedInSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full profile url", "https://www.linkedin.com/in/jane-doe-123", "jane-doe-123"},
		{"trailing slash", "https://linkedin.com/in/jane-doe/", "jane-doe"},
		{"query string", "https://linkedin.com/in/jane-doe?src=mail", "jane-doe"},
		{"uppercased", "https://LinkedIn.com/IN/Jane-Doe", "jane-doe"},
		{"company url is not a profile", "https://linkedin.com/company/acme", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkedInSlug(tt.in))
		})
	}
}
