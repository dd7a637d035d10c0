package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanies(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact normalized match", "Acme, Inc.", "ACME INC", true},
		{"containment match", "Acme Corp", "Acme", true},
		{"containment both directions", "Acme", "Acme Labs", true},
		{"short name containment blocked", "Go", "Google", false},
		{"short other side blocked", "Google", "Go", false},
		{"exact short names still match", "io", "io", true},
		{"unrelated", "Acme", "Initech", false},
		{"empty left", "", "Acme", false},
		{"empty right", "Acme", "", false},
		{"both empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Companies(tt.a, tt.b))
		})
	}
}

func TestFuzzyCompanyKey(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"long first token matches", "Alterra", "Alterra Mountain Company", true},
		{"generic first word blocked", "The Trade Desk", "The Information", false},
		{"four letter token blocked", "Acme Labs", "Acme Corp", false},
		{"five letter token allowed", "Stripe", "Stripe Payments", true},
		{"different tokens", "Alterra", "Altimeter Capital", false},
		{"empty input", "", "Alterra", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyCompanyKey(tt.a, tt.b))
		})
	}
}
