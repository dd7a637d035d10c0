// Package match provides the fuzzy company-matching primitives shared by
// deduplication and prospect matching. Functions are pure and total: empty
// input is never a match and never an error.
package match

import (
	"strings"

	"warmpath/internal/normalize"
)

// containmentFloor is the minimum normalized length for containment
// matching. Without it, short common names ("Go", "io") would swallow
// every company containing them.
const containmentFloor = 4

// firstTokenFloor guards FuzzyCompanyKey against matching on generic
// leading words ("The", "Go"). Strictly greater-than, per the shared
// comparison contract with the prospect matcher.
const firstTokenFloor = 4

// Companies reports whether two raw company names refer to the same
// company. Exact match on normalized names wins outright; otherwise a
// containment match is allowed only when both normalized names are at
// least four characters long.
func Companies(a, b string) bool {
	na := normalize.CompanyName(a)
	nb := normalize.CompanyName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if len(na) < containmentFloor || len(nb) < containmentFloor {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// FuzzyCompanyKey compares the first whitespace-delimited token of two
// normalized company names. It matches "Alterra" against "Alterra Mountain
// Company" without over-matching on generic first words: the shared token
// must be longer than four characters.
func FuzzyCompanyKey(a, b string) bool {
	ta := firstToken(normalize.CompanyName(a))
	tb := firstToken(normalize.CompanyName(b))
	if ta == "" || len(ta) <= firstTokenFloor {
		return false
	}
	return ta == tb
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
