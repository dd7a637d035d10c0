// Package scoring computes the 0-100 proximity score estimating how close
// a contact's relationship to the operating team is. Pass one uses only
// interaction and connection signals available right after ingestion; pass
// two adds work-history overlap with the team once enrichment data exists.
package scoring

import (
	"math"
	"time"

	"warmpath/internal/contact/models"
	"warmpath/internal/normalize"
)

// Signals are the pass-one inputs, all derived from raw interaction data.
type Signals struct {
	// ConnectionStrength on the 0-100 scale.
	ConnectionStrength float64
	EmailCount         int
	MeetingCount       int
	// DaysSinceLastInteraction is negative when the contact never
	// interacted.
	DaysSinceLastInteraction int
}

// Overlap are the pass-two inputs describing shared work history with the
// operating team.
type Overlap struct {
	SharedCompanyCount     int
	CurrentCompanyShared   bool
	WorkedTogetherRecently bool
}

// PassOne computes the post-ingestion proximity score. Pure; the result is
// always within [0,100] regardless of input, including absurd strength
// values.
func PassOne(s Signals) int {
	score := math.Min(s.ConnectionStrength*0.5, 50) +
		math.Min(float64(s.EmailCount)*5, 25) +
		math.Min(float64(s.MeetingCount)*5, 15) +
		float64(recencyBonus(s.DaysSinceLastInteraction))
	return clamp(score)
}

// PassTwo layers enrichment-derived overlap bonuses on a pass-one score.
// Callers must derive passOne from raw signals in the same run; pass two is
// never computed against a stale stored score.
func PassTwo(passOne int, o Overlap) int {
	score := float64(passOne) +
		math.Min(float64(o.SharedCompanyCount)*5, 15)
	if o.CurrentCompanyShared {
		score += 10
	}
	if o.WorkedTogetherRecently {
		score += 10
	}
	return clamp(score)
}

func recencyBonus(days int) int {
	switch {
	case days < 0:
		return 0
	case days <= 7:
		return 10
	case days <= 30:
		return 7
	case days <= 90:
		return 4
	case days <= 365:
		return 2
	default:
		return 0
	}
}

func clamp(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

// recentOverlapWindow is how far back a shared employment still counts as
// having "worked together recently".
const recentOverlapWindow = 3 * 365 * 24 * time.Hour

// SignalsFor extracts pass-one signals from a contact snapshot.
func SignalsFor(c *models.Contact, now time.Time) Signals {
	days := -1
	if c.LastInteractionAt != nil {
		days = int(now.Sub(*c.LastInteractionAt).Hours() / 24)
	}
	return Signals{
		ConnectionStrength:       c.ConnectionStrength * 100,
		EmailCount:               c.EmailCount(),
		MeetingCount:             c.Meetings,
		DaysSinceLastInteraction: days,
	}
}

// TeamCompanies is the set of normalized company names the operating
// team's own members have worked at. Supplied externally; consulted only
// by pass-two scoring.
type TeamCompanies map[string]bool

// NewTeamCompanies normalizes raw company names into a lookup set.
func NewTeamCompanies(names []string) TeamCompanies {
	set := make(TeamCompanies, len(names))
	for _, n := range names {
		if key := normalize.CompanyName(n); key != "" {
			set[key] = true
		}
	}
	return set
}

// OverlapFor derives pass-two inputs from a contact's work history and the
// team-company set. Shared companies are counted by distinct normalized
// name.
func OverlapFor(c *models.Contact, team TeamCompanies, now time.Time) Overlap {
	var o Overlap
	seen := make(map[string]bool)

	for i := range c.WorkHistory {
		entry := &c.WorkHistory[i]
		key := entry.NormalizedCompany
		if key == "" {
			key = normalize.CompanyName(entry.Company)
		}
		if key == "" || !team[key] {
			continue
		}
		if !seen[key] {
			seen[key] = true
			o.SharedCompanyCount++
		}
		if entry.IsCurrent {
			o.CurrentCompanyShared = true
		}
		if entry.EndedWithin(recentOverlapWindow, now) {
			o.WorkedTogetherRecently = true
		}
	}

	// The current employer field can be ahead of the work-history payload.
	if !o.CurrentCompanyShared && c.CompanyName != "" && team[c.CompanyName] {
		o.CurrentCompanyShared = true
	}
	return o
}
