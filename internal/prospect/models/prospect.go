// Package models defines the prospect aggregate: a target company plus
// the regenerated list of network connections into it.
package models

import (
	"time"

	id "warmpath/pkg/domain"
)

// Prospect is a target company the team wants an introduction into.
// FitScore is supplied by an upstream qualification pipeline and consumed
// as-is; ConnectionScore, HasWarmIntro and Matches are derived by the
// matcher and fully regenerated on every run.
type Prospect struct {
	ID       id.ProspectID `json:"id"`
	TenantID id.TenantID   `json:"tenant_id"`

	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	Industry string `json:"industry,omitempty"`

	FitScore int `json:"fit_score"`

	ConnectionScore int               `json:"connection_score"`
	HasWarmIntro    bool              `json:"has_warm_intro"`
	Matches         []ConnectionMatch `json:"matches,omitempty"`

	LastMatchedAt *time.Time `json:"last_matched_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConnectionMatch is a derived edge from the prospect to one contact. It is
// a cache: recomputing it must be idempotent and never mutate contact data.
type ConnectionMatch struct {
	ContactID id.ContactID   `json:"contact_id"`
	Reason    id.MatchReason `json:"reason"`
	// IsCurrentEmployee distinguishes current employees from alumni
	// matched through work history.
	IsCurrentEmployee  bool    `json:"is_current_employee"`
	TitleRelevance     float64 `json:"title_relevance"`
	ConnectionStrength float64 `json:"connection_strength"`
	CombinedScore      float64 `json:"combined_score"`
}

// Clone returns a deep copy safe for callers to mutate.
func (p *Prospect) Clone() *Prospect {
	cp := *p
	if p.Matches != nil {
		cp.Matches = make([]ConnectionMatch, len(p.Matches))
		copy(cp.Matches, p.Matches)
	}
	if p.LastMatchedAt != nil {
		t := *p.LastMatchedAt
		cp.LastMatchedAt = &t
	}
	return &cp
}
