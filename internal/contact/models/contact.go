package models

import (
	"time"

	id "warmpath/pkg/domain"
)

// Contact is a resolved person in the tenant's registry.
//
// Invariants:
//   - At most one contact per tenant for a given non-empty normalized email
//   - At most one contact per tenant for a given non-empty LinkedIn slug
//   - ProximityScore is always within [0,100]
//   - ConnectionStrength is stored normalized to [0,1]
//
// Identity keys (Email, LinkedInSlug, ExternalID) are stored in normalized
// form; an empty key means the source never supplied one, and such contacts
// are excluded from identity-based matching. Uniqueness is enforced by the
// store; concurrent inserts racing on a key are resolved by the merge
// engine as a merge, never surfaced as an error.
type Contact struct {
	ID       id.ContactID `json:"id"`
	TenantID id.TenantID  `json:"tenant_id"`

	// Identity keys, normalized. Empty = unknown.
	Email        string `json:"email,omitempty"`
	LinkedInSlug string `json:"linkedin_slug,omitempty"`
	ExternalID   string `json:"external_id,omitempty"`

	Name          string `json:"name"`
	CompanyName   string `json:"company_name,omitempty"`
	CompanyDomain string `json:"company_domain,omitempty"`
	Industry      string `json:"industry,omitempty"`
	Title         string `json:"title,omitempty"`

	Category           id.Category       `json:"category"`
	CategoryConfidence float64           `json:"category_confidence"`
	CategorySource     id.CategorySource `json:"category_source,omitempty"`

	ProximityScore     int     `json:"proximity_score"`
	ConnectionStrength float64 `json:"connection_strength"`

	EmailsIn          int        `json:"emails_in"`
	EmailsOut         int        `json:"emails_out"`
	Meetings          int        `json:"meetings"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`

	WorkHistory []WorkHistoryEntry `json:"work_history,omitempty"`

	// Provenance records which source last set each mutable field.
	Provenance Provenance `json:"provenance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provenance maps a mutable field name to the source that last set it.
type Provenance map[string]id.SourceKind

// Set records that source last wrote field. Initializes the map lazily so
// zero-value contacts stay cheap.
func (p *Provenance) Set(field string, source id.SourceKind) {
	if *p == nil {
		*p = make(Provenance)
	}
	(*p)[field] = source
}

// Matchable reports whether the contact carries any identity key usable for
// future duplicate detection. Name-only contacts are insertable but opt out
// of email/slug/domain candidate search.
func (c *Contact) Matchable() bool {
	return c.Email != "" || c.LinkedInSlug != "" || (c.CompanyName != "" && c.CompanyDomain != "")
}

// EmailCount is the total interaction email volume, both directions.
func (c *Contact) EmailCount() int { return c.EmailsIn + c.EmailsOut }

// CurrentEmployer returns the work-history entry flagged current, or nil.
// When the source data contradicts itself with several current entries the
// first one wins; the contradiction is tolerated, not corrected.
func (c *Contact) CurrentEmployer() *WorkHistoryEntry {
	for i := range c.WorkHistory {
		if c.WorkHistory[i].IsCurrent {
			return &c.WorkHistory[i]
		}
	}
	return nil
}

// Clone returns a deep copy so store snapshots can be handed out without
// aliasing mutable state.
func (c *Contact) Clone() *Contact {
	cp := *c
	if c.LastInteractionAt != nil {
		t := *c.LastInteractionAt
		cp.LastInteractionAt = &t
	}
	if c.WorkHistory != nil {
		cp.WorkHistory = make([]WorkHistoryEntry, len(c.WorkHistory))
		copy(cp.WorkHistory, c.WorkHistory)
		for i := range cp.WorkHistory {
			cp.WorkHistory[i] = *c.WorkHistory[i].Clone()
		}
	}
	if c.Provenance != nil {
		cp.Provenance = make(Provenance, len(c.Provenance))
		for k, v := range c.Provenance {
			cp.Provenance[k] = v
		}
	}
	return &cp
}
