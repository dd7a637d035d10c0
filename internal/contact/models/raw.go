package models

import (
	"time"

	id "warmpath/pkg/domain"
)

// RawContact is the one canonical shape the merge engine consumes. Vendor
// payloads are converted into it at the ingestion boundary (see sources.go)
// so vendor-specific field layouts never reach the core.
type RawContact struct {
	Source     id.SourceKind `json:"source"`
	ExternalID string        `json:"external_id,omitempty"`

	Email       string `json:"email,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`

	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Industry string `json:"industry,omitempty"`

	// ConnectionStrength is source-scale: some vendors report 0-1, others
	// 0-100. Use NormalizedStrength, never the raw value.
	ConnectionStrength float64 `json:"connection_strength,omitempty"`

	EmailsIn          int        `json:"emails_in,omitempty"`
	EmailsOut         int        `json:"emails_out,omitempty"`
	Meetings          int        `json:"meetings,omitempty"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`

	// WorkHistory is present only on enrichment payloads and replaces the
	// contact's entries wholesale.
	WorkHistory []WorkHistoryEntry `json:"work_history,omitempty"`
}

// NormalizedStrength maps the source-scale connection strength onto [0,1].
// Values above 1 are assumed to be on the 0-100 scale; out-of-range input
// clamps rather than errors.
func (r *RawContact) NormalizedStrength() float64 {
	s := r.ConnectionStrength
	if s > 1 {
		s /= 100
	}
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// MatchType identifies which identity key produced a merge candidate.
type MatchType string

const (
	MatchTypeEmail         MatchType = "email"
	MatchTypeLinkedIn      MatchType = "linkedin"
	MatchTypeCompanyDomain MatchType = "company_domain"
)

// MergeCandidate is an ephemeral comparison result used within a single
// merge operation. It is never persisted.
type MergeCandidate struct {
	ContactID id.ContactID
	MatchType MatchType
	Existing  *Contact
}

// MergeOutcome describes what an ingestion did to the registry.
type MergeOutcome struct {
	ContactID id.ContactID `json:"contact_id"`
	Created   bool         `json:"created"`
	MatchType MatchType    `json:"match_type,omitempty"`
	// ChangedFields lists the mutable fields the merge actually wrote, in a
	// stable order. Empty on an idempotent re-merge.
	ChangedFields []string `json:"changed_fields,omitempty"`
}
