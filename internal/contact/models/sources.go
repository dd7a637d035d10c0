package models

import (
	"time"

	id "warmpath/pkg/domain"
)

// Vendor payload shapes. Each known source has its own struct mirroring the
// fields that vendor actually sends, with a Raw() conversion to the
// canonical RawContact. New vendors get a new shape here; the merge engine
// never learns about them.

// SwarmRecord is one person from a social-graph crawler sync. Strength
// arrives on the crawler's 0-100 scale.
type SwarmRecord struct {
	ProfileID   string     `json:"profile_id"`
	FullName    string     `json:"full_name"`
	Headline    string     `json:"headline,omitempty"`
	LinkedInURL string     `json:"linkedin_url,omitempty"`
	Company     string     `json:"company,omitempty"`
	Strength    float64    `json:"strength"`
	EmailsIn    int        `json:"emails_in,omitempty"`
	EmailsOut   int        `json:"emails_out,omitempty"`
	Meetings    int        `json:"meetings,omitempty"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

func (r SwarmRecord) Raw() RawContact {
	return RawContact{
		Source:             id.SourceSwarm,
		ExternalID:         r.ProfileID,
		LinkedInURL:        r.LinkedInURL,
		Name:               r.FullName,
		Title:              r.Headline,
		Company:            r.Company,
		ConnectionStrength: r.Strength,
		EmailsIn:           r.EmailsIn,
		EmailsOut:          r.EmailsOut,
		Meetings:           r.Meetings,
		LastInteractionAt:  r.LastSeenAt,
	}
}

// EnrichmentRecord is a people-data vendor payload. Enrichment is the
// authoritative source for employment facts and carries full work history.
type EnrichmentRecord struct {
	PersonID    string             `json:"person_id"`
	Email       string             `json:"email,omitempty"`
	LinkedInURL string             `json:"linkedin_url,omitempty"`
	FullName    string             `json:"full_name"`
	JobTitle    string             `json:"job_title,omitempty"`
	Employer    string             `json:"employer,omitempty"`
	Domain      string             `json:"domain,omitempty"`
	Industry    string             `json:"industry,omitempty"`
	WorkHistory []WorkHistoryEntry `json:"work_history,omitempty"`
}

func (r EnrichmentRecord) Raw() RawContact {
	return RawContact{
		Source:      id.SourceEnrichment,
		ExternalID:  r.PersonID,
		Email:       r.Email,
		LinkedInURL: r.LinkedInURL,
		Name:        r.FullName,
		Title:       r.JobTitle,
		Company:     r.Employer,
		Domain:      r.Domain,
		Industry:    r.Industry,
		WorkHistory: r.WorkHistory,
	}
}

// SpreadsheetRecord is one row of a manual export. Columns are free-form;
// only the conventional ones are mapped.
type SpreadsheetRecord struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
	Domain  string `json:"domain,omitempty"`
	Title   string `json:"title,omitempty"`
}

func (r SpreadsheetRecord) Raw() RawContact {
	return RawContact{
		Source:  id.SourceSpreadsheet,
		Email:   r.Email,
		Name:    r.Name,
		Title:   r.Title,
		Company: r.Company,
		Domain:  r.Domain,
	}
}
