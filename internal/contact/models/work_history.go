package models

import "time"

// WorkHistoryEntry is one employment record owned by a contact. Entries are
// replaced wholesale whenever a refreshed enrichment payload is ingested;
// they are never patched in place.
//
// Invariant: at most one entry should be current per contact, but
// contradictory source data (several current employers) is tolerated as-is.
type WorkHistoryEntry struct {
	Company           string     `json:"company"`
	NormalizedCompany string     `json:"normalized_company"`
	Domain            string     `json:"domain,omitempty"`
	Title             string     `json:"title,omitempty"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	IsCurrent         bool       `json:"is_current"`
}

// EndedWithin reports whether the employment ended within the given window
// before now, or is still current.
func (w *WorkHistoryEntry) EndedWithin(window time.Duration, now time.Time) bool {
	if w.IsCurrent {
		return true
	}
	if w.EndDate == nil {
		return false
	}
	return now.Sub(*w.EndDate) <= window
}

// Clone returns a copy with no shared pointers.
func (w *WorkHistoryEntry) Clone() *WorkHistoryEntry {
	cp := *w
	if w.StartDate != nil {
		t := *w.StartDate
		cp.StartDate = &t
	}
	if w.EndDate != nil {
		t := *w.EndDate
		cp.EndDate = &t
	}
	return &cp
}
