package service

import (
	"context"
	"errors"
	"time"

	"warmpath/internal/contact/models"
	"warmpath/internal/normalize"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/events"
	"warmpath/pkg/platform/sentinel"
	"warmpath/pkg/requestcontext"
)

// authoritativeFields lists, per source, the fields that source may
// overwrite even when the contact already has a value. Everything else
// follows fill-if-empty. Connection strength is handled separately: it
// always takes the maximum, so more evidence can only raise it.
var authoritativeFields = map[id.SourceKind]map[string]bool{
	id.SourceEnrichment: {
		"title":          true,
		"company_name":   true,
		"company_domain": true,
		"industry":       true,
		"work_history":   true,
	},
}

// insertAttempts bounds the optimistic-insert retry loop. One conflict
// means a concurrent ingestion won the race; the retry finds its row.
const insertAttempts = 2

// Ingest resolves one raw record against the registry: first matching
// candidate wins (email, then LinkedIn slug, then company name combined
// with domain), otherwise a new contact is inserted. The operation is
// deterministic and idempotent; re-ingesting the same record reports no
// changed fields.
func (s *Service) Ingest(ctx context.Context, tenantID id.TenantID, raw models.RawContact) (*models.MergeOutcome, error) {
	start := time.Now()
	if s.metrics != nil {
		defer s.metrics.ObserveIngest(start)
	}

	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}

	probe := newProbe(raw)
	if !probe.insertable() {
		if s.metrics != nil {
			s.metrics.IngestFailures.Inc()
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "record has no name and no identity key")
	}

	for attempt := 0; attempt < insertAttempts; attempt++ {
		candidate, err := s.findCandidate(ctx, tenantID, probe)
		if err != nil {
			return nil, err
		}
		if candidate != nil {
			return s.merge(ctx, candidate, raw, probe)
		}

		outcome, err := s.insertNew(ctx, tenantID, raw, probe)
		if errors.Is(err, sentinel.ErrConflict) {
			// A concurrent ingestion claimed one of our identity keys
			// between the candidate search and the insert. Treat the
			// conflict as a successful merge signal and search again.
			continue
		}
		if err != nil {
			return nil, err
		}
		return outcome, nil
	}
	return nil, dErrors.New(dErrors.CodeInternal, "insert race did not converge")
}

// probe carries the normalized identity keys of one raw record.
type probe struct {
	email   string
	slug    string
	company string
	domain  string
	name    string
}

func newProbe(raw models.RawContact) probe {
	return probe{
		email:   normalize.Email(raw.Email),
		slug:    normalize.LinkedInSlug(raw.LinkedInURL),
		company: normalize.CompanyName(raw.Company),
		domain:  normalize.Domain(raw.Domain),
		name:    raw.Name,
	}
}

// insertable reports whether the record can enter the registry at all. A
// record with no identity key is still insertable when it has a name; it
// simply opts out of future identity matching.
func (p probe) insertable() bool {
	return p.name != "" || p.email != "" || p.slug != "" || (p.company != "" && p.domain != "")
}

// findCandidate runs the ordered candidate search. First hit wins; later
// rules are not consulted.
func (s *Service) findCandidate(ctx context.Context, tenantID id.TenantID, p probe) (*models.MergeCandidate, error) {
	if p.email != "" {
		c, err := s.contacts.FindByEmail(ctx, tenantID, p.email)
		if err == nil {
			return &models.MergeCandidate{ContactID: c.ID, MatchType: models.MatchTypeEmail, Existing: c}, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "candidate search by email")
		}
	}
	if p.slug != "" {
		c, err := s.contacts.FindByLinkedIn(ctx, tenantID, p.slug)
		if err == nil {
			return &models.MergeCandidate{ContactID: c.ID, MatchType: models.MatchTypeLinkedIn, Existing: c}, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "candidate search by linkedin slug")
		}
	}
	// Company name alone would merge unrelated people who share an employer
	// name string; the domain must agree as well.
	if p.company != "" && p.domain != "" {
		cs, err := s.contacts.FindByCompanyDomain(ctx, tenantID, p.company, p.domain)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "candidate search by company+domain")
		}
		if len(cs) > 0 {
			c := cs[0]
			return &models.MergeCandidate{ContactID: c.ID, MatchType: models.MatchTypeCompanyDomain, Existing: c}, nil
		}
	}
	return nil, nil
}

func (s *Service) insertNew(ctx context.Context, tenantID id.TenantID, raw models.RawContact, p probe) (*models.MergeOutcome, error) {
	now := requestcontext.Now(ctx)
	c := &models.Contact{
		ID:                 id.NewContactID(),
		TenantID:           tenantID,
		Email:              p.email,
		LinkedInSlug:       p.slug,
		ExternalID:         raw.ExternalID,
		Name:               raw.Name,
		CompanyName:        p.company,
		CompanyDomain:      p.domain,
		Industry:           raw.Industry,
		Title:              raw.Title,
		Category:           id.CategoryUncategorized,
		ConnectionStrength: raw.NormalizedStrength(),
		EmailsIn:           raw.EmailsIn,
		EmailsOut:          raw.EmailsOut,
		Meetings:           raw.Meetings,
		LastInteractionAt:  cloneTime(raw.LastInteractionAt),
		WorkHistory:        cloneWorkHistory(raw.WorkHistory),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, field := range []string{"name", "title", "company_name", "company_domain", "industry"} {
		c.Provenance.Set(field, raw.Source)
	}

	if err := s.contacts.Insert(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "insert contact")
	}

	if s.metrics != nil {
		s.metrics.ContactsCreated.Inc()
	}
	s.emit(ctx, events.Event{
		Type:      events.TypeContactCreated,
		TenantID:  tenantID,
		SubjectID: c.ID.String(),
		Timestamp: now,
		Detail:    map[string]string{"source": raw.Source.String()},
	})
	return &models.MergeOutcome{ContactID: c.ID, Created: true}, nil
}

// merge applies the fill-if-empty policy with authoritative-source
// overwrite to the matched contact and persists only when a field actually
// changed.
func (s *Service) merge(ctx context.Context, candidate *models.MergeCandidate, raw models.RawContact, p probe) (*models.MergeOutcome, error) {
	c := candidate.Existing
	now := requestcontext.Now(ctx)
	authoritative := authoritativeFields[raw.Source]

	var changed []string
	apply := func(field string, current *string, incoming string) {
		if incoming == "" {
			return
		}
		if *current != "" && !authoritative[field] {
			return
		}
		if *current == incoming {
			return
		}
		*current = incoming
		c.Provenance.Set(field, raw.Source)
		changed = append(changed, field)
	}

	// Identity keys are fill-if-empty only: no source may rewrite an
	// established identity.
	fillIdentity := func(field string, current *string, incoming string) {
		if incoming == "" || *current != "" {
			return
		}
		*current = incoming
		c.Provenance.Set(field, raw.Source)
		changed = append(changed, field)
	}

	fillIdentity("email", &c.Email, p.email)
	fillIdentity("linkedin_slug", &c.LinkedInSlug, p.slug)
	fillIdentity("external_id", &c.ExternalID, raw.ExternalID)

	apply("name", &c.Name, raw.Name)
	apply("title", &c.Title, raw.Title)
	apply("company_name", &c.CompanyName, p.company)
	apply("company_domain", &c.CompanyDomain, p.domain)
	apply("industry", &c.Industry, raw.Industry)

	// Strength only ever increases with more evidence.
	if strength := raw.NormalizedStrength(); strength > c.ConnectionStrength {
		c.ConnectionStrength = strength
		c.Provenance.Set("connection_strength", raw.Source)
		changed = append(changed, "connection_strength")
	}
	if raw.EmailsIn > c.EmailsIn {
		c.EmailsIn = raw.EmailsIn
		changed = append(changed, "emails_in")
	}
	if raw.EmailsOut > c.EmailsOut {
		c.EmailsOut = raw.EmailsOut
		changed = append(changed, "emails_out")
	}
	if raw.Meetings > c.Meetings {
		c.Meetings = raw.Meetings
		changed = append(changed, "meetings")
	}
	if raw.LastInteractionAt != nil &&
		(c.LastInteractionAt == nil || raw.LastInteractionAt.After(*c.LastInteractionAt)) {
		c.LastInteractionAt = cloneTime(raw.LastInteractionAt)
		changed = append(changed, "last_interaction_at")
	}

	// Enrichment replaces work history wholesale when it brings any.
	if len(raw.WorkHistory) > 0 && authoritative["work_history"] {
		if !workHistoryEqual(c.WorkHistory, raw.WorkHistory) {
			c.WorkHistory = cloneWorkHistory(raw.WorkHistory)
			c.Provenance.Set("work_history", raw.Source)
			changed = append(changed, "work_history")
		}
	}

	if len(changed) == 0 {
		return &models.MergeOutcome{ContactID: c.ID, MatchType: candidate.MatchType}, nil
	}

	c.UpdatedAt = now
	if err := s.contacts.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "contact vanished during merge")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "update contact")
	}

	if s.metrics != nil {
		s.metrics.ContactsMerged.Inc()
	}
	s.emit(ctx, events.Event{
		Type:      events.TypeContactMerged,
		TenantID:  c.TenantID,
		SubjectID: c.ID.String(),
		Timestamp: now,
		Detail: map[string]string{
			"source":     raw.Source.String(),
			"match_type": string(candidate.MatchType),
		},
	})
	return &models.MergeOutcome{
		ContactID:     c.ID,
		MatchType:     candidate.MatchType,
		ChangedFields: changed,
	}, nil
}

func workHistoryEqual(a, b []models.WorkHistoryEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Company != b[i].Company ||
			a[i].Title != b[i].Title ||
			a[i].Domain != b[i].Domain ||
			a[i].IsCurrent != b[i].IsCurrent ||
			!timePtrEqual(a[i].StartDate, b[i].StartDate) ||
			!timePtrEqual(a[i].EndDate, b[i].EndDate) {
			return false
		}
	}
	return true
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneWorkHistory(entries []models.WorkHistoryEntry) []models.WorkHistoryEntry {
	if entries == nil {
		return nil
	}
	out := make([]models.WorkHistoryEntry, len(entries))
	for i := range entries {
		out[i] = *entries[i].Clone()
		if out[i].NormalizedCompany == "" {
			out[i].NormalizedCompany = normalize.CompanyName(out[i].Company)
		}
		out[i].Domain = normalize.Domain(out[i].Domain)
	}
	return out
}
