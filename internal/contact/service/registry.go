package service

import (
	"context"
	"errors"

	"warmpath/internal/contact/models"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/events"
	"warmpath/pkg/platform/sentinel"
	"warmpath/pkg/requestcontext"
)

// GetContact retrieves one contact within the tenant scope.
func (s *Service) GetContact(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) (*models.Contact, error) {
	c, err := s.contacts.Get(ctx, tenantID, contactID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "contact not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "get contact")
	}
	return c, nil
}

// ListContacts returns the tenant's full registry snapshot.
func (s *Service) ListContacts(ctx context.Context, tenantID id.TenantID) ([]*models.Contact, error) {
	cs, err := s.contacts.List(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list contacts")
	}
	return cs, nil
}

// RefreshWorkHistory replaces the contact's work history wholesale from a
// refreshed enrichment payload, bypassing the merge engine: the entries are
// re-derived facts, not a new record to resolve. They get the same
// normalization the ingest path applies.
func (s *Service) RefreshWorkHistory(ctx context.Context, tenantID id.TenantID, contactID id.ContactID, entries []models.WorkHistoryEntry) error {
	if err := s.contacts.ReplaceWorkHistory(ctx, tenantID, contactID, cloneWorkHistory(entries)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "contact not found")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "replace work history")
	}
	return nil
}

// Purge hard-deletes one contact. This is the only deletion path; it exists
// for explicit operator cleanup of junk records.
func (s *Service) Purge(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) error {
	if err := s.contacts.Delete(ctx, tenantID, contactID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "contact not found")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "purge contact")
	}
	s.emit(ctx, events.Event{
		Type:      events.TypeContactPurged,
		TenantID:  tenantID,
		SubjectID: contactID.String(),
		Timestamp: requestcontext.Now(ctx),
	})
	return nil
}

// PurgeJunk removes contacts that carry no identity key, no interaction
// signal and no score. Returns the number purged.
func (s *Service) PurgeJunk(ctx context.Context, tenantID id.TenantID) (int, error) {
	cs, err := s.contacts.List(ctx, tenantID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "list contacts")
	}

	purged := 0
	for _, c := range cs {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		if isJunk(c) {
			if err := s.Purge(ctx, tenantID, c.ID); err != nil {
				s.logger.Warn("junk purge failed", "contact_id", c.ID, "err", err)
				continue
			}
			purged++
		}
	}
	return purged, nil
}

func isJunk(c *models.Contact) bool {
	return c.Email == "" && c.LinkedInSlug == "" && c.ExternalID == "" &&
		c.EmailCount() == 0 && c.Meetings == 0 &&
		c.ProximityScore == 0 && c.ConnectionStrength == 0
}
