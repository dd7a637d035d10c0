// Package contactstore persists the canonical contact registry. The memory
// implementation backs unit tests and single-node deployments; the postgres
// implementation is the production store. Both enforce the per-tenant
// uniqueness of non-empty email and LinkedIn identity keys and return
// sentinel errors for the service layer to translate.
package contactstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"warmpath/internal/contact/models"
	id "warmpath/pkg/domain"
	"warmpath/pkg/platform/sentinel"
)

// InMemoryStore keeps contacts in per-tenant maps with identity-key indexes.
// All returned contacts are deep copies; callers mutate snapshots and write
// them back through Update.
type InMemoryStore struct {
	mu       sync.RWMutex
	contacts map[id.TenantID]map[id.ContactID]*models.Contact
	byEmail  map[id.TenantID]map[string]id.ContactID
	bySlug   map[id.TenantID]map[string]id.ContactID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		contacts: make(map[id.TenantID]map[id.ContactID]*models.Contact),
		byEmail:  make(map[id.TenantID]map[string]id.ContactID),
		bySlug:   make(map[id.TenantID]map[string]id.ContactID),
	}
}

func (s *InMemoryStore) tenant(tenantID id.TenantID) map[id.ContactID]*models.Contact {
	t, ok := s.contacts[tenantID]
	if !ok {
		t = make(map[id.ContactID]*models.Contact)
		s.contacts[tenantID] = t
		s.byEmail[tenantID] = make(map[string]id.ContactID)
		s.bySlug[tenantID] = make(map[string]id.ContactID)
	}
	return t
}

func (s *InMemoryStore) Insert(_ context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tenant(c.TenantID)
	if c.Email != "" {
		if _, taken := s.byEmail[c.TenantID][c.Email]; taken {
			return fmt.Errorf("email %q: %w", c.Email, sentinel.ErrConflict)
		}
	}
	if c.LinkedInSlug != "" {
		if _, taken := s.bySlug[c.TenantID][c.LinkedInSlug]; taken {
			return fmt.Errorf("linkedin slug %q: %w", c.LinkedInSlug, sentinel.ErrConflict)
		}
	}

	t[c.ID] = c.Clone()
	if c.Email != "" {
		s.byEmail[c.TenantID][c.Email] = c.ID
	}
	if c.LinkedInSlug != "" {
		s.bySlug[c.TenantID][c.LinkedInSlug] = c.ID
	}
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tenant(c.TenantID)
	prev, ok := t[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}

	// Reindex identity keys that a merge may have filled in.
	if prev.Email != c.Email {
		delete(s.byEmail[c.TenantID], prev.Email)
		if c.Email != "" {
			s.byEmail[c.TenantID][c.Email] = c.ID
		}
	}
	if prev.LinkedInSlug != c.LinkedInSlug {
		delete(s.bySlug[c.TenantID], prev.LinkedInSlug)
		if c.LinkedInSlug != "" {
			s.bySlug[c.TenantID][c.LinkedInSlug] = c.ID
		}
	}
	t[c.ID] = c.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, tenantID id.TenantID, contactID id.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[tenantID][contactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, tenantID id.TenantID, email string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if email == "" {
		return nil, sentinel.ErrNotFound
	}
	contactID, ok := s.byEmail[tenantID][email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.contacts[tenantID][contactID].Clone(), nil
}

func (s *InMemoryStore) FindByLinkedIn(_ context.Context, tenantID id.TenantID, slug string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if slug == "" {
		return nil, sentinel.ErrNotFound
	}
	contactID, ok := s.bySlug[tenantID][slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.contacts[tenantID][contactID].Clone(), nil
}

// FindByCompanyDomain returns contacts whose normalized company name and
// domain both match, ordered oldest-first so candidate selection is
// deterministic.
func (s *InMemoryStore) FindByCompanyDomain(_ context.Context, tenantID id.TenantID, companyName, domain string) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if companyName == "" || domain == "" {
		return nil, nil
	}
	var out []*models.Contact
	for _, c := range s.contacts[tenantID] {
		if c.CompanyName == companyName && c.CompanyDomain == domain {
			out = append(out, c.Clone())
		}
	}
	sortContacts(out)
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context, tenantID id.TenantID) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Contact, 0, len(s.contacts[tenantID]))
	for _, c := range s.contacts[tenantID] {
		out = append(out, c.Clone())
	}
	sortContacts(out)
	return out, nil
}

func (s *InMemoryStore) ReplaceWorkHistory(_ context.Context, tenantID id.TenantID, contactID id.ContactID, entries []models.WorkHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[tenantID][contactID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.WorkHistory = make([]models.WorkHistoryEntry, len(entries))
	for i := range entries {
		c.WorkHistory[i] = *entries[i].Clone()
	}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, tenantID id.TenantID, contactID id.ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[tenantID][contactID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail[tenantID], c.Email)
	delete(s.bySlug[tenantID], c.LinkedInSlug)
	delete(s.contacts[tenantID], contactID)
	return nil
}

func sortContacts(cs []*models.Contact) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID.String() < cs[j].ID.String()
	})
}
