// Package prospectstore persists prospects and their regenerated match
// lists. The memory implementation backs unit tests and single-node
// deployments; the postgres implementation is the production store. Both
// return sentinel errors for the service layer to translate.
package prospectstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"warmpath/internal/prospect/models"
	id "warmpath/pkg/domain"
	"warmpath/pkg/platform/sentinel"
)

// InMemoryStore keeps prospects in per-tenant maps. All returned prospects
// are deep copies; callers mutate snapshots and write them back.
type InMemoryStore struct {
	mu        sync.RWMutex
	prospects map[id.TenantID]map[id.ProspectID]*models.Prospect
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		prospects: make(map[id.TenantID]map[id.ProspectID]*models.Prospect),
	}
}

func (s *InMemoryStore) tenant(tenantID id.TenantID) map[id.ProspectID]*models.Prospect {
	t, ok := s.prospects[tenantID]
	if !ok {
		t = make(map[id.ProspectID]*models.Prospect)
		s.prospects[tenantID] = t
	}
	return t
}

func (s *InMemoryStore) Insert(_ context.Context, p *models.Prospect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tenant(p.TenantID)
	if _, taken := t[p.ID]; taken {
		return sentinel.ErrConflict
	}
	t[p.ID] = p.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Prospect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tenant(p.TenantID)
	if _, ok := t[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	t[p.ID] = p.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, tenantID id.TenantID, prospectID id.ProspectID) (*models.Prospect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prospects[tenantID][prospectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context, tenantID id.TenantID) ([]*models.Prospect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Prospect, 0, len(s.prospects[tenantID]))
	for _, p := range s.prospects[tenantID] {
		out = append(out, p.Clone())
	}
	sortProspects(out)
	return out, nil
}

// RecordMatches replaces the prospect's derived match state wholesale.
func (s *InMemoryStore) RecordMatches(_ context.Context, tenantID id.TenantID, prospectID id.ProspectID, matches []models.ConnectionMatch, connectionScore int, hasWarmIntro bool, matchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prospects[tenantID][prospectID]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Matches = make([]models.ConnectionMatch, len(matches))
	copy(p.Matches, matches)
	p.ConnectionScore = connectionScore
	p.HasWarmIntro = hasWarmIntro
	at := matchedAt
	p.LastMatchedAt = &at
	p.UpdatedAt = matchedAt
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, tenantID id.TenantID, prospectID id.ProspectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prospects[tenantID][prospectID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.prospects[tenantID], prospectID)
	return nil
}

func sortProspects(ps []*models.Prospect) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].ID.String() < ps[j].ID.String()
	})
}
