package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	contactmodels "warmpath/internal/contact/models"
	"warmpath/internal/match"
	"warmpath/internal/normalize"
	"warmpath/internal/prospect/models"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/batch"
	"warmpath/pkg/platform/events"
	"warmpath/pkg/platform/sentinel"
	"warmpath/pkg/requestcontext"
)

// relevanceTable maps title keywords to a relevance weight for the product
// being sold. Ordered by weight; the first pattern that matches wins, so a
// "VP Trust & Safety" scores as trust and safety, not as generic VP.
var relevanceTable = []struct {
	re     *regexp.Regexp
	weight float64
}{
	{regexp.MustCompile(`(?i)(trust\s*(&|and)\s*safety|fraud|abuse|integrity)`), 1.0},
	{regexp.MustCompile(`(?i)\b(security|ciso|infosec|identity)\b`), 1.0},
	{regexp.MustCompile(`(?i)(chief (product|technology) officer|\bcto\b|\bcpo\b|vp[, ]*(of )?(product|engineering)|head of (product|engineering))`), 0.9},
	{regexp.MustCompile(`(?i)(director of (product|engineering)|(product|engineering) director|engineering (lead|manager))`), 0.8},
	{regexp.MustCompile(`(?i)\b(ceo|founder|co-founder|president|coo|cfo|vice president|vp|head|director)\b`), 0.7},
	{regexp.MustCompile(`(?i)product manager`), 0.6},
	{regexp.MustCompile(`(?i)\b(engineer|engineering|developer|swe)\b`), 0.4},
}

// relevanceFloor is assigned when no keyword matches. Any connection into
// the building is worth something.
const relevanceFloor = 0.1

// TitleRelevance returns the relevance weight for a contact title.
func TitleRelevance(title string) float64 {
	for _, entry := range relevanceTable {
		if entry.re.MatchString(title) {
			return entry.weight
		}
	}
	return relevanceFloor
}

// MatchProspect regenerates the prospect's connection matches from the
// current contact registry. The previous match list is discarded entirely;
// re-running is idempotent and never mutates contact data.
func (s *Service) MatchProspect(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) (*models.Prospect, error) {
	ctx, span := s.tracer.Start(ctx, "prospect.MatchProspect")
	defer span.End()

	p, err := s.prospects.Get(ctx, tenantID, prospectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "prospect not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "get prospect")
	}
	contacts, err := s.contacts.List(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list contacts for matching")
	}

	start := time.Now()
	matches := s.matchContacts(p, contacts)
	score, warm := s.aggregate(matches)
	now := requestcontext.Now(ctx)

	if err := s.prospects.RecordMatches(ctx, tenantID, prospectID, matches, score, warm, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "record matches")
	}
	if s.metrics != nil {
		s.metrics.ObserveRun(start, len(matches), warm)
	}
	s.emit(ctx, events.Event{
		Type:      events.TypeProspectMatched,
		TenantID:  tenantID,
		SubjectID: prospectID.String(),
		Timestamp: now,
		Detail: map[string]string{
			"matches":        strconv.Itoa(len(matches)),
			"has_warm_intro": strconv.FormatBool(warm),
		},
	})

	p.Matches = matches
	p.ConnectionScore = score
	p.HasWarmIntro = warm
	p.LastMatchedAt = &now
	p.UpdatedAt = now
	return p, nil
}

// MatchAll regenerates matches for every prospect in the tenant. A failure
// on one prospect is recorded per item; the rest of the batch proceeds.
func (s *Service) MatchAll(ctx context.Context, tenantID id.TenantID) (batch.Result, error) {
	ctx, span := s.tracer.Start(ctx, "prospect.MatchAll")
	defer span.End()

	prospects, err := s.prospects.List(ctx, tenantID)
	if err != nil {
		return batch.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "list prospects")
	}
	s.logger.Info("matching prospects", "tenant_id", tenantID, "prospects", len(prospects))

	return s.runner.Run(ctx, len(prospects), func(ctx context.Context, i int) error {
		_, err := s.MatchProspect(ctx, tenantID, prospects[i].ID)
		return err
	})
}

// matchContacts gathers candidates, unioned by contact id: current-employer
// domain equality, current-employer name match, then work-history match
// (tagged alumni when the matched entry is not current).
func (s *Service) matchContacts(p *models.Prospect, contacts []*contactmodels.Contact) []models.ConnectionMatch {
	matches := make([]models.ConnectionMatch, 0, 8)
	for _, c := range contacts {
		reason, current, ok := matchContact(p, c)
		if !ok {
			continue
		}
		relevance := TitleRelevance(c.Title)
		strength := c.ConnectionStrength
		matches = append(matches, models.ConnectionMatch{
			ContactID:          c.ID,
			Reason:             reason,
			IsCurrentEmployee:  current,
			TitleRelevance:     relevance,
			ConnectionStrength: strength,
			CombinedScore:      strength*0.6 + relevance*0.4,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CombinedScore != matches[j].CombinedScore {
			return matches[i].CombinedScore > matches[j].CombinedScore
		}
		return matches[i].IsCurrentEmployee && !matches[j].IsCurrentEmployee
	})
	return matches
}

// matchContact reports how one contact connects to the prospect, if at
// all. Current-employer checks run first so a contact both currently at
// the prospect and formerly at it is tagged current.
func matchContact(p *models.Prospect, c *contactmodels.Contact) (id.MatchReason, bool, bool) {
	if p.Domain != "" && c.CompanyDomain == p.Domain {
		return id.MatchReasonDomain, true, true
	}
	if match.Companies(c.CompanyName, p.Name) {
		return id.MatchReasonName, true, true
	}
	if c.CompanyName != "" && match.FuzzyCompanyKey(c.CompanyName, p.Name) {
		return id.MatchReasonFuzzy, true, true
	}
	for i := range c.WorkHistory {
		entry := &c.WorkHistory[i]
		// Entry domains are normalized on ingest, but registries can be
		// populated by external writers; normalize again before comparing.
		if (p.Domain != "" && normalize.Domain(entry.Domain) == p.Domain) || match.Companies(entry.Company, p.Name) {
			return id.MatchReasonWorkHistory, entry.IsCurrent, true
		}
	}
	return "", false, false
}

// aggregate derives the prospect-level connection score and the warm-intro
// flag from the regenerated match list.
func (s *Service) aggregate(matches []models.ConnectionMatch) (int, bool) {
	if len(matches) == 0 {
		return 0, false
	}

	var strengthSum, relevanceSum float64
	warm := false
	for _, m := range matches {
		strengthSum += m.ConnectionStrength
		relevanceSum += m.TitleRelevance
		if m.ConnectionStrength >= s.warmStrength {
			warm = true
		}
	}
	n := float64(len(matches))
	countBonus := math.Min(float64(len(matches)*5), 30)
	score := int(math.Round(strengthSum/n*50 + relevanceSum/n*20 + countBonus))
	if score > 100 {
		score = 100
	}
	if score >= s.warmScore {
		warm = true
	}
	return score, warm
}
