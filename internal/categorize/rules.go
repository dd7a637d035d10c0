package categorize

import (
	"fmt"
	"regexp"

	"warmpath/internal/contact/models"
	id "warmpath/pkg/domain"
)

// Categorization is the outcome of classifying one contact.
type Categorization struct {
	Category   id.Category       `json:"category"`
	Confidence float64           `json:"confidence"`
	Source     id.CategorySource `json:"source"`
	Reason     string            `json:"reason,omitempty"`
}

// AcceptThreshold is the minimum rule confidence accepted as final. Results
// below it (including the default) are escalated to the external
// classifier.
const AcceptThreshold = 0.7

// Title and industry patterns consulted by the rule chain. Whole-word
// matching where the vocabulary allows it; "trust & safety" style phrases
// are matched loosely because sources spell them a dozen ways.
var (
	vcTitleRe    = regexp.MustCompile(`(?i)\b(general partner|managing partner|venture partner|partner|principal|investor|investment (director|manager|associate))\b`)
	vcIndustryRe = regexp.MustCompile(`(?i)(venture capital|private equity|investment|capital markets)`)
	// Firms named "... Ventures" or "... Capital" are treated as VC
	// experience even when absent from the reference list.
	vcCompanyHintRe = regexp.MustCompile(`(?i)\b(ventures|capital|equity partners)\b`)

	angelTitleRe = regexp.MustCompile(`(?i)\b(angel|investor|board member|board director|advisor|adviser|mentor)\b`)

	execTitleRe    = regexp.MustCompile(`(?i)\b(founder|co-founder|ceo|cto|coo|cfo|chief [a-z]+ officer|president|vp|vice president)\b`)
	techIndustryRe = regexp.MustCompile(`(?i)(software|technology|tech|saas|internet|fintech|financial technology|computer)`)

	trustSafetyRe   = regexp.MustCompile(`(?i)(trust\s*(&|and)\s*safety|fraud|abuse|integrity)`)
	securityTitleRe = regexp.MustCompile(`(?i)\b(security|ciso|infosec|identity)\b`)
	legalTitleRe    = regexp.MustCompile(`(?i)\b(legal|counsel|compliance|privacy|regulatory)\b`)
	productLeadRe   = regexp.MustCompile(`(?i)(head of product|vp[, ]*product|chief product officer|product director|director of product)`)
)

// rule is one link of the ordered chain. It returns ok=false to defer to
// the next rule.
type rule func(c *models.Contact) (Categorization, bool)

func (s *Service) ruleChain() []rule {
	return []rule{
		s.vcRule,
		s.angelRule,
		s.startupExecRule,
		s.salesTargetRule,
	}
}

// applyRules walks the chain. Short-circuits at the first rule that fires;
// falls through to the uncategorized default with zero confidence.
func (s *Service) applyRules(c *models.Contact) Categorization {
	for _, r := range s.ruleChain() {
		if result, ok := r(c); ok {
			result.Source = id.CategorySourceRule
			return result
		}
	}
	return Categorization{
		Category: id.CategoryUncategorized,
		Source:   id.CategorySourceRule,
	}
}

func (s *Service) vcRule(c *models.Contact) (Categorization, bool) {
	if firm := s.firms.Lookup(c.CompanyName); firm != nil {
		return Categorization{
			Category:   id.CategoryVC,
			Confidence: 0.95,
			Reason:     fmt.Sprintf("current employer matches known firm %s", firm.Name),
		}, true
	}

	hasVCHistory := false
	for i := range c.WorkHistory {
		entry := &c.WorkHistory[i]
		if s.firms.Lookup(entry.Company) != nil ||
			vcIndustryRe.MatchString(entry.Title) ||
			vcCompanyHintRe.MatchString(entry.Company) {
			hasVCHistory = true
			break
		}
	}
	if hasVCHistory {
		return Categorization{
			Category:   id.CategoryVC,
			Confidence: 0.85,
			Reason:     "work history includes a known VC/PE firm",
		}, true
	}

	if vcTitleRe.MatchString(c.Title) && vcIndustryRe.MatchString(c.Industry) {
		return Categorization{
			Category:   id.CategoryVC,
			Confidence: 0.85,
			Reason:     "investor title in an investment industry",
		}, true
	}
	return Categorization{}, false
}

func (s *Service) angelRule(c *models.Contact) (Categorization, bool) {
	if angelTitleRe.MatchString(c.Title) {
		return Categorization{
			Category:   id.CategoryAngel,
			Confidence: 0.9,
			Reason:     "title indicates investing or advisory activity",
		}, true
	}
	return Categorization{}, false
}

// startupExecRule is a heuristic: senior operators at tech companies often
// angel invest. Confidence stays below the accept threshold so the
// external classifier confirms or overrides.
func (s *Service) startupExecRule(c *models.Contact) (Categorization, bool) {
	if execTitleRe.MatchString(c.Title) && techIndustryRe.MatchString(c.Industry) {
		return Categorization{
			Category:   id.CategoryAngel,
			Confidence: 0.65,
			Reason:     "executive title at a technology company",
		}, true
	}
	return Categorization{}, false
}

func (s *Service) salesTargetRule(c *models.Contact) (Categorization, bool) {
	switch {
	case trustSafetyRe.MatchString(c.Title):
		return Categorization{
			Category:   id.CategorySalesProspect,
			Confidence: 0.85,
			Reason:     "trust and safety leadership",
		}, true
	case securityTitleRe.MatchString(c.Title):
		return Categorization{
			Category:   id.CategorySalesProspect,
			Confidence: 0.8,
			Reason:     "security or identity role",
		}, true
	case legalTitleRe.MatchString(c.Title):
		return Categorization{
			Category:   id.CategorySalesProspect,
			Confidence: 0.75,
			Reason:     "legal or compliance role",
		}, true
	case productLeadRe.MatchString(c.Title):
		return Categorization{
			Category:   id.CategorySalesProspect,
			Confidence: 0.7,
			Reason:     "product leadership role",
		}, true
	}
	return Categorization{}, false
}
