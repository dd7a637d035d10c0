package categorize

import (
	"context"

	"warmpath/internal/contact/models"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
)

//go:generate mockgen -source=classifier.go -destination=mocks/classifier_mock.go -package=mocks Classifier

// Classifier is the external LLM collaborator consulted when the rule
// chain's confidence falls below the accept threshold. Implementations are
// expected to be slow, rate-limited, and occasionally wrong; the service
// validates every response before trusting it.
type Classifier interface {
	Classify(ctx context.Context, contact *models.Contact, workHistory []models.WorkHistoryEntry) (*ClassifierResult, error)
}

// ClassifierResult is the raw collaborator response, unvalidated.
type ClassifierResult struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// workHistorySummaryLimit bounds how much history is sent to the
// classifier prompt.
const workHistorySummaryLimit = 5

// summarizeWorkHistory returns the top entries for the classifier prompt,
// current employment first.
func summarizeWorkHistory(c *models.Contact) []models.WorkHistoryEntry {
	entries := make([]models.WorkHistoryEntry, 0, workHistorySummaryLimit)
	for i := range c.WorkHistory {
		if c.WorkHistory[i].IsCurrent && len(entries) < workHistorySummaryLimit {
			entries = append(entries, c.WorkHistory[i])
		}
	}
	for i := range c.WorkHistory {
		if len(entries) == workHistorySummaryLimit {
			break
		}
		if !c.WorkHistory[i].IsCurrent {
			entries = append(entries, c.WorkHistory[i])
		}
	}
	return entries
}

// validateClassifierResult enforces the strict response schema. A category
// outside the enum or a confidence outside [0,1] rejects the whole
// response; a rejected response is handled exactly like a collaborator
// failure.
func validateClassifierResult(r *ClassifierResult) (Categorization, error) {
	if r == nil {
		return Categorization{}, dErrors.New(dErrors.CodeInvalidInput, "classifier returned no result")
	}
	category, err := id.ParseCategory(r.Category)
	if err != nil {
		return Categorization{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "classifier returned unknown category")
	}
	// The classifier must commit to one of the four real categories;
	// "uncategorized" is the absence of an answer, not an answer.
	if category == id.CategoryUncategorized {
		return Categorization{}, dErrors.New(dErrors.CodeInvalidInput, "classifier returned uncategorized")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return Categorization{}, dErrors.Newf(dErrors.CodeInvalidInput, "classifier confidence %v outside [0,1]", r.Confidence)
	}
	return Categorization{
		Category:   category,
		Confidence: r.Confidence,
		Source:     id.CategorySourceClassifier,
		Reason:     r.Reason,
	}, nil
}
