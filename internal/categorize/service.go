// Package categorize assigns each contact a relationship category using an
// ordered rule chain, escalating low-confidence contacts to an external
// classifier whose answers are validated, cached and rate limited.
package categorize

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/time/rate"

	categorizemetrics "warmpath/internal/categorize/metrics"
	"warmpath/internal/contact/models"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/batch"
	"warmpath/pkg/platform/sentinel"
	"warmpath/pkg/requestcontext"
)

const (
	// classifierTimeout bounds one classifier call including retries.
	classifierTimeout = 10 * time.Second
	classifierRetries = 3
	classifierDelay   = 500 * time.Millisecond
	classifierJitter  = 250 * time.Millisecond
)

// defaultLimiter paces classifier calls at one per 500ms. The collaborator
// is a shared vendor endpoint; bursts get throttled server-side anyway.
func defaultLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(500*time.Millisecond), 1)
}

// ContactStore is the registry access the categorizer needs.
type ContactStore interface {
	Get(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) (*models.Contact, error)
	List(ctx context.Context, tenantID id.TenantID) ([]*models.Contact, error)
	Update(ctx context.Context, c *models.Contact) error
}

// Service runs the categorization pipeline.
type Service struct {
	contacts   ContactStore
	firms      *FirmIndex
	classifier Classifier
	cache      *Cache
	limiter    *rate.Limiter
	runner     *batch.Runner
	metrics    *categorizemetrics.Metrics
	logger     *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithClassifier wires the external classifier fallback. Without one,
// contacts the rule chain cannot decide stay uncategorized.
func WithClassifier(c Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

// WithCache wires the categorization memoization cache.
func WithCache(c *Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLimiter overrides the classifier call pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithRunner overrides the batch runner.
func WithRunner(r *batch.Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithMetrics wires prometheus metrics.
func WithMetrics(m *categorizemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger wires a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(contacts ContactStore, firms *FirmIndex, opts ...Option) *Service {
	s := &Service{
		contacts: contacts,
		firms:    firms,
		limiter:  defaultLimiter(),
		runner:   batch.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categorize classifies one contact and persists the result. Manual
// categorizations are never overwritten.
func (s *Service) Categorize(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) (Categorization, error) {
	c, err := s.contacts.Get(ctx, tenantID, contactID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Categorization{}, dErrors.New(dErrors.CodeNotFound, "contact not found")
		}
		return Categorization{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "get contact")
	}
	if c.CategorySource == id.CategorySourceManual {
		return Categorization{
			Category:   c.Category,
			Confidence: c.CategoryConfidence,
			Source:     c.CategorySource,
		}, nil
	}

	result, err := s.categorize(ctx, c)
	if err != nil {
		return Categorization{}, err
	}
	if err := s.persist(ctx, c, result); err != nil {
		return Categorization{}, err
	}
	return result, nil
}

// CategorizeAll classifies every uncategorized contact in the tenant. A
// classifier failure on one contact leaves that contact uncategorized and
// is recorded per item; the rest of the batch proceeds.
func (s *Service) CategorizeAll(ctx context.Context, tenantID id.TenantID) (batch.Result, error) {
	contacts, err := s.contacts.List(ctx, tenantID)
	if err != nil {
		return batch.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "list contacts")
	}

	pending := contacts[:0]
	for _, c := range contacts {
		if c.Category == id.CategoryUncategorized && c.CategorySource != id.CategorySourceManual {
			pending = append(pending, c)
		}
	}
	s.logger.Info("categorizing contacts",
		"tenant_id", tenantID, "pending", len(pending), "total", len(contacts))

	result, err := s.runner.Run(ctx, len(pending), func(ctx context.Context, i int) error {
		c := pending[i]
		categorization, err := s.categorize(ctx, c)
		if err != nil {
			return err
		}
		return s.persist(ctx, c, categorization)
	})
	if err != nil {
		return result, dErrors.Wrap(err, dErrors.CodeUnavailable, "categorization batch cancelled")
	}
	return result, nil
}

// categorize runs the rule chain and falls back to the classifier when the
// chain's confidence is below the accept threshold.
func (s *Service) categorize(ctx context.Context, c *models.Contact) (Categorization, error) {
	result := s.applyRules(c)
	if result.Confidence >= AcceptThreshold {
		if s.metrics != nil {
			s.metrics.RuleAccepted.Inc()
		}
		return result, nil
	}

	if s.classifier == nil {
		// No fallback wired; a low-confidence rule hit is still better
		// than nothing, but never above the threshold.
		return result, nil
	}

	classified, err := s.classifyCached(ctx, c)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ClassifierFailures.Inc()
		}
		s.logger.Warn("classifier failed, contact stays uncategorized",
			"tenant_id", c.TenantID, "contact_id", c.ID, "err", err)
		return Categorization{}, err
	}
	if s.metrics != nil {
		s.metrics.ClassifierAccepted.Inc()
	}
	return classified, nil
}

// classifyCached memoizes classifier answers by title/employer pair.
// Contacts without a usable key call the classifier directly.
func (s *Service) classifyCached(ctx context.Context, c *models.Contact) (Categorization, error) {
	key := Key(c.Title, c.CompanyName)
	if s.cache == nil || key == "" {
		return s.classify(ctx, c)
	}
	return s.cache.GetSet(ctx, key, func(ctx context.Context) (Categorization, error) {
		return s.classify(ctx, c)
	})
}

func (s *Service) classify(ctx context.Context, c *models.Contact) (Categorization, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Categorization{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "classifier rate limiter")
	}

	callCtx, cancel := context.WithTimeout(ctx, classifierTimeout)
	defer cancel()

	start := time.Now()
	history := summarizeWorkHistory(c)
	raw, err := retry.DoWithData(
		func() (*ClassifierResult, error) {
			return s.classifier.Classify(callCtx, c, history)
		},
		retry.Context(callCtx),
		retry.Attempts(classifierRetries),
		retry.Delay(classifierDelay),
		retry.MaxJitter(classifierJitter),
	)
	if s.metrics != nil {
		s.metrics.ObserveClassify(start)
	}
	if err != nil {
		return Categorization{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "classifier call failed")
	}
	return validateClassifierResult(raw)
}

// persist writes the categorization back to the registry, skipping the
// write when nothing changed.
func (s *Service) persist(ctx context.Context, c *models.Contact, result Categorization) error {
	if c.Category == result.Category &&
		c.CategoryConfidence == result.Confidence &&
		c.CategorySource == result.Source {
		return nil
	}
	c.Category = result.Category
	c.CategoryConfidence = result.Confidence
	c.CategorySource = result.Source
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := s.contacts.Update(ctx, c); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "persist categorization")
	}
	return nil
}
