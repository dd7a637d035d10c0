package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"warmpath/internal/contact/models"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/batch"
	"warmpath/pkg/requestcontext"
)

// ContactStore is the registry access the scorer needs.
type ContactStore interface {
	List(ctx context.Context, tenantID id.TenantID) ([]*models.Contact, error)
	Update(ctx context.Context, c *models.Contact) error
}

// Service runs scoring passes over the registry.
type Service struct {
	contacts ContactStore
	runner   *batch.Runner
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(contacts ContactStore, opts ...Option) *Service {
	s := &Service{
		contacts: contacts,
		runner:   batch.New(),
		logger:   slog.Default(),
		tracer:   otel.Tracer("warmpath/scoring"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures the scoring service.
type Option func(*Service)

// WithRunner overrides the batch runner (concurrency, error cap).
func WithRunner(r *batch.Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithLogger wires a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// ScoreAll runs pass one over every contact in the tenant. Scores are
// always re-derived from raw signals, so any pass-two overlap bonuses
// previously written are regressed until ScoreEnriched runs again.
func (s *Service) ScoreAll(ctx context.Context, tenantID id.TenantID) (batch.Result, error) {
	ctx, span := s.tracer.Start(ctx, "scoring.ScoreAll")
	defer span.End()

	contacts, err := s.contacts.List(ctx, tenantID)
	if err != nil {
		return batch.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "list contacts for scoring")
	}
	now := requestcontext.Now(ctx)

	return s.runner.Run(ctx, len(contacts), func(ctx context.Context, i int) error {
		c := contacts[i]
		score := PassOne(SignalsFor(c, now))
		return s.write(ctx, c, score, now)
	})
}

// ScoreEnriched runs both passes for every contact, layering work-history
// overlap with the supplied team-company set on top of a freshly derived
// pass-one score. Pass two never runs against a stale stored score.
func (s *Service) ScoreEnriched(ctx context.Context, tenantID id.TenantID, team TeamCompanies) (batch.Result, error) {
	ctx, span := s.tracer.Start(ctx, "scoring.ScoreEnriched")
	defer span.End()

	contacts, err := s.contacts.List(ctx, tenantID)
	if err != nil {
		return batch.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "list contacts for scoring")
	}
	now := requestcontext.Now(ctx)

	return s.runner.Run(ctx, len(contacts), func(ctx context.Context, i int) error {
		c := contacts[i]
		passOne := PassOne(SignalsFor(c, now))
		score := PassTwo(passOne, OverlapFor(c, team, now))
		return s.write(ctx, c, score, now)
	})
}

func (s *Service) write(ctx context.Context, c *models.Contact, score int, now time.Time) error {
	if c.ProximityScore == score {
		return nil
	}
	c.ProximityScore = score
	c.UpdatedAt = now
	if err := s.contacts.Update(ctx, c); err != nil {
		return fmt.Errorf("write score for contact %s: %w", c.ID, err)
	}
	return nil
}
