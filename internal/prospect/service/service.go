// Package service implements the prospect matcher: for each target company
// it scans the tenant's contact registry for current employees, name
// matches and alumni, ranks them by connection strength and title
// relevance, and derives the prospect's aggregate connection score.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	contactmodels "warmpath/internal/contact/models"
	"warmpath/internal/normalize"
	prospectmetrics "warmpath/internal/prospect/metrics"
	"warmpath/internal/prospect/models"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/batch"
	"warmpath/pkg/platform/events"
	"warmpath/pkg/platform/sentinel"
	"warmpath/pkg/requestcontext"
)

// Warm-intro rule defaults. A prospect has a warm intro when any single
// match's connection strength reaches the strength threshold, or the
// aggregate connection score reaches the score threshold.
const (
	DefaultWarmStrengthThreshold = 0.7
	DefaultWarmScoreThreshold    = 50
)

// ProspectStore is the prospect repository contract.
type ProspectStore interface {
	Insert(ctx context.Context, p *models.Prospect) error
	Update(ctx context.Context, p *models.Prospect) error
	Get(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) (*models.Prospect, error)
	List(ctx context.Context, tenantID id.TenantID) ([]*models.Prospect, error)
	RecordMatches(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID, matches []models.ConnectionMatch, connectionScore int, hasWarmIntro bool, matchedAt time.Time) error
	Delete(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) error
}

// ContactStore is the read-only registry access the matcher needs.
type ContactStore interface {
	List(ctx context.Context, tenantID id.TenantID) ([]*contactmodels.Contact, error)
}

// Service orchestrates prospect lifecycle and matching.
type Service struct {
	prospects ProspectStore
	contacts  ContactStore
	publisher events.Publisher
	metrics   *prospectmetrics.Metrics
	runner    *batch.Runner
	logger    *slog.Logger
	tracer    trace.Tracer

	warmStrength float64
	warmScore    int
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithPublisher wires an event publisher for match outcomes.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics wires prometheus metrics.
func WithMetrics(m *prospectmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRunner overrides the batch runner.
func WithRunner(r *batch.Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithLogger wires a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithWarmIntroThresholds overrides the warm-intro rule thresholds.
func WithWarmIntroThresholds(strength float64, score int) Option {
	return func(s *Service) {
		if strength > 0 {
			s.warmStrength = strength
		}
		if score > 0 {
			s.warmScore = score
		}
	}
}

func New(prospects ProspectStore, contacts ContactStore, opts ...Option) *Service {
	s := &Service{
		prospects:    prospects,
		contacts:     contacts,
		publisher:    events.NopPublisher{},
		runner:       batch.New(),
		logger:       slog.Default(),
		tracer:       otel.Tracer("warmpath/prospect"),
		warmStrength: DefaultWarmStrengthThreshold,
		warmScore:    DefaultWarmScoreThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProspectInput is the operator-supplied prospect definition.
type CreateProspectInput struct {
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	Industry string `json:"industry"`
	FitScore int    `json:"fit_score"`
}

// CreateProspect registers a target company. The domain is normalized at
// the boundary so matching never sees scheme or www noise.
func (s *Service) CreateProspect(ctx context.Context, tenantID id.TenantID, input CreateProspectInput) (*models.Prospect, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "prospect name is required")
	}
	now := requestcontext.Now(ctx)
	p := &models.Prospect{
		ID:        id.NewProspectID(),
		TenantID:  tenantID,
		Name:      name,
		Domain:    normalize.Domain(input.Domain),
		Industry:  strings.TrimSpace(input.Industry),
		FitScore:  input.FitScore,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.prospects.Insert(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "insert prospect")
	}
	return p, nil
}

// GetProspect returns one prospect with its last regenerated match list.
func (s *Service) GetProspect(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) (*models.Prospect, error) {
	p, err := s.prospects.Get(ctx, tenantID, prospectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "prospect not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "get prospect")
	}
	return p, nil
}

// ListProspects returns every prospect in the tenant, oldest first.
func (s *Service) ListProspects(ctx context.Context, tenantID id.TenantID) ([]*models.Prospect, error) {
	ps, err := s.prospects.List(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list prospects")
	}
	return ps, nil
}

// DeleteProspect removes a prospect and its derived match state.
func (s *Service) DeleteProspect(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) error {
	if err := s.prospects.Delete(ctx, tenantID, prospectID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "prospect not found")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "delete prospect")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		// Event delivery is best-effort; the match state already persisted.
		s.logger.Warn("event publish failed", "type", event.Type, "err", err)
	}
}
