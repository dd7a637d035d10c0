// Package service implements the merge engine: it decides whether a raw
// incoming record describes a person already in the registry and either
// inserts a new contact or merges the record into the existing one with
// field-level provenance.
package service

import (
	"context"
	"log/slog"

	contactmetrics "warmpath/internal/contact/metrics"
	"warmpath/internal/contact/models"
	id "warmpath/pkg/domain"
	"warmpath/pkg/platform/events"
)

// ContactStore is the registry repository contract the merge engine needs.
// Every operation is tenant-scoped; stores return pkg/platform/sentinel
// errors which the service translates into coded domain errors.
type ContactStore interface {
	Insert(ctx context.Context, c *models.Contact) error
	Update(ctx context.Context, c *models.Contact) error
	Get(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) (*models.Contact, error)
	FindByEmail(ctx context.Context, tenantID id.TenantID, email string) (*models.Contact, error)
	FindByLinkedIn(ctx context.Context, tenantID id.TenantID, slug string) (*models.Contact, error)
	FindByCompanyDomain(ctx context.Context, tenantID id.TenantID, companyName, domain string) ([]*models.Contact, error)
	List(ctx context.Context, tenantID id.TenantID) ([]*models.Contact, error)
	ReplaceWorkHistory(ctx context.Context, tenantID id.TenantID, contactID id.ContactID, entries []models.WorkHistoryEntry) error
	Delete(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) error
}

// Service orchestrates ingestion and contact lifecycle.
type Service struct {
	contacts  ContactStore
	publisher events.Publisher
	metrics   *contactmetrics.Metrics
	logger    *slog.Logger
}

type serviceConfig struct {
	publisher events.Publisher
	metrics   *contactmetrics.Metrics
	logger    *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*serviceConfig)

// WithPublisher wires an event publisher for merge outcomes.
func WithPublisher(p events.Publisher) Option {
	return func(c *serviceConfig) { c.publisher = p }
}

// WithMetrics wires prometheus metrics.
func WithMetrics(m *contactmetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

// WithLogger wires a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = l }
}

func New(contacts ContactStore, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.publisher == nil {
		cfg.publisher = events.NopPublisher{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		contacts:  contacts,
		publisher: cfg.publisher,
		metrics:   cfg.metrics,
		logger:    cfg.logger,
	}
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		// Event delivery is best-effort; the registry write already happened.
		s.logger.Warn("event publish failed", "type", event.Type, "err", err)
	}
}
