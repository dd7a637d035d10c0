package contactstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"warmpath/internal/contact/models"
	id "warmpath/pkg/domain"
	"warmpath/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the postgres error code for a unique index violation.
const uniqueViolation = "23505"

// PostgresStore persists contacts in PostgreSQL. Work history and
// provenance are stored as JSONB documents; identity uniqueness is enforced
// by partial unique indexes so the merge engine can treat insert conflicts
// as merge signals.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the contacts table and indexes if absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure contacts schema: %w", err)
	}
	return nil
}

const contactColumns = `id, tenant_id, email, linkedin_slug, external_id, name,
	company_name, company_domain, industry, title,
	category, category_confidence, category_source,
	proximity_score, connection_strength,
	emails_in, emails_out, meetings, last_interaction_at,
	work_history, provenance, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, c *models.Contact) error {
	workHistory, provenance, err := marshalDocs(c)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		uuid.UUID(c.ID), uuid.UUID(c.TenantID), c.Email, c.LinkedInSlug, c.ExternalID, c.Name,
		c.CompanyName, c.CompanyDomain, c.Industry, c.Title,
		string(c.Category), c.CategoryConfidence, string(c.CategorySource),
		c.ProximityScore, c.ConnectionStrength,
		c.EmailsIn, c.EmailsOut, c.Meetings, c.LastInteractionAt,
		workHistory, provenance, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert contact: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Contact) error {
	workHistory, provenance, err := marshalDocs(c)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE contacts SET
			email = $3, linkedin_slug = $4, external_id = $5, name = $6,
			company_name = $7, company_domain = $8, industry = $9, title = $10,
			category = $11, category_confidence = $12, category_source = $13,
			proximity_score = $14, connection_strength = $15,
			emails_in = $16, emails_out = $17, meetings = $18, last_interaction_at = $19,
			work_history = $20, provenance = $21, updated_at = $22
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(c.TenantID), uuid.UUID(c.ID),
		c.Email, c.LinkedInSlug, c.ExternalID, c.Name,
		c.CompanyName, c.CompanyDomain, c.Industry, c.Title,
		string(c.Category), c.CategoryConfidence, string(c.CategorySource),
		c.ProximityScore, c.ConnectionStrength,
		c.EmailsIn, c.EmailsOut, c.Meetings, c.LastInteractionAt,
		workHistory, provenance, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) (*models.Contact, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(contactID))
	return scanContact(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, tenantID id.TenantID, email string) (*models.Contact, error) {
	if email == "" {
		return nil, sentinel.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE tenant_id = $1 AND email = $2`,
		uuid.UUID(tenantID), email)
	return scanContact(row)
}

func (s *PostgresStore) FindByLinkedIn(ctx context.Context, tenantID id.TenantID, slug string) (*models.Contact, error) {
	if slug == "" {
		return nil, sentinel.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE tenant_id = $1 AND linkedin_slug = $2`,
		uuid.UUID(tenantID), slug)
	return scanContact(row)
}

func (s *PostgresStore) FindByCompanyDomain(ctx context.Context, tenantID id.TenantID, companyName, domain string) ([]*models.Contact, error) {
	if companyName == "" || domain == "" {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE tenant_id = $1 AND company_name = $2 AND company_domain = $3
		ORDER BY created_at, id`,
		uuid.UUID(tenantID), companyName, domain)
	if err != nil {
		return nil, fmt.Errorf("find by company+domain: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (s *PostgresStore) List(ctx context.Context, tenantID id.TenantID) ([]*models.Contact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE tenant_id = $1
		ORDER BY created_at, id`,
		uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (s *PostgresStore) ReplaceWorkHistory(ctx context.Context, tenantID id.TenantID, contactID id.ContactID, entries []models.WorkHistoryEntry) error {
	doc, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal work history: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE contacts SET work_history = $3
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(contactID), doc)
	if err != nil {
		return fmt.Errorf("replace work history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM contacts WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(contactID))
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func marshalDocs(c *models.Contact) (workHistory, provenance []byte, err error) {
	workHistory, err = json.Marshal(c.WorkHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal work history: %w", err)
	}
	if c.WorkHistory == nil {
		workHistory = []byte("[]")
	}
	provenance, err = json.Marshal(c.Provenance)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal provenance: %w", err)
	}
	if c.Provenance == nil {
		provenance = []byte("{}")
	}
	return workHistory, provenance, nil
}

func scanContact(row pgx.Row) (*models.Contact, error) {
	var (
		c                       models.Contact
		contactID, tenantID     uuid.UUID
		category, source        string
		workHistory, provenance []byte
	)
	err := row.Scan(
		&contactID, &tenantID, &c.Email, &c.LinkedInSlug, &c.ExternalID, &c.Name,
		&c.CompanyName, &c.CompanyDomain, &c.Industry, &c.Title,
		&category, &c.CategoryConfidence, &source,
		&c.ProximityScore, &c.ConnectionStrength,
		&c.EmailsIn, &c.EmailsOut, &c.Meetings, &c.LastInteractionAt,
		&workHistory, &provenance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	c.ID = id.ContactID(contactID)
	c.TenantID = id.TenantID(tenantID)
	c.Category = id.Category(category)
	c.CategorySource = id.CategorySource(source)
	if err := json.Unmarshal(workHistory, &c.WorkHistory); err != nil {
		return nil, fmt.Errorf("unmarshal work history: %w", err)
	}
	if err := json.Unmarshal(provenance, &c.Provenance); err != nil {
		return nil, fmt.Errorf("unmarshal provenance: %w", err)
	}
	return &c, nil
}

func scanContacts(rows pgx.Rows) ([]*models.Contact, error) {
	var out []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}
