package prospectstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"warmpath/internal/prospect/models"
	id "warmpath/pkg/domain"
	"warmpath/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the postgres error code for a unique index violation.
const uniqueViolation = "23505"

// PostgresStore persists prospects in PostgreSQL. The match list is a JSONB
// document replaced wholesale on every matching run.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the prospects table and indexes if absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure prospects schema: %w", err)
	}
	return nil
}

const prospectColumns = `id, tenant_id, name, domain, industry, fit_score,
	connection_score, has_warm_intro, matches, last_matched_at,
	created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, p *models.Prospect) error {
	matches, err := marshalMatches(p.Matches)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO prospects (`+prospectColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		uuid.UUID(p.ID), uuid.UUID(p.TenantID), p.Name, p.Domain, p.Industry, p.FitScore,
		p.ConnectionScore, p.HasWarmIntro, matches, p.LastMatchedAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert prospect: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert prospect: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Prospect) error {
	matches, err := marshalMatches(p.Matches)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE prospects SET
			name = $3, domain = $4, industry = $5, fit_score = $6,
			connection_score = $7, has_warm_intro = $8, matches = $9,
			last_matched_at = $10, updated_at = $11
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(p.TenantID), uuid.UUID(p.ID),
		p.Name, p.Domain, p.Industry, p.FitScore,
		p.ConnectionScore, p.HasWarmIntro, matches,
		p.LastMatchedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update prospect: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) (*models.Prospect, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+prospectColumns+` FROM prospects
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(prospectID))
	return scanProspect(row)
}

func (s *PostgresStore) List(ctx context.Context, tenantID id.TenantID) ([]*models.Prospect, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+prospectColumns+` FROM prospects
		WHERE tenant_id = $1
		ORDER BY created_at, id`,
		uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	defer rows.Close()
	return scanProspects(rows)
}

// RecordMatches replaces the prospect's derived match state wholesale.
func (s *PostgresStore) RecordMatches(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID, matches []models.ConnectionMatch, connectionScore int, hasWarmIntro bool, matchedAt time.Time) error {
	doc, err := marshalMatches(matches)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE prospects SET
			matches = $3, connection_score = $4, has_warm_intro = $5,
			last_matched_at = $6, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(prospectID),
		doc, connectionScore, hasWarmIntro, matchedAt)
	if err != nil {
		return fmt.Errorf("record matches: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM prospects WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(prospectID))
	if err != nil {
		return fmt.Errorf("delete prospect: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func marshalMatches(matches []models.ConnectionMatch) ([]byte, error) {
	if matches == nil {
		return []byte("[]"), nil
	}
	doc, err := json.Marshal(matches)
	if err != nil {
		return nil, fmt.Errorf("marshal matches: %w", err)
	}
	return doc, nil
}

func scanProspect(row pgx.Row) (*models.Prospect, error) {
	var (
		p                    models.Prospect
		prospectID, tenantID uuid.UUID
		matches              []byte
	)
	err := row.Scan(
		&prospectID, &tenantID, &p.Name, &p.Domain, &p.Industry, &p.FitScore,
		&p.ConnectionScore, &p.HasWarmIntro, &matches, &p.LastMatchedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan prospect: %w", err)
	}
	p.ID = id.ProspectID(prospectID)
	p.TenantID = id.TenantID(tenantID)
	if err := json.Unmarshal(matches, &p.Matches); err != nil {
		return nil, fmt.Errorf("unmarshal matches: %w", err)
	}
	return &p, nil
}

func scanProspects(rows pgx.Rows) ([]*models.Prospect, error) {
	var out []*models.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prospects: %w", err)
	}
	return out, nil
}
