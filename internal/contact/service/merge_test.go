package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warmpath/internal/contact/models"
	contactstore "warmpath/internal/contact/store"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/events"
	"warmpath/pkg/requestcontext"

	"github.com/google/uuid"
)

func testTenant() id.TenantID { return id.TenantID(uuid.New()) }

func swarmRaw() models.RawContact {
	return models.RawContact{
		Source:             id.SourceSwarm,
		ExternalID:         "swarm-1",
		LinkedInURL:        "https://www.linkedin.com/in/jane-doe",
		Name:               "Jane Doe",
		Title:              "Head of Product",
		Company:            "Acme, Inc.",
		ConnectionStrength: 72, // crawler reports 0-100
		EmailsIn:           3,
		EmailsOut:          2,
		Meetings:           1,
	}
}

func TestIngest_NewContact(t *testing.T) {
	store := contactstore.NewInMemory()
	svc := New(store)
	tenant := testTenant()

	outcome, err := svc.Ingest(context.Background(), tenant, swarmRaw())
	require.NoError(t, err)
	assert.True(t, outcome.Created)

	c, err := svc.GetContact(context.Background(), tenant, outcome.ContactID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, "jane-doe", c.LinkedInSlug)
	assert.Equal(t, "acme", c.CompanyName)
	assert.Equal(t, id.CategoryUncategorized, c.Category)
	assert.InDelta(t, 0.72, c.ConnectionStrength, 1e-9)
	assert.Equal(t, id.SourceSwarm, c.Provenance["title"])
}

func TestIngest_Idempotent(t *testing.T) {
	store := contactstore.NewInMemory()
	svc := New(store)
	tenant := testTenant()
	raw := swarmRaw()

	first, err := svc.Ingest(context.Background(), tenant, raw)
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := svc.Ingest(context.Background(), tenant, raw)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.ContactID, second.ContactID)
	assert.Empty(t, second.ChangedFields, "re-merging the same record must not drift")
}

func TestIngest_CandidateOrder(t *testing.T) {
	t.Run("email match wins", func(t *testing.T) {
		store := contactstore.NewInMemory()
		svc := New(store)
		tenant := testTenant()

		seeded, err := svc.Ingest(context.Background(), tenant, models.RawContact{
			Source: id.SourceSpreadsheet,
			Email:  "Jane@Acme.com",
			Name:   "Jane Doe",
		})
		require.NoError(t, err)

		outcome, err := svc.Ingest(context.Background(), tenant, models.RawContact{
			Source: id.SourceEnrichment,
			Email:  "jane@acme.com",
			Name:   "Jane A. Doe",
		})
		require.NoError(t, err)
		assert.False(t, outcome.Created)
		assert.Equal(t, seeded.ContactID, outcome.ContactID)
		assert.Equal(t, models.MatchTypeEmail, outcome.MatchType)
	})

	t.Run("linkedin slug match", func(t *testing.T) {
		store := contactstore.NewInMemory()
		svc := New(store)
		tenant := testTenant()

		seeded, err := svc.Ingest(context.Background(), tenant, swarmRaw())
		require.NoError(t, err)

		outcome, err := svc.Ingest(context.Background(), tenant, models.RawContact{
			Source:      id.SourceEnrichment,
			LinkedInURL: "https://linkedin.com/in/jane-doe/",
			Name:        "Jane Doe",
		})
		require.NoError(t, err)
		assert.Equal(t, seeded.ContactID, outcome.ContactID)
		assert.Equal(t, models.MatchTypeLinkedIn, outcome.MatchType)
	})

	t.Run("company name alone never matches", func(t *testing.T) {
		store := contactstore.NewInMemory()
		svc := New(store)
		tenant := testTenant()

		_, err := svc.Ingest(context.Background(), tenant, models.RawContact{
			Source: id.SourceSpreadsheet, Name: "Jane Doe", Company: "Acme", Domain: "acme.com",
		})
		require.NoError(t, err)

		// Same employer name, no domain: a different person, not a merge.
		outcome, err := svc.Ingest(context.Background(), tenant, models.RawContact{
			Source: id.SourceSpreadsheet, Name: "John Smith", Company: "Acme",
		})
		require.NoError(t, err)
		assert.True(t, outcome.Created)
	})

	t.Run("company plus domain matches", func(t *testing.T) {
		store := contactstore.NewInMemory()
		svc := New(store)
		tenant := testTenant()

		seeded, err := svc.Ingest(context.Background(), tenant, models.RawContact{
			Source: id.SourceSpreadsheet, Name: "Jane Doe", Company: "Acme, Inc.", Domain: "https://www.acme.com",
		})
		require.NoError(t, err)

		outcome, err := svc.Ingest(context.Background(), tenant, models.RawContact{
			Source: id.SourceSpreadsheet, Name: "Jane Doe", Company: "ACME INC", Domain: "acme.com",
		})
		require.NoError(t, err)
		assert.False(t, outcome.Created)
		assert.Equal(t, seeded.ContactID, outcome.ContactID)
		assert.Equal(t, models.MatchTypeCompanyDomain, outcome.MatchType)
	})
}

func TestIngest_MergePolicy(t *testing.T) {
	store := contactstore.NewInMemory()
	svc := New(store)
	tenant := testTenant()
	ctx := context.Background()

	seeded, err := svc.Ingest(ctx, tenant, swarmRaw())
	require.NoError(t, err)

	t.Run("fill if empty keeps existing non-authoritative values", func(t *testing.T) {
		outcome, err := svc.Ingest(ctx, tenant, models.RawContact{
			Source:      id.SourceSpreadsheet,
			LinkedInURL: "https://linkedin.com/in/jane-doe",
			Name:        "J. Doe",
			Title:       "VP Product", // existing title stays: spreadsheet is not authoritative
			Email:       "jane@acme.com",
		})
		require.NoError(t, err)
		assert.Equal(t, seeded.ContactID, outcome.ContactID)
		assert.Contains(t, outcome.ChangedFields, "email")

		c, err := svc.GetContact(ctx, tenant, seeded.ContactID)
		require.NoError(t, err)
		assert.Equal(t, "Head of Product", c.Title)
		assert.Equal(t, "jane@acme.com", c.Email)
		assert.Equal(t, "Jane Doe", c.Name)
	})

	t.Run("authoritative source overwrites", func(t *testing.T) {
		_, err := svc.Ingest(ctx, tenant, models.RawContact{
			Source:      id.SourceEnrichment,
			Email:       "jane@acme.com",
			Name:        "Jane Doe",
			Title:       "Chief Product Officer",
			Industry:    "software",
			WorkHistory: []models.WorkHistoryEntry{{Company: "Acme Inc", IsCurrent: true}},
		})
		require.NoError(t, err)

		c, err := svc.GetContact(ctx, tenant, seeded.ContactID)
		require.NoError(t, err)
		assert.Equal(t, "Chief Product Officer", c.Title)
		assert.Equal(t, id.SourceEnrichment, c.Provenance["title"])
		require.Len(t, c.WorkHistory, 1)
		assert.Equal(t, "acme", c.WorkHistory[0].NormalizedCompany)
	})

	t.Run("connection strength never regresses", func(t *testing.T) {
		_, err := svc.Ingest(ctx, tenant, models.RawContact{
			Source:             id.SourceSwarm,
			LinkedInURL:        "https://linkedin.com/in/jane-doe",
			Name:               "Jane Doe",
			ConnectionStrength: 10, // weaker evidence than the seeded 72
		})
		require.NoError(t, err)

		c, err := svc.GetContact(ctx, tenant, seeded.ContactID)
		require.NoError(t, err)
		assert.InDelta(t, 0.72, c.ConnectionStrength, 1e-9)
	})
}

// Enrichment payloads carry URL-shaped entry domains; both the ingest and
// refresh paths store the canonical form.
func TestWorkHistoryEntryDomainsNormalized(t *testing.T) {
	store := contactstore.NewInMemory()
	svc := New(store)
	tenant := testTenant()
	ctx := context.Background()

	outcome, err := svc.Ingest(ctx, tenant, models.RawContact{
		Source: id.SourceEnrichment,
		Email:  "jane@acme.com",
		Name:   "Jane Doe",
		WorkHistory: []models.WorkHistoryEntry{
			{Company: "Acme Inc", Domain: "https://www.acme.com/", IsCurrent: true},
		},
	})
	require.NoError(t, err)

	c, err := svc.GetContact(ctx, tenant, outcome.ContactID)
	require.NoError(t, err)
	require.Len(t, c.WorkHistory, 1)
	assert.Equal(t, "acme.com", c.WorkHistory[0].Domain)
	assert.Equal(t, "acme", c.WorkHistory[0].NormalizedCompany)
}

func TestRefreshWorkHistory(t *testing.T) {
	store := contactstore.NewInMemory()
	svc := New(store)
	tenant := testTenant()
	ctx := context.Background()

	outcome, err := svc.Ingest(ctx, tenant, models.RawContact{
		Source:      id.SourceEnrichment,
		Email:       "jane@acme.com",
		Name:        "Jane Doe",
		WorkHistory: []models.WorkHistoryEntry{{Company: "Old Employer", IsCurrent: true}},
	})
	require.NoError(t, err)

	err = svc.RefreshWorkHistory(ctx, tenant, outcome.ContactID, []models.WorkHistoryEntry{
		{Company: "Acme Inc", Domain: "www.acme.com", IsCurrent: true},
		{Company: "Globex Corp", IsCurrent: false},
	})
	require.NoError(t, err)

	c, err := svc.GetContact(ctx, tenant, outcome.ContactID)
	require.NoError(t, err)
	require.Len(t, c.WorkHistory, 2, "refresh replaces wholesale, never appends")
	assert.Equal(t, "acme", c.WorkHistory[0].NormalizedCompany)
	assert.Equal(t, "acme.com", c.WorkHistory[0].Domain)
	assert.Equal(t, "globex", c.WorkHistory[1].NormalizedCompany)
}

func TestRefreshWorkHistory_NotFound(t *testing.T) {
	svc := New(contactstore.NewInMemory())

	err := svc.RefreshWorkHistory(context.Background(), testTenant(), id.NewContactID(), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestIngest_IdentitylessRecord(t *testing.T) {
	store := contactstore.NewInMemory()
	svc := New(store)
	tenant := testTenant()

	outcome, err := svc.Ingest(context.Background(), tenant, models.RawContact{
		Source: id.SourceSpreadsheet,
		Name:   "Mystery Person",
	})
	require.NoError(t, err)
	assert.True(t, outcome.Created)

	// A second identical name-only record is a new contact: name is not an
	// identity key.
	second, err := svc.Ingest(context.Background(), tenant, models.RawContact{
		Source: id.SourceSpreadsheet,
		Name:   "Mystery Person",
	})
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.NotEqual(t, outcome.ContactID, second.ContactID)
}

func TestIngest_RejectsEmptyRecord(t *testing.T) {
	svc := New(contactstore.NewInMemory())

	_, err := svc.Ingest(context.Background(), testTenant(), models.RawContact{Source: id.SourceSpreadsheet})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

// conflictOnFirstInsert simulates a concurrent ingestion winning the insert
// race: the first Insert gets a conflict after the rival row appears.
type conflictOnFirstInsert struct {
	ContactStore
	rival    models.RawContact
	tripped  bool
	svc      *Service
	tenantID id.TenantID
}

func (s *conflictOnFirstInsert) Insert(ctx context.Context, c *models.Contact) error {
	if !s.tripped {
		s.tripped = true
		if _, err := s.svc.Ingest(ctx, s.tenantID, s.rival); err != nil {
			return err
		}
	}
	return s.ContactStore.Insert(ctx, c)
}

func TestIngest_ConflictResolvedAsMerge(t *testing.T) {
	mem := contactstore.NewInMemory()
	tenant := testTenant()
	rivalSvc := New(mem)

	racing := &conflictOnFirstInsert{
		ContactStore: mem,
		rival:        swarmRaw(),
		svc:          rivalSvc,
		tenantID:     tenant,
	}
	svc := New(racing)

	outcome, err := svc.Ingest(context.Background(), tenant, swarmRaw())
	require.NoError(t, err, "uniqueness race must resolve as merge, not error")
	assert.False(t, outcome.Created)

	all, err := svc.ListContacts(context.Background(), tenant)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngest_EmitsEvents(t *testing.T) {
	pub := events.NewMemory(0)
	svc := New(contactstore.NewInMemory(), WithPublisher(pub))
	tenant := testTenant()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	_, err := svc.Ingest(ctx, tenant, swarmRaw())
	require.NoError(t, err)

	raw := swarmRaw()
	raw.Email = "jane@acme.com"
	_, err = svc.Ingest(ctx, tenant, raw)
	require.NoError(t, err)

	got := pub.Events()
	require.Len(t, got, 2)
	assert.Equal(t, events.TypeContactCreated, got[0].Type)
	assert.Equal(t, events.TypeContactMerged, got[1].Type)
	assert.Equal(t, now, got[1].Timestamp)
}
