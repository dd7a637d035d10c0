package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warmpath/internal/contact/models"
	contactstore "warmpath/internal/contact/store"
	id "warmpath/pkg/domain"
	"warmpath/pkg/requestcontext"
)

func seedContact(t *testing.T, store *contactstore.InMemoryStore, tenant id.TenantID, c models.Contact) id.ContactID {
	t.Helper()
	c.ID = id.NewContactID()
	c.TenantID = tenant
	if c.Category == "" {
		c.Category = id.CategoryUncategorized
	}
	require.NoError(t, store.Insert(context.Background(), &c))
	return c.ID
}

func TestScoreAll(t *testing.T) {
	store := contactstore.NewInMemory()
	tenant := id.TenantID(uuid.New())
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	recent := now.AddDate(0, 0, -3)
	strongID := seedContact(t, store, tenant, models.Contact{
		Name:               "Strong Tie",
		Email:              "strong@example.com",
		ConnectionStrength: 0.8,
		EmailsIn:           2, EmailsOut: 1,
		Meetings:          1,
		LastInteractionAt: &recent,
	})
	coldID := seedContact(t, store, tenant, models.Contact{
		Name:  "Cold Lead",
		Email: "cold@example.com",
	})

	svc := New(store)
	result, err := svc.ScoreAll(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	strong, err := store.Get(ctx, tenant, strongID)
	require.NoError(t, err)
	// 0.8*100*0.5=40 + 3 emails*5=15 + 1 meeting*5=5 + recency 10
	assert.Equal(t, 70, strong.ProximityScore)

	cold, err := store.Get(ctx, tenant, coldID)
	require.NoError(t, err)
	assert.Equal(t, 0, cold.ProximityScore)
}

func TestScoreEnriched(t *testing.T) {
	store := contactstore.NewInMemory()
	tenant := id.TenantID(uuid.New())
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	lastYear := now.AddDate(-1, 0, 0)
	contactID := seedContact(t, store, tenant, models.Contact{
		Name:               "Alumni Friend",
		Email:              "alumni@example.com",
		ConnectionStrength: 0.4,
		WorkHistory: []models.WorkHistoryEntry{
			{Company: "Acme Inc", NormalizedCompany: "acme", EndDate: &lastYear},
		},
	})

	svc := New(store)
	team := NewTeamCompanies([]string{"Acme, Inc."})

	result, err := svc.ScoreEnriched(ctx, tenant, team)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)

	c, err := store.Get(ctx, tenant, contactID)
	require.NoError(t, err)
	// pass one 20 + shared company 5 + recent overlap 10
	assert.Equal(t, 35, c.ProximityScore)

	// Re-running pass one alone regresses pass-two bonuses. Accepted
	// limitation: pass one has no enrichment input and always re-derives
	// from raw signals.
	_, err = svc.ScoreAll(ctx, tenant)
	require.NoError(t, err)
	c, err = store.Get(ctx, tenant, contactID)
	require.NoError(t, err)
	assert.Equal(t, 20, c.ProximityScore)
}
