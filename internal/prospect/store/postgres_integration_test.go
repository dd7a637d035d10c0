//go:build integration

package prospectstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warmpath/internal/prospect/models"
	prospectstore "warmpath/internal/prospect/store"
	id "warmpath/pkg/domain"
	"warmpath/pkg/platform/sentinel"
	"warmpath/pkg/testutil/containers"
)

func TestPostgresStore_ProspectLifecycle(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	store := prospectstore.NewPostgres(pc.Pool)
	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))

	tenant := id.TenantID(uuid.New())
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &models.Prospect{
		ID:        id.NewProspectID(),
		TenantID:  tenant,
		Name:      "Acme",
		Domain:    "acme.com",
		FitScore:  80,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Insert(ctx, p))

	matches := []models.ConnectionMatch{
		{
			ContactID:          id.NewContactID(),
			Reason:             id.MatchReasonDomain,
			IsCurrentEmployee:  true,
			TitleRelevance:     1.0,
			ConnectionStrength: 0.9,
			CombinedScore:      0.94,
		},
	}
	matchedAt := now.Add(time.Minute)
	require.NoError(t, store.RecordMatches(ctx, tenant, p.ID, matches, 65, true, matchedAt))

	got, err := store.Get(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Equal(t, matches, got.Matches)
	assert.Equal(t, 65, got.ConnectionScore)
	assert.True(t, got.HasWarmIntro)
	require.NotNil(t, got.LastMatchedAt)
	assert.True(t, got.LastMatchedAt.Equal(matchedAt))

	// Cross-tenant reads never leak.
	_, err = store.Get(ctx, id.TenantID(uuid.New()), p.ID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Delete(ctx, tenant, p.ID))
	_, err = store.Get(ctx, tenant, p.ID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
