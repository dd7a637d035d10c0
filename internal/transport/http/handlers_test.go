package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warmpath/internal/categorize"
	contactservice "warmpath/internal/contact/service"
	contactstore "warmpath/internal/contact/store"
	prospectservice "warmpath/internal/prospect/service"
	prospectstore "warmpath/internal/prospect/store"
	"warmpath/internal/scoring"
	id "warmpath/pkg/domain"
)

// newTestServer wires the full router over in-memory stores.
func newTestServer(t *testing.T) (*httptest.Server, id.TenantID) {
	t.Helper()

	contacts := contactstore.NewInMemory()
	prospects := prospectstore.NewInMemory()

	firms, err := categorize.LoadKnownFirms("")
	require.NoError(t, err)

	contactSvc := contactservice.New(contacts)
	scoringSvc := scoring.New(contacts)
	categorizeSvc := categorize.New(contacts, firms)
	prospectSvc := prospectservice.New(prospects, contacts)

	router := NewRouter(
		NewContactHandler(contactSvc, scoringSvc, categorizeSvc, nil),
		NewProspectHandler(prospectSvc),
		NewHealthHandler(nil),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, id.TenantID(uuid.New())
}

func doRequest(t *testing.T, srv *httptest.Server, tenant id.TenantID, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, &buf)
	require.NoError(t, err)
	if !tenant.IsNil() {
		req.Header.Set(tenantHeader, tenant.String())
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRouter_RequiresTenantHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doRequest(t, srv, id.TenantID{}, http.MethodGet, "/contacts", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "invalid_input", body["error"])
}

func TestRouter_RejectsMalformedTenant(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/contacts", nil)
	require.NoError(t, err)
	req.Header.Set(tenantHeader, "not-a-uuid")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIngestAndList(t *testing.T) {
	srv, tenant := newTestServer(t)

	resp := doRequest(t, srv, tenant, http.MethodPost, "/ingest", map[string]any{
		"swarm": []map[string]any{
			{
				"profile_id":   "swarm-1",
				"full_name":    "Jane Doe",
				"headline":     "Head of Product",
				"linkedin_url": "https://www.linkedin.com/in/jane-doe",
				"company":      "Acme, Inc.",
				"strength":     72,
			},
		},
		"spreadsheet": []map[string]any{
			{"name": "Ben Okafor", "email": "Ben@Example.COM", "company": "Globex"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ingested := decode[ingestResponse](t, resp)
	assert.Equal(t, 2, ingested.Created)
	assert.Zero(t, ingested.Merged)
	assert.Zero(t, ingested.Failed)

	listResp := doRequest(t, srv, tenant, http.MethodGet, "/contacts", nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	list := decode[map[string]json.RawMessage](t, listResp)
	var contacts []map[string]any
	require.NoError(t, json.Unmarshal(list["contacts"], &contacts))
	assert.Len(t, contacts, 2)
}

func TestRefreshWorkHistoryEndpoint(t *testing.T) {
	srv, tenant := newTestServer(t)

	resp := doRequest(t, srv, tenant, http.MethodPost, "/ingest", map[string]any{
		"spreadsheet": []map[string]any{
			{"name": "Jane Doe", "email": "jane@acme.com"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ingested := decode[ingestResponse](t, resp)
	require.Len(t, ingested.Outcomes, 1)
	contactID := ingested.Outcomes[0].ContactID

	putResp := doRequest(t, srv, tenant, http.MethodPut,
		fmt.Sprintf("/contacts/%s/work-history", contactID), map[string]any{
			"work_history": []map[string]any{
				{"company": "Acme Inc", "domain": "https://www.acme.com", "is_current": true},
			},
		})
	require.Equal(t, http.StatusNoContent, putResp.StatusCode)

	getResp := doRequest(t, srv, tenant, http.MethodGet, "/contacts/"+contactID.String(), nil)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	contact := decode[map[string]json.RawMessage](t, getResp)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(contact["work_history"], &history))
	require.Len(t, history, 1)
	assert.Equal(t, "acme.com", history[0]["domain"])
}

func TestIngest_EmptyBodyRejected(t *testing.T) {
	srv, tenant := newTestServer(t)

	resp := doRequest(t, srv, tenant, http.MethodPost, "/ingest", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIngest_TenantsIsolated(t *testing.T) {
	srv, tenant := newTestServer(t)
	other := id.TenantID(uuid.New())

	resp := doRequest(t, srv, tenant, http.MethodPost, "/ingest", map[string]any{
		"spreadsheet": []map[string]any{
			{"name": "Only Here", "email": "only@example.com"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	listResp := doRequest(t, srv, other, http.MethodGet, "/contacts", nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	list := decode[map[string]json.RawMessage](t, listResp)
	var contacts []map[string]any
	require.NoError(t, json.Unmarshal(list["contacts"], &contacts))
	assert.Empty(t, contacts)
}

func TestGetContact_NotFound(t *testing.T) {
	srv, tenant := newTestServer(t)

	resp := doRequest(t, srv, tenant, http.MethodGet, "/contacts/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScoreEndpoint(t *testing.T) {
	srv, tenant := newTestServer(t)

	resp := doRequest(t, srv, tenant, http.MethodPost, "/ingest", map[string]any{
		"swarm": []map[string]any{
			{"profile_id": "s1", "full_name": "Jane Doe", "linkedin_url": "https://linkedin.com/in/jane", "strength": 80, "emails_in": 4, "emails_out": 4},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	scoreResp := doRequest(t, srv, tenant, http.MethodPost, "/contacts/score", nil)
	require.Equal(t, http.StatusOK, scoreResp.StatusCode)
	result := decode[map[string]any](t, scoreResp)
	assert.Equal(t, float64(1), result["succeeded"])
}

func TestProspectLifecycle(t *testing.T) {
	srv, tenant := newTestServer(t)

	resp := doRequest(t, srv, tenant, http.MethodPost, "/ingest", map[string]any{
		"swarm": []map[string]any{
			{"profile_id": "s1", "full_name": "Casey Nunez", "headline": "Head of Trust & Safety", "linkedin_url": "https://linkedin.com/in/casey", "company": "Acme", "strength": 90},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	createResp := doRequest(t, srv, tenant, http.MethodPost, "/prospects", map[string]any{
		"name":   "Acme",
		"domain": "acme.com",
	})
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	created := decode[map[string]any](t, createResp)
	prospectID, ok := created["id"].(string)
	require.True(t, ok)

	matchResp := doRequest(t, srv, tenant, http.MethodPost, fmt.Sprintf("/prospects/%s/match", prospectID), nil)
	require.Equal(t, http.StatusOK, matchResp.StatusCode)
	matched := decode[map[string]any](t, matchResp)
	assert.Equal(t, true, matched["has_warm_intro"])

	deleteResp := doRequest(t, srv, tenant, http.MethodDelete, "/prospects/"+prospectID, nil)
	assert.Equal(t, http.StatusNoContent, deleteResp.StatusCode)

	getResp := doRequest(t, srv, tenant, http.MethodGet, "/prospects/"+prospectID, nil)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
