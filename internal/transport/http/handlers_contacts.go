package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"warmpath/internal/categorize"
	"warmpath/internal/contact/models"
	"warmpath/internal/scoring"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/batch"
	"warmpath/pkg/requestcontext"
)

// ingestErrorCap bounds the per-item error list in an ingest response.
const ingestErrorCap = 25

// ContactService is the merge-engine surface the transport needs.
type ContactService interface {
	Ingest(ctx context.Context, tenantID id.TenantID, raw models.RawContact) (*models.MergeOutcome, error)
	GetContact(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) (*models.Contact, error)
	ListContacts(ctx context.Context, tenantID id.TenantID) ([]*models.Contact, error)
	Purge(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) error
	PurgeJunk(ctx context.Context, tenantID id.TenantID) (int, error)
	RefreshWorkHistory(ctx context.Context, tenantID id.TenantID, contactID id.ContactID, entries []models.WorkHistoryEntry) error
}

// ScoringService runs proximity scoring passes.
type ScoringService interface {
	ScoreAll(ctx context.Context, tenantID id.TenantID) (batch.Result, error)
	ScoreEnriched(ctx context.Context, tenantID id.TenantID, team scoring.TeamCompanies) (batch.Result, error)
}

// CategorizeService assigns business categories.
type CategorizeService interface {
	Categorize(ctx context.Context, tenantID id.TenantID, contactID id.ContactID) (categorize.Categorization, error)
	CategorizeAll(ctx context.Context, tenantID id.TenantID) (batch.Result, error)
}

// ContactHandler serves the contact registry endpoints.
type ContactHandler struct {
	contacts    ContactService
	scoring     ScoringService
	categorizer CategorizeService
	// defaultTeam backs scoring requests that omit team_companies.
	defaultTeam []string
}

func NewContactHandler(contacts ContactService, scoring ScoringService, categorizer CategorizeService, defaultTeam []string) *ContactHandler {
	return &ContactHandler{
		contacts:    contacts,
		scoring:     scoring,
		categorizer: categorizer,
		defaultTeam: defaultTeam,
	}
}

func (h *ContactHandler) Register(r chi.Router) {
	r.Post("/ingest", h.handleIngest)
	r.Get("/contacts", h.handleList)
	r.Get("/contacts/{contactID}", h.handleGet)
	r.Delete("/contacts/{contactID}", h.handlePurge)
	r.Put("/contacts/{contactID}/work-history", h.handleRefreshWorkHistory)
	r.Post("/contacts/purge-junk", h.handlePurgeJunk)
	r.Post("/contacts/score", h.handleScore)
	r.Post("/contacts/categorize", h.handleCategorizeAll)
	r.Post("/contacts/{contactID}/categorize", h.handleCategorize)
}

// ingestRequest is the tagged-union ingestion envelope: each known vendor
// shape in its own list, converted to the canonical record at this
// boundary.
type ingestRequest struct {
	Swarm       []models.SwarmRecord       `json:"swarm,omitempty"`
	Enrichment  []models.EnrichmentRecord  `json:"enrichment,omitempty"`
	Spreadsheet []models.SpreadsheetRecord `json:"spreadsheet,omitempty"`
}

type ingestItemError struct {
	Index   int    `json:"index"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

type ingestResponse struct {
	Created  int                    `json:"created"`
	Merged   int                    `json:"merged"`
	Failed   int                    `json:"failed"`
	Outcomes []*models.MergeOutcome `json:"outcomes,omitempty"`
	Errors   []ingestItemError      `json:"errors,omitempty"`
}

// handleIngest runs records through the merge engine in request order.
// Records are processed serially so merge decisions stay deterministic; a
// failed record is recorded and the rest proceed.
func (h *ContactHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	raws := make([]models.RawContact, 0, len(req.Swarm)+len(req.Enrichment)+len(req.Spreadsheet))
	for _, rec := range req.Swarm {
		raws = append(raws, rec.Raw())
	}
	for _, rec := range req.Enrichment {
		raws = append(raws, rec.Raw())
	}
	for _, rec := range req.Spreadsheet {
		raws = append(raws, rec.Raw())
	}
	if len(raws) == 0 {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "no records in request"))
		return
	}

	tenantID := requestcontext.TenantID(r.Context())
	var resp ingestResponse
	for i, raw := range raws {
		outcome, err := h.contacts.Ingest(r.Context(), tenantID, raw)
		if err != nil {
			resp.Failed++
			if len(resp.Errors) < ingestErrorCap {
				resp.Errors = append(resp.Errors, ingestItemError{
					Index:   i,
					Source:  raw.Source.String(),
					Message: err.Error(),
				})
			}
			continue
		}
		if outcome.Created {
			resp.Created++
		} else {
			resp.Merged++
		}
		resp.Outcomes = append(resp.Outcomes, outcome)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ContactHandler) handleList(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.ListContacts(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func (h *ContactHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	contactID, err := id.ParseContactID(chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := h.contacts.GetContact(r.Context(), requestcontext.TenantID(r.Context()), contactID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContactHandler) handlePurge(w http.ResponseWriter, r *http.Request) {
	contactID, err := id.ParseContactID(chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.contacts.Purge(r.Context(), requestcontext.TenantID(r.Context()), contactID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type workHistoryRequest struct {
	WorkHistory []models.WorkHistoryEntry `json:"work_history"`
}

// handleRefreshWorkHistory replaces a contact's work history wholesale from
// a refreshed enrichment payload. An empty list clears the history.
func (h *ContactHandler) handleRefreshWorkHistory(w http.ResponseWriter, r *http.Request) {
	contactID, err := id.ParseContactID(chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req workHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	tenantID := requestcontext.TenantID(r.Context())
	if err := h.contacts.RefreshWorkHistory(r.Context(), tenantID, contactID, req.WorkHistory); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) handlePurgeJunk(w http.ResponseWriter, r *http.Request) {
	purged, err := h.contacts.PurgeJunk(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"purged": purged})
}

type scoreRequest struct {
	// Enriched selects the two-pass run with work-history overlap.
	Enriched bool `json:"enriched"`
	// TeamCompanies overrides the configured team set for this run.
	TeamCompanies []string `json:"team_companies,omitempty"`
}

func (h *ContactHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
			return
		}
	}

	tenantID := requestcontext.TenantID(r.Context())
	var (
		result batch.Result
		err    error
	)
	if req.Enriched {
		team := req.TeamCompanies
		if len(team) == 0 {
			team = h.defaultTeam
		}
		result, err = h.scoring.ScoreEnriched(r.Context(), tenantID, scoring.NewTeamCompanies(team))
	} else {
		result, err = h.scoring.ScoreAll(r.Context(), tenantID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ContactHandler) handleCategorizeAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.categorizer.CategorizeAll(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ContactHandler) handleCategorize(w http.ResponseWriter, r *http.Request) {
	contactID, err := id.ParseContactID(chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.categorizer.Categorize(r.Context(), requestcontext.TenantID(r.Context()), contactID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
