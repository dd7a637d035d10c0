package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"warmpath/internal/prospect/models"
	prospectservice "warmpath/internal/prospect/service"
	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/platform/batch"
	"warmpath/pkg/requestcontext"
)

// ProspectService is the matcher surface the transport needs.
type ProspectService interface {
	CreateProspect(ctx context.Context, tenantID id.TenantID, input prospectservice.CreateProspectInput) (*models.Prospect, error)
	GetProspect(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) (*models.Prospect, error)
	ListProspects(ctx context.Context, tenantID id.TenantID) ([]*models.Prospect, error)
	DeleteProspect(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) error
	MatchProspect(ctx context.Context, tenantID id.TenantID, prospectID id.ProspectID) (*models.Prospect, error)
	MatchAll(ctx context.Context, tenantID id.TenantID) (batch.Result, error)
}

// ProspectHandler serves the prospect endpoints.
type ProspectHandler struct {
	prospects ProspectService
}

func NewProspectHandler(prospects ProspectService) *ProspectHandler {
	return &ProspectHandler{prospects: prospects}
}

func (h *ProspectHandler) Register(r chi.Router) {
	r.Post("/prospects", h.handleCreate)
	r.Get("/prospects", h.handleList)
	r.Get("/prospects/{prospectID}", h.handleGet)
	r.Delete("/prospects/{prospectID}", h.handleDelete)
	r.Post("/prospects/{prospectID}/match", h.handleMatch)
	r.Post("/prospects/match-all", h.handleMatchAll)
}

func (h *ProspectHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input prospectservice.CreateProspectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	p, err := h.prospects.CreateProspect(r.Context(), requestcontext.TenantID(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProspectHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ps, err := h.prospects.ListProspects(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prospects": ps})
}

func (h *ProspectHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	prospectID, err := id.ParseProspectID(chi.URLParam(r, "prospectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.prospects.GetProspect(r.Context(), requestcontext.TenantID(r.Context()), prospectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProspectHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	prospectID, err := id.ParseProspectID(chi.URLParam(r, "prospectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.prospects.DeleteProspect(r.Context(), requestcontext.TenantID(r.Context()), prospectID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProspectHandler) handleMatch(w http.ResponseWriter, r *http.Request) {
	prospectID, err := id.ParseProspectID(chi.URLParam(r, "prospectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.prospects.MatchProspect(r.Context(), requestcontext.TenantID(r.Context()), prospectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProspectHandler) handleMatchAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.prospects.MatchAll(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
