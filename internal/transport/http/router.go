// Package httptransport is the thin HTTP layer. Handlers delegate to
// domain services and own only decoding, tenant scoping, and the JSON
// error envelope.
package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	id "warmpath/pkg/domain"
	dErrors "warmpath/pkg/domain-errors"
	"warmpath/pkg/requestcontext"
)

// tenantHeader scopes every API request. There is no fallback tenant;
// an unscoped request is a client error.
const tenantHeader = "X-Tenant-ID"

// NewRouter wires all endpoints. Health and metrics are unscoped; the API
// requires a tenant header.
func NewRouter(contacts *ContactHandler, prospects *ProspectHandler, health *HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestContext)

	r.Get("/healthz", health.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(tenantScope)
		contacts.Register(r)
		prospects.Register(r)
	})
	return r
}

// requestContext copies transport-level request values into the context
// form services consume.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenantScope requires and parses the tenant header.
func tenantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(tenantHeader)
		if raw == "" {
			writeError(w, dErrors.New(dErrors.CodeInvalidInput, "missing "+tenantHeader+" header"))
			return
		}
		tenantID, err := id.ParseTenantID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := requestcontext.WithTenantID(r.Context(), tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError centralizes domain error translation so every handler returns
// the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	writeJSON(w, statusFor(code), map[string]string{
		"error":   string(code),
		"message": err.Error(),
	})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
