/*
handlers.go - HTTP handlers for the pricing condition API

PURPOSE:
  Exposes the condition resolution pipeline via REST. Handles HTTP
  request/response, JSON, and delegates to the pricing service.

ENDPOINTS:
  Workers:
    GET    /api/workers                  Worker summary (query parameters)
    POST   /api/workers/query            Worker summary (filter-expression tree)
    GET    /api/workers/{id}             Single worker summary (strict, 404)
    GET    /api/workers/{id}/conditions  Worker's conditions, enriched + sorted
    GET    /api/workers/{id}/agreements  Work-agreement resolution (strict, 404)

  Conditions:
    GET    /api/conditions               Raw resolved records by explicit filter

  Admin:
    POST   /api/admin/seed               Reload the demo dataset (local sources)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Missing filters, invalid input
  - 404: Worker not found (strict lookup paths only)
  - 502: A remote source failed
  - 500: Internal errors

  The tolerant list paths never 404: a filter matching nothing is an
  empty list.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - pricing/service.go: The pipeline behind these handlers
*/
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/filterexpr"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/workforce"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service    *pricing.Service
	Agreements *workforce.Resolver
	Log        logrus.FieldLogger

	// Seed reloads the demo dataset. Nil when the selected source has no
	// local seeding path (remote sources).
	Seed func(r *http.Request) error
}

// NewHandler creates a handler over the pricing service.
func NewHandler(service *pricing.Service, agreements *workforce.Resolver) *Handler {
	return &Handler{
		Service:    service,
		Agreements: agreements,
		Log:        logrus.StandardLogger(),
	}
}

// =============================================================================
// WORKER SUMMARY
// =============================================================================

// ListWorkers returns the worker summary for plain query parameters.
// Multi-value fields accept repeated parameters or comma-separated lists.
// GET /api/workers?workerIds=10001,10002&customers=CUST01
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	fs := filterexpr.FilterSet{
		pricing.FieldWorkerID:          queryValues(r, "workerIds", "workerId"),
		pricing.FieldCustomer:          queryValues(r, "customers", "customer"),
		pricing.FieldEngagementProject: queryValues(r, "engagementProjects", "engagementProject"),
		pricing.FieldMandantengruppe:   queryValues(r, "mandantengruppen", "mandantengruppe"),
	}

	rows, err := h.Service.WorkerSummary(r.Context(), fs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTOs(rows))
}

// QueryWorkers returns the worker summary for a filter-expression tree.
// POST /api/workers/query
func (h *Handler) QueryWorkers(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter expression", err)
		return
	}

	fs := filterexpr.Extract(toTokens(req.Filter), pricing.Fields)
	rows, err := h.Service.WorkerSummary(r.Context(), fs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTOs(rows))
}

// GetWorker returns a single worker's summary row. Unlike the list
// endpoints this path is strict: an unknown worker is a 404.
// GET /api/workers/{id}
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rows, err := h.Service.WorkerSummary(r.Context(), filterexpr.FilterSet{
		pricing.FieldWorkerID: {id},
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "Worker not found", &workforce.NotFoundError{WorkerID: id})
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(rows[0]))
}

// =============================================================================
// WORKER CONDITIONS
// =============================================================================

// GetWorkerConditions returns one worker's conditions, enriched and sorted
// by price level precedence. Unknown worker yields an empty list.
// GET /api/workers/{id}/conditions
func (h *Handler) GetWorkerConditions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conditions, err := h.Service.WorkerConditions(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisplayConditionDTOs(conditions))
}

// GetWorkerAgreements resolves a worker's work agreements. Strict
// semantics: blank id is a 400, unknown worker a 404.
// GET /api/workers/{id}/agreements
func (h *Handler) GetWorkerAgreements(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Worker id is required", nil)
		return
	}

	agreements, err := h.Agreements.ResolveOne(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, condition.Upstream("work-agreement", err))
		return
	}
	if len(agreements) == 0 {
		writeError(w, http.StatusNotFound, "Worker not found", &workforce.NotFoundError{WorkerID: id})
		return
	}
	writeJSON(w, http.StatusOK, toAgreementDTOs(agreements))
}

// =============================================================================
// CONDITION RECORDS
// =============================================================================

// ListConditions resolves raw condition records for an explicit filter.
// The singular parameters are the legacy spelling; both forms combine.
// GET /api/conditions?workAgreementIds=WA-0001&customers=CUST01
func (h *Handler) ListConditions(w http.ResponseWriter, r *http.Request) {
	filter := condition.Filter{
		WorkAgreementIDs:   queryValues(r, "workAgreementIds", "workAgreementId"),
		Customers:          queryValues(r, "customers", "customer"),
		EngagementProjects: queryValues(r, "engagementProjects", "engagementProject"),
		Mandantengruppen:   queryValues(r, "mandantengruppen", "mandantengruppe"),
	}

	records, err := h.Service.ConditionRecords(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConditionDTOs(records))
}

// =============================================================================
// ADMIN
// =============================================================================

// SeedDemo reloads the demo dataset into the active source.
// POST /api/admin/seed
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	if h.Seed == nil {
		writeError(w, http.StatusBadRequest, "Seeding is not supported for this source", nil)
		return
	}
	if err := h.Seed(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// =============================================================================
// HELPERS
// =============================================================================

// queryValues gathers a multi-value query parameter. Repeated parameters
// and comma-separated values both work; names are tried in order.
func queryValues(r *http.Request, names ...string) []string {
	values := []string{}
	for _, name := range names {
		for _, raw := range r.URL.Query()[name] {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					values = append(values, v)
				}
			}
		}
	}
	return values
}

// writeServiceError maps the pipeline's error taxonomy onto HTTP status
// codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var notFound *workforce.NotFoundError
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, "Worker not found", err)
	case condition.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case condition.IsUpstream(err):
		h.Log.WithError(err).Warn("upstream source failure")
		writeError(w, http.StatusBadGateway, "A remote source failed", err)
	default:
		h.Log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
