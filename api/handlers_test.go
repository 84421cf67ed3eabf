/*
handlers_test.go - HTTP boundary tests

Runs requests through the full chi router against demo-seeded in-memory
sources, checking status mapping and JSON shaping.
*/
package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/enrich"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/source/memory"
	"github.com/warp/pricing-engine/workforce"
)

func newTestRouter(t *testing.T, sources *memory.Sources) http.Handler {
	t.Helper()

	resolver := workforce.NewResolver(sources)
	service := pricing.NewService(
		resolver,
		condition.NewFetcher(sources, sources),
		enrich.NewLookups(sources, sources, sources),
	)
	return NewRouter(NewHandler(service, resolver))
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// =============================================================================
// WORKER SUMMARY
// =============================================================================

func TestListWorkersByWorkerID(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN listing workers by id
	rec := doRequest(t, router, http.MethodGet, "/api/workers?workerIds=10001", "")

	// THEN one merged row with the employee detail and full count
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decodeBody[[]SummaryRowDTO](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, "10001", rows[0].WorkerID)
	assert.Equal(t, "Max Mustermann", rows[0].EmployeeName)
	assert.Equal(t, "ACME Corp", rows[0].CompanyCodeName)
	assert.Equal(t, 5, rows[0].ConditionCount)
}

func TestListWorkersWithoutFiltersIsEmpty(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN listing workers with a blank filter bar
	rec := doRequest(t, router, http.MethodGet, "/api/workers", "")

	// THEN an empty list, not an error
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]SummaryRowDTO](t, rec))
}

func TestQueryWorkersWithFilterTree(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN posting a bracketed filter expression
	body := `{"filter":[
		{"group":[
			{"field":"WorkerId","op":"in","values":["10001"]},
			{"connector":"and"},
			{"field":"IgnoredField","op":"eq","value":"x"}
		]}
	]}`
	rec := doRequest(t, router, http.MethodPost, "/api/workers/query", body)

	// THEN the recognized clause drives the query, the rest is ignored
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decodeBody[[]SummaryRowDTO](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, "10001", rows[0].WorkerID)
}

func TestQueryWorkersRejectsMalformedBody(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN posting malformed JSON
	rec := doRequest(t, router, http.MethodPost, "/api/workers/query", "{not json")

	// THEN a 400 with the uniform error body
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid filter expression", decodeBody[ErrorResponse](t, rec).Error)
}

func TestGetWorkerStrictLookup(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN fetching a known worker
	rec := doRequest(t, router, http.MethodGet, "/api/workers/10001", "")

	// THEN the single summary row comes back
	require.Equal(t, http.StatusOK, rec.Code)
	row := decodeBody[SummaryRowDTO](t, rec)
	assert.Equal(t, "10001", row.WorkerID)
	assert.Equal(t, "Max Mustermann", row.EmployeeName)

	// WHEN fetching an unknown worker
	rec = doRequest(t, router, http.MethodGet, "/api/workers/99999", "")

	// THEN the strict path is a 404
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// WORKER CONDITIONS
// =============================================================================

func TestGetWorkerConditionsSortedAndEnriched(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN fetching worker 10001's conditions
	rec := doRequest(t, router, http.MethodGet, "/api/workers/10001/conditions", "")

	// THEN all five records come back in price level order
	require.Equal(t, http.StatusOK, rec.Code)
	conditions := decodeBody[[]ConditionDTO](t, rec)
	require.Len(t, conditions, 5)
	got := make([]string, len(conditions))
	for i, c := range conditions {
		got[i] = c.ConditionRecord
	}
	assert.Equal(t, []string{"CR001", "CR004", "CR005", "CR003", "CR002"}, got)

	// AND the project-level record without a customer is backfilled
	for _, c := range conditions {
		if c.ConditionRecord == "CR004" {
			assert.Equal(t, "CUST04", c.Customer)
			assert.Equal(t, "Customer Four Inc", c.CustomerName)
			assert.Equal(t, "PRJ002", c.DisplayID)
		}
	}
}

func TestGetWorkerConditionsUnknownWorkerIsEmpty(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN fetching an unknown worker's conditions
	rec := doRequest(t, router, http.MethodGet, "/api/workers/99999/conditions", "")

	// THEN the tolerant path answers with an empty list
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]ConditionDTO](t, rec))
}

// =============================================================================
// WORK AGREEMENTS
// =============================================================================

func TestGetWorkerAgreements(t *testing.T) {
	// GIVEN the demo dataset (WA-0001 spans two validity rows)
	router := newTestRouter(t, memory.Demo())

	// WHEN resolving worker 10001's agreements
	rec := doRequest(t, router, http.MethodGet, "/api/workers/10001/agreements", "")

	// THEN duplicates collapse to the two distinct agreements
	require.Equal(t, http.StatusOK, rec.Code)
	agreements := decodeBody[[]AgreementDTO](t, rec)
	require.Len(t, agreements, 2)
	assert.Equal(t, "WA-0001", agreements[0].ID)
	assert.Equal(t, "WA-0002", agreements[1].ID)
}

func TestGetWorkerAgreementsStrictSemantics(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN resolving an unknown worker
	rec := doRequest(t, router, http.MethodGet, "/api/workers/99999/agreements", "")

	// THEN a 404 naming the worker
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Details, "99999")

	// WHEN the id is blank
	rec = doRequest(t, router, http.MethodGet, "/api/workers/%20/agreements", "")

	// THEN a 400
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CONDITION RECORDS
// =============================================================================

func TestListConditionsRequiresAFilter(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN requesting condition records without any filter
	rec := doRequest(t, router, http.MethodGet, "/api/conditions", "")

	// THEN a 400 carrying the required-filter message
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "At least one filter is required")
}

func TestListConditionsLegacySingularParameter(t *testing.T) {
	// GIVEN the demo dataset
	router := newTestRouter(t, memory.Demo())

	// WHEN filtering with the legacy singular spelling
	rec := doRequest(t, router, http.MethodGet, "/api/conditions?customer=CUST02", "")

	// THEN it behaves like the plural form
	require.Equal(t, http.StatusOK, rec.Code)
	records := decodeBody[[]ConditionDTO](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, "CR002", records[0].ConditionRecord)
	assert.Equal(t, "Basic", records[0].PriceLevel)
}

// =============================================================================
// ERROR MAPPING AND ADMIN
// =============================================================================

func TestUpstreamFailureMapsToBadGateway(t *testing.T) {
	// GIVEN a validity source that fails
	sources := memory.Demo()
	sources.Fail("validity", errors.New("connection refused"))
	router := newTestRouter(t, sources)

	// WHEN resolving conditions
	rec := doRequest(t, router, http.MethodGet, "/api/workers?customers=CUST01", "")

	// THEN the failure surfaces as a 502
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "A remote source failed", decodeBody[ErrorResponse](t, rec).Error)
}

func TestSeedDemoEndpoint(t *testing.T) {
	// GIVEN a handler without a seeding path
	sources := memory.Demo()
	resolver := workforce.NewResolver(sources)
	service := pricing.NewService(resolver, condition.NewFetcher(sources, sources), enrich.NewLookups(sources, sources, sources))
	h := NewHandler(service, resolver)
	router := NewRouter(h)

	// WHEN seeding
	rec := doRequest(t, router, http.MethodPost, "/api/admin/seed", "")

	// THEN the request is rejected
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// WHEN a seeding path is wired
	seeded := false
	h.Seed = func(r *http.Request) error {
		seeded = true
		return nil
	}
	rec = doRequest(t, router, http.MethodPost, "/api/admin/seed", "")

	// THEN it runs and reports success
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seeded)
}
