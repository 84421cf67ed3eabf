/*
Package workforce resolves external worker ids to internal work agreements.

PURPOSE:
  The pricing-condition source keys its rows by work-agreement (personnel)
  id, while requests arrive with external worker ids. This package owns the
  mapping in both directions:

    worker id    -> its work agreements (a worker may hold several)
    agreement id -> its owning worker id

DEDUPLICATION:
  The remote source returns one row per validity period, so the same
  agreement can appear several times. Resolution collapses rows to unique
  agreement ids, first occurrence wins, order stable. Resolving the same
  worker twice yields the same set.

FAILURE SEMANTICS:
  This is the mandatory path. Source failures propagate to the caller,
  wrapped as condition.UpstreamError by the call sites that need it.
  Finding nothing is NOT a failure: it is expressed as absence (nil list,
  missing map key), and only the strict single-lookup endpoint turns that
  absence into NotFoundError.

SEE ALSO:
  - pricing/service.go: Uses both directions of the mapping
  - source/odata, source/sqlite, source/memory: Source implementations
*/
package workforce

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// MODEL
// =============================================================================

// Agreement is one employment contract of a worker, as reported by the
// work-agreement source. One row per validity period; uniqueness is by ID.
type Agreement struct {
	ID              string // internal work agreement / personnel id
	WorkerID        string // external worker id
	CompanyCode     string
	CompanyCodeName string
	Company         string
	StartDate       string
	EndDate         string
}

// Source is the remote work-agreement capability, queryable from either
// end of the mapping.
type Source interface {
	QueryByWorkerIDs(ctx context.Context, workerIDs []string) ([]Agreement, error)
	QueryByAgreementIDs(ctx context.Context, agreementIDs []string) ([]Agreement, error)
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrWorkerNotFound is the sentinel for a strict lookup of an unknown
// worker. Bulk-tolerant paths never return it; they express absence.
var ErrWorkerNotFound = errors.New("worker not found")

// NotFoundError names the worker that could not be resolved.
type NotFoundError struct {
	WorkerID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no work agreement found for worker %q", e.WorkerID)
}

func (e *NotFoundError) Unwrap() error { return ErrWorkerNotFound }

// =============================================================================
// RESOLVER
// =============================================================================

type Resolver struct {
	Source Source
}

func NewResolver(source Source) *Resolver {
	return &Resolver{Source: source}
}

// ResolveOne returns the worker's unique agreements in first-seen order,
// or nil (no error) when the worker is unknown.
func (r *Resolver) ResolveOne(ctx context.Context, workerID string) ([]Agreement, error) {
	rows, err := r.Source.QueryByWorkerIDs(ctx, []string{workerID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return dedupe(rows), nil
}

// ResolveMany resolves a batch of worker ids in one source read. Workers
// with no agreements are absent from the result map, they are never mapped
// to an empty list.
func (r *Resolver) ResolveMany(ctx context.Context, workerIDs []string) (map[string][]Agreement, error) {
	if len(workerIDs) == 0 {
		return map[string][]Agreement{}, nil
	}
	rows, err := r.Source.QueryByWorkerIDs(ctx, workerIDs)
	if err != nil {
		return nil, err
	}

	byWorker := make(map[string][]Agreement)
	for _, worker := range groupRows(rows) {
		byWorker[worker.id] = dedupe(worker.rows)
	}
	return byWorker, nil
}

// ReverseResolve maps agreement ids back to their owning worker ids.
// First match wins if the source holds duplicate rows.
func (r *Resolver) ReverseResolve(ctx context.Context, agreementIDs []string) (map[string]string, error) {
	if len(agreementIDs) == 0 {
		return map[string]string{}, nil
	}
	rows, err := r.Source.QueryByAgreementIDs(ctx, agreementIDs)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]string, len(rows))
	for _, row := range rows {
		if _, ok := owners[row.ID]; !ok {
			owners[row.ID] = row.WorkerID
		}
	}
	return owners, nil
}

// dedupe collapses validity-period rows to unique agreement ids,
// first occurrence wins.
func dedupe(rows []Agreement) []Agreement {
	unique := make([]Agreement, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		unique = append(unique, row)
	}
	return unique
}

type workerRows struct {
	id   string
	rows []Agreement
}

// groupRows splits rows per worker while preserving first-seen worker
// order (map iteration alone would not).
func groupRows(rows []Agreement) []workerRows {
	index := make(map[string]int)
	var grouped []workerRows
	for _, row := range rows {
		i, ok := index[row.WorkerID]
		if !ok {
			i = len(grouped)
			index[row.WorkerID] = i
			grouped = append(grouped, workerRows{id: row.WorkerID})
		}
		grouped[i].rows = append(grouped[i].rows, row)
	}
	return grouped
}
