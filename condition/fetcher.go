/*
fetcher.go - Condition record fetch orchestration

PURPOSE:
  Runs the two-step remote read that produces resolved condition records:

    1. Query the validity source for rows matching the filter
       (always restricted to the two recognized condition types)
    2. Batch-query the detail source once for all referenced record ids
    3. Join by record id and derive the price level per row

  Step 2 is a hard requirement, not an optimization detail: the detail
  source is queried at most once per fetch regardless of result size.

FILTER SEMANTICS:
  Non-empty collections combine with AND against the validity query.
  Within one collection, values combine with "in" (OR). An entirely empty
  filter is rejected with ErrNoFilter.

FAILURE SEMANTICS:
  Both remote calls are on the mandatory path. Failures are wrapped as
  UpstreamError and propagate to the caller; there is no retry and no
  degradation here.

SEE ALSO:
  - types.go: Row shapes and price level derivation
  - source/odata, source/sqlite, source/memory: Source implementations
*/
package condition

import "context"

// =============================================================================
// SOURCE CAPABILITIES
// =============================================================================

// ValidityQuery restricts a validity source read. Types is always set by
// the fetcher; the remaining collections are optional AND constraints,
// each matched with "in" semantics.
type ValidityQuery struct {
	Types              []string
	Personnel          []string
	Customers          []string
	EngagementProjects []string
	Mandantengruppen   []string
}

// ValiditySource is the remote pricing-condition validity capability.
type ValiditySource interface {
	QueryValidities(ctx context.Context, q ValidityQuery) ([]Validity, error)
}

// DetailSource is the remote condition-record detail capability.
type DetailSource interface {
	QueryDetails(ctx context.Context, conditionRecordIDs []string) ([]Detail, error)
}

// =============================================================================
// FILTER
// =============================================================================

// Filter bounds a fetch. At least one collection must be non-empty.
type Filter struct {
	WorkAgreementIDs   []string
	Customers          []string
	EngagementProjects []string
	Mandantengruppen   []string
}

// Empty reports whether no constraint is present.
func (f Filter) Empty() bool {
	return len(f.WorkAgreementIDs) == 0 &&
		len(f.Customers) == 0 &&
		len(f.EngagementProjects) == 0 &&
		len(f.Mandantengruppen) == 0
}

// =============================================================================
// FETCHER
// =============================================================================

// Fetcher resolves condition records against a validity and a detail
// source. Zero value is not usable; both sources are required.
type Fetcher struct {
	Validities ValiditySource
	Details    DetailSource
}

func NewFetcher(validities ValiditySource, details DetailSource) *Fetcher {
	return &Fetcher{Validities: validities, Details: details}
}

// Fetch returns the resolved condition records matching the filter.
// An empty result is a valid outcome, not an error.
func (f *Fetcher) Fetch(ctx context.Context, filter Filter) ([]Resolved, error) {
	if filter.Empty() {
		return nil, ErrNoFilter
	}

	validities, err := f.Validities.QueryValidities(ctx, ValidityQuery{
		Types:              Types,
		Personnel:          filter.WorkAgreementIDs,
		Customers:          filter.Customers,
		EngagementProjects: filter.EngagementProjects,
		Mandantengruppen:   filter.Mandantengruppen,
	})
	if err != nil {
		return nil, Upstream("condition-validity", err)
	}
	if len(validities) == 0 {
		return []Resolved{}, nil
	}

	// Distinct record ids, first-seen order, for the single detail read.
	var ids []string
	seen := make(map[string]bool, len(validities))
	for _, v := range validities {
		if !seen[v.ConditionRecord] {
			seen[v.ConditionRecord] = true
			ids = append(ids, v.ConditionRecord)
		}
	}

	details, err := f.Details.QueryDetails(ctx, ids)
	if err != nil {
		return nil, Upstream("condition-detail", err)
	}
	byID := make(map[string]Detail, len(details))
	for _, d := range details {
		byID[d.ConditionRecord] = d
	}

	resolved := make([]Resolved, 0, len(validities))
	for _, v := range validities {
		d := byID[v.ConditionRecord] // zero Detail when absent, row kept
		level := DerivePriceLevel(v.ConditionType, v.Customer, v.EngagementProject, v.Mandantengruppe)
		resolved = append(resolved, Resolved{
			ConditionRecord:   v.ConditionRecord,
			ConditionTable:    d.ConditionTable,
			ConditionType:     v.ConditionType,
			ValidFrom:         v.ValidFrom,
			ValidTo:           v.ValidTo,
			RateValue:         d.RateValue,
			RateUnit:          d.RateUnit,
			Currency:          d.Currency,
			QuantityUnit:      d.QuantityUnit,
			Personnel:         v.Personnel,
			Customer:          v.Customer,
			EngagementProject: v.EngagementProject,
			Mandantengruppe:   v.Mandantengruppe,
			PriceLevel:        level,
			PriceLevelOrder:   level.Order(),
		})
	}
	return resolved, nil
}
