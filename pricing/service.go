/*
Package pricing aggregates resolved condition records into the two
user-facing views.

PURPOSE:
  Composes the work-agreement resolver, the condition fetcher, and the
  enrichment lookups into:

    WorkerSummary     one row per worker with employee detail and a
                      count of matching conditions
    WorkerConditions  a single worker's conditions, enriched and sorted
                      by price level precedence

REQUEST SHAPING SAFEGUARD:
  WorkerSummary with no filter values returns an empty list immediately,
  without touching any remote source. An unconstrained fan-out over the
  pricing source is never issued on behalf of a blank filter bar.

ROUND-TRIP AVOIDANCE:
  When the request starts from worker ids, the worker<->agreement mapping
  is already known from the forward resolution; the reverse lookup is only
  issued when the request was constrained by other fields.

SEE ALSO:
  - filterexpr: FilterSet consumed by WorkerSummary
  - api/handlers.go: HTTP boundary over this service
*/
package pricing

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/enrich"
	"github.com/warp/pricing-engine/filterexpr"
	"github.com/warp/pricing-engine/workforce"
)

// =============================================================================
// RECOGNIZED FILTER FIELDS
// =============================================================================

const (
	FieldWorkerID          = "WorkerId"
	FieldCustomer          = "Customer"
	FieldEngagementProject = "EngagementProject"
	FieldMandantengruppe   = "Mandantengruppe"
)

// Fields lists every query field the summary view recognizes. Anything
// else in a filter expression is ignored by extraction.
var Fields = []string{FieldWorkerID, FieldCustomer, FieldEngagementProject, FieldMandantengruppe}

// =============================================================================
// VIEW SHAPES
// =============================================================================

// SummaryRow is one worker in the summary view. Personnel is a
// representative work-agreement id (the first one seen for the worker).
type SummaryRow struct {
	WorkerID        string
	Personnel       string
	EmployeeName    string
	CostCenter      string
	CompanyCode     string
	CompanyCodeName string
	ConditionCount  int
}

// DisplayCondition is one row of the per-worker condition list: the
// resolved record plus display enrichment.
type DisplayCondition struct {
	condition.Resolved

	WorkerID     string
	CustomerName string
	// DisplayID identifies what the price level binds to: the project,
	// the customer, or the grouping. Empty for basic conditions.
	DisplayID string
}

// =============================================================================
// SERVICE
// =============================================================================

// Service wires the pipeline together. All fields are required.
type Service struct {
	Agreements *workforce.Resolver
	Conditions *condition.Fetcher
	Lookups    *enrich.Lookups
}

func NewService(agreements *workforce.Resolver, conditions *condition.Fetcher, lookups *enrich.Lookups) *Service {
	return &Service{Agreements: agreements, Conditions: conditions, Lookups: lookups}
}

// ConditionRecords resolves condition records for an explicit filter.
// Exposed for callers that already hold work-agreement ids.
func (s *Service) ConditionRecords(ctx context.Context, filter condition.Filter) ([]condition.Resolved, error) {
	return s.Conditions.Fetch(ctx, filter)
}

// =============================================================================
// WORKER SUMMARY
// =============================================================================

// WorkerSummary produces one row per distinct worker matching the filter
// set. An empty filter set yields an empty list without any remote call.
func (s *Service) WorkerSummary(ctx context.Context, fs filterexpr.FilterSet) ([]SummaryRow, error) {
	if fs.Empty() {
		return []SummaryRow{}, nil
	}

	workerIDs := fs[FieldWorkerID]
	filter := condition.Filter{
		Customers:          fs[FieldCustomer],
		EngagementProjects: fs[FieldEngagementProject],
		Mandantengruppen:   fs[FieldMandantengruppe],
	}

	// Worker ids resolve to agreement ids first; those become the primary
	// fetch constraint. A worker filter that resolves to nothing bounds
	// the query to nothing.
	var agreementsByWorker map[string][]workforce.Agreement
	if len(workerIDs) > 0 {
		var err error
		agreementsByWorker, err = s.Agreements.ResolveMany(ctx, workerIDs)
		if err != nil {
			return nil, condition.Upstream("work-agreement", err)
		}
		for _, workerID := range workerIDs {
			for _, a := range agreementsByWorker[workerID] {
				filter.WorkAgreementIDs = append(filter.WorkAgreementIDs, a.ID)
			}
		}
		if len(filter.WorkAgreementIDs) == 0 {
			return []SummaryRow{}, nil
		}
	}

	records, err := s.Conditions.Fetch(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []SummaryRow{}, nil
	}

	groups := groupByPersonnel(records)
	personnel := make([]string, len(groups))
	for i, g := range groups {
		personnel[i] = g.id
	}

	// Employee detail and personnel->worker ownership are independent
	// reads; issue them concurrently. The ownership read is mandatory
	// when needed, the employee lookup never fails.
	var (
		employees map[string]enrich.EmployeeDetail
		owners    map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		employees = s.Lookups.EmployeeDetails(gctx, personnel)
		return nil
	})
	if len(workerIDs) > 0 {
		owners = ownersFromForwardResolution(agreementsByWorker)
	} else {
		g.Go(func() error {
			var rerr error
			owners, rerr = s.Agreements.ReverseResolve(gctx, personnel)
			if rerr != nil {
				return condition.Upstream("work-agreement", rerr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeSummary(groups, owners, employees, agreementsByWorker), nil
}

type personnelGroup struct {
	id    string
	count int
}

// groupByPersonnel counts records per personnel id, first-seen order.
func groupByPersonnel(records []condition.Resolved) []personnelGroup {
	index := make(map[string]int)
	var groups []personnelGroup
	for _, rec := range records {
		i, ok := index[rec.Personnel]
		if !ok {
			i = len(groups)
			index[rec.Personnel] = i
			groups = append(groups, personnelGroup{id: rec.Personnel})
		}
		groups[i].count++
	}
	return groups
}

func ownersFromForwardResolution(agreementsByWorker map[string][]workforce.Agreement) map[string]string {
	owners := make(map[string]string)
	for workerID, agreements := range agreementsByWorker {
		for _, a := range agreements {
			if _, ok := owners[a.ID]; !ok {
				owners[a.ID] = workerID
			}
		}
	}
	return owners
}

// mergeSummary folds personnel groups into one row per worker. Counts
// accumulate; the first non-empty value wins for every display field.
// Personnel ids whose owning worker cannot be determined produce no row.
func mergeSummary(groups []personnelGroup, owners map[string]string, employees map[string]enrich.EmployeeDetail, agreementsByWorker map[string][]workforce.Agreement) []SummaryRow {
	index := make(map[string]int)
	rows := make([]SummaryRow, 0, len(groups))

	for _, group := range groups {
		workerID, ok := owners[group.id]
		if !ok {
			continue
		}

		i, ok := index[workerID]
		if !ok {
			i = len(index)
			index[workerID] = i
			rows = append(rows, SummaryRow{WorkerID: workerID, Personnel: group.id})
		}
		row := &rows[i]
		row.ConditionCount += group.count

		emp := employees[group.id]
		if row.EmployeeName == "" {
			row.EmployeeName = emp.Name
		}
		if row.CostCenter == "" {
			row.CostCenter = emp.CostCenter
		}
		if row.CompanyCode == "" {
			row.CompanyCode = emp.CompanyCode
		}
		// Company fields from the forward resolution, when we have it.
		for _, a := range agreementsByWorker[workerID] {
			if a.ID != group.id {
				continue
			}
			if row.CompanyCode == "" {
				row.CompanyCode = a.CompanyCode
			}
			if row.CompanyCodeName == "" {
				row.CompanyCodeName = a.CompanyCodeName
			}
			break
		}
	}
	return rows
}

// =============================================================================
// PER-WORKER CONDITION LIST
// =============================================================================

// WorkerConditions resolves all of one worker's conditions, enriched for
// display and sorted by price level precedence. An empty or unknown
// worker id yields an empty list, not an error.
func (s *Service) WorkerConditions(ctx context.Context, workerID string) ([]DisplayCondition, error) {
	if workerID == "" {
		return []DisplayCondition{}, nil
	}

	agreements, err := s.Agreements.ResolveOne(ctx, workerID)
	if err != nil {
		return nil, condition.Upstream("work-agreement", err)
	}
	if len(agreements) == 0 {
		return []DisplayCondition{}, nil
	}

	ids := make([]string, len(agreements))
	for i, a := range agreements {
		ids[i] = a.ID
	}
	records, err := s.Conditions.Fetch(ctx, condition.Filter{WorkAgreementIDs: ids})
	if err != nil {
		return nil, err
	}

	conditions := make([]DisplayCondition, len(records))
	for i, rec := range records {
		conditions[i] = DisplayCondition{Resolved: rec, WorkerID: workerID}
	}

	s.backfillProjectCustomers(ctx, conditions)
	s.attachBusinessPartners(ctx, conditions)
	for i := range conditions {
		conditions[i].DisplayID = displayID(conditions[i])
	}

	// Stable: ties keep remote-fetch order.
	sort.SliceStable(conditions, func(i, j int) bool {
		return conditions[i].PriceLevelOrder < conditions[j].PriceLevelOrder
	})
	return conditions, nil
}

// backfillProjectCustomers fills the customer of project-level conditions
// that arrived without one. A customer set here is final; nothing later in
// the pass overwrites it.
func (s *Service) backfillProjectCustomers(ctx context.Context, conditions []DisplayCondition) {
	var projects []string
	seen := make(map[string]bool)
	for _, c := range conditions {
		if c.PriceLevel == condition.LevelProject && c.Customer == "" && c.EngagementProject != "" && !seen[c.EngagementProject] {
			seen[c.EngagementProject] = true
			projects = append(projects, c.EngagementProject)
		}
	}
	if len(projects) == 0 {
		return
	}

	customers := s.Lookups.ProjectCustomers(ctx, projects)
	for i := range conditions {
		c := &conditions[i]
		if c.PriceLevel == condition.LevelProject && c.Customer == "" {
			c.Customer = customers[c.EngagementProject]
		}
	}
}

// attachBusinessPartners resolves display names and customer groupings
// for every now-known customer. An already-known grouping wins over the
// business-partner value.
func (s *Service) attachBusinessPartners(ctx context.Context, conditions []DisplayCondition) {
	var customers []string
	seen := make(map[string]bool)
	for _, c := range conditions {
		if c.Customer != "" && !seen[c.Customer] {
			seen[c.Customer] = true
			customers = append(customers, c.Customer)
		}
	}
	if len(customers) == 0 {
		return
	}

	partners := s.Lookups.BusinessPartnerDetails(ctx, customers)
	for i := range conditions {
		c := &conditions[i]
		bp, ok := partners[c.Customer]
		if !ok {
			continue
		}
		c.CustomerName = bp.Name
		if c.Mandantengruppe == "" {
			c.Mandantengruppe = bp.Mandantengruppe
		}
	}
}

func displayID(c DisplayCondition) string {
	switch c.PriceLevel {
	case condition.LevelProject:
		return c.EngagementProject
	case condition.LevelCustomer:
		return c.Customer
	case condition.LevelMandantengruppe:
		return c.Mandantengruppe
	default:
		return ""
	}
}
