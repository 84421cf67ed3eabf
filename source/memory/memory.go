// Package memory provides in-memory source implementations (for testing/dev).
package memory

import (
	"context"
	"sync"

	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/enrich"
	"github.com/warp/pricing-engine/workforce"
)

// =============================================================================
// MEMORY SOURCES - In-memory implementation of every remote capability
// =============================================================================

// Sources holds fixture rows and answers queries the way the remote
// systems would. Each capability can be failed independently via Fail to
// exercise the propagation and best-effort contracts.
type Sources struct {
	mu sync.RWMutex

	Validities       []condition.Validity
	Details          []condition.Detail
	Agreements       []workforce.Agreement
	Employees        []enrich.EmployeeRow
	Projects         []enrich.ProjectRow
	BusinessPartners []enrich.BusinessPartnerRow

	fail map[string]error
}

func New() *Sources {
	return &Sources{fail: make(map[string]error)}
}

// Fail makes the named capability return err on every query. Capability
// names: validity, detail, agreement, employee, project, business-partner.
// A nil err clears the injection.
func (s *Sources) Fail(capability string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, capability)
		return
	}
	s.fail[capability] = err
}

func (s *Sources) failure(capability string) error {
	return s.fail[capability]
}

// =============================================================================
// CONDITION CAPABILITIES
// =============================================================================

func (s *Sources) QueryValidities(_ context.Context, q condition.ValidityQuery) ([]condition.Validity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("validity"); err != nil {
		return nil, err
	}

	var rows []condition.Validity
	for _, v := range s.Validities {
		if !in(v.ConditionType, q.Types) {
			continue
		}
		if len(q.Personnel) > 0 && !in(v.Personnel, q.Personnel) {
			continue
		}
		if len(q.Customers) > 0 && !in(v.Customer, q.Customers) {
			continue
		}
		if len(q.EngagementProjects) > 0 && !in(v.EngagementProject, q.EngagementProjects) {
			continue
		}
		if len(q.Mandantengruppen) > 0 && !in(v.Mandantengruppe, q.Mandantengruppen) {
			continue
		}
		rows = append(rows, v)
	}
	return rows, nil
}

func (s *Sources) QueryDetails(_ context.Context, conditionRecordIDs []string) ([]condition.Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("detail"); err != nil {
		return nil, err
	}

	var rows []condition.Detail
	for _, d := range s.Details {
		if in(d.ConditionRecord, conditionRecordIDs) {
			rows = append(rows, d)
		}
	}
	return rows, nil
}

// =============================================================================
// WORKFORCE CAPABILITY
// =============================================================================

func (s *Sources) QueryByWorkerIDs(_ context.Context, workerIDs []string) ([]workforce.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("agreement"); err != nil {
		return nil, err
	}

	var rows []workforce.Agreement
	for _, a := range s.Agreements {
		if in(a.WorkerID, workerIDs) {
			rows = append(rows, a)
		}
	}
	return rows, nil
}

func (s *Sources) QueryByAgreementIDs(_ context.Context, agreementIDs []string) ([]workforce.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("agreement"); err != nil {
		return nil, err
	}

	var rows []workforce.Agreement
	for _, a := range s.Agreements {
		if in(a.ID, agreementIDs) {
			rows = append(rows, a)
		}
	}
	return rows, nil
}

// =============================================================================
// ENRICHMENT CAPABILITIES
// =============================================================================

func (s *Sources) QueryEmployees(_ context.Context, agreementIDs []string) ([]enrich.EmployeeRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("employee"); err != nil {
		return nil, err
	}

	var rows []enrich.EmployeeRow
	for _, e := range s.Employees {
		if in(e.AgreementID, agreementIDs) {
			rows = append(rows, e)
		}
	}
	return rows, nil
}

func (s *Sources) QueryProjects(_ context.Context, projectIDs []string) ([]enrich.ProjectRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("project"); err != nil {
		return nil, err
	}

	var rows []enrich.ProjectRow
	for _, p := range s.Projects {
		if in(p.ProjectID, projectIDs) {
			rows = append(rows, p)
		}
	}
	return rows, nil
}

func (s *Sources) QueryBusinessPartners(_ context.Context, customerIDs []string) ([]enrich.BusinessPartnerRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("business-partner"); err != nil {
		return nil, err
	}

	var rows []enrich.BusinessPartnerRow
	for _, b := range s.BusinessPartners {
		if in(b.Customer, customerIDs) {
			rows = append(rows, b)
		}
	}
	return rows, nil
}

func in(value string, values []string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
