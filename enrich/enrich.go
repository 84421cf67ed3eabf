/*
Package enrich provides the best-effort display enrichment lookups.

PURPOSE:
  Three independent fan-out lookups that add display detail to resolved
  conditions:

    employee          work-agreement id -> name, cost center, company code
    project           project id        -> customer id
    business partner  customer id       -> display name, customer grouping

CONTRACT:
  Enrichment is always optional. Each lookup follows the same shape:

    - empty input: empty map, no remote call
    - remote failure: logged, swallowed, whatever partial map existed is
      returned (typically empty) - NEVER an error to the caller

  Losing enrichment degrades displayed detail; it must never block or fail
  the primary result. This stands in deliberate contrast to the workforce
  and condition packages, whose sources sit on the mandatory path and
  propagate failures.

  Each source still returns (rows, error) like any other capability; the
  swallowing happens here, at the lookup layer, with the failure branch
  reduced to a log line.

SEE ALSO:
  - pricing/service.go: The only consumer
  - source/odata/sources.go: Remote implementations, including the
    date-parameterized employee variant
*/
package enrich

import (
	"context"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// ROW AND DETAIL SHAPES
// =============================================================================

// EmployeeRow is one row from the employee-detail source.
type EmployeeRow struct {
	AgreementID string // PersonWorkAgreement
	Name        string
	CostCenter  string
	CompanyCode string
}

// EmployeeDetail is the per-agreement display detail.
type EmployeeDetail struct {
	Name        string
	CostCenter  string
	CompanyCode string
}

// ProjectRow is one row from the project source.
type ProjectRow struct {
	ProjectID string
	Customer  string
}

// BusinessPartnerRow is one row from the business-partner source.
type BusinessPartnerRow struct {
	Customer        string // BusinessPartner id
	Name            string
	Mandantengruppe string
}

// BusinessPartnerDetail is the per-customer display detail.
type BusinessPartnerDetail struct {
	Name            string
	Mandantengruppe string
}

// =============================================================================
// SOURCE CAPABILITIES
// =============================================================================

type EmployeeSource interface {
	QueryEmployees(ctx context.Context, agreementIDs []string) ([]EmployeeRow, error)
}

type ProjectSource interface {
	QueryProjects(ctx context.Context, projectIDs []string) ([]ProjectRow, error)
}

type BusinessPartnerSource interface {
	QueryBusinessPartners(ctx context.Context, customerIDs []string) ([]BusinessPartnerRow, error)
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Lookups bundles the three enrichment capabilities behind the
// best-effort contract.
type Lookups struct {
	Employees        EmployeeSource
	Projects         ProjectSource
	BusinessPartners BusinessPartnerSource

	Log logrus.FieldLogger // defaults to the logrus standard logger
}

func NewLookups(employees EmployeeSource, projects ProjectSource, partners BusinessPartnerSource) *Lookups {
	return &Lookups{Employees: employees, Projects: projects, BusinessPartners: partners}
}

func (l *Lookups) log() logrus.FieldLogger {
	if l.Log != nil {
		return l.Log
	}
	return logrus.StandardLogger()
}

// EmployeeDetails maps agreement ids to employee display detail.
// First row per agreement wins.
func (l *Lookups) EmployeeDetails(ctx context.Context, agreementIDs []string) map[string]EmployeeDetail {
	result := make(map[string]EmployeeDetail)
	if len(agreementIDs) == 0 {
		return result
	}

	rows, err := l.Employees.QueryEmployees(ctx, agreementIDs)
	if err != nil {
		l.log().WithError(err).WithField("lookup", "employee").
			Warn("enrichment lookup failed, continuing without employee details")
		return result
	}
	for _, row := range rows {
		if _, ok := result[row.AgreementID]; !ok {
			result[row.AgreementID] = EmployeeDetail{
				Name:        row.Name,
				CostCenter:  row.CostCenter,
				CompanyCode: row.CompanyCode,
			}
		}
	}
	return result
}

// ProjectCustomers maps project ids to customer ids. Projects with no
// resolved customer are simply absent; there are no empty entries.
func (l *Lookups) ProjectCustomers(ctx context.Context, projectIDs []string) map[string]string {
	result := make(map[string]string)
	if len(projectIDs) == 0 {
		return result
	}

	rows, err := l.Projects.QueryProjects(ctx, projectIDs)
	if err != nil {
		l.log().WithError(err).WithField("lookup", "project").
			Warn("enrichment lookup failed, continuing without project customers")
		return result
	}
	for _, row := range rows {
		if row.ProjectID != "" && row.Customer != "" {
			result[row.ProjectID] = row.Customer
		}
	}
	return result
}

// BusinessPartnerDetails maps customer ids to business-partner display
// detail. Rows without a customer id are skipped.
func (l *Lookups) BusinessPartnerDetails(ctx context.Context, customerIDs []string) map[string]BusinessPartnerDetail {
	result := make(map[string]BusinessPartnerDetail)
	if len(customerIDs) == 0 {
		return result
	}

	rows, err := l.BusinessPartners.QueryBusinessPartners(ctx, customerIDs)
	if err != nil {
		l.log().WithError(err).WithField("lookup", "business-partner").
			Warn("enrichment lookup failed, continuing without business partner details")
		return result
	}
	for _, row := range rows {
		if row.Customer != "" {
			result[row.Customer] = BusinessPartnerDetail{
				Name:            row.Name,
				Mandantengruppe: row.Mandantengruppe,
			}
		}
	}
	return result
}
