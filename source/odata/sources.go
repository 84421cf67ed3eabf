/*
sources.go - Remote capability implementations

ENTITY SETS:
  A_SlsPrcgCndnRecdValidity    condition validities
  A_SlsPrcgConditionRecord     condition record details
  YY1_RSM_WORKAGRMNT_VAL_IE    work agreement validity rows
  YY1_TT_PERSONWORKAGREEMENT   employee details (date-parameterized)
  ProjectSet                   project -> customer
  A_BusinessPartner            business partner master data

The employee entity is parameterized by key date: the date goes into the
request path, not the filter, and the id filter must be an or-joined
group of eq clauses because the parameterized interface has no "in".
*/
package odata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/enrich"
	"github.com/warp/pricing-engine/workforce"
)

// Sources implements every remote capability against one service root.
// Now is the key-date clock for the parameterized employee read; it
// defaults to time.Now and exists so tests can pin the date.
type Sources struct {
	client *Client
	Now    func() time.Time
}

func New(baseURL string) *Sources {
	return &Sources{client: NewClient(baseURL), Now: time.Now}
}

// =============================================================================
// CONDITION CAPABILITIES
// =============================================================================

type validityRow struct {
	ConditionRecord           string `json:"ConditionRecord"`
	ConditionType             string `json:"ConditionType"`
	Personnel                 string `json:"Personnel"`
	Customer                  string `json:"Customer"`
	EngagementProject         string `json:"EngagementProject"`
	Mandantengruppe           string `json:"YY1_Mandantengruppe_PCI"`
	ConditionValidityStartDte string `json:"ConditionValidityStartDate"`
	ConditionValidityEndDate  string `json:"ConditionValidityEndDate"`
}

func (s *Sources) QueryValidities(ctx context.Context, q condition.ValidityQuery) ([]condition.Validity, error) {
	query := url.Values{}
	query.Set("$filter", andAll(
		matchAny("ConditionType", q.Types),
		matchAny("Personnel", q.Personnel),
		matchAny("Customer", q.Customers),
		matchAny("EngagementProject", q.EngagementProjects),
		matchAny("YY1_Mandantengruppe_PCI", q.Mandantengruppen),
	))

	var rows []validityRow
	if err := s.client.list(ctx, "/A_SlsPrcgCndnRecdValidity", query, &rows); err != nil {
		return nil, err
	}

	validities := make([]condition.Validity, len(rows))
	for i, r := range rows {
		validities[i] = condition.Validity{
			ConditionRecord:   r.ConditionRecord,
			ConditionType:     r.ConditionType,
			Personnel:         r.Personnel,
			Customer:          r.Customer,
			EngagementProject: r.EngagementProject,
			Mandantengruppe:   r.Mandantengruppe,
			ValidFrom:         r.ConditionValidityStartDte,
			ValidTo:           r.ConditionValidityEndDate,
		}
	}
	return validities, nil
}

type detailRow struct {
	ConditionRecord          string              `json:"ConditionRecord"`
	ConditionSequentialNmbr  string              `json:"ConditionSequentialNumber"`
	ConditionTable           string              `json:"ConditionTable"`
	ConditionRateValue       decimal.NullDecimal `json:"ConditionRateValue"`
	ConditionRateValueUnit   string              `json:"ConditionRateValueUnit"`
	ConditionCurrency        string              `json:"ConditionCurrency"`
	ConditionQuantityUnit    string              `json:"ConditionQuantityUnit"`
}

func (s *Sources) QueryDetails(ctx context.Context, conditionRecordIDs []string) ([]condition.Detail, error) {
	query := url.Values{}
	query.Set("$filter", matchAny("ConditionRecord", conditionRecordIDs))

	var rows []detailRow
	if err := s.client.list(ctx, "/A_SlsPrcgConditionRecord", query, &rows); err != nil {
		return nil, err
	}

	details := make([]condition.Detail, len(rows))
	for i, r := range rows {
		details[i] = condition.Detail{
			ConditionRecord:  r.ConditionRecord,
			SequentialNumber: r.ConditionSequentialNmbr,
			ConditionTable:   r.ConditionTable,
			RateValue:        r.ConditionRateValue,
			RateUnit:         r.ConditionRateValueUnit,
			Currency:         r.ConditionCurrency,
			QuantityUnit:     r.ConditionQuantityUnit,
		}
	}
	return details, nil
}

// =============================================================================
// WORKFORCE CAPABILITY
// =============================================================================

type agreementRow struct {
	PersonWorkAgreement       string `json:"PersonWorkAgreement"`
	PersonWorkAgreementExtID  string `json:"PersonWorkAgreementExternalID"`
	CompanyCode               string `json:"CompanyCode"`
	CompanyCodeName           string `json:"CompanyCodeName"`
	Company                   string `json:"Company"`
	StartDate                 string `json:"StartDate"`
	EndDate                   string `json:"EndDate"`
}

func (r agreementRow) agreement() workforce.Agreement {
	return workforce.Agreement{
		ID:              r.PersonWorkAgreement,
		WorkerID:        r.PersonWorkAgreementExtID,
		CompanyCode:     r.CompanyCode,
		CompanyCodeName: r.CompanyCodeName,
		Company:         r.Company,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
	}
}

func (s *Sources) QueryByWorkerIDs(ctx context.Context, workerIDs []string) ([]workforce.Agreement, error) {
	return s.queryAgreements(ctx, matchAny("PersonWorkAgreementExternalID", workerIDs))
}

func (s *Sources) QueryByAgreementIDs(ctx context.Context, agreementIDs []string) ([]workforce.Agreement, error) {
	return s.queryAgreements(ctx, matchAny("PersonWorkAgreement", agreementIDs))
}

func (s *Sources) queryAgreements(ctx context.Context, filter string) ([]workforce.Agreement, error) {
	query := url.Values{}
	query.Set("$filter", filter)

	var rows []agreementRow
	if err := s.client.list(ctx, "/YY1_RSM_WORKAGRMNT_VAL_IE", query, &rows); err != nil {
		return nil, err
	}

	agreements := make([]workforce.Agreement, len(rows))
	for i, r := range rows {
		agreements[i] = r.agreement()
	}
	return agreements, nil
}

// =============================================================================
// ENRICHMENT CAPABILITIES
// =============================================================================

type employeeRow struct {
	PersonWorkAgreement string `json:"PersonWorkAgreement"`
	PersonFullName      string `json:"PersonFullName"`
	CostCenter          string `json:"CostCenter"`
	CompanyCode         string `json:"CompanyCode"`
}

// QueryEmployees reads the date-parameterized employee entity. The key
// date is embedded in the path; ids go into a manually built or-joined
// equality filter.
func (s *Sources) QueryEmployees(ctx context.Context, agreementIDs []string) ([]enrich.EmployeeRow, error) {
	path := fmt.Sprintf("/YY1_TT_PERSONWORKAGREEMENT(P_KeyDate=%s)/Set", dateLiteral(s.Now()))
	query := url.Values{}
	query.Set("$filter", matchAny("PersonWorkAgreement", agreementIDs))

	var rows []employeeRow
	if err := s.client.list(ctx, path, query, &rows); err != nil {
		return nil, err
	}

	employees := make([]enrich.EmployeeRow, len(rows))
	for i, r := range rows {
		employees[i] = enrich.EmployeeRow{
			AgreementID: r.PersonWorkAgreement,
			Name:        r.PersonFullName,
			CostCenter:  r.CostCenter,
			CompanyCode: r.CompanyCode,
		}
	}
	return employees, nil
}

type projectRow struct {
	ProjectID string `json:"ProjectID"`
	Customer  string `json:"Customer"`
}

func (s *Sources) QueryProjects(ctx context.Context, projectIDs []string) ([]enrich.ProjectRow, error) {
	query := url.Values{}
	query.Set("$select", "ProjectID,Customer")
	query.Set("$filter", matchAny("ProjectID", projectIDs))

	var rows []projectRow
	if err := s.client.list(ctx, "/ProjectSet", query, &rows); err != nil {
		return nil, err
	}

	projects := make([]enrich.ProjectRow, len(rows))
	for i, r := range rows {
		projects[i] = enrich.ProjectRow{ProjectID: r.ProjectID, Customer: r.Customer}
	}
	return projects, nil
}

type businessPartnerRow struct {
	BusinessPartner         string `json:"BusinessPartner"`
	BusinessPartnerFullName string `json:"BusinessPartnerFullName"`
	Mandantengruppe         string `json:"YY1_Mandantengruppe2_bus"`
}

func (s *Sources) QueryBusinessPartners(ctx context.Context, customerIDs []string) ([]enrich.BusinessPartnerRow, error) {
	query := url.Values{}
	query.Set("$select", "BusinessPartner,BusinessPartnerFullName,YY1_Mandantengruppe2_bus")
	query.Set("$filter", matchAny("BusinessPartner", customerIDs))

	var rows []businessPartnerRow
	if err := s.client.list(ctx, "/A_BusinessPartner", query, &rows); err != nil {
		return nil, err
	}

	partners := make([]enrich.BusinessPartnerRow, len(rows))
	for i, r := range rows {
		partners[i] = enrich.BusinessPartnerRow{
			Customer:        r.BusinessPartner,
			Name:            r.BusinessPartnerFullName,
			Mandantengruppe: r.Mandantengruppe,
		}
	}
	return partners, nil
}
