package memory

import (
	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/enrich"
	"github.com/warp/pricing-engine/workforce"
)

// Demo returns sources preloaded with the canonical demo dataset: three
// workers, five condition records covering every price level, and matching
// enrichment rows. The same dataset backs the sqlite seed and the demo
// startup mode, so behavior is identical across source implementations.
func Demo() *Sources {
	s := New()

	s.Agreements = []workforce.Agreement{
		// Worker 10001 holds two agreements; WA-0001 spans two validity periods.
		{ID: "WA-0001", WorkerID: "10001", CompanyCode: "1000", CompanyCodeName: "ACME Corp", Company: "AC", StartDate: "2024-01-01", EndDate: "2024-06-30"},
		{ID: "WA-0001", WorkerID: "10001", CompanyCode: "1000", CompanyCodeName: "ACME Corp", Company: "AC", StartDate: "2024-07-01", EndDate: "2024-12-31"},
		{ID: "WA-0002", WorkerID: "10001", CompanyCode: "2000", CompanyCodeName: "Beta Ltd", Company: "BL", StartDate: "2024-01-01", EndDate: "2024-12-31"},
		{ID: "WA-0010", WorkerID: "10002", CompanyCode: "3000", CompanyCodeName: "Gamma GmbH", Company: "GG", StartDate: "2023-06-01", EndDate: "2024-05-31"},
		{ID: "WA-0003", WorkerID: "10003", CompanyCode: "3000", CompanyCodeName: "Gamma GmbH", Company: "GG", StartDate: "2023-06-01", EndDate: "2024-05-31"},
	}

	s.Validities = []condition.Validity{
		{ConditionRecord: "CR001", ConditionType: condition.TypeProject, Personnel: "WA-0001", Customer: "CUST01", EngagementProject: "PRJ001", ValidFrom: "2024-01-01", ValidTo: "2024-12-31"},
		{ConditionRecord: "CR002", ConditionType: condition.TypeProject, Personnel: "WA-0002", Customer: "CUST02", ValidFrom: "2024-03-01", ValidTo: "2024-12-31"},
		{ConditionRecord: "CR003", ConditionType: condition.TypeStandard, Personnel: "WA-0001", Mandantengruppe: "MG01", ValidFrom: "2024-01-01", ValidTo: "2024-12-31"},
		{ConditionRecord: "CR004", ConditionType: condition.TypeProject, Personnel: "WA-0001", EngagementProject: "PRJ002", ValidFrom: "2024-06-01", ValidTo: "2024-12-31"},
		{ConditionRecord: "CR005", ConditionType: condition.TypeStandard, Personnel: "WA-0001", Customer: "CUST03", ValidFrom: "2024-01-01", ValidTo: "2024-12-31"},
	}

	s.Details = []condition.Detail{
		{ConditionRecord: "CR001", SequentialNumber: "01", ConditionTable: "304", RateValue: rate("100"), RateUnit: "EUR", Currency: "EUR", QuantityUnit: "H"},
		{ConditionRecord: "CR002", SequentialNumber: "01", ConditionTable: "304", RateValue: rate("200"), RateUnit: "USD", Currency: "USD", QuantityUnit: "H"},
		{ConditionRecord: "CR003", SequentialNumber: "01", ConditionTable: "305", RateValue: rate("150"), RateUnit: "EUR", Currency: "EUR", QuantityUnit: "H"},
		{ConditionRecord: "CR004", SequentialNumber: "01", ConditionTable: "304", RateValue: rate("120"), RateUnit: "EUR", Currency: "EUR", QuantityUnit: "H"},
		{ConditionRecord: "CR005", SequentialNumber: "01", ConditionTable: "305", RateValue: rate("180"), RateUnit: "EUR", Currency: "EUR", QuantityUnit: "H"},
	}

	s.Employees = []enrich.EmployeeRow{
		{AgreementID: "WA-0001", Name: "Max Mustermann", CostCenter: "CC100", CompanyCode: "1000"},
		{AgreementID: "WA-0002", Name: "Max Mustermann", CostCenter: "CC200", CompanyCode: "2000"},
		{AgreementID: "WA-0010", Name: "Erika Musterfrau", CostCenter: "CC300", CompanyCode: "3000"},
	}

	s.Projects = []enrich.ProjectRow{
		{ProjectID: "PRJ001", Customer: "CUST01"},
		{ProjectID: "PRJ002", Customer: "CUST04"},
	}

	s.BusinessPartners = []enrich.BusinessPartnerRow{
		{Customer: "CUST01", Name: "Customer One GmbH", Mandantengruppe: "MG-A"},
		{Customer: "CUST02", Name: "Customer Two AG", Mandantengruppe: "MG-B"},
		{Customer: "CUST03", Name: "Customer Three SE", Mandantengruppe: "MG-C"},
		{Customer: "CUST04", Name: "Customer Four Inc", Mandantengruppe: "MG-D"},
	}

	return s
}

func rate(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
