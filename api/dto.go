/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  JSON shapes exchanged with clients. Separate from the domain types so
  the wire format can stay stable while domain types evolve.

CONVENTIONS:
  - camelCase JSON field names
  - Dates are passed through as ISO calendar date strings
  - Rate values serialize as a JSON number, or null when the source
    carried no rate

FILTER EXPRESSION WIRE FORMAT:
  The query endpoint accepts the filter tree as a token list. Each token
  is one of:
    {"connector": "and"}                                  logical connector
    {"group": [ ...tokens ]}                              bracketed sub-expression
    {"field": "WorkerId", "op": "eq", "value": "10001"}   equality clause
    {"field": "Customer", "op": "in", "values": [...]}    membership clause

SEE ALSO:
  - handlers.go: Handlers producing/consuming these DTOs
  - filterexpr: The token model the filter wire format maps onto
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/filterexpr"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/workforce"
)

// =============================================================================
// RESPONSE DTOS
// =============================================================================

// SummaryRowDTO is one worker in the summary view.
type SummaryRowDTO struct {
	WorkerID        string `json:"workerId"`
	Personnel       string `json:"personnel"`
	EmployeeName    string `json:"employeeName"`
	CostCenter      string `json:"costCenter"`
	CompanyCode     string `json:"companyCode"`
	CompanyCodeName string `json:"companyCodeName"`
	ConditionCount  int    `json:"conditionCount"`
}

func toSummaryDTO(row pricing.SummaryRow) SummaryRowDTO {
	return SummaryRowDTO{
		WorkerID:        row.WorkerID,
		Personnel:       row.Personnel,
		EmployeeName:    row.EmployeeName,
		CostCenter:      row.CostCenter,
		CompanyCode:     row.CompanyCode,
		CompanyCodeName: row.CompanyCodeName,
		ConditionCount:  row.ConditionCount,
	}
}

func toSummaryDTOs(rows []pricing.SummaryRow) []SummaryRowDTO {
	dtos := make([]SummaryRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toSummaryDTO(row)
	}
	return dtos
}

// ConditionDTO is one resolved condition record, enriched for display.
type ConditionDTO struct {
	ConditionRecord   string              `json:"conditionRecord"`
	ConditionTable    string              `json:"conditionTable"`
	ConditionType     string              `json:"conditionType"`
	ValidFrom         string              `json:"validFrom"`
	ValidTo           string              `json:"validTo"`
	RateValue         decimal.NullDecimal `json:"rateValue"`
	RateUnit          string              `json:"rateUnit"`
	Currency          string              `json:"currency"`
	QuantityUnit      string              `json:"quantityUnit"`
	Personnel         string              `json:"personnel"`
	Customer          string              `json:"customer"`
	EngagementProject string              `json:"engagementProject"`
	Mandantengruppe   string              `json:"mandantengruppe"`
	PriceLevel        string              `json:"priceLevel"`
	PriceLevelOrder   int                 `json:"priceLevelOrder"`
	WorkerID          string              `json:"workerId,omitempty"`
	CustomerName      string              `json:"customerName,omitempty"`
	DisplayID         string              `json:"displayId,omitempty"`
}

func toConditionDTO(rec condition.Resolved) ConditionDTO {
	return ConditionDTO{
		ConditionRecord:   rec.ConditionRecord,
		ConditionTable:    rec.ConditionTable,
		ConditionType:     rec.ConditionType,
		ValidFrom:         rec.ValidFrom,
		ValidTo:           rec.ValidTo,
		RateValue:         rec.RateValue,
		RateUnit:          rec.RateUnit,
		Currency:          rec.Currency,
		QuantityUnit:      rec.QuantityUnit,
		Personnel:         rec.Personnel,
		Customer:          rec.Customer,
		EngagementProject: rec.EngagementProject,
		Mandantengruppe:   rec.Mandantengruppe,
		PriceLevel:        string(rec.PriceLevel),
		PriceLevelOrder:   rec.PriceLevelOrder,
	}
}

func toConditionDTOs(records []condition.Resolved) []ConditionDTO {
	dtos := make([]ConditionDTO, len(records))
	for i, rec := range records {
		dtos[i] = toConditionDTO(rec)
	}
	return dtos
}

func toDisplayConditionDTOs(conditions []pricing.DisplayCondition) []ConditionDTO {
	dtos := make([]ConditionDTO, len(conditions))
	for i, c := range conditions {
		dto := toConditionDTO(c.Resolved)
		dto.WorkerID = c.WorkerID
		dto.CustomerName = c.CustomerName
		dto.DisplayID = c.DisplayID
		dtos[i] = dto
	}
	return dtos
}

// AgreementDTO is one work-agreement validity row.
type AgreementDTO struct {
	ID              string `json:"id"`
	WorkerID        string `json:"workerId"`
	CompanyCode     string `json:"companyCode"`
	CompanyCodeName string `json:"companyCodeName"`
	Company         string `json:"company"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
}

func toAgreementDTOs(agreements []workforce.Agreement) []AgreementDTO {
	dtos := make([]AgreementDTO, len(agreements))
	for i, a := range agreements {
		dtos[i] = AgreementDTO{
			ID:              a.ID,
			WorkerID:        a.WorkerID,
			CompanyCode:     a.CompanyCode,
			CompanyCodeName: a.CompanyCodeName,
			Company:         a.Company,
			StartDate:       a.StartDate,
			EndDate:         a.EndDate,
		}
	}
	return dtos
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// FILTER TREE WIRE FORMAT
// =============================================================================

// QueryRequest carries a filter-expression tree for the summary query.
type QueryRequest struct {
	Filter []TokenDTO `json:"filter"`
}

// TokenDTO is the wire form of one filter token. Exactly one of
// Connector, Group, or Field identifies the variant.
type TokenDTO struct {
	Connector string     `json:"connector,omitempty"`
	Group     []TokenDTO `json:"group,omitempty"`
	Field     string     `json:"field,omitempty"`
	Op        string     `json:"op,omitempty"`
	Value     string     `json:"value,omitempty"`
	Values    []string   `json:"values,omitempty"`
}

func toTokens(dtos []TokenDTO) []filterexpr.Token {
	tokens := make([]filterexpr.Token, 0, len(dtos))
	for _, dto := range dtos {
		switch {
		case dto.Connector != "":
			tokens = append(tokens, filterexpr.Connector(dto.Connector))
		case dto.Group != nil:
			tokens = append(tokens, filterexpr.Group(toTokens(dto.Group)...))
		case dto.Op == "in" || dto.Values != nil:
			tokens = append(tokens, filterexpr.In(dto.Field, dto.Values...))
		default:
			tokens = append(tokens, filterexpr.Eq(dto.Field, dto.Value))
		}
	}
	return tokens
}
