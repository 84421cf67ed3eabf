/*
Package condition fetches and resolves sales-pricing condition records.

PURPOSE:
  This package contains the core of the pricing pipeline: querying the
  remote condition-validity source, joining validity rows to their record
  details, and deriving the business price level for each record.

KEY CONCEPTS IN THIS FILE (types.go):
  - Validity: A time-bounded assertion that a condition record applies to
    a personnel / customer / project / group combination
  - Detail: The rate side of a condition record (value, currency, table)
  - Resolved: The flattened join of Validity + Detail plus PriceLevel
  - PriceLevel: The specificity tier that decides which rate applies

PRICE LEVEL PRECEDENCE (lower order wins):
  1. Project          PCP0 with an engagement project
  2. Customer         PSP0 with a customer
  3. Mandantengruppe  PSP0 with a customer grouping
  4. Basic            everything else

DESIGN PRINCIPLES:
  1. Precision: Rates use decimal.Decimal, never float64
  2. Request scope: Nothing here is cached or persisted between requests
  3. Two recognized condition types only; the query boundary enforces this

SEE ALSO:
  - fetcher.go: Query orchestration and the validity/detail join
  - errors.go: Error taxonomy for the mandatory fetch path
  - pricing/service.go: Aggregation built on top of this package
*/
package condition

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CONDITION TYPES - The two recognized type codes
// =============================================================================

const (
	// TypeProject marks project-rate condition records.
	TypeProject = "PCP0"
	// TypeStandard marks standard-rate condition records
	// (customer, grouping, or basic level).
	TypeStandard = "PSP0"
)

// Types lists every condition type the pipeline recognizes. The validity
// query is always restricted to these; other types never enter the system.
var Types = []string{TypeProject, TypeStandard}

// =============================================================================
// PRICE LEVEL
// =============================================================================

type PriceLevel string

const (
	LevelProject         PriceLevel = "Project"
	LevelCustomer        PriceLevel = "Customer"
	LevelMandantengruppe PriceLevel = "Mandantengruppe"
	LevelBasic           PriceLevel = "Basic"
)

// Order returns the sort rank of the level. Lower is more specific and
// takes precedence.
func (l PriceLevel) Order() int {
	switch l {
	case LevelProject:
		return 1
	case LevelCustomer:
		return 2
	case LevelMandantengruppe:
		return 3
	default:
		return 4
	}
}

// DerivePriceLevel classifies a condition record. Strict decision order,
// first match wins: a PCP0 record with a project resolves to Project even
// when a customer is also populated.
func DerivePriceLevel(conditionType, customer, engagementProject, mandantengruppe string) PriceLevel {
	if conditionType == TypeProject && engagementProject != "" {
		return LevelProject
	}
	if conditionType == TypeStandard && customer != "" {
		return LevelCustomer
	}
	if conditionType == TypeStandard && mandantengruppe != "" {
		return LevelMandantengruppe
	}
	return LevelBasic
}

// =============================================================================
// RECORD SHAPES
// =============================================================================

// Validity is one row from the condition-validity source. Dates are ISO
// calendar dates (YYYY-MM-DD) passed through unparsed; the pipeline only
// displays them.
type Validity struct {
	ConditionRecord   string
	ConditionType     string
	Personnel         string
	Customer          string
	EngagementProject string
	Mandantengruppe   string
	ValidFrom         string
	ValidTo           string
}

// Detail is the rate side of a condition record, one row from the
// condition-detail source.
type Detail struct {
	ConditionRecord  string
	SequentialNumber string
	ConditionTable   string
	RateValue        decimal.NullDecimal
	RateUnit         string
	Currency         string
	QuantityUnit     string
}

// Resolved is the flattened join of a Validity with its Detail, plus the
// derived price level. A validity with no matching detail keeps zero-value
// detail fields; it is never dropped.
type Resolved struct {
	ConditionRecord   string
	ConditionTable    string
	ConditionType     string
	ValidFrom         string
	ValidTo           string
	RateValue         decimal.NullDecimal
	RateUnit          string
	Currency          string
	QuantityUnit      string
	Personnel         string
	Customer          string
	EngagementProject string
	Mandantengruppe   string
	PriceLevel        PriceLevel
	PriceLevelOrder   int
}
