/*
Package filterexpr extracts flat filter values from boolean filter
expressions.

PURPOSE:
  The query layer hands us a flattened boolean expression: a sequence of
  tokens mixing logical connectors ("and"/"or"), bracketed sub-expressions,
  and (field, operator, value) clauses. This package walks that sequence and
  collects the values mentioned for a fixed set of recognized fields into a
  FilterSet.

DESIGN DECISIONS:
  1. Connectors are not distinguished. OR groups come from multi-select
     filter bars and mean "any of these values for this field", which is
     exactly what value collection produces anyway. AND contributes values
     the same way.
  2. Unrecognized fields are skipped, not rejected. New query fields must
     never break extraction.
  3. Values are deduplicated, first occurrence wins, order preserved.

USAGE:
  tree := []filterexpr.Token{
      filterexpr.Eq("WorkerId", "10001"),
      filterexpr.Connector("and"),
      filterexpr.In("Customer", "CUST01", "CUST02"),
  }
  fs := filterexpr.Extract(tree, []string{"WorkerId", "Customer"})
  fs["WorkerId"] // ["10001"]

SEE ALSO:
  - pricing/service.go: Consumes FilterSets built here
  - api/handlers.go: Builds token trees from request query parameters
*/
package filterexpr

// =============================================================================
// TOKEN MODEL - Tagged variant over the flattened expression
// =============================================================================

type Kind int

const (
	// KindConnector is a logical connector ("and", "or") between clauses.
	KindConnector Kind = iota
	// KindGroup is a bracketed sub-expression.
	KindGroup
	// KindClause is a (field, operator, value) comparison.
	KindClause
)

type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
)

// Token is one element of a flattened boolean filter expression.
// Exactly the fields for its Kind are meaningful; the rest stay zero.
type Token struct {
	Kind Kind

	// KindConnector
	Connector string

	// KindGroup
	Children []Token

	// KindClause
	Field  string
	Op     Op
	Value  string   // OpEq
	Values []string // OpIn
}

// Constructors. The query boundary and tests build trees with these.

func Connector(c string) Token { return Token{Kind: KindConnector, Connector: c} }

func Group(children ...Token) Token { return Token{Kind: KindGroup, Children: children} }

func Eq(field, value string) Token {
	return Token{Kind: KindClause, Field: field, Op: OpEq, Value: value}
}

func In(field string, values ...string) Token {
	return Token{Kind: KindClause, Field: field, Op: OpIn, Values: values}
}

// =============================================================================
// FILTER SET - Extraction result
// =============================================================================

// FilterSet maps each recognized field name to its collected values.
// Every recognized field is present as a key, possibly with no values.
type FilterSet map[string][]string

// Empty reports whether no field has any value.
func (fs FilterSet) Empty() bool {
	for _, vals := range fs {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// First returns the first collected value for field, or "".
func (fs FilterSet) First(field string) string {
	if vals := fs[field]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract walks the expression and collects values per recognized field.
// A nil or empty tree yields a FilterSet with all fields mapped to empty
// value lists. Duplicate values are dropped, first occurrence wins.
func Extract(tree []Token, fields []string) FilterSet {
	fs := make(FilterSet, len(fields))
	recognized := make(map[string]bool, len(fields))
	for _, f := range fields {
		fs[f] = []string{}
		recognized[f] = true
	}

	seen := make(map[string]map[string]bool, len(fields))
	collect(tree, recognized, fs, seen)
	return fs
}

// ExtractSingle keeps only the first-seen value per recognized field.
// For contexts where multiplicity is not meaningful (single-key reads).
func ExtractSingle(tree []Token, fields []string) map[string]string {
	fs := Extract(tree, fields)
	single := make(map[string]string, len(fields))
	for _, f := range fields {
		single[f] = fs.First(f)
	}
	return single
}

func collect(tokens []Token, recognized map[string]bool, fs FilterSet, seen map[string]map[string]bool) {
	for _, tok := range tokens {
		switch tok.Kind {
		case KindGroup:
			collect(tok.Children, recognized, fs, seen)
		case KindClause:
			if !recognized[tok.Field] {
				continue
			}
			switch tok.Op {
			case OpEq:
				add(fs, seen, tok.Field, tok.Value)
			case OpIn:
				for _, v := range tok.Values {
					add(fs, seen, tok.Field, v)
				}
			}
		case KindConnector:
			// Connectors carry no values. See package doc for why "or"
			// and "and" are treated identically.
		}
	}
}

func add(fs FilterSet, seen map[string]map[string]bool, field, value string) {
	if value == "" {
		return
	}
	if seen[field] == nil {
		seen[field] = make(map[string]bool)
	}
	if seen[field][value] {
		return
	}
	seen[field][value] = true
	fs[field] = append(fs[field], value)
}
