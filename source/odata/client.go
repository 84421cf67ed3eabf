/*
Package odata implements the remote source capabilities over an
OData-flavored HTTP contract.

PURPOSE:
  Every remote collaborator (pricing conditions, work agreements, employee
  details, projects, business partners) speaks the same read dialect:
  entity sets under a service root, $filter with eq/or clauses, $select
  projections, and a {"value": [...]} response envelope. This package owns
  that dialect so the core packages never see HTTP.

FILTER BUILDING:
  $filter strings are assembled by hand. Multi-value matching is an
  or-joined group of eq clauses rather than "in": the parameterized
  employee entity does not support "in" at all, and the or-form works
  uniformly everywhere, so it is used for every source.

SEE ALSO:
  - sources.go: The capability implementations on top of this client
  - cmd/server/main.go: Source selection at startup
*/
package odata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// =============================================================================
// CLIENT
// =============================================================================

// Client is a thin read-only client for one service root.
type Client struct {
	rest *resty.Client
}

func NewClient(baseURL string) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	rest.JSONMarshal = json.Marshal
	rest.JSONUnmarshal = json.Unmarshal
	return &Client{rest: rest}
}

// listEnvelope is the response wrapper every entity set read returns.
type listEnvelope struct {
	Value json.RawMessage `json:"value"`
}

// list reads an entity set into rows. path is relative to the service
// root and already includes any path parameters.
func (c *Client) list(ctx context.Context, path string, query url.Values, rows any) error {
	var envelope listEnvelope
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetResult(&envelope).
		Get(path)
	if err != nil {
		return fmt.Errorf("query %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("query %s: remote returned %s", path, resp.Status())
	}
	if len(envelope.Value) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Value, rows); err != nil {
		return fmt.Errorf("query %s: decode rows: %w", path, err)
	}
	return nil
}

// =============================================================================
// FILTER STRINGS
// =============================================================================

// matchAny builds an equality clause for one value or an or-joined group
// for several. Returns "" for no values, which andAll drops.
func matchAny(field string, values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s eq %s", field, literal(values[0]))
	}
	clauses := make([]string, len(values))
	for i, v := range values {
		clauses[i] = fmt.Sprintf("%s eq %s", field, literal(v))
	}
	return "(" + strings.Join(clauses, " or ") + ")"
}

// andAll joins non-empty clauses with "and".
func andAll(clauses ...string) string {
	var kept []string
	for _, c := range clauses {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " and ")
}

// literal quotes a string literal, doubling embedded single quotes.
func literal(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// dateLiteral renders a key date for parameterized entity paths.
func dateLiteral(t time.Time) string {
	return fmt.Sprintf("datetime'%sT00:00:00'", t.Format("2006-01-02"))
}
