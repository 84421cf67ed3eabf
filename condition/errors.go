/*
errors.go - Error taxonomy for the mandatory fetch path

PURPOSE:
  All errors the condition fetcher can surface, in one place. The request
  boundary maps these onto status classes:

    ErrNoFilter    -> 400 (invalid argument)
    UpstreamError  -> 5xx (remote source failed)

  Enrichment lookups are deliberately NOT represented here: they degrade
  internally and never surface an error (see enrich package).

USAGE:
  Callers test with errors.Is / errors.As:

    if errors.Is(err, condition.ErrNoFilter) { ... }
    var ue *condition.UpstreamError
    if errors.As(err, &ue) { log source: ue.Source }

SEE ALSO:
  - workforce/resolver.go: Adds its own NotFound error for worker lookups
  - api/handlers.go: Maps errors to HTTP status codes
*/
package condition

import (
	"errors"
	"fmt"
)

// ErrNoFilter is returned when a fetch is attempted with no filter at all.
// At least one constraint is mandatory to bound the remote query. The
// message text is part of the API contract.
var ErrNoFilter = errors.New("At least one filter is required: workAgreementIds, customers, engagementProjects, or mandantengruppen")

// UpstreamError wraps a failure from a remote source on the mandatory
// path. It propagates unchanged to the request boundary; nothing in the
// pipeline retries or suppresses it.
type UpstreamError struct {
	Source string // which remote capability failed
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError, or passes nil through.
func Upstream(source string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Source: source, Err: err}
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFilter)
}

// IsUpstream returns true if the error originated in a remote source.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
