package workforce_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pricing-engine/source/memory"
	"github.com/warp/pricing-engine/workforce"
)

func newResolver() (*workforce.Resolver, *memory.Sources) {
	src := memory.Demo()
	return workforce.NewResolver(src), src
}

func TestResolveOne_DeduplicatesValidityRows(t *testing.T) {
	// GIVEN: Worker 10001 with 3 source rows spanning 2 unique agreements
	// WHEN: Resolving
	// THEN: 2 agreements, first-seen order, first row's fields win

	r, _ := newResolver()

	got, err := r.ResolveOne(context.Background(), "10001")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "WA-0001", got[0].ID)
	assert.Equal(t, "1000", got[0].CompanyCode)
	assert.Equal(t, "ACME Corp", got[0].CompanyCodeName)
	assert.Equal(t, "AC", got[0].Company)
	assert.Equal(t, "2024-01-01", got[0].StartDate)
	assert.Equal(t, "2024-06-30", got[0].EndDate)
	assert.Equal(t, "WA-0002", got[1].ID)
}

func TestResolveOne_Idempotent(t *testing.T) {
	r, _ := newResolver()
	ctx := context.Background()

	first, err := r.ResolveOne(ctx, "10001")
	require.NoError(t, err)
	second, err := r.ResolveOne(ctx, "10001")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveOne_UnknownWorker_NoneNotError(t *testing.T) {
	r, _ := newResolver()

	got, err := r.ResolveOne(context.Background(), "99999")

	assert.NoError(t, err, "absence is not a failure")
	assert.Nil(t, got)
}

func TestResolveOne_SourceFailure_Propagates(t *testing.T) {
	r, src := newResolver()
	boom := errors.New("connection refused")
	src.Fail("agreement", boom)

	_, err := r.ResolveOne(context.Background(), "10001")

	assert.ErrorIs(t, err, boom, "mandatory-path failures are not caught here")
}

func TestResolveMany_AbsentKeyForUnknownWorkers(t *testing.T) {
	// GIVEN: A batch with known and unknown workers
	// WHEN: Resolving
	// THEN: Unknown workers are not keys at all, not empty lists

	r, _ := newResolver()

	got, err := r.ResolveMany(context.Background(), []string{"10001", "99999", "10002"})
	require.NoError(t, err)

	require.Contains(t, got, "10001")
	require.Contains(t, got, "10002")
	_, present := got["99999"]
	assert.False(t, present, "unknown worker must not be a key")

	assert.Len(t, got["10001"], 2)
	assert.Len(t, got["10002"], 1)
	assert.Equal(t, "WA-0010", got["10002"][0].ID)
}

func TestResolveMany_EmptyInput_NoSourceCall(t *testing.T) {
	r, src := newResolver()
	src.Fail("agreement", errors.New("should not be called"))

	got, err := r.ResolveMany(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReverseResolve_MapsAgreementsToOwners(t *testing.T) {
	r, _ := newResolver()

	got, err := r.ReverseResolve(context.Background(), []string{"WA-0001", "WA-0010"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"WA-0001": "10001",
		"WA-0010": "10002",
	}, got)
}

func TestReverseResolve_DuplicateRows_FirstMatchWins(t *testing.T) {
	// WA-0001 has two validity rows upstream; the mapping stays single.
	r, _ := newResolver()

	got, err := r.ReverseResolve(context.Background(), []string{"WA-0001"})
	require.NoError(t, err)

	assert.Equal(t, "10001", got["WA-0001"])
	assert.Len(t, got, 1)
}

func TestNotFoundError_WrapsSentinel(t *testing.T) {
	err := &workforce.NotFoundError{WorkerID: "99999"}

	assert.ErrorIs(t, err, workforce.ErrWorkerNotFound)
	assert.Contains(t, err.Error(), "99999")
}
