package enrich_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/warp/pricing-engine/enrich"
	"github.com/warp/pricing-engine/source/memory"
)

func newLookups() (*enrich.Lookups, *memory.Sources) {
	src := memory.Demo()
	l := enrich.NewLookups(src, src, src)
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	l.Log = quiet
	return l, src
}

func TestEmployeeDetails_MapsByAgreementID(t *testing.T) {
	l, _ := newLookups()

	got := l.EmployeeDetails(context.Background(), []string{"WA-0001", "WA-0010"})

	assert.Equal(t, map[string]enrich.EmployeeDetail{
		"WA-0001": {Name: "Max Mustermann", CostCenter: "CC100", CompanyCode: "1000"},
		"WA-0010": {Name: "Erika Musterfrau", CostCenter: "CC300", CompanyCode: "3000"},
	}, got)
}

func TestEmployeeDetails_EmptyInput_NoRemoteCall(t *testing.T) {
	l, src := newLookups()
	src.Fail("employee", errors.New("should not be called"))

	got := l.EmployeeDetails(context.Background(), nil)

	assert.Empty(t, got)
}

func TestEmployeeDetails_SourceFailure_DegradesToEmptyMap(t *testing.T) {
	// GIVEN: A failing employee source
	// WHEN: Looking up
	// THEN: Empty map, no panic, no error surfaces

	l, src := newLookups()
	src.Fail("employee", errors.New("gateway timeout"))

	got := l.EmployeeDetails(context.Background(), []string{"WA-0001"})

	assert.Empty(t, got)
}

func TestProjectCustomers_OnlyResolvedProjects(t *testing.T) {
	l, src := newLookups()
	src.Projects = append(src.Projects, enrich.ProjectRow{ProjectID: "PRJ009", Customer: ""})

	got := l.ProjectCustomers(context.Background(), []string{"PRJ001", "PRJ002", "PRJ009", "PRJ404"})

	assert.Equal(t, map[string]string{
		"PRJ001": "CUST01",
		"PRJ002": "CUST04",
	}, got, "unresolved and unknown projects must be absent, never empty entries")
}

func TestProjectCustomers_SourceFailure_DegradesToEmptyMap(t *testing.T) {
	l, src := newLookups()
	src.Fail("project", errors.New("503"))

	got := l.ProjectCustomers(context.Background(), []string{"PRJ001"})

	assert.Empty(t, got)
}

func TestBusinessPartnerDetails_MapsByCustomer(t *testing.T) {
	l, _ := newLookups()

	got := l.BusinessPartnerDetails(context.Background(), []string{"CUST01", "CUST04"})

	assert.Equal(t, map[string]enrich.BusinessPartnerDetail{
		"CUST01": {Name: "Customer One GmbH", Mandantengruppe: "MG-A"},
		"CUST04": {Name: "Customer Four Inc", Mandantengruppe: "MG-D"},
	}, got)
}

func TestBusinessPartnerDetails_SourceFailure_DegradesToEmptyMap(t *testing.T) {
	l, src := newLookups()
	src.Fail("business-partner", errors.New("reset by peer"))

	got := l.BusinessPartnerDetails(context.Background(), []string{"CUST01"})

	assert.Empty(t, got)
}
