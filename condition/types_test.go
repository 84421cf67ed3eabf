package condition_test

import (
	"testing"

	"github.com/warp/pricing-engine/condition"
)

func TestDerivePriceLevel_StrictPriority(t *testing.T) {
	cases := []struct {
		name                              string
		condType, customer, project, mg   string
		want                              condition.PriceLevel
		wantOrder                         int
	}{
		{"project type with project", condition.TypeProject, "", "PRJ001", "", condition.LevelProject, 1},
		// Project wins even when customer and grouping are also populated.
		{"project beats customer and grouping", condition.TypeProject, "CUST01", "PRJ001", "MG01", condition.LevelProject, 1},
		{"standard with customer", condition.TypeStandard, "CUST01", "", "", condition.LevelCustomer, 2},
		// Customer wins over grouping for standard type.
		{"customer beats grouping", condition.TypeStandard, "CUST01", "", "MG01", condition.LevelCustomer, 2},
		{"standard with grouping only", condition.TypeStandard, "", "", "MG01", condition.LevelMandantengruppe, 3},
		{"standard with nothing", condition.TypeStandard, "", "", "", condition.LevelBasic, 4},
		// Project type without a project falls through to basic; the
		// customer branch requires standard type.
		{"project type without project", condition.TypeProject, "CUST01", "", "", condition.LevelBasic, 4},
		{"unknown type", "PR00", "CUST01", "PRJ001", "MG01", condition.LevelBasic, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := condition.DerivePriceLevel(tc.condType, tc.customer, tc.project, tc.mg)
			if got != tc.want {
				t.Errorf("level = %s, want %s", got, tc.want)
			}
			if got.Order() != tc.wantOrder {
				t.Errorf("order = %d, want %d", got.Order(), tc.wantOrder)
			}
		})
	}
}
