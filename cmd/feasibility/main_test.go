package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"dev_feasibility/pkg/core/assumption"
	"dev_feasibility/pkg/core/costs"
	"dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/returns"
)

func TestPrintSummary(t *testing.T) {
	set := assumption.NewSet("Depot")
	set.Returns = returns.ExampleProject()
	c := costs.SunshineCoastWarehouse()
	set.Costs = &c
	an, err := feasibility.Run(context.Background(), set, feasibility.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var buf bytes.Buffer
	if err := printSummary(&buf, an); err != nil {
		t.Fatalf("printSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Depot",
		"Recommendation: BUY",
		returns.ScenarioPessimistic,
		returns.ScenarioOptimistic,
		"Most sensitive: " + returns.VariableLabel(returns.VarRent),
		"Estimated development cost: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary missing %q:\n%s", want, out)
		}
	}
}
