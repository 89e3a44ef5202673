package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/topology"
)

func sample() topology.Topology {
	return topology.Topology{
		Top: []topology.Node{
			{Name: "array-01", Capacity: &topology.Capacity{Used: 50, Total: 100, Unit: "TiB"}},
			{Name: "array-02", Capacity: &topology.Capacity{Used: 95, Total: 100, Unit: "TiB"}},
			{Name: "array-03", Capacity: &topology.Capacity{Used: 80, Total: 100, Unit: "TiB"}},
			{Name: "array-04"},
		},
		Bottom: []topology.Node{
			{Name: "nas-01", Capacity: &topology.Capacity{Used: 10, Total: 40, Unit: "TB"}},
		},
	}
}

func TestBuild(t *testing.T) {
	r := Build(sample(), layout.DefaultThresholds())

	wantOrder := []string{"array-02", "array-03", "array-01", "nas-01"}
	if len(r.Rows) != len(wantOrder) {
		t.Fatalf("rows = %d, want %d", len(r.Rows), len(wantOrder))
	}
	for i, name := range wantOrder {
		if r.Rows[i].Node != name {
			t.Errorf("row %d = %s, want %s", i, r.Rows[i].Node, name)
		}
	}

	wantTier := map[string]layout.Tier{
		"array-01": layout.TierNormal,
		"array-02": layout.TierCritical,
		"array-03": layout.TierWarning,
		"nas-01":   layout.TierNormal,
	}
	for _, row := range r.Rows {
		if row.Tier != wantTier[row.Node] {
			t.Errorf("%s tier = %s, want %s", row.Node, row.Tier, wantTier[row.Node])
		}
	}
	if r.Rows[3].Group != topology.DefaultBottomLabel {
		t.Errorf("nas-01 group = %q", r.Rows[3].Group)
	}
	if r.Rows[3].Free != 30 {
		t.Errorf("nas-01 free = %v, want 30", r.Rows[3].Free)
	}

	if len(r.NoData) != 1 || r.NoData[0] != "array-04" {
		t.Errorf("NoData = %v, want [array-04]", r.NoData)
	}
	if r.Counts[layout.TierNormal] != 2 || r.Counts[layout.TierWarning] != 1 || r.Counts[layout.TierCritical] != 1 {
		t.Errorf("Counts = %v", r.Counts)
	}
}

func TestBuildTotals(t *testing.T) {
	r := Build(sample(), layout.DefaultThresholds())
	if len(r.Totals) != 2 {
		t.Fatalf("totals = %+v, want one per unit", r.Totals)
	}
	// Sorted by unit: TB before TiB.
	tb, tib := r.Totals[0], r.Totals[1]
	if tb.Unit != "TB" || tb.Used != 10 || tb.Total != 40 {
		t.Errorf("TB total = %+v", tb)
	}
	if tib.Unit != "TiB" || tib.Used != 225 || tib.Total != 300 || tib.Tier != layout.TierWarning {
		t.Errorf("TiB total = %+v", tib)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Build(sample(), layout.DefaultThresholds())); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"array-02", "95.0 TiB", "5.0 TiB", "95.0%", "critical", "Total: 225.0 TiB of 300.0 TiB", "No data: array-04"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Build(topology.Topology{}, layout.DefaultThresholds())); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "No capacity data." {
		t.Errorf("Render(empty) = %q", got)
	}
}
