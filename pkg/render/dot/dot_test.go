package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/topology"
)

func sample() topology.Topology {
	return topology.Topology{
		Top: []topology.Node{{
			Name:     "array-01",
			Capacity: &topology.Capacity{Used: 42, Total: 100, Unit: "TiB"},
			Ports: []topology.Port{
				{Address: "50:00:00:00:00:00:00:01", Protocol: topology.ProtocolFC},
				{Address: "50:00:00:00:00:00:00:02", Protocol: topology.ProtocolISCSI},
			},
		}},
		Bottom: []topology.Node{{
			Name:  "esx-01",
			Ports: []topology.Port{{Address: "21:00:00:00:00:00:00:01", Protocol: topology.ProtocolFC}},
		}},
		Edges: []topology.Edge{
			{Source: "50:00:00:00:00:00:00:01", Target: "21:00:00:00:00:00:00:01"},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	d := layout.Compute(sample(), layout.DefaultConfig())
	dot := ToDOT(d, Options{})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		"inputscale=72;",
		`subgraph "cluster_g-top-0"`,
		`subgraph "cluster_g-bottom-0"`,
		`"n-top-0"`,
		`"p-top-0-1"`,
		`"p-top-0-0" -- "p-bottom-0-0"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q", want)
		}
	}
	if strings.Contains(dot, "legend") {
		t.Error("ToDOT() emitted a legend without Config.Legend")
	}
}

func TestToDOT_PinnedPositions(t *testing.T) {
	d := layout.Compute(sample(), layout.DefaultConfig())
	dot := ToDOT(d, Options{})

	// n-top-0 spans (70,40)-(230,120) on a 520-high canvas.
	if !strings.Contains(dot, `pos="150,440!"`) {
		t.Errorf("ToDOT() missing flipped pin for n-top-0:\n%s", dot)
	}
	if !strings.Contains(dot, "width=2.2222222222222223") {
		t.Error("ToDOT() missing node width in inches")
	}
}

func TestToDOT_Styles(t *testing.T) {
	d := layout.Compute(sample(), layout.DefaultConfig())
	dot := ToDOT(d, Options{})

	if !strings.Contains(dot, `fillcolor="#d5e8d4"`) {
		t.Error("ToDOT() missing normal tier fill")
	}
	if !strings.Contains(dot, `style="filled,rounded"`) {
		t.Error("ToDOT() missing rounded node style")
	}
}

func TestToDOT_Options(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.Legend = true
	d := layout.Compute(sample(), cfg)

	dot := ToDOT(d, Options{EdgeLabels: true, Splines: "curved"})
	if !strings.Contains(dot, `label="FC"`) {
		t.Error("ToDOT() with EdgeLabels missing edge label")
	}
	if !strings.Contains(dot, "splines=curved;") {
		t.Error("ToDOT() ignored Splines")
	}
	if !strings.Contains(dot, "legend [shape=note") {
		t.Error("ToDOT() missing legend node")
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(layout.Compute(topology.Topology{}, layout.DefaultConfig()), Options{})
	if strings.Contains(dot, "subgraph") || strings.Contains(dot, "--") {
		t.Errorf("ToDOT() of empty diagram has content:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	d := layout.Compute(sample(), layout.DefaultConfig())
	svg, err := RenderSVG(context.Background(), ToDOT(d, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), `not valid DOT {{{`)
	if err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
