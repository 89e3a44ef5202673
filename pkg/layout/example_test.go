package layout_test

import (
	"fmt"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/topology"
)

func ExampleCompute() {
	t := topology.Topology{
		Top: []topology.Node{{
			Name:     "array-01",
			Capacity: &topology.Capacity{Used: 42, Total: 100, Unit: "TiB"},
			Ports: []topology.Port{
				{Address: "50:00:00:00:00:00:00:01", Protocol: topology.ProtocolFC},
				{Address: "50:00:00:00:00:00:00:02", Protocol: topology.ProtocolFC},
			},
		}},
		Bottom: []topology.Node{{
			Name:  "esx-01",
			Ports: []topology.Port{{Address: "21:00:00:00:00:00:00:01", Protocol: topology.ProtocolFC}},
		}},
		Edges: []topology.Edge{
			{Source: "50:00:00:00:00:00:00:01", Target: "21:00:00:00:00:00:00:01"},
			{Source: "50:00:00:00:00:00:00:02", Target: "21:00:00:00:00:00:00:99"},
		},
	}

	d := layout.Compute(t, layout.DefaultConfig())

	fmt.Printf("canvas %.0fx%.0f\n", d.Canvas.Width, d.Canvas.Height)
	for _, s := range d.Shapes {
		fmt.Printf("%-12s %-14s at (%.0f,%.0f) in %s\n", s.ID, s.Kind, s.Bounds.X, s.Bounds.Y, *s.Group)
	}
	for _, e := range d.Edges {
		fmt.Printf("%s: %s -> %s (%s)\n", e.ID, e.Source, e.Target, e.Protocol)
	}
	fmt.Printf("unresolved: %d\n", len(d.Unresolved))
	// Output:
	// canvas 300x520
	// n-top-0      node           at (70,40) in g-top-0
	// pc-top-0     port_container at (80,120) in g-top-0
	// p-top-0-0    port           at (80,120) in g-top-0
	// p-top-0-1    port           at (80,140) in g-top-0
	// n-bottom-0   node           at (70,400) in g-bottom-0
	// pc-bottom-0  port_container at (80,380) in g-bottom-0
	// p-bottom-0-0 port           at (80,380) in g-bottom-0
	// e-0: p-top-0-0 -> p-bottom-0-0 (FC)
	// unresolved: 1
}

func ExampleClassify() {
	th := layout.DefaultThresholds()
	for _, used := range []float64{50, 70, 80, 85, 90} {
		c := &topology.Capacity{Used: used, Total: 100}
		fmt.Printf("%.0f%% -> %s\n", used, layout.Classify(c, th))
	}
	// Output:
	// 50% -> normal
	// 70% -> normal
	// 80% -> warning
	// 85% -> warning
	// 90% -> critical
}
